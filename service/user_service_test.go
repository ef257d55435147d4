package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-voting-backend/auth"
	"poll-voting-backend/cache"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
	"poll-voting-backend/repository/mocks"
)

func newMockUserService(ctrl *gomock.Controller) (*UserService, *mocks.MockUserRepository, *mocks.MockRoleRepository) {
	users := mocks.NewMockUserRepository(ctrl)
	roles := mocks.NewMockRoleRepository(ctrl)
	return NewUserService(logger.Discard(), users, roles, cache.NewKeyedMutex(), newTestTokenCodec(), time.Hour), users, roles
}

func fakeRegistration() RegisterInput {
	return RegisterInput{
		Username: gofakeit.Username(),
		Fullname: gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}
}

func TestUserService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, roles := newMockUserService(ctrl)
	in := fakeRegistration()

	users.EXPECT().UserByEmail(gomock.Any(), in.Email).Return(nil, repository.ErrNotFound)
	users.EXPECT().UserByUsername(gomock.Any(), in.Username).Return(nil, repository.ErrNotFound)
	roles.EXPECT().RolesByNames(gomock.Any(), []string{models.RoleUser}).
		Return([]models.Role{{ID: "r-user", Name: models.RoleUser}}, nil)

	var saved *models.User
	users.EXPECT().InsertUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			u.ID = "new-user"
			saved = u
			return nil
		})

	token, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	id, err := newTestTokenCodec().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "new-user", id)

	require.NotNil(t, saved)
	assert.Equal(t, []string{"r-user"}, saved.Roles)
	assert.Equal(t, auth.AvatarURL(in.Email), saved.Avatar)
	assert.NotEqual(t, in.Password, saved.Password)
	assert.NoError(t, auth.CheckPassword(saved.Password, in.Password))
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _ := newMockUserService(ctrl)
	in := fakeRegistration()

	users.EXPECT().UserByEmail(gomock.Any(), in.Email).Return(&models.User{ID: "u1"}, nil)

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _ := newMockUserService(ctrl)
	in := fakeRegistration()

	users.EXPECT().UserByEmail(gomock.Any(), in.Email).Return(nil, repository.ErrNotFound)
	users.EXPECT().UserByUsername(gomock.Any(), in.Username).Return(&models.User{ID: "u1"}, nil)

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_Register_AdminOnlyForFirstUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _ := newMockUserService(ctrl)
	in := fakeRegistration()
	in.Roles = []string{models.RoleAdmin}

	users.EXPECT().UserByEmail(gomock.Any(), in.Email).Return(nil, repository.ErrNotFound)
	users.EXPECT().UserByUsername(gomock.Any(), in.Username).Return(nil, repository.ErrNotFound)
	users.EXPECT().Users(gomock.Any()).Return([]models.User{{ID: "existing"}}, nil)

	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserService_Register_DefaultRoleMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, roles := newMockUserService(ctrl)
	in := fakeRegistration()

	users.EXPECT().UserByEmail(gomock.Any(), in.Email).Return(nil, repository.ErrNotFound)
	users.EXPECT().UserByUsername(gomock.Any(), in.Username).Return(nil, repository.ErrNotFound)
	roles.EXPECT().RolesByNames(gomock.Any(), []string{models.RoleUser}).Return(nil, nil)

	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestUserService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _ := newMockUserService(ctrl)

	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	user := &models.User{ID: "u1", Email: gofakeit.Email(), Password: hash}

	users.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil).Times(2)
	users.EXPECT().UserByEmail(gomock.Any(), "nobody@example.com").Return(nil, repository.ErrNotFound)

	token, err := svc.Login(context.Background(), user.Email, "correct horse")
	require.NoError(t, err)
	id, err := newTestTokenCodec().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = svc.Login(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _ := newMockUserService(ctrl)
	boom := errors.New("connection refused")
	users.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := svc.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, users, _ := newMockUserService(ctrl)
	admin := auth.Identity{UserID: "admin"}

	err := svc.Delete(context.Background(), admin, "admin")
	assert.ErrorIs(t, err, ErrSelfDelete)

	users.EXPECT().DeleteUser(gomock.Any(), "u2").Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), admin, "u2"))

	users.EXPECT().DeleteUser(gomock.Any(), "u3").Return(repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, "u3"), ErrUserNotFound)
}

func TestUserService_Upsert_ResolvesRoleNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.Upsert(ctx, "fixed-id", UpsertUserInput{
		Username: "ann",
		Fullname: "Ann Lee",
		Email:    "ann@example.com",
		Roles:    []string{models.RolePowerUser},
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", user.ID)
	require.Len(t, user.Roles, 1)

	roles, err := env.store.RolesByIDs(ctx, user.Roles)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, models.RolePowerUser, roles[0].Name)

	updated, err := env.users.Upsert(ctx, "fixed-id", UpsertUserInput{Fullname: "Ann B. Lee"})
	require.NoError(t, err)
	assert.Equal(t, "ann", updated.Username)
	assert.Equal(t, "Ann B. Lee", updated.Fullname)
	assert.Equal(t, user.Roles, updated.Roles)
}

func TestUserService_RegisterThenMe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := fakeRegistration()

	token, err := env.users.Register(ctx, in)
	require.NoError(t, err)

	id, err := env.tokens.Verify(token)
	require.NoError(t, err)

	me, err := env.users.Me(ctx, auth.Identity{UserID: id})
	require.NoError(t, err)
	assert.Equal(t, in.Email, me.Email)

	_, err = env.users.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.users.Me(ctx, auth.Identity{UserID: "gone"})
	assert.ErrorIs(t, err, auth.ErrIdentityVanished)
}

func TestUserService_Register_ConcurrentFirstAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := fakeRegistration()
			in.Username = fmt.Sprintf("admin%d", i)
			in.Email = fmt.Sprintf("admin%d@example.com", i)
			in.Roles = []string{models.RoleAdmin}
			_, errs[i] = env.users.Register(ctx, in)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrForbidden)
	}
	assert.Equal(t, 1, succeeded)

	users, err := env.store.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSeedRoles_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	SeedRoles(ctx, env.store, logger.Discard())

	n, err := env.store.CountRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(models.SeedRoleNames)), n)
}
