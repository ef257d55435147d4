package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"poll-voting-backend/auth"
	"poll-voting-backend/cache"
	"poll-voting-backend/config"
	"poll-voting-backend/database"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
)

// recordingPublisher collects published events for assertions.
type recordingPublisher struct {
	mu      sync.Mutex
	views   []models.PollView
	deleted []string
}

func (p *recordingPublisher) PublishPoll(view models.PollView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
}

func (p *recordingPublisher) PublishPollDeleted(pollID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, pollID)
}

func (p *recordingPublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

type testEnv struct {
	store  *repository.GormStore
	pub    *recordingPublisher
	polls  *PollService
	votes  *VotingService
	users  *UserService
	tokens *auth.TokenCodec
}

// newTestEnv wires the services against a private in-memory sqlite database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard()
	cfg := &config.Config{
		Env: "test",
		Storage: config.StorageConfig{
			Driver: config.DriverSQLite,
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
	}

	db, err := database.OpenGorm(cfg, log)
	require.NoError(t, err)

	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	SeedRoles(context.Background(), store, log)

	pub := &recordingPublisher{}
	tokens := newTestTokenCodec()
	authz := auth.NewAuthorizer(log, store, store)

	return &testEnv{
		store:  store,
		pub:    pub,
		polls:  NewPollService(log, store, store, store, authz, pub),
		votes:  NewVotingService(log, store, store, cache.NewKeyedMutex(), pub),
		users:  NewUserService(log, store, store, cache.NewKeyedMutex(), tokens, time.Hour),
		tokens: tokens,
	}
}

func newTestTokenCodec() *auth.TokenCodec {
	return auth.NewTokenCodec("service-test-secret")
}

// addUser inserts a user holding the given role names.
func (e *testEnv) addUser(t *testing.T, roleNames ...string) auth.Identity {
	t.Helper()

	ctx := context.Background()
	if len(roleNames) == 0 {
		roleNames = []string{models.RoleUser}
	}
	roles, err := e.store.RolesByNames(ctx, roleNames)
	require.NoError(t, err)

	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}

	user := &models.User{
		Username: gofakeit.Username() + gofakeit.DigitN(6),
		Fullname: gofakeit.Name(),
		Email:    gofakeit.DigitN(6) + gofakeit.Email(),
		Password: "x",
		Roles:    ids,
	}
	require.NoError(t, e.store.InsertUser(ctx, user))
	return auth.Identity{UserID: user.ID}
}

func choiceIDs(view *models.PollView) []string {
	ids := make([]string, 0, len(view.Choices))
	for _, c := range view.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}

func totalVotes(view *models.PollView) int {
	n := 0
	for _, c := range view.Choices {
		n += len(c.Votes)
	}
	return n
}
