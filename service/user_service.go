package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"poll-voting-backend/auth"
	"poll-voting-backend/cache"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
)

// 自行申请 admin 的注册互斥执行，保证最多一个首位管理员
const bootstrapAdminLockKey = "register:bootstrap-admin"

// TokenIssuer 签发登录令牌
type TokenIssuer interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

type RegisterInput struct {
	Username string
	Fullname string
	Email    string
	Password string
	Roles    []string
}

type UpsertUserInput struct {
	Username string
	Fullname string
	Email    string
	// Roles 角色名，nil 表示不修改
	Roles []string
}

// UserService 注册、登录和管理员的用户维护
type UserService struct {
	log      *slog.Logger
	users    repository.UserRepository
	roles    repository.RoleRepository
	locker   cache.Locker
	tokens   TokenIssuer
	tokenTTL time.Duration
}

func NewUserService(
	log *slog.Logger,
	users repository.UserRepository,
	roles repository.RoleRepository,
	locker cache.Locker,
	tokens TokenIssuer,
	tokenTTL time.Duration,
) *UserService {
	return &UserService{log: log, users: users, roles: roles, locker: locker, tokens: tokens, tokenTTL: tokenTTL}
}

// Register 创建用户并返回令牌。email 先于 username 检查。
// 只有系统中还没有用户时才允许自行申请 admin 角色
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	const op = "service.UserService.Register"

	log := s.log.With(slog.String("op", op), slog.String("username", in.Username))

	if _, err := s.users.UserByEmail(ctx, in.Email); err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.users.UserByUsername(ctx, in.Username); err == nil {
		return "", fmt.Errorf("%s: %w", op, ErrUsernameTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", logger.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Username: in.Username,
		Fullname: in.Fullname,
		Email:    in.Email,
		Password: hash,
		Avatar:   auth.AvatarURL(in.Email),
	}
	insert := func(ctx context.Context) error {
		roleIDs, err := s.registrationRoles(ctx, in.Roles)
		if err != nil {
			return err
		}
		user.Roles = roleIDs
		if err := s.users.InsertUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			log.Error("failed to save user", logger.Err(err))
			return err
		}
		return nil
	}

	if requestsAdmin(in.Roles) {
		err = s.locker.WithLock(ctx, bootstrapAdminLockKey, insert)
	} else {
		err = insert(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	return token, nil
}

func requestsAdmin(names []string) bool {
	for _, n := range names {
		if n == models.RoleAdmin {
			return true
		}
	}
	return false
}

func (s *UserService) registrationRoles(ctx context.Context, requested []string) ([]string, error) {
	names := requested
	if len(names) == 0 {
		names = []string{models.RoleUser}
	}

	if requestsAdmin(names) {
		existing, err := s.users.Users(ctx)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: admin role cannot be self-assigned", ErrForbidden)
		}
	}

	roles, err := s.roles.RolesByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 && len(roles) == 0 {
		return nil, fmt.Errorf("default role %q is not seeded", models.RoleUser)
	}

	ids := make([]string, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Login 校验邮箱和密码并签发令牌
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.UserService.Login"

	log := s.log.With(slog.String("op", op))

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("login for unknown email")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := auth.CheckPassword(user.Password, password); err != nil {
		log.Info("invalid credentials", slog.String("user_id", user.ID))
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Me 当前登录的用户
func (s *UserService) Me(ctx context.Context, id auth.Identity) (*models.User, error) {
	user, err := s.users.UserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("service.UserService.Me: %w", auth.ErrIdentityVanished)
		}
		return nil, fmt.Errorf("service.UserService.Me: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.List: %w", err)
	}
	return users, nil
}

// Upsert 按 ID 查找或创建用户，角色按名字解析
func (s *UserService) Upsert(ctx context.Context, userID string, in UpsertUserInput) (*models.User, error) {
	const op = "service.UserService.Upsert"

	upd := repository.UserUpdate{
		Username: in.Username,
		Fullname: in.Fullname,
		Email:    in.Email,
	}
	if in.Roles != nil {
		roles, err := s.roles.RolesByNames(ctx, in.Roles)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.Roles = make([]string, 0, len(roles))
		for _, r := range roles {
			upd.Roles = append(upd.Roles, r.ID)
		}
	}

	user, err := s.users.UpsertUser(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user upserted", slog.String("op", op), slog.String("user_id", user.ID))
	return user, nil
}

// Delete 管理员删除用户，不能删除自己
func (s *UserService) Delete(ctx context.Context, id auth.Identity, userID string) error {
	const op = "service.UserService.Delete"

	if userID == id.UserID {
		return fmt.Errorf("%s: %w", op, ErrSelfDelete)
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deleted", slog.String("op", op), slog.String("user_id", userID))
	return nil
}
