package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
)

var (
	ErrMissingRole = errors.New("missing role")
	// ErrIdentityVanished 令牌有效但用户已不存在，按服务端错误处理
	ErrIdentityVanished = errors.New("authenticated user no longer exists")
)

// MissingRoleError 记录被拒绝时要求的角色
type MissingRoleError struct {
	Roles []string
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("missing role: %s", strings.Join(e.Roles, " or "))
}

func (e *MissingRoleError) Is(target error) bool {
	return target == ErrMissingRole
}

type UserProvider interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

type RoleProvider interface {
	RolesByIDs(ctx context.Context, ids []string) ([]models.Role, error)
}

// Authorizer 按角色名做参数化的权限检查，只读
type Authorizer struct {
	log   *slog.Logger
	users UserProvider
	roles RoleProvider
}

func NewAuthorizer(log *slog.Logger, users UserProvider, roles RoleProvider) *Authorizer {
	return &Authorizer{log: log, users: users, roles: roles}
}

// RequireRole 用户必须拥有指定角色
func (a *Authorizer) RequireRole(ctx context.Context, id Identity, role string) error {
	return a.RequireAnyRole(ctx, id, role)
}

// RequireAnyRole 拥有其中任意一个角色即放行
func (a *Authorizer) RequireAnyRole(ctx context.Context, id Identity, roles ...string) error {
	const op = "auth.RequireAnyRole"

	ok, err := a.HasAnyRole(ctx, id, roles...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return &MissingRoleError{Roles: roles}
	}
	return nil
}

// HasAnyRole 解析用户角色集合并判断是否包含任意一个要求的角色
func (a *Authorizer) HasAnyRole(ctx context.Context, id Identity, roles ...string) (bool, error) {
	const op = "auth.HasAnyRole"

	log := a.log.With(slog.String("op", op), slog.String("user_id", id.UserID))

	user, err := a.users.UserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("token refers to missing user")
			return false, fmt.Errorf("%s: %w", op, ErrIdentityVanished)
		}
		log.Error("failed to load user", logger.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if len(user.Roles) == 0 {
		return false, nil
	}

	resolved, err := a.roles.RolesByIDs(ctx, user.Roles)
	if err != nil {
		log.Error("failed to resolve roles", logger.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range resolved {
		for _, want := range roles {
			if r.Name == want {
				return true, nil
			}
		}
	}
	return false, nil
}
