package repository

import (
	"context"
	"errors"

	"poll-voting-backend/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// PollUpdate 按 topic 查找或创建时写入的字段，空值不覆盖。
// InsertAuthor 只在新建记录且 Author 为空时使用；InsertUser 只写入新建记录，已有记录的所有者不变
type PollUpdate struct {
	Author       string
	InsertAuthor string
	InsertUser   string
}

// UserUpdate 按 ID 查找或创建用户时写入的字段，空值不覆盖
type UserUpdate struct {
	Username string
	Fullname string
	Email    string
	Roles    []string
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	Users(ctx context.Context) ([]models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	UpsertUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// RoleRepository 角色数据访问接口
type RoleRepository interface {
	RolesByIDs(ctx context.Context, ids []string) ([]models.Role, error)
	RolesByNames(ctx context.Context, names []string) ([]models.Role, error)
	InsertRole(ctx context.Context, role *models.Role) error
	CountRoles(ctx context.Context) (int64, error)
}

// PollRepository 投票数据访问接口
type PollRepository interface {
	PollByID(ctx context.Context, id string) (*models.Poll, error)
	// Polls 按创建时间倒序
	Polls(ctx context.Context) ([]models.Poll, error)
	// InsertPoll topic 重复时返回 ErrDuplicate
	InsertPoll(ctx context.Context, poll *models.Poll) error
	UpsertPollByTopic(ctx context.Context, topic string, upd PollUpdate) (*models.Poll, error)
	UpsertPollStatus(ctx context.Context, id string, status models.PollStatus) (*models.Poll, error)
	DeletePoll(ctx context.Context, id string) error
}

// ChoiceRepository 选项和投票记录数据访问接口
type ChoiceRepository interface {
	ChoiceByID(ctx context.Context, id string) (*models.Choice, error)
	// ChoicesByPoll 按 Position 排序，每个选项的投票最新在前
	ChoicesByPoll(ctx context.Context, pollID string) ([]models.Choice, error)
	InsertChoice(ctx context.Context, choice *models.Choice) error
	DeleteChoicesByPoll(ctx context.Context, pollID string) error
	// PrependVote 把投票放到选项列表最前面。存储层检测到同一投票重复用户时返回 ErrDuplicate
	PrependVote(ctx context.Context, choiceID string, vote models.VoteEntry) error
}

// Store 完整的存储实现
type Store interface {
	UserRepository
	RoleRepository
	PollRepository
	ChoiceRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
