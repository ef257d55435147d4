package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"poll-voting-backend/models"
)

// GormStore 基于 gorm 的关系型存储 (MySQL / SQLite)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore db 需要开启 TranslateError 才能识别唯一键冲突
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// translate 把 gorm 错误映射为仓库层错误
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func newID() string {
	return uuid.NewString()
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate("repository.GormStore.Ping", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate("repository.GormStore.Close", err)
	}
	return sqlDB.Close()
}

// 用户

func (s *GormStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate("repository.UserByID", err)
	}
	return &user, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, translate("repository.UserByEmail", err)
	}
	return &user, nil
}

func (s *GormStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, translate("repository.UserByUsername", err)
	}
	return &user, nil
}

func (s *GormStore) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, translate("repository.Users", err)
	}
	return users, nil
}

func (s *GormStore) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	return translate("repository.InsertUser", s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) UpsertUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	const op = "repository.UpsertUser"

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{ID: id}
			applyUserUpdate(&user, upd)
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		applyUserUpdate(&user, upd)
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return &user, nil
}

func applyUserUpdate(user *models.User, upd UserUpdate) {
	if upd.Username != "" {
		user.Username = upd.Username
	}
	if upd.Fullname != "" {
		user.Fullname = upd.Fullname
	}
	if upd.Email != "" {
		user.Email = upd.Email
	}
	if upd.Roles != nil {
		user.Roles = upd.Roles
	}
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate("repository.DeleteUser", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("repository.DeleteUser: %w", ErrNotFound)
	}
	return nil
}

// 角色

func (s *GormStore) RolesByIDs(ctx context.Context, ids []string) ([]models.Role, error) {
	var roles []models.Role
	if len(ids) == 0 {
		return roles, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, translate("repository.RolesByIDs", err)
	}
	return roles, nil
}

func (s *GormStore) RolesByNames(ctx context.Context, names []string) ([]models.Role, error) {
	var roles []models.Role
	if len(names) == 0 {
		return roles, nil
	}
	if err := s.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, translate("repository.RolesByNames", err)
	}
	return roles, nil
}

func (s *GormStore) InsertRole(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = newID()
	}
	return translate("repository.InsertRole", s.db.WithContext(ctx).Create(role).Error)
}

func (s *GormStore) CountRoles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Role{}).Count(&n).Error; err != nil {
		return 0, translate("repository.CountRoles", err)
	}
	return n, nil
}

// 投票

func (s *GormStore) PollByID(ctx context.Context, id string) (*models.Poll, error) {
	var poll models.Poll
	if err := s.db.WithContext(ctx).First(&poll, "id = ?", id).Error; err != nil {
		return nil, translate("repository.PollByID", err)
	}
	return &poll, nil
}

func (s *GormStore) Polls(ctx context.Context) ([]models.Poll, error) {
	var polls []models.Poll
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&polls).Error; err != nil {
		return nil, translate("repository.Polls", err)
	}
	return polls, nil
}

func (s *GormStore) InsertPoll(ctx context.Context, poll *models.Poll) error {
	if poll.ID == "" {
		poll.ID = newID()
	}
	if poll.Status == "" {
		poll.Status = models.PollOpen
	}
	if poll.Date.IsZero() {
		poll.Date = time.Now()
	}
	return translate("repository.InsertPoll", s.db.WithContext(ctx).Create(poll).Error)
}

// UpsertPollByTopic 查找或创建。并发创建同一 topic 时冲突的一方重新读取后更新
func (s *GormStore) UpsertPollByTopic(ctx context.Context, topic string, upd PollUpdate) (*models.Poll, error) {
	const op = "repository.UpsertPollByTopic"

	for attempt := 0; attempt < 2; attempt++ {
		var poll models.Poll
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&poll, "topic = ?", topic).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				poll = models.Poll{
					ID:     newID(),
					Topic:  topic,
					Author: firstNonEmpty(upd.Author, upd.InsertAuthor),
					User:   upd.InsertUser,
					Status: models.PollOpen,
					Date:   time.Now(),
				}
				return tx.Create(&poll).Error
			}
			if err != nil {
				return err
			}

			fields := map[string]interface{}{}
			if upd.Author != "" {
				fields["author"] = upd.Author
				poll.Author = upd.Author
			}
			if len(fields) == 0 {
				return nil
			}
			return tx.Model(&models.Poll{}).Where("id = ?", poll.ID).Updates(fields).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, translate(op, err)
		}
		return &poll, nil
	}
	return nil, fmt.Errorf("%s: %w", op, ErrDuplicate)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// UpsertPollStatus 按 ID 更新状态，不存在则创建只带状态的记录
func (s *GormStore) UpsertPollStatus(ctx context.Context, id string, status models.PollStatus) (*models.Poll, error) {
	const op = "repository.UpsertPollStatus"

	var poll models.Poll
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&poll, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			poll = models.Poll{ID: id, Status: status, Date: time.Now()}
			return tx.Create(&poll).Error
		}
		if err != nil {
			return err
		}
		poll.Status = status
		return tx.Model(&models.Poll{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return &poll, nil
}

func (s *GormStore) DeletePoll(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Poll{}, "id = ?", id)
	if res.Error != nil {
		return translate("repository.DeletePoll", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("repository.DeletePoll: %w", ErrNotFound)
	}
	return nil
}

// 选项

func votesNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("date DESC")
}

func (s *GormStore) ChoiceByID(ctx context.Context, id string) (*models.Choice, error) {
	var choice models.Choice
	err := s.db.WithContext(ctx).Preload("Votes", votesNewestFirst).First(&choice, "id = ?", id).Error
	if err != nil {
		return nil, translate("repository.ChoiceByID", err)
	}
	return &choice, nil
}

func (s *GormStore) ChoicesByPoll(ctx context.Context, pollID string) ([]models.Choice, error) {
	var choices []models.Choice
	err := s.db.WithContext(ctx).
		Preload("Votes", votesNewestFirst).
		Where("poll_id = ?", pollID).
		Order("position").
		Find(&choices).Error
	if err != nil {
		return nil, translate("repository.ChoicesByPoll", err)
	}
	return choices, nil
}

func (s *GormStore) InsertChoice(ctx context.Context, choice *models.Choice) error {
	if choice.ID == "" {
		choice.ID = newID()
	}
	err := s.db.WithContext(ctx).Omit("Votes").Create(choice).Error
	return translate("repository.InsertChoice", err)
}

// DeleteChoicesByPoll 同时删除这些选项上的投票记录
func (s *GormStore) DeleteChoicesByPoll(ctx context.Context, pollID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", pollID).Delete(&models.VoteEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("poll_id = ?", pollID).Delete(&models.Choice{}).Error
	})
	return translate("repository.DeleteChoicesByPoll", err)
}

// PrependVote 插入投票记录，(poll_id, user_id) 唯一索引冲突时返回 ErrDuplicate
func (s *GormStore) PrependVote(ctx context.Context, choiceID string, vote models.VoteEntry) error {
	const op = "repository.PrependVote"

	var choice models.Choice
	if err := s.db.WithContext(ctx).Select("id", "poll_id").First(&choice, "id = ?", choiceID).Error; err != nil {
		return translate(op, err)
	}

	if vote.ID == "" {
		vote.ID = newID()
	}
	if vote.Date.IsZero() {
		vote.Date = time.Now()
	}
	vote.ChoiceID = choice.ID
	vote.PollID = choice.Poll

	return translate(op, s.db.WithContext(ctx).Create(&vote).Error)
}
