package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"poll-voting-backend/auth"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
)

// Publisher 把投票变化推送给订阅者
type Publisher interface {
	PublishPoll(view models.PollView)
	PublishPollDeleted(pollID string)
}

type nopPublisher struct{}

func (nopPublisher) PublishPoll(models.PollView) {}
func (nopPublisher) PublishPollDeleted(string) {}

// RoleChecker 判断身份是否拥有任一角色
type RoleChecker interface {
	HasAnyRole(ctx context.Context, id auth.Identity, roles ...string) (bool, error)
}

// UpdatePollInput 编辑投票的请求，按 Topic 查找或创建
type UpdatePollInput struct {
	Topic   string
	Author  string
	Choices []string
}

// PollService 投票生命周期管理：创建、编辑、状态切换、删除和查询
type PollService struct {
	log     *slog.Logger
	users   repository.UserRepository
	polls   repository.PollRepository
	choices repository.ChoiceRepository
	roles   RoleChecker
	pub     Publisher
}

func NewPollService(
	log *slog.Logger,
	users repository.UserRepository,
	polls repository.PollRepository,
	choices repository.ChoiceRepository,
	roles RoleChecker,
	pub Publisher,
) *PollService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &PollService{
		log:     log,
		users:   users,
		polls:   polls,
		choices: choices,
		roles:   roles,
		pub:     pub,
	}
}

func validatePoll(topic string, choices []string) error {
	var msgs []string
	if strings.TrimSpace(topic) == "" {
		msgs = append(msgs, "Topic is required")
	}
	if len(choices) == 0 {
		msgs = append(msgs, "Choices is required")
	}
	if len(msgs) > 0 {
		return validation(msgs...)
	}
	return nil
}

// Create 先写投票再逐个写选项，任何选项失败都会删除已写入的部分
func (s *PollService) Create(ctx context.Context, id auth.Identity, topic string, choices []string) (*models.PollView, error) {
	const op = "service.PollService.Create"

	log := s.log.With(slog.String("op", op), slog.String("user_id", id.UserID))

	if err := validatePoll(topic, choices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.UserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, auth.ErrIdentityVanished)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	poll := &models.Poll{
		User:   user.ID,
		Author: user.Fullname,
		Topic:  topic,
		Status: models.PollOpen,
		Date:   time.Now(),
	}
	if err := s.polls.InsertPoll(ctx, poll); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateTopic)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.insertChoices(ctx, poll.ID, choices)
	if err != nil {
		log.Error("choice insert failed, rolling back poll", slog.String("poll_id", poll.ID), logger.Err(err))
		s.compensate(ctx, log, poll.ID)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll created", slog.String("poll_id", poll.ID), slog.Int("choices", len(created)))
	view := models.NewPollView(poll, created)
	return &view, nil
}

func (s *PollService) insertChoices(ctx context.Context, pollID string, values []string) ([]models.Choice, error) {
	created := make([]models.Choice, 0, len(values))
	for i, v := range values {
		c := models.Choice{Poll: pollID, Value: v, Position: i}
		if err := s.choices.InsertChoice(ctx, &c); err != nil {
			return nil, err
		}
		created = append(created, c)
	}
	return created, nil
}

// compensate 回滚失败的创建，不受请求取消影响
func (s *PollService) compensate(ctx context.Context, log *slog.Logger, pollID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.choices.DeleteChoicesByPoll(ctx, pollID); err != nil {
		log.Error("compensation: failed to delete choices", slog.String("poll_id", pollID), logger.Err(err))
	}
	if err := s.polls.DeletePoll(ctx, pollID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("compensation: failed to delete poll", slog.String("poll_id", pollID), logger.Err(err))
	}
}

// Update 按 topic 查找或创建投票，然后整体替换选项。原有投票记录会被丢弃
func (s *PollService) Update(ctx context.Context, id auth.Identity, in UpdatePollInput) (*models.PollView, error) {
	const op = "service.PollService.Update"

	log := s.log.With(slog.String("op", op), slog.String("user_id", id.UserID))

	if err := validatePoll(in.Topic, in.Choices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// 所有者只在新建时写入，编辑不能转移所有权
	upd := repository.PollUpdate{Author: in.Author, InsertUser: id.UserID}
	if in.Author == "" {
		user, err := s.users.UserByID(ctx, id.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, auth.ErrIdentityVanished)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.InsertAuthor = user.Fullname
	}

	poll, err := s.polls.UpsertPollByTopic(ctx, in.Topic, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.choices.DeleteChoicesByPoll(ctx, poll.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.insertChoices(ctx, poll.ID, in.Choices)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll edited", slog.String("poll_id", poll.ID))
	view := models.NewPollView(poll, created)
	s.pub.PublishPoll(view)
	return &view, nil
}

// SetStatus 按 ID 更新状态，ID 不存在时创建记录
func (s *PollService) SetStatus(ctx context.Context, pollID string, status models.PollStatus) (*models.PollView, error) {
	const op = "service.PollService.SetStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, validation("Status must be open or closed"))
	}

	poll, err := s.polls.UpsertPollStatus(ctx, pollID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view, err := s.assemble(ctx, poll)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("poll status changed",
		slog.String("op", op),
		slog.String("poll_id", pollID),
		slog.String("status", string(status)),
	)
	s.pub.PublishPoll(*view)
	return view, nil
}

// Delete 只有创建者或管理员可以删除。先删选项再删投票
func (s *PollService) Delete(ctx context.Context, id auth.Identity, pollID string) error {
	const op = "service.PollService.Delete"

	log := s.log.With(slog.String("op", op), slog.String("poll_id", pollID))

	poll, err := s.polls.PollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if poll.User != id.UserID {
		ok, err := s.roles.HasAnyRole(ctx, id, models.RoleAdmin)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", op, ErrForbidden)
		}
	}

	if err := s.choices.DeleteChoicesByPoll(ctx, pollID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.polls.DeletePoll(ctx, pollID); err != nil {
		log.Error("choices removed but poll delete failed", logger.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrInconsistentDelete, err)
	}

	log.Info("poll deleted")
	s.pub.PublishPollDeleted(pollID)
	return nil
}

// List 按创建时间倒序返回全部投票及其选项
func (s *PollService) List(ctx context.Context) ([]models.PollView, error) {
	const op = "service.PollService.List"

	polls, err := s.polls.Polls(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]models.PollView, 0, len(polls))
	for i := range polls {
		view, err := s.assemble(ctx, &polls[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *PollService) Get(ctx context.Context, pollID string) (*models.PollView, error) {
	const op = "service.PollService.Get"

	poll, err := s.polls.PollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view, err := s.assemble(ctx, poll)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

func (s *PollService) assemble(ctx context.Context, poll *models.Poll) (*models.PollView, error) {
	choices, err := s.choices.ChoicesByPoll(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	view := models.NewPollView(poll, choices)
	return &view, nil
}
