package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"poll-voting-backend/cache"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
)

// VotingService 记录投票。每个 (投票, 用户) 最多一条记录，已关闭的投票拒绝写入
type VotingService struct {
	log     *slog.Logger
	polls   repository.PollRepository
	choices repository.ChoiceRepository
	locker  cache.Locker
	pub     Publisher
}

func NewVotingService(
	log *slog.Logger,
	polls repository.PollRepository,
	choices repository.ChoiceRepository,
	locker cache.Locker,
	pub Publisher,
) *VotingService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &VotingService{log: log, polls: polls, choices: choices, locker: locker, pub: pub}
}

func voteLockKey(pollID, voterID string) string {
	return "vote:" + pollID + ":" + voterID
}

// storeErr 基础设施错误统一包装为 ErrStoreUnavailable
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// CastVote 给选项投票并返回最新的投票视图。
// 重复检查和写入在 (投票, 用户) 锁内完成，同一用户的并发请求只有一个能成功
func (s *VotingService) CastVote(ctx context.Context, choiceID, voterID string) (*models.PollView, error) {
	const op = "service.VotingService.CastVote"

	log := s.log.With(
		slog.String("op", op),
		slog.String("choice_id", choiceID),
		slog.String("voter_id", voterID),
	)

	choice, err := s.choices.ChoiceByID(ctx, choiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrChoiceNotFound)
		}
		return nil, storeErr(op, err)
	}
	pollID := choice.Poll

	err = s.locker.WithLock(ctx, voteLockKey(pollID, voterID), func(ctx context.Context) error {
		poll, err := s.polls.PollByID(ctx, pollID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPollNotFound
			}
			return storeErr(op, err)
		}
		if poll.Status.Closed() {
			return ErrPollClosed
		}

		choices, err := s.choices.ChoicesByPoll(ctx, pollID)
		if err != nil {
			return storeErr(op, err)
		}
		for i := range choices {
			if choices[i].HasVoter(voterID) {
				return ErrAlreadyVoted
			}
		}

		err = s.choices.PrependVote(ctx, choiceID, models.VoteEntry{PollID: pollID, User: voterID})
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			log.Warn("duplicate vote rejected by store")
			return ErrAlreadyVoted
		case errors.Is(err, repository.ErrNotFound):
			return ErrChoiceNotFound
		case err != nil:
			return storeErr(op, err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrLockNotAcquired):
			log.Error("vote lock unavailable", logger.Err(err))
			return nil, storeErr(op, err)
		case errors.Is(err, ErrStoreUnavailable):
			log.Error("vote failed", logger.Err(err))
			return nil, err
		default:
			log.Debug("vote rejected", logger.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	poll, err := s.polls.PollByID(ctx, pollID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	choices, err := s.choices.ChoicesByPoll(ctx, pollID)
	if err != nil {
		return nil, storeErr(op, err)
	}

	log.Info("vote recorded", slog.String("poll_id", pollID))
	view := models.NewPollView(poll, choices)
	s.pub.PublishPoll(view)
	return &view, nil
}
