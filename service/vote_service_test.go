package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-voting-backend/cache"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
	"poll-voting-backend/repository/mocks"
)

func TestVotingService_CastVote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t)
	u1 := env.addUser(t)

	poll, err := env.polls.Create(ctx, owner, "Best color", []string{"red", "blue"})
	require.NoError(t, err)

	view, err := env.votes.CastVote(ctx, poll.Choices[0].ID, u1.UserID)
	require.NoError(t, err)

	assert.Equal(t, poll.ID, view.ID)
	assert.Equal(t, "Best color", view.Topic)
	require.Len(t, view.Choices[0].Votes, 1)
	assert.Equal(t, u1.UserID, view.Choices[0].Votes[0].User)
	assert.Empty(t, view.Choices[1].Votes)
	assert.Equal(t, 1, env.pub.published())
}

func TestVotingService_NewestVoteFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t)
	u1 := env.addUser(t)
	u2 := env.addUser(t)

	poll, err := env.polls.Create(ctx, owner, "Best color", []string{"red"})
	require.NoError(t, err)

	_, err = env.votes.CastVote(ctx, poll.Choices[0].ID, u1.UserID)
	require.NoError(t, err)
	view, err := env.votes.CastVote(ctx, poll.Choices[0].ID, u2.UserID)
	require.NoError(t, err)

	require.Len(t, view.Choices[0].Votes, 2)
	assert.Equal(t, u2.UserID, view.Choices[0].Votes[0].User)
	assert.Equal(t, u1.UserID, view.Choices[0].Votes[1].User)
}

func TestVotingService_AlreadyVotedOnAnotherChoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t)
	u1 := env.addUser(t)

	poll, err := env.polls.Create(ctx, owner, "Best color", []string{"red", "blue"})
	require.NoError(t, err)

	_, err = env.votes.CastVote(ctx, poll.Choices[0].ID, u1.UserID)
	require.NoError(t, err)

	_, err = env.votes.CastVote(ctx, poll.Choices[1].ID, u1.UserID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	_, err = env.votes.CastVote(ctx, poll.Choices[0].ID, u1.UserID)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	got, err := env.polls.Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, totalVotes(got))
}

func TestVotingService_ClosedPoll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t)
	u2 := env.addUser(t)

	poll, err := env.polls.Create(ctx, owner, "Best color", []string{"red", "blue"})
	require.NoError(t, err)
	_, err = env.polls.SetStatus(ctx, poll.ID, models.PollClosed)
	require.NoError(t, err)

	for _, id := range choiceIDs(poll) {
		_, err = env.votes.CastVote(ctx, id, u2.UserID)
		assert.ErrorIs(t, err, ErrPollClosed)
	}

	got, err := env.polls.Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, totalVotes(got))
}

func TestVotingService_ChoiceNotFound(t *testing.T) {
	env := newTestEnv(t)
	u1 := env.addUser(t)

	_, err := env.votes.CastVote(context.Background(), "no-such-choice", u1.UserID)
	assert.ErrorIs(t, err, ErrChoiceNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVotingService_ConcurrentSameVoter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t)
	voter := env.addUser(t)

	poll, err := env.polls.Create(ctx, owner, "Race", []string{"a", "b", "c"})
	require.NoError(t, err)
	ids := choiceIDs(poll)

	const attempts = 30
	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.votes.CastVote(ctx, ids[i%len(ids)], voter.UserID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(attempts-1), dup.Load())

	got, err := env.polls.Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, totalVotes(got))
}

func TestVotingService_ConcurrentDistinctVoters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t)

	poll, err := env.polls.Create(ctx, owner, "Crowd", []string{"a", "b"})
	require.NoError(t, err)

	const voters = 10
	ids := make([]string, voters)
	for i := range ids {
		ids[i] = env.addUser(t).UserID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, err := env.votes.CastVote(ctx, poll.Choices[i%2].ID, id)
			assert.NoError(t, err)
		}(i, id)
	}
	wg.Wait()

	got, err := env.polls.Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, totalVotes(got))
}

func TestVotingService_StoreDuplicateIsAlreadyVoted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	polls := mocks.NewMockPollRepository(ctrl)
	choices := mocks.NewMockChoiceRepository(ctrl)

	choices.EXPECT().ChoiceByID(gomock.Any(), "c1").Return(&models.Choice{ID: "c1", Poll: "p1"}, nil)
	polls.EXPECT().PollByID(gomock.Any(), "p1").Return(&models.Poll{ID: "p1", Status: models.PollOpen}, nil)
	choices.EXPECT().ChoicesByPoll(gomock.Any(), "p1").Return([]models.Choice{{ID: "c1", Poll: "p1"}}, nil)
	choices.EXPECT().PrependVote(gomock.Any(), "c1", gomock.Any()).Return(repository.ErrDuplicate)

	svc := NewVotingService(logger.Discard(), polls, choices, cache.NewKeyedMutex(), nil)

	_, err := svc.CastVote(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestVotingService_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	polls := mocks.NewMockPollRepository(ctrl)
	choices := mocks.NewMockChoiceRepository(ctrl)

	boom := errors.New("i/o timeout")
	choices.EXPECT().ChoiceByID(gomock.Any(), "c1").Return(&models.Choice{ID: "c1", Poll: "p1"}, nil)
	polls.EXPECT().PollByID(gomock.Any(), "p1").Return(nil, boom)

	svc := NewVotingService(logger.Discard(), polls, choices, cache.NewKeyedMutex(), nil)

	_, err := svc.CastVote(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPollNotFound)
}

type failingLocker struct{}

func (failingLocker) WithLock(context.Context, string, func(context.Context) error) error {
	return cache.ErrLockNotAcquired
}

func TestVotingService_LockUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	choices := mocks.NewMockChoiceRepository(ctrl)
	choices.EXPECT().ChoiceByID(gomock.Any(), "c1").Return(&models.Choice{ID: "c1", Poll: "p1"}, nil)

	svc := NewVotingService(logger.Discard(), nil, choices, failingLocker{}, nil)

	_, err := svc.CastVote(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cache.ErrLockNotAcquired)
}
