package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-voting-backend/models"
)

type createdPoll struct {
	Msg  string          `json:"msg"`
	ID   string          `json:"_id"`
	Poll models.PollView `json:"poll"`
}

func (s *testServer) createPoll(t *testing.T, token, topic string, choices ...any) models.PollView {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/polls", token, gin.H{"topic": topic, "choices": choices})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[createdPoll](t, w).Poll
}

func TestCreatePoll(t *testing.T) {
	s := setupTestEnvironment(t)
	acc := s.register(t)

	w := s.do(t, http.MethodPost, "/api/polls", acc.token, gin.H{
		"topic":   "Best editor?",
		"choices": []any{"vim", gin.H{"value": "emacs"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode[createdPoll](t, w)
	assert.Equal(t, "Poll was added successfully!", out.Msg)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, out.ID, out.Poll.ID)
	assert.Equal(t, "Best editor?", out.Poll.Topic)
	assert.Equal(t, models.PollOpen, out.Poll.Status)
	require.Len(t, out.Poll.Choices, 2)
	assert.Equal(t, "vim", out.Poll.Choices[0].Value)
	assert.Equal(t, "emacs", out.Poll.Choices[1].Value)
	assert.Equal(t, out.ID, out.Poll.Choices[0].Poll)
	assert.Empty(t, out.Poll.Choices[0].Votes)
}

func TestCreatePoll_InvalidInput(t *testing.T) {
	s := setupTestEnvironment(t)
	acc := s.register(t)

	tests := []struct {
		name string
		body gin.H
		want []string
	}{
		{"missing everything", gin.H{}, []string{"Topic is required", "Choices is required"}},
		{"missing choices", gin.H{"topic": "Q?"}, []string{"Choices is required"}},
		{"blank topic", gin.H{"topic": "  ", "choices": []string{"A"}}, []string{"Topic is required"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/polls", acc.token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, decode[errorsBody](t, w).msgs())
		})
	}
}

func TestCreatePoll_RequiresToken(t *testing.T) {
	s := setupTestEnvironment(t)

	w := s.do(t, http.MethodPost, "/api/polls", "", gin.H{"topic": "Q?", "choices": []string{"A"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token, authorization denied", decode[msgBody](t, w).Msg)

	w = s.do(t, http.MethodPost, "/api/polls", "not-a-token", gin.H{"topic": "Q?", "choices": []string{"A"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token is not valid", decode[msgBody](t, w).Msg)
}

func TestCreatePoll_DuplicateTopic(t *testing.T) {
	s := setupTestEnvironment(t)
	acc := s.register(t)

	s.createPoll(t, acc.token, "Lunch?", "pizza", "sushi")

	w := s.do(t, http.MethodPost, "/api/polls", acc.token, gin.H{"topic": "Lunch?", "choices": []string{"soup"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Poll topic already exists", decode[msgBody](t, w).Msg)
}

func TestGetPolls(t *testing.T) {
	s := setupTestEnvironment(t)
	acc := s.register(t)

	s.createPoll(t, acc.token, "Poll 1", "1A", "1B")
	s.createPoll(t, acc.token, "Poll 2", "2A", "2B")

	w := s.do(t, http.MethodGet, "/api/polls", acc.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	polls := decode[[]models.PollView](t, w)
	require.Len(t, polls, 2)
	assert.Equal(t, "Poll 2", polls[0].Topic)
	assert.Equal(t, "Poll 1", polls[1].Topic)
	assert.Len(t, polls[0].Choices, 2)
}

func TestGetPoll(t *testing.T) {
	s := setupTestEnvironment(t)
	acc := s.register(t)
	poll := s.createPoll(t, acc.token, "Single", "x", "y")

	w := s.do(t, http.MethodGet, "/api/polls/"+poll.ID, acc.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.PollView](t, w)
	assert.Equal(t, poll.ID, got.ID)
	assert.Equal(t, []string{"x", "y"}, []string{got.Choices[0].Value, got.Choices[1].Value})

	w = s.do(t, http.MethodGet, "/api/polls/missing", acc.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Poll not found", decode[msgBody](t, w).Msg)
}

func TestUpdatePoll_ReplacesChoices(t *testing.T) {
	s := setupTestEnvironment(t)
	acc := s.register(t)
	poll := s.createPoll(t, acc.token, "Colour?", "red", "blue")

	w := s.do(t, http.MethodPut, "/api/polls/vote/"+poll.Choices[0].ID, acc.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/polls", acc.token, gin.H{
		"_id":     poll.ID,
		"topic":   "Colour?",
		"choices": []gin.H{{"poll": poll.ID, "value": "green"}, {"value": "black"}, {"value": "white"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Poll was edited successfully!", decode[msgBody](t, w).Msg)

	got := decode[models.PollView](t, s.do(t, http.MethodGet, "/api/polls/"+poll.ID, acc.token, nil))
	require.Len(t, got.Choices, 3)
	assert.Equal(t, "green", got.Choices[0].Value)
	for _, c := range got.Choices {
		assert.Empty(t, c.Votes)
	}
}

func TestUpdatePoll_IgnoresUseField(t *testing.T) {
	s := setupTestEnvironment(t)
	owner := s.register(t)
	stranger := s.register(t)
	poll := s.createPoll(t, owner.token, "Mine", "a")

	w := s.do(t, http.MethodPut, "/api/polls", stranger.token, gin.H{
		"topic":   "Mine",
		"use":     "someone-else",
		"choices": []gin.H{{"value": "b"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[models.PollView](t, s.do(t, http.MethodGet, "/api/polls/"+poll.ID, owner.token, nil))
	assert.Equal(t, poll.Use, got.Use)

	w = s.do(t, http.MethodDelete, "/api/polls/"+poll.ID, stranger.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetStatus_RoleGuard(t *testing.T) {
	s := setupTestEnvironment(t)
	admin := s.register(t, models.RoleAdmin)
	user := s.register(t)
	poll := s.createPoll(t, user.token, "Close me", "a", "b")

	w := s.do(t, http.MethodPut, "/api/polls/status/"+poll.ID, user.token, gin.H{"status": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Require Power User or Admin Role!", decode[msgBody](t, w).Msg)

	w = s.do(t, http.MethodPut, "/api/polls/status/"+poll.ID, admin.token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Status is required"}, decode[errorsBody](t, w).msgs())

	w = s.do(t, http.MethodPut, "/api/polls/status/"+poll.ID, admin.token, gin.H{"status": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Status Change successfully!", decode[msgBody](t, w).Msg)

	got := decode[models.PollView](t, s.do(t, http.MethodGet, "/api/polls/"+poll.ID, user.token, nil))
	assert.Equal(t, models.PollClosed, got.Status)
}

func TestDeletePoll(t *testing.T) {
	s := setupTestEnvironment(t)
	owner := s.register(t)
	stranger := s.register(t)
	poll := s.createPoll(t, owner.token, "Temporary", "a")

	w := s.do(t, http.MethodDelete, "/api/polls/"+poll.ID, stranger.token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User not authorized", decode[msgBody](t, w).Msg)

	w = s.do(t, http.MethodDelete, "/api/polls/"+poll.ID, owner.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Poll removed", decode[msgBody](t, w).Msg)

	w = s.do(t, http.MethodGet, "/api/polls/"+poll.ID, owner.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/polls/"+poll.ID, owner.token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
