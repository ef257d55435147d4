package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/service"
)

type VoteHandler struct {
	log   *slog.Logger
	votes *service.VotingService
}

func NewVoteHandler(log *slog.Logger, votes *service.VotingService) *VoteHandler {
	return &VoteHandler{log: log.With(slog.String("handler", "votes")), votes: votes}
}

// SubmitVote PUT /api/polls/vote/:id，:id 是选项ID。返回最新的投票视图
func (h *VoteHandler) SubmitVote(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	view, err := h.votes.CastVote(c.Request.Context(), c.Param("id"), id.UserID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
