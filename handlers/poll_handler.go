package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/models"
	"poll-voting-backend/service"
)

// ChoiceInput 选项可以是 {"value": "..."} 或者直接是字符串
type ChoiceInput struct {
	Poll  string `json:"poll,omitempty"`
	Value string `json:"value"`
}

func (ci *ChoiceInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		ci.Value = s
		return nil
	}

	type plain ChoiceInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*ci = ChoiceInput(p)
	return nil
}

func choiceValues(in []ChoiceInput) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		out = append(out, c.Value)
	}
	return out
}

// CreatePollInput 创建投票的请求体
type CreatePollInput struct {
	Topic   string        `json:"topic"`
	Choices []ChoiceInput `json:"choices"`
}

// UpdatePollInput 编辑投票的请求体。_id、use 和 choices[].poll 只为兼容旧客户端，按 topic 定位，所有者不可修改
type UpdatePollInput struct {
	ID      string        `json:"_id"`
	Topic   string        `json:"topic"`
	Author  string        `json:"author"`
	Use     string        `json:"use"`
	Choices []ChoiceInput `json:"choices"`
}

type SetStatusInput struct {
	Status *models.PollStatus `json:"status"`
}

// PollHandler 投票的增删改查
type PollHandler struct {
	log   *slog.Logger
	polls *service.PollService
}

func NewPollHandler(log *slog.Logger, polls *service.PollService) *PollHandler {
	return &PollHandler{log: log.With(slog.String("handler", "polls")), polls: polls}
}

// CreatePoll POST /api/polls
func (h *PollHandler) CreatePoll(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	var input CreatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err, nil)
		return
	}

	view, err := h.polls.Create(c.Request.Context(), id, input.Topic, choiceValues(input.Choices))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":  "Poll was added successfully!",
		"_id":  view.ID,
		"poll": view,
	})
}

// GetPolls GET /api/polls
func (h *PollHandler) GetPolls(c *gin.Context) {
	views, err := h.polls.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetPoll GET /api/polls/:id
func (h *PollHandler) GetPoll(c *gin.Context) {
	view, err := h.polls.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdatePoll PUT /api/polls
func (h *PollHandler) UpdatePoll(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	var input UpdatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err, nil)
		return
	}

	_, err := h.polls.Update(c.Request.Context(), id, service.UpdatePollInput{
		Topic:   input.Topic,
		Author:  input.Author,
		Choices: choiceValues(input.Choices),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	msg(c, http.StatusOK, "Poll was edited successfully!")
}

// SetStatus PUT /api/polls/status/:id
func (h *PollHandler) SetStatus(c *gin.Context) {
	var input SetStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrors(c, "Status must be open or closed")
		return
	}
	if input.Status == nil {
		validationErrors(c, "Status is required")
		return
	}

	if _, err := h.polls.SetStatus(c.Request.Context(), c.Param("id"), *input.Status); err != nil {
		writeError(c, h.log, err)
		return
	}

	msg(c, http.StatusOK, "Status Change successfully!")
}

// DeletePoll DELETE /api/polls/:id
func (h *PollHandler) DeletePoll(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	if err := h.polls.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}

	msg(c, http.StatusOK, "Poll removed")
}
