package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"poll-voting-backend/auth"
	"poll-voting-backend/logger"
	"poll-voting-backend/middleware"
	"poll-voting-backend/service"
)

type errorMsg struct {
	Msg string `json:"msg"`
}

func msg(c *gin.Context, status int, text string) {
	c.JSON(status, gin.H{"msg": text})
}

func validationErrors(c *gin.Context, msgs ...string) {
	out := make([]errorMsg, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, errorMsg{Msg: m})
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": out})
}

// bindError 把绑定失败转成字段提示。fieldMsgs 按结构体字段名查找
func bindError(c *gin.Context, err error, fieldMsgs map[string]string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		validationErrors(c, "Invalid request body")
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if m, ok := fieldMsgs[fe.Field()]; ok {
			msgs = append(msgs, m)
			continue
		}
		msgs = append(msgs, fe.Field()+" is invalid")
	}
	validationErrors(c, msgs...)
}

// writeError 业务错误到 HTTP 状态码的统一映射
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		validationErrors(c, verr.Msgs...)
	case errors.Is(err, service.ErrPollNotFound):
		msg(c, http.StatusNotFound, "Poll not found")
	case errors.Is(err, service.ErrChoiceNotFound):
		msg(c, http.StatusNotFound, "Choice not found")
	case errors.Is(err, service.ErrUserNotFound):
		msg(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrPollClosed):
		msg(c, http.StatusNotFound, "The Poll is closed")
	case errors.Is(err, service.ErrAlreadyVoted):
		msg(c, http.StatusBadRequest, "Poll already vote")
	case errors.Is(err, service.ErrDuplicateTopic):
		msg(c, http.StatusBadRequest, "Poll topic already exists")
	case errors.Is(err, service.ErrEmailTaken):
		validationErrors(c, "User already exists")
	case errors.Is(err, service.ErrUsernameTaken):
		validationErrors(c, "Username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		validationErrors(c, "Invalid Credentials")
	case errors.Is(err, service.ErrSelfDelete):
		msg(c, http.StatusBadRequest, "You cannot delete your own account")
	case errors.Is(err, service.ErrForbidden):
		msg(c, http.StatusForbidden, "User not authorized")
	default:
		attrs := []any{slog.String("path", c.FullPath()), logger.Err(err)}
		if errors.Is(err, auth.ErrIdentityVanished) {
			attrs = append(attrs, slog.Bool("identity_vanished", true))
		}
		log.Error("request failed", attrs...)
		msg(c, http.StatusInternalServerError, "Server Error")
	}
}

// mustIdentity 路由都挂在 Authenticate 之后，缺失说明路由配置错误
func mustIdentity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		msg(c, http.StatusUnauthorized, "No token, authorization denied")
	}
	return id, ok
}
