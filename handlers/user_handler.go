package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/service"
)

var registerMsgs = map[string]string{
	"Username": "Username is required",
	"Fullname": "Full name is required",
	"Email":    "Please include a valid email",
	"Password": "Password should not be empty, minimum eight characters",
}

var loginMsgs = map[string]string{
	"Email":    "Please include a valid email",
	"Password": "Password is required",
}

type RegisterInput struct {
	Username string   `json:"username" binding:"required"`
	Fullname string   `json:"fullname" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Roles    []string `json:"roles"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpsertUserInput struct {
	Username string   `json:"username"`
	Fullname string   `json:"fullname"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Roles    []string `json:"roles"`
}

// UserHandler 注册、登录和用户管理
type UserHandler struct {
	log   *slog.Logger
	users *service.UserService
}

func NewUserHandler(log *slog.Logger, users *service.UserService) *UserHandler {
	return &UserHandler{log: log.With(slog.String("handler", "users")), users: users}
}

// Register POST /api/users
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err, registerMsgs)
		return
	}

	token, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Fullname: input.Fullname,
		Email:    input.Email,
		Password: input.Password,
		Roles:    input.Roles,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Login POST /api/auth
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err, loginMsgs)
		return
	}

	token, err := h.users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me GET /api/auth
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	user, err := h.users.Me(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers GET /api/users/all
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpsertUser PUT /api/users/:id
func (h *UserHandler) UpsertUser(c *gin.Context) {
	var input UpsertUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err, registerMsgs)
		return
	}

	user, err := h.users.Upsert(c.Request.Context(), c.Param("id"), service.UpsertUserInput{
		Username: input.Username,
		Fullname: input.Fullname,
		Email:    input.Email,
		Roles:    input.Roles,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := mustIdentity(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	msg(c, http.StatusOK, "User removed")
}
