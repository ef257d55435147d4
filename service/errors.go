package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrPollNotFound   = fmt.Errorf("poll %w", ErrNotFound)
	ErrChoiceNotFound = fmt.Errorf("choice %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)

	ErrDuplicateTopic = errors.New("poll topic already exists")
	ErrPollClosed     = errors.New("poll is closed")
	ErrAlreadyVoted   = errors.New("user already voted in this poll")

	// ErrStoreUnavailable 存储或锁服务故障，按 5xx 处理
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInconsistentDelete 选项已删除但投票删除失败，需要人工介入
	ErrInconsistentDelete = errors.New("poll delete left choices removed but poll present")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrSelfDelete         = errors.New("cannot delete own account")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError 一组字段校验失败信息
type ValidationError struct {
	Msgs []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validation(msgs ...string) error {
	return &ValidationError{Msgs: msgs}
}
