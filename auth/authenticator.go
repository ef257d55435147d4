package auth

import (
	"errors"
	"fmt"
	"net/http"
)

const DefaultHeader = "x-auth-token"

var (
	ErrNoToken      = errors.New("no token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity 已通过令牌校验的用户，尚未解析角色
type Identity struct {
	UserID string
}

// Verifier 校验令牌并返回用户ID
type Verifier interface {
	Verify(token string) (string, error)
}

// Authenticator 从单个请求头中提取令牌，不访问存储
type Authenticator struct {
	header   string
	verifier Verifier
}

func NewAuthenticator(header string, verifier Verifier) *Authenticator {
	if header == "" {
		header = DefaultHeader
	}
	return &Authenticator{header: header, verifier: verifier}
}

func (a *Authenticator) Header() string {
	return a.header
}

// Authenticate 返回 ErrNoToken 或包装了具体校验错误的 ErrInvalidToken
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	token := r.Header.Get(a.header)
	if token == "" {
		return Identity{}, ErrNoToken
	}

	userID, err := a.verifier.Verify(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return Identity{UserID: userID}, nil
}
