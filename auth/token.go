package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

type userClaim struct {
	ID string `json:"id"`
}

// tokenClaims 负载格式为 {"user":{"id":...},"exp":...}
type tokenClaims struct {
	User userClaim `json:"user"`
	jwt.RegisteredClaims
}

// TokenCodec 使用 HS256 签发和校验令牌。密钥在构造时传入，之后只读
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// WithClock 替换时间源，用于测试过期
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	return &TokenCodec{secret: c.secret, now: now}
}

func (c *TokenCodec) Issue(userID string, ttl time.Duration) (string, error) {
	const op = "auth.TokenCodec.Issue"

	if userID == "" {
		return "", fmt.Errorf("%s: empty user id", op)
	}

	now := c.now()
	claims := tokenClaims{
		User: userClaim{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Verify 返回令牌中的用户ID，失败时区分过期、格式错误和签名错误
func (c *TokenCodec) Verify(token string) (string, error) {
	var claims tokenClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignatureInvalid
		default:
			return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}

	if claims.User.ID == "" {
		return "", fmt.Errorf("%w: missing user id", ErrTokenMalformed)
	}
	return claims.User.ID, nil
}
