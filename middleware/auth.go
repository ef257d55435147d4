package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"poll-voting-backend/auth"
	"poll-voting-backend/logger"
	"poll-voting-backend/models"
)

const identityKey = "identity"

// roleNames 拒绝提示中使用的角色名
var roleNames = map[string]string{
	models.RoleAdmin:     "Admin",
	models.RolePowerUser: "Power User",
	models.RoleUser:      "User",
}

// roleMessage 列出所有可接受的角色，例如 "Require Power User or Admin Role!"
func roleMessage(roles []string) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		if n, ok := roleNames[r]; ok {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "Forbidden"
	}
	return "Require " + strings.Join(names, " or ") + " Role!"
}

// Auth 令牌认证和角色检查中间件
type Auth struct {
	log   *slog.Logger
	authn *auth.Authenticator
	authz *auth.Authorizer
}

func NewAuth(log *slog.Logger, authn *auth.Authenticator, authz *auth.Authorizer) *Auth {
	return &Auth{log: log, authn: authn, authz: authz}
}

// Identity 取出 Authenticate 写入的身份
func Identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// Authenticate 校验请求头中的令牌，成功后把身份写入上下文
func (m *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.authn.Authenticate(c.Request)
		if err != nil {
			msg := "Token is not valid"
			if errors.Is(err, auth.ErrNoToken) {
				msg = "No token, authorization denied"
			}
			m.log.Debug("authentication failed", slog.String("path", c.FullPath()), logger.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": msg})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole 必须在 Authenticate 之后使用
func (m *Auth) RequireRole(role string) gin.HandlerFunc {
	return m.RequireAnyRole(role)
}

// RequireAnyRole 拥有任一角色即可。拒绝时提示第一个角色
func (m *Auth) RequireAnyRole(roles ...string) gin.HandlerFunc {
	msg := roleMessage(roles)

	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		err := m.authz.RequireAnyRole(c.Request.Context(), id, roles...)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, auth.ErrMissingRole):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": msg})
		default:
			m.log.Error("role check failed", slog.String("user_id", id.UserID), logger.Err(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
		}
	}
}
