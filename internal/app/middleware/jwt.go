package middleware

import (
	"strings"

	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// CallerKey 上下文中保存调用方身份的键
const CallerKey = "caller"

// TokenParser 将令牌解析为调用方身份
type TokenParser interface {
	ParseCaller(tokenString string) (*services.Caller, error)
}

var tokenParser TokenParser

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(parser TokenParser) {
	tokenParser = parser
}

// extractToken 从授权头中提取 Bearer token
func extractToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticate 校验令牌并将调用方身份写入上下文
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			return
		}

		tokenString, ok := extractToken(authHeader)
		if !ok {
			response.Unauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		caller, err := tokenParser.ParseCaller(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(CallerKey, caller)
		c.Set("userID", caller.UserID)
		c.Set("role", caller.Role)
		c.Next()
	}
}

// RequireRoles 要求调用方拥有给定角色之一，须放在 Authenticate 之后
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := GetCaller(c)
		if caller == nil {
			response.Unauthorized(c, "Authentication required")
			return
		}
		if !caller.HasRole(roles...) {
			response.Forbidden(c, "Insufficient permissions for role "+string(caller.Role))
			return
		}
		c.Next()
	}
}

// GetCaller 从上下文中取出调用方身份，未认证时返回 nil
func GetCaller(c *gin.Context) *services.Caller {
	v, exists := c.Get(CallerKey)
	if !exists {
		return nil
	}
	caller, _ := v.(*services.Caller)
	return caller
}
