// Package middleware 提供了 Gin 框架使用的中间件。
package middleware

import (
	"context"
	"net/http"
	"strings"

	"contract-risk-go/internal/service"
	"contract-risk-go/pkg/database"
	"contract-risk-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 创建一个 Gin 中间件，用于验证 JWT 并将用户信息注入上下文。
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少认证头"})
			return
		}

		// 认证头格式必须是 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "认证头格式错误"})
			return
		}
		tokenString := parts[1]

		// 已登出的 token 在 Redis 黑名单中
		if database.RDB != nil {
			if exists, err := database.RDB.Exists(context.Background(), "blacklist:"+tokenString).Result(); err == nil && exists > 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token 已失效"})
				return
			}
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的 token"})
			return
		}

		// 根据 claims 中的用户名获取完整的用户信息
		user, err := userService.GetProfile(claims.Username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
			return
		}

		// 将用户信息和 claims 注入上下文，供后续 handler 使用
		c.Set("user", user)
		c.Set("claims", claims)

		c.Next()
	}
}
