package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"Lee_Tube/internal/pkg"
	"Lee_Tube/internal/repository/redis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextUserIDKey  = "user_id"
	ContextRoleKey    = "user_role"
	ContextSessionKey = "session_id"

	SessionCookieName = "session_id"
	SessionCookieTTL  = 60 * 60 * 24 * 30
)

// Actor 请求的行为主体：登录用户或匿名会话
type Actor struct {
	UserID    uint64
	Role      int
	SessionID string
}

func (a Actor) Authenticated() bool { return a.UserID != 0 }

func (a Actor) IsAdmin() bool { return a.Role >= 1 }

// Key 反应/订阅唯一键里的身份："u:<id>" 或 "s:<uuid>"，两套身份空间互不迁移
func (a Actor) Key() string {
	if a.UserID != 0 {
		return fmt.Sprintf("u:%d", a.UserID)
	}
	if a.SessionID != "" {
		return "s:" + a.SessionID
	}
	return ""
}

// GetActor 从上下文取行为主体
func GetActor(c *gin.Context) Actor {
	var actor Actor
	if v, ok := c.Get(ContextUserIDKey); ok {
		actor.UserID = v.(uint64)
	}
	if v, ok := c.Get(ContextRoleKey); ok {
		actor.Role = v.(int)
	}
	if v, ok := c.Get(ContextSessionKey); ok {
		actor.SessionID = v.(string)
	}
	return actor
}

// AuthMiddleware 强制登录态：校验 access token 并比对 redis 里的单会话 token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid authorization format"})
			c.Abort()
			return
		}

		tokenStr := parts[1]
		userRep := &redis.UserRepository{}

		claims, err := pkg.ParseAccess(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
			c.Abort()
			return
		}

		// redis校验是否是当前会话的token
		originToken, err := userRep.GetUserToken(claims.UserID)
		if err != nil || originToken != tokenStr {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "account has been logged in elsewhere"})
			c.Abort()
			return
		}

		// 校验通过后更新过期时间
		if err = userRep.ExtendUserToken(claims.UserID); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware 可匿名路径：带合法token则注入身份，
// 否则保证有一个会话cookie，匿名反应/订阅用它当身份键
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := pkg.ParseAccess(parts[1]); err == nil {
				c.Set(ContextUserIDKey, claims.UserID)
				c.Set(ContextRoleKey, claims.Role)
				c.Next()
				return
			}
		}

		sid, err := c.Cookie(SessionCookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(SessionCookieName, sid, SessionCookieTTL, "/", "", false, true)
		}
		c.Set(ContextSessionKey, sid)
		c.Next()
	}
}
