package middleware

import (
	"net/http"
	"smashpass/internal/db"
	"smashpass/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CheckUserKey = "user"
const SessionIDKey = "session_id"

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			result := db.DB.First(&user, userID)
			if result.Error == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// EnsureSession 为匿名访客懒生成会话标识。
// 投票始终带 session_id，登录用户额外带 user_id。
func EnsureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(SessionIDKey) == nil {
			session.Set(SessionIDKey, uuid.NewString())
			session.Save()
		}
		c.Set(SessionIDKey, session.Get(SessionIDKey).(string))
		c.Next()
	}
}

// AuthRequired ensures a user is logged in, 401 otherwise
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文取当前用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

// SessionID 从上下文取匿名会话标识
func SessionID(c *gin.Context) string {
	if id, exists := c.Get(SessionIDKey); exists {
		return id.(string)
	}
	return ""
}
