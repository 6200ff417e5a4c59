package handlers

import (
	"net/http"
	"strings"

	"smashpass/internal/db"
	"smashpass/internal/middleware"
	"smashpass/internal/models"
	"smashpass/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup 注册新用户，用户名取邮箱前缀
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	parts := strings.Split(req.Email, "@")
	if len(parts) != 2 || parts[0] == "" {
		JSONError(c, http.StatusBadRequest, "invalid email")
		return
	}
	if len(req.Password) < 6 {
		JSONError(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := models.User{
		Username: parts[0],
		Email:    req.Email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// 邮箱唯一索引冲突
		JSONError(c, http.StatusConflict, "email already registered")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusCreated, user)
}

// Login 邮箱密码登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		JSONError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		JSONError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, user)
}

// Logout 清除会话
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}

// Me 返回当前登录用户
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		JSONError(c, http.StatusUnauthorized, "not logged in")
		return
	}
	c.JSON(http.StatusOK, user)
}
