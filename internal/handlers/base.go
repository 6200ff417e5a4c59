package handlers

import (
	"github.com/gin-gonic/gin"
)

// JSONError 统一的错误响应格式
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// 浏览器端缓存头与服务端缓存窗口保持一致：
// 单角色接口用短窗口，搜索接口用长窗口
const (
	CacheControlShort = "public, s-maxage=60, stale-while-revalidate=30"
	CacheControlLong  = "public, s-maxage=3600, stale-while-revalidate=600"
)
