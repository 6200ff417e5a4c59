package middleware

import (
	"smashpass/internal/utils"

	"github.com/gin-gonic/gin"
)

const memoKey = "request_memo"

// RequestMemo 给每个请求挂一个请求级去重缓存，
// 同一次渲染里相同参数的查询只会执行一次
func RequestMemo() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(memoKey, utils.NewMemo())
		c.Next()
	}
}

// GetMemo 取出请求级缓存，middleware 未挂载时返回 nil（nil 安全）
func GetMemo(c *gin.Context) *utils.Memo {
	if v, exists := c.Get(memoKey); exists {
		return v.(*utils.Memo)
	}
	return nil
}
