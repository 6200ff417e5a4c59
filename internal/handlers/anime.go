package handlers

import (
	"log"
	"net/http"

	"smashpass/internal/anilist"
	"smashpass/internal/services"

	"github.com/gin-gonic/gin"
)

type AnimeHandler struct{}

func NewAnimeHandler() *AnimeHandler {
	return &AnimeHandler{}
}

// Search 目录动漫搜索，query 参数必填
func (h *AnimeHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		JSONError(c, http.StatusBadRequest, "query parameter required")
		return
	}

	results, err := services.GetCharacterService().SearchCatalogAnime(c.Request.Context(), query)
	if err != nil {
		// 搜索是展示用途，目录故障按空结果降级
		log.Printf("动漫搜索失败，返回空结果: %v", err)
		results = []anilist.Media{}
	}

	c.Header("Cache-Control", CacheControlLong)
	c.JSON(http.StatusOK, gin.H{"results": results})
}
