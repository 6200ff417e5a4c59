package handlers

import (
	"net/http"

	"smashpass/internal/services"
	"smashpass/internal/utils"

	"github.com/gin-gonic/gin"
)

type CharacterHandler struct{}

func NewCharacterHandler() *CharacterHandler {
	return &CharacterHandler{}
}

// Random 目录路径的单角色接口。
// 可选 anime_id/gender 过滤；过滤后没有候选时返回 404，
// 而不是 200 + 空数组。
func (h *CharacterHandler) Random(c *gin.Context) {
	animeID := utils.StringToInt(c.Query("anime_id"))
	gender := c.Query("gender")

	character := services.GetCharacterService().RandomCatalogCharacter(c.Request.Context(), animeID, gender)
	if character == nil {
		JSONError(c, http.StatusNotFound, "no character found")
		return
	}

	c.Header("Cache-Control", CacheControlShort)
	c.JSON(http.StatusOK, character)
}
