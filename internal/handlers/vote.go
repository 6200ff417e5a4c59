package handlers

import (
	"net/http"

	"smashpass/internal/middleware"
	"smashpass/internal/models"
	"smashpass/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

type voteRequest struct {
	Type        string `json:"type"`
	CharacterID string `json:"character_id"` // 数据库流程：已入库角色的 UUID

	// 目录直连流程：角色还没入库，首票时携带完整目录字段
	Character *services.CatalogCharacter `json:"character"`
}

// Submit 记录一次投票。两条路径：
//   - character_id：对已入库角色直接追加
//   - character：目录角色首票，先以 externalId 去重入库再投票
func (h *VoteHandler) Submit(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidVoteType(req.Type) {
		JSONError(c, http.StatusBadRequest, "invalid vote type")
		return
	}

	sessionID := middleware.SessionID(c)
	var userID *uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
	}

	if req.Character != nil {
		if req.Character.ExternalID <= 0 || req.Character.Name == "" {
			JSONError(c, http.StatusBadRequest, "incomplete character payload")
			return
		}
		character, err := services.RecordCatalogVote(*req.Character, req.Type, userID, sessionID)
		if err != nil {
			// 存储层错误没有恢复路径，直接作为失败暴露
			JSONError(c, http.StatusInternalServerError, "failed to record vote")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"character_id": character.ID})
		return
	}

	characterID, err := uuid.Parse(req.CharacterID)
	if err != nil {
		JSONError(c, http.StatusBadRequest, "invalid character id")
		return
	}
	if err := services.RecordVote(characterID, req.Type, userID, sessionID); err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to record vote")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"character_id": characterID})
}

// Rankings 按 smash 率倒序的角色排名
func (h *VoteHandler) Rankings(c *gin.Context) {
	rankings, err := services.CharacterRankings()
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to load rankings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rankings})
}

// Stats 全站投票统计
func (h *VoteHandler) Stats(c *gin.Context) {
	stats, err := services.GetVoteStats()
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to load stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
