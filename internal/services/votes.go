package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smashpass/internal/db"
	"smashpass/internal/models"
	"smashpass/internal/utils"
)

// 排名和统计属于易变聚合，缓存窗口取分钟级
const cacheAggregates = 1 * time.Minute

// RecordVote 对已入库的角色追加一条投票
func RecordVote(characterID uuid.UUID, voteType string, userID *uint, sessionID string) error {
	if !models.ValidVoteType(voteType) {
		return fmt.Errorf("invalid vote type: %s", voteType)
	}

	vote := models.Vote{
		UserID:      userID,
		SessionID:   sessionID,
		CharacterID: characterID,
		Type:        voteType,
	}
	return db.DB.Create(&vote).Error
}

// RecordCatalogVote 目录直连流程的投票：角色首次被投票时才入库。
// 先保证 Character 行存在（以 externalId 去重），再追加投票，
// 两步之间是因果顺序，靠顺序执行保证。
func RecordCatalogVote(cc CatalogCharacter, voteType string, userID *uint, sessionID string) (*models.Character, error) {
	if !models.ValidVoteType(voteType) {
		return nil, fmt.Errorf("invalid vote type: %s", voteType)
	}

	character, err := EnsureCatalogCharacter(cc)
	if err != nil {
		return nil, err
	}

	if err := RecordVote(character.ID, voteType, userID, sessionID); err != nil {
		return nil, err
	}
	return character, nil
}

// ensureAnime 按 externalId 查找或创建动漫行。
// 并发创建撞唯一索引时重查并复用已有行，绝不产生重复 externalId。
func ensureAnime(externalID int, title, releaseDate string) (*models.Anime, error) {
	var existing models.Anime
	err := db.DB.Where("external_id = ?", externalID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	anime := models.Anime{
		ExternalID:  externalID,
		Title:       title,
		ReleaseDate: releaseDate,
	}
	if createErr := db.DB.Create(&anime).Error; createErr != nil {
		// 另一个请求抢先插入了同一 externalId，重查复用
		if err := db.DB.Where("external_id = ?", externalID).First(&existing).Error; err == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &anime, nil
}

// EnsureCatalogCharacter 按 externalId 查找或创建角色行（含所属动漫和图片）。
// 同一个未入库角色被并发投票时，只会产生一行。
func EnsureCatalogCharacter(cc CatalogCharacter) (*models.Character, error) {
	var existing models.Character
	err := db.DB.Where("external_id = ?", cc.ExternalID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	anime, err := ensureAnime(cc.AnimeExternalID, cc.Anime, cc.ReleaseDate)
	if err != nil {
		return nil, err
	}

	character := models.Character{
		ExternalID: cc.ExternalID,
		Name:       cc.Name,
		Age:        cc.Age,
		Gender:     cc.Gender,
		AnimeID:    anime.ID,
	}
	if createErr := db.DB.Create(&character).Error; createErr != nil {
		// 并发首票：插入撞了唯一索引就复用赢家的行
		if err := db.DB.Where("external_id = ?", cc.ExternalID).First(&existing).Error; err == nil {
			return &existing, nil
		}
		return nil, createErr
	}

	if cc.Image != "" {
		image := models.CharacterImage{
			CharacterID: character.ID,
			ImageURL:    cc.Image,
		}
		if err := db.DB.Create(&image).Error; err != nil {
			// 图片入库失败不阻塞投票
			log.Printf("保存角色图片失败: %v", err)
		}
	}

	return &character, nil
}

// RankingEntry 单个角色的投票汇总
type RankingEntry struct {
	Character models.Character `json:"character"`
	Smash     int              `json:"smash"`
	Pass      int              `json:"pass"`
	Skip      int              `json:"skip"`
	Total     int              `json:"total"`
	SmashRate float64          `json:"smash_rate"`
}

// smashRate = smash / total，total 为 0 时定义为 0
func smashRate(smash, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(smash) / float64(total)
}

// CharacterRankings 从投票表聚合出排名，按 smash 率倒序。
// 没有独立的计数器状态，正确性就是"计数与存储一致"。
func CharacterRankings() ([]RankingEntry, error) {
	cacheKey := "votes:rankings"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]RankingEntry), nil
	}

	var votes []models.Vote
	if err := db.DB.
		Preload("Character").
		Preload("Character.Anime").
		Preload("Character.Images").
		Find(&votes).Error; err != nil {
		return nil, err
	}

	tally := make(map[uuid.UUID]*RankingEntry)
	for _, vote := range votes {
		entry, ok := tally[vote.CharacterID]
		if !ok {
			entry = &RankingEntry{Character: vote.Character}
			tally[vote.CharacterID] = entry
		}
		switch vote.Type {
		case models.VoteSmash:
			entry.Smash++
		case models.VotePass:
			entry.Pass++
		case models.VoteSkip:
			entry.Skip++
		}
		entry.Total++
	}

	rankings := make([]RankingEntry, 0, len(tally))
	for _, entry := range tally {
		entry.SmashRate = smashRate(entry.Smash, entry.Total)
		rankings = append(rankings, *entry)
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].SmashRate != rankings[j].SmashRate {
			return rankings[i].SmashRate > rankings[j].SmashRate
		}
		// 同率按票数多的在前
		return rankings[i].Total > rankings[j].Total
	})

	utils.GetCache().Set(cacheKey, rankings, cacheAggregates)
	return rankings, nil
}

// VoteStats 全站分类型投票总数
type VoteStats struct {
	Total int64 `json:"total"`
	Smash int64 `json:"smash"`
	Pass  int64 `json:"pass"`
	Skip  int64 `json:"skip"`
}

// GetVoteStats 统计全站投票量
func GetVoteStats() (VoteStats, error) {
	cacheKey := "votes:stats"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.(VoteStats), nil
	}

	var stats VoteStats
	if err := db.DB.Model(&models.Vote{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := db.DB.Model(&models.Vote{}).Where("type = ?", models.VoteSmash).Count(&stats.Smash).Error; err != nil {
		return stats, err
	}
	if err := db.DB.Model(&models.Vote{}).Where("type = ?", models.VotePass).Count(&stats.Pass).Error; err != nil {
		return stats, err
	}
	if err := db.DB.Model(&models.Vote{}).Where("type = ?", models.VoteSkip).Count(&stats.Skip).Error; err != nil {
		return stats, err
	}

	utils.GetCache().Set(cacheKey, stats, cacheAggregates)
	return stats, nil
}
