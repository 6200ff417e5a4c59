package handlers

import (
	"net/http"
	"sync"

	"smashpass/internal/middleware"
	"smashpass/internal/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct{}

func NewGameHandler() *GameHandler {
	return &GameHandler{}
}

type saveConfigRequest struct {
	Animes  []string `json:"animes"`
	Genders []string `json:"genders"`
	Limit   int      `json:"limit"` // 0 表示不限量
}

// SaveConfig 整体覆盖写入配置 cookie（HTTP-only，24 小时过期）
func (h *GameHandler) SaveConfig(c *gin.Context) {
	var req saveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := services.NewGameConfig(req.Animes, req.Genders, req.Limit)
	value, err := services.EncodeGameConfig(cfg)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to save config")
		return
	}

	c.SetCookie(services.GameConfigCookie, value, int(services.GameConfigMaxAge.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, cfg)
}

// LoadConfig 读取配置，没有（或损坏/过期）返回 404
func (h *GameHandler) LoadConfig(c *gin.Context) {
	cfg := loadConfig(c)
	if cfg == nil {
		JSONError(c, http.StatusNotFound, "no game config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// ClearConfig 删除配置 cookie，重复调用无副作用
func (h *GameHandler) ClearConfig(c *gin.Context) {
	c.SetCookie(services.GameConfigCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// loadConfig 从 cookie 解析配置，任何异常一律当作"没有配置"
func loadConfig(c *gin.Context) *services.GameConfig {
	raw, err := c.Cookie(services.GameConfigCookie)
	if err != nil {
		return nil
	}
	return services.DecodeGameConfig(raw)
}

// Options 设置页数据：可选动漫和性别两份独立只读数据并发取
func (h *GameHandler) Options(c *gin.Context) {
	svc := services.GetCharacterService()

	var wg sync.WaitGroup
	var animes []services.AnimeOption
	var genders []string
	var animesErr, gendersErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		animes, animesErr = svc.AvailableAnimes()
	}()
	go func() {
		defer wg.Done()
		genders, gendersErr = svc.AvailableGenders(nil, nil)
	}()
	wg.Wait()

	if animesErr != nil || gendersErr != nil {
		JSONError(c, http.StatusInternalServerError, "failed to load options")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"animes":  animes,
		"genders": genders,
	})
}

// Preview 当前过滤条件下的角色数量（设置页实时预览）
func (h *GameHandler) Preview(c *gin.Context) {
	memo := middleware.GetMemo(c)
	svc := services.GetCharacterService()

	genders := c.QueryArray("gender")
	animes := c.QueryArray("anime")

	count, err := svc.CountCharacters(memo, genders, animes)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to count characters")
		return
	}

	genderOptions, err := svc.AvailableGenders(memo, animes)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to load genders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"genders": genderOptions,
	})
}

// Deck 按保存的配置产出一局的卡组。
// 没有配置时不报错：空过滤等于全量。
func (h *GameHandler) Deck(c *gin.Context) {
	memo := middleware.GetMemo(c)
	svc := services.GetCharacterService()

	var genders, animes []string
	limit := 0
	if cfg := loadConfig(c); cfg != nil {
		genders = cfg.Genders
		animes = cfg.Animes
		limit = cfg.Limit
	}

	characters, err := svc.ListCharacters(memo, genders, animes, limit)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to load characters")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"characters": characters,
		"count":      len(characters),
	})
}
