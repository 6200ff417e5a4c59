package services

import (
	"encoding/json"
	"time"
)

// GameConfigCookie 配置 cookie 的名称和保留时长
const (
	GameConfigCookie = "game_config"
	GameConfigMaxAge = 24 * time.Hour
)

const gameConfigVersion = 1

// GameConfig 每个浏览会话的游戏配置。
// animes/genders 为空表示不过滤，Limit 为 0 表示不限量。
type GameConfig struct {
	Version int       `json:"version"`
	Animes  []string  `json:"animes"`
	Genders []string  `json:"genders"`
	Limit   int       `json:"limit"`
	SavedAt time.Time `json:"saved_at"`
}

// NewGameConfig 构造一份带版本和时间戳的配置
func NewGameConfig(animes, genders []string, limit int) GameConfig {
	if limit < 0 {
		limit = 0
	}
	return GameConfig{
		Version: gameConfigVersion,
		Animes:  animes,
		Genders: genders,
		Limit:   limit,
		SavedAt: time.Now(),
	}
}

// EncodeGameConfig 序列化为 cookie 值
func EncodeGameConfig(cfg GameConfig) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeGameConfig 解析 cookie 值。
// 损坏、版本不符或超过保留期的值一律当作"没有配置"，不报错。
func DecodeGameConfig(raw string) *GameConfig {
	if raw == "" {
		return nil
	}

	var cfg GameConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil
	}
	if cfg.Version != gameConfigVersion {
		return nil
	}
	if !cfg.SavedAt.IsZero() && time.Since(cfg.SavedAt) > GameConfigMaxAge {
		return nil
	}
	return &cfg
}
