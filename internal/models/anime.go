package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Anime struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID  int       `gorm:"uniqueIndex;not null" json:"external_id"` // AniList ID
	Title       string    `gorm:"not null" json:"title"`
	ReleaseDate string    `json:"release_date"` // 发行年份，文本存储（可能为 "Unknown"）
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Anime) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
