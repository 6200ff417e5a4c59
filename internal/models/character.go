package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Character struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID int       `gorm:"uniqueIndex;not null" json:"external_id"` // AniList ID
	Name       string    `gorm:"not null" json:"name"`
	Age        string    `gorm:"default:'Unknown'" json:"age"` // 自由文本: "16", "100+", "Unknown"
	Gender     string    `gorm:"index;default:'Unknown'" json:"gender"`
	AnimeID    uuid.UUID `gorm:"type:uuid;not null;index" json:"anime_id"`
	Anime      Anime     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"anime"`
	CreatedAt  time.Time `json:"created_at"`

	Images []CharacterImage `gorm:"foreignKey:CharacterID" json:"images"`
}

func (c *Character) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CharacterImage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CharacterID uuid.UUID `gorm:"type:uuid;not null;index" json:"character_id"`
	ImageURL    string    `gorm:"not null" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *CharacterImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
