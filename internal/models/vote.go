package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 三种投票结果。原版把 "skip" 叫作 "kill"，这里统一为 skip。
const (
	VoteSmash = "smash"
	VotePass  = "pass"
	VoteSkip  = "skip"
)

// ValidVoteType reports whether t is one of the three allowed vote types.
func ValidVoteType(t string) bool {
	return t == VoteSmash || t == VotePass || t == VoteSkip
}

type Vote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id"`               // 登录用户投票时填充
	SessionID   string    `gorm:"not null;index" json:"session_id"`   // 匿名会话标识，始终存在
	CharacterID uuid.UUID `gorm:"type:uuid;not null;index" json:"character_id"`
	Character   Character `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"character"`
	Type        string    `gorm:"size:10;not null" json:"type"` // smash, pass, skip
	CreatedAt   time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Votes are append-only: the application never updates or deletes rows,
// and a session/user may vote the same character repeatedly.
