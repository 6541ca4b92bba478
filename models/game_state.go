package models

import (
	"time"

	"gorm.io/gorm"
)

// GameState is one per-user key/value row backing the match game's
// progress and leaderboard storage. Keys are the fixed krazyKards-* names.
type GameState struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	FID   int64  `gorm:"column:fid;uniqueIndex:idx_game_states_fid_key;not null" json:"fid"`
	Key   string `gorm:"size:64;uniqueIndex:idx_game_states_fid_key;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
