package models

import (
	"time"

	"gorm.io/gorm"
)

// CleanupStats aggregates a user's cleanup history for the dashboard.
// Counters move only when a verdict lands on a claim, inside the same
// transaction that applies it.
type CleanupStats struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`

	TotalCleanups int64   `json:"total_cleanups" gorm:"default:0"`
	TotalEarned   float64 `json:"total_earned" gorm:"default:0"`
	TotalRejected int64   `json:"total_rejected" gorm:"default:0"`

	LastCleanupAt *time.Time `json:"last_cleanup_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
