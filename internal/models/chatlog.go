package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatLog is one append-only row in the durable conversation log.
// Rows double as the audit trail and as the fallback source for
// rebuilding a user's history after the cache entry expires.
type ChatLog struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string         `gorm:"column:user_id;type:text;index" json:"user_id"`
	Role       string         `gorm:"column:role;type:text" json:"role"` // "user" | "model" | "system"
	Text       string         `gorm:"column:text;type:text" json:"text"`
	TokenCount int            `gorm:"column:token_count" json:"token_count"`
	Timestamp  time.Time      `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (ChatLog) TableName() string { return "chat_logs" }
