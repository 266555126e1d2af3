package assistant

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultImportance = 1.0

// Common memory types. MemoryType is free-form; these are the values the extractor writes.
const (
	MemoryTypePreference  = "preference"
	MemoryTypeFact        = "fact"
	MemoryTypeInteraction = "interaction"
)

// UserMemory is a durable fact, preference or interaction extracted from conversation.
// Inactive rows are soft-deleted.
//
// Importance and IsActive follow gorm's default-value rule: a zero value on insert is
// replaced by the column default (1.0 / true). Use the repo's UpdateImportance and
// Deactivate to store zero values.
type UserMemory struct {
	ID             int64                        `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID         string                       `gorm:"type:text;not null;index;index:idx_user_memories_user_active,priority:1;column:user_id" json:"user_id"`
	MemoryType     string                       `gorm:"type:text;not null;index;column:memory_type;check:memory_type <> ''" json:"memory_type"`
	Content        string                       `gorm:"type:text;not null;column:content;check:content <> ''" json:"content"`
	Importance     float64                      `gorm:"column:importance;not null;default:1.0" json:"importance"`
	CreatedAt      time.Time                    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastAccessed   time.Time                    `gorm:"column:last_accessed;not null;default:CURRENT_TIMESTAMP" json:"last_accessed"`
	MemoryMetadata datatypes.JSONMap            `gorm:"column:memory_metadata" json:"memory_metadata"`
	Embedding      datatypes.JSONSlice[float64] `gorm:"column:embedding" json:"embedding"`
	IsActive       bool                         `gorm:"column:is_active;not null;default:true;index:idx_user_memories_user_active,priority:2" json:"is_active"`
}

func (UserMemory) TableName() string { return "user_memories" }

// NewUserMemory returns an active memory with default importance.
func NewUserMemory(userID, memoryType, content string) *UserMemory {
	now := time.Now().UTC()
	return &UserMemory{
		UserID:         userID,
		MemoryType:     memoryType,
		Content:        content,
		Importance:     DefaultImportance,
		CreatedAt:      now,
		LastAccessed:   now,
		MemoryMetadata: datatypes.JSONMap{},
		IsActive:       true,
	}
}
