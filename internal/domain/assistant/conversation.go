package assistant

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is one message/response exchange between a user and the assistant.
type Conversation struct {
	ID       int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID   string `gorm:"type:text;not null;index;index:idx_conversations_user_timestamp,priority:1;column:user_id" json:"user_id"`
	Message  string `gorm:"type:text;not null;column:message;check:message <> ''" json:"message"`
	Response string `gorm:"type:text;not null;column:response;check:response <> ''" json:"response"`
	Language string `gorm:"type:text;not null;column:language;check:language <> ''" json:"language"`

	Timestamp       *time.Time                   `gorm:"column:timestamp;default:CURRENT_TIMESTAMP;index:idx_conversations_user_timestamp,priority:2" json:"timestamp"`
	MessageMetadata datatypes.JSONMap            `gorm:"column:message_metadata" json:"message_metadata"`
	Embedding       datatypes.JSONSlice[float64] `gorm:"column:embedding" json:"embedding"`
	Topic           *string                      `gorm:"type:text;column:topic;index" json:"topic"`
	NumTokens       *int                         `gorm:"column:num_tokens" json:"num_tokens"`
}

func (Conversation) TableName() string { return "conversations" }

// ToMap flattens the row for transport. The timestamp is rendered in UTC with
// FormatISO (nil when unset); every other field passes through as stored.
func (c *Conversation) ToMap() map[string]interface{} {
	var ts interface{}
	if c.Timestamp != nil {
		ts = FormatISO(c.Timestamp.UTC())
	}
	var metadata interface{}
	if c.MessageMetadata != nil {
		metadata = map[string]interface{}(c.MessageMetadata)
	}
	var embedding interface{}
	if c.Embedding != nil {
		embedding = []float64(c.Embedding)
	}
	var topic interface{}
	if c.Topic != nil {
		topic = *c.Topic
	}
	var numTokens interface{}
	if c.NumTokens != nil {
		numTokens = *c.NumTokens
	}
	return map[string]interface{}{
		"id":               c.ID,
		"user_id":          c.UserID,
		"message":          c.Message,
		"response":         c.Response,
		"language":         c.Language,
		"timestamp":        ts,
		"message_metadata": metadata,
		"embedding":        embedding,
		"topic":            topic,
		"num_tokens":       numTokens,
	}
}
