package assistant

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultContextWindow       = 10
	DefaultRepetitionThreshold = 0.8
)

// ContextMessage is one entry of the rolling window. Timestamp is a FormatISO string
// so the column stays readable by consumers that never see Go types.
type ContextMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// UserContext is the per-user rolling window of recent turns. It shares its primary
// key with the owning user, so a user has at most one.
type UserContext struct {
	UserID              string                              `gorm:"type:text;primaryKey;column:user_id" json:"user_id"`
	ContextMessages     datatypes.JSONSlice[ContextMessage] `gorm:"column:context_messages;default:'[]'" json:"context_messages"`
	LastUpdated         time.Time                           `gorm:"column:last_updated;not null;default:CURRENT_TIMESTAMP" json:"last_updated"`
	PreferredLanguage   *string                             `gorm:"type:text;column:preferred_language" json:"preferred_language"`
	ConversationTopics  datatypes.JSONSlice[string]         `gorm:"column:conversation_topics" json:"conversation_topics"`
	UserPreferences     datatypes.JSONMap                   `gorm:"column:user_preferences" json:"user_preferences"`
	ContextWindow       int                                 `gorm:"column:context_window;not null;default:10" json:"context_window"`
	RepetitionThreshold float64                             `gorm:"column:repetition_threshold;not null;default:0.8" json:"repetition_threshold"`
}

func (UserContext) TableName() string { return "user_context" }

// NewUserContext returns an empty context carrying the column defaults.
func NewUserContext(userID string) *UserContext {
	return &UserContext{
		UserID:              userID,
		ContextMessages:     datatypes.JSONSlice[ContextMessage]{},
		LastUpdated:         time.Now().UTC(),
		ConversationTopics:  datatypes.JSONSlice[string]{},
		UserPreferences:     datatypes.JSONMap{},
		ContextWindow:       DefaultContextWindow,
		RepetitionThreshold: DefaultRepetitionThreshold,
	}
}

// Window is the effective window size; an unset (non-positive) value means the default.
func (uc *UserContext) Window() int {
	if uc.ContextWindow <= 0 {
		return DefaultContextWindow
	}
	return uc.ContextWindow
}

// AddMessage appends a turn stamped with the current UTC time and drops the oldest
// entries so that at most Window() remain. It only mutates the receiver.
func (uc *UserContext) AddMessage(role, content string) {
	if uc.ContextMessages == nil {
		uc.ContextMessages = datatypes.JSONSlice[ContextMessage]{}
	}
	uc.ContextMessages = append(uc.ContextMessages, ContextMessage{
		Role:      role,
		Content:   content,
		Timestamp: FormatISO(time.Now().UTC()),
	})
	if w := uc.Window(); len(uc.ContextMessages) > w {
		kept := make(datatypes.JSONSlice[ContextMessage], w)
		copy(kept, uc.ContextMessages[len(uc.ContextMessages)-w:])
		uc.ContextMessages = kept
	}
}

// AddTopic records a topic once; the slice is kept in first-seen order.
func (uc *UserContext) AddTopic(topic string) bool {
	for _, t := range uc.ConversationTopics {
		if t == topic {
			return false
		}
	}
	uc.ConversationTopics = append(uc.ConversationTopics, topic)
	return true
}
