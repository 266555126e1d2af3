package assistant

import (
	"time"

	"gorm.io/datatypes"
)

// User is the identity anchor for everything the assistant stores. The ID is the
// opaque channel identifier (for WhatsApp, the sender's number) and is never generated.
type User struct {
	ID          string            `gorm:"type:text;primaryKey;column:id" json:"id"`
	CreatedAt   time.Time         `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastActive  time.Time         `gorm:"column:last_active;not null;default:CURRENT_TIMESTAMP;index" json:"last_active"`
	Preferences datatypes.JSONMap `gorm:"column:preferences" json:"preferences"`

	Conversations []Conversation `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"conversations,omitempty"`
	Context       *UserContext   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"context,omitempty"`
	Memories      []UserMemory   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"memories,omitempty"`
}

func (User) TableName() string { return "users" }

// NewUser builds a first-contact user row with both timestamps set to now.
func NewUser(id string) *User {
	now := time.Now().UTC()
	return &User{
		ID:          id,
		CreatedAt:   now,
		LastActive:  now,
		Preferences: datatypes.JSONMap{},
	}
}
