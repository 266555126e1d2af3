package domain

import "github.com/yungbote/assistant-store/internal/domain/assistant"

const (
	DefaultContextWindow       = assistant.DefaultContextWindow
	DefaultRepetitionThreshold = assistant.DefaultRepetitionThreshold
	DefaultImportance          = assistant.DefaultImportance

	MemoryTypePreference  = assistant.MemoryTypePreference
	MemoryTypeFact        = assistant.MemoryTypeFact
	MemoryTypeInteraction = assistant.MemoryTypeInteraction
)

type User = assistant.User
type Conversation = assistant.Conversation
type ContextMessage = assistant.ContextMessage
type UserContext = assistant.UserContext
type UserMemory = assistant.UserMemory

var (
	NewUser        = assistant.NewUser
	NewUserContext = assistant.NewUserContext
	NewUserMemory  = assistant.NewUserMemory
	FormatISO      = assistant.FormatISO
	ParseISO       = assistant.ParseISO
)

// Models lists every persisted type in dependency order (parents first).
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Conversation{},
		&UserContext{},
		&UserMemory{},
	}
}
