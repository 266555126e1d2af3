package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/assistant-store/internal/data/repos/chat"
	"github.com/yungbote/assistant-store/internal/data/repos/user"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ConversationRepo = chat.ConversationRepo
type UserContextRepo = chat.UserContextRepo
type UserMemoryRepo = chat.UserMemoryRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, baseLog)
}

func NewUserContextRepo(db *gorm.DB, baseLog *logger.Logger) UserContextRepo {
	return chat.NewUserContextRepo(db, baseLog)
}

func NewUserMemoryRepo(db *gorm.DB, baseLog *logger.Logger) UserMemoryRepo {
	return chat.NewUserMemoryRepo(db, baseLog)
}
