package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/assistant-store/internal/data/repos"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Conversation repos.ConversationRepo
	UserContext  repos.UserContextRepo
	UserMemory   repos.UserMemoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		UserContext:  repos.NewUserContextRepo(db, log),
		UserMemory:   repos.NewUserMemoryRepo(db, log),
	}
}
