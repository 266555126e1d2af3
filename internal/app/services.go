package app

import (
	"gorm.io/gorm"

	datadb "github.com/yungbote/assistant-store/internal/data/db"
	"github.com/yungbote/assistant-store/internal/platform/logger"
	"github.com/yungbote/assistant-store/internal/services"
)

type Services struct {
	User         services.UserService
	Conversation services.ConversationService
	Context      services.ContextService
	Memory       services.MemoryService
	Snapshot     services.SnapshotService
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")
	return Services{
		User:         services.NewUserService(db, log, repos.User),
		Conversation: services.NewConversationService(db, log, repos.User, repos.Conversation, repos.UserContext, clients.ContextCache),
		Context:      services.NewContextService(db, log, repos.UserContext, clients.ContextCache),
		Memory:       services.NewMemoryService(datadb.NewGormTxRunner(db), log, repos.UserMemory),
		Snapshot:     services.NewSnapshotService(log, repos.User, repos.Conversation, repos.UserContext, repos.UserMemory),
	}
}
