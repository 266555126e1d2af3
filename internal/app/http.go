package app

import (
	"database/sql"

	"github.com/yungbote/assistant-store/internal/http"
	httpH "github.com/yungbote/assistant-store/internal/http/handlers"
	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	User         *httpH.UserHandler
	Conversation *httpH.ConversationHandler
	Context      *httpH.ContextHandler
	Memory       *httpH.MemoryHandler
}

func wireHandlers(log *logger.Logger, sqlDB *sql.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:       httpH.NewHealthHandler(pinger),
		User:         httpH.NewUserHandler(services.User, services.Snapshot),
		Conversation: httpH.NewConversationHandler(services.Conversation),
		Context:      httpH.NewContextHandler(services.Context),
		Memory:       httpH.NewMemoryHandler(services.Memory),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	routerCfg := http.RouterConfig{
		Log:                 log,
		CORSOrigins:         cfg.CORSOrigins,
		Metrics:             metrics,
		HealthHandler:       handlers.Health,
		UserHandler:         handlers.User,
		ConversationHandler: handlers.Conversation,
		ContextHandler:      handlers.Context,
		MemoryHandler:       handlers.Memory,
	}
	if cfg.OTel.Enabled {
		routerCfg.ServiceName = cfg.ServiceName
	}
	return http.NewServer(cfg.HTTPAddr, routerCfg)
}
