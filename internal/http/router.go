package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/assistant-store/internal/http/handlers"
	httpMW "github.com/yungbote/assistant-store/internal/http/middleware"
	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	HealthHandler       *httpH.HealthHandler
	UserHandler         *httpH.UserHandler
	ConversationHandler *httpH.ConversationHandler
	ContextHandler      *httpH.ContextHandler
	MemoryHandler       *httpH.MemoryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	users := r.Group("/api/users/:id")
	users.Use(httpMW.AttachUser("id"))
	{
		// User
		if cfg.UserHandler != nil {
			users.GET("", cfg.UserHandler.GetUser)
			users.POST("/touch", cfg.UserHandler.Touch)
			users.PUT("/preferences", cfg.UserHandler.UpdatePreferences)
			users.GET("/snapshot", cfg.UserHandler.Snapshot)
		}

		// Conversations
		if cfg.ConversationHandler != nil {
			users.GET("/conversations", cfg.ConversationHandler.List)
			users.POST("/conversations", cfg.ConversationHandler.Create)
		}

		// Context window
		if cfg.ContextHandler != nil {
			users.GET("/context", cfg.ContextHandler.Get)
			users.POST("/context/messages", cfg.ContextHandler.AppendMessage)
			users.POST("/context/topics", cfg.ContextHandler.AddTopic)
		}

		// Memories
		if cfg.MemoryHandler != nil {
			users.GET("/memories", cfg.MemoryHandler.List)
			users.POST("/memories", cfg.MemoryHandler.Create)
			users.PATCH("/memories/:memoryID", cfg.MemoryHandler.UpdateImportance)
			users.DELETE("/memories/:memoryID", cfg.MemoryHandler.Delete)
		}
	}

	return r
}
