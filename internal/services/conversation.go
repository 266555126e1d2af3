package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/assistant-store/internal/data/repos"
	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type ConversationInput struct {
	Message         string                 `json:"message"`
	Response        string                 `json:"response"`
	Language        string                 `json:"language"`
	Timestamp       *time.Time             `json:"timestamp,omitempty"`
	MessageMetadata map[string]interface{} `json:"message_metadata,omitempty"`
	Embedding       []float64              `json:"embedding,omitempty"`
	Topic           *string                `json:"topic,omitempty"`
	NumTokens       *int                   `json:"num_tokens,omitempty"`
}

type ConversationService interface {
	// Record stores one exchange for an existing user, bumps last_active and adds the
	// topic (if any) to the user's context.
	Record(ctx context.Context, userID string, in ConversationInput) (*types.Conversation, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]map[string]interface{}, error)
	ListByTopic(ctx context.Context, userID, topic string, limit int) ([]map[string]interface{}, error)
	Count(ctx context.Context, userID string) (int64, error)
}

type conversationService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	convRepo    repos.ConversationRepo
	contextRepo repos.UserContextRepo
	cache       ContextInvalidator
}

// ContextInvalidator is the slice of the context cache Record needs.
type ContextInvalidator interface {
	Invalidate(ctx context.Context, userID string, version time.Time) error
}

func NewConversationService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	convRepo repos.ConversationRepo,
	contextRepo repos.UserContextRepo,
	cache ContextInvalidator,
) ConversationService {
	return &conversationService{
		db:          db,
		log:         log.With("service", "ConversationService"),
		userRepo:    userRepo,
		convRepo:    convRepo,
		contextRepo: contextRepo,
		cache:       cache,
	}
}

func (s *conversationService) Record(ctx context.Context, userID string, in ConversationInput) (*types.Conversation, error) {
	userID = normalizeUserID(userID)
	row := &types.Conversation{
		UserID:          userID,
		Message:         in.Message,
		Response:        in.Response,
		Language:        strings.TrimSpace(in.Language),
		Timestamp:       in.Timestamp,
		MessageMetadata: in.MessageMetadata,
		Embedding:       in.Embedding,
		Topic:           trimmedOrNil(in.Topic),
		NumTokens:       in.NumTokens,
	}

	var uc *types.UserContext
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.convRepo.Create(dbc, []*types.Conversation{row}); err != nil {
			return err
		}
		if err := s.userRepo.TouchLastActive(dbc, userID, time.Now()); err != nil {
			return err
		}
		if row.Topic != nil {
			var err error
			if uc, err = s.contextRepo.AddTopic(dbc, userID, *row.Topic); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if uc != nil && s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID, uc.LastUpdated); err != nil {
			s.log.Warn("context cache invalidate failed", "user_id", userID, "error", err)
		}
	}
	return row, nil
}

func (s *conversationService) ListRecent(ctx context.Context, userID string, limit int) ([]map[string]interface{}, error) {
	rows, err := s.convRepo.ListRecentByUser(dbctx.Context{Ctx: ctx}, normalizeUserID(userID), limit)
	if err != nil {
		return nil, err
	}
	return conversationMaps(rows), nil
}

func (s *conversationService) ListByTopic(ctx context.Context, userID, topic string, limit int) ([]map[string]interface{}, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, dberr.Validation("conversations.list_by_topic", "missing topic")
	}
	rows, err := s.convRepo.ListByTopic(dbctx.Context{Ctx: ctx}, normalizeUserID(userID), topic, limit)
	if err != nil {
		return nil, err
	}
	return conversationMaps(rows), nil
}

func (s *conversationService) Count(ctx context.Context, userID string) (int64, error) {
	return s.convRepo.CountByUser(dbctx.Context{Ctx: ctx}, normalizeUserID(userID))
}

func conversationMaps(rows []*types.Conversation) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToMap())
	}
	return out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
