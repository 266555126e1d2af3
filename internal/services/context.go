package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/assistant-store/internal/clients/redis"
	"github.com/yungbote/assistant-store/internal/data/repos"
	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

// ContextService reads through the cache and invalidates it after every committed
// write. Only reads fill the cache, and the cache drops fills older than the last
// invalidation, so a slow reader cannot pin a replaced window.
type ContextService interface {
	// Get returns the user's context, creating and persisting it with defaults on first
	// use. The owning user must exist.
	Get(ctx context.Context, userID string) (*types.UserContext, error)
	AppendMessage(ctx context.Context, userID, role, content string) (*types.UserContext, error)
	AddTopic(ctx context.Context, userID, topic string) (*types.UserContext, error)
}

type contextService struct {
	db          *gorm.DB
	log         *logger.Logger
	contextRepo repos.UserContextRepo
	cache       redis.ContextCache
}

func NewContextService(db *gorm.DB, log *logger.Logger, contextRepo repos.UserContextRepo, cache redis.ContextCache) ContextService {
	if cache == nil {
		cache = redis.NewNopContextCache()
	}
	return &contextService{
		db:          db,
		log:         log.With("service", "ContextService"),
		contextRepo: contextRepo,
		cache:       cache,
	}
}

func (s *contextService) Get(ctx context.Context, userID string) (*types.UserContext, error) {
	userID = normalizeUserID(userID)
	if userID == "" {
		return nil, dberr.Validation("user_context.get", "missing user_id")
	}
	m := observability.Current()
	cached, err := s.cache.Get(ctx, userID)
	switch {
	case err != nil:
		m.ObserveCacheLookup("error")
		s.log.Warn("context cache read failed", "user_id", userID, "error", err)
	case cached != nil:
		m.ObserveCacheLookup("hit")
		return cached, nil
	default:
		m.ObserveCacheLookup("miss")
	}

	uc, err := s.contextRepo.GetOrCreate(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, uc)
	return uc, nil
}

func (s *contextService) AppendMessage(ctx context.Context, userID, role, content string) (*types.UserContext, error) {
	userID = normalizeUserID(userID)
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, dberr.Validation("user_context.append", "missing role")
	}
	uc, err := s.contextRepo.AppendMessage(dbctx.Context{Ctx: ctx}, userID, role, content)
	if err != nil {
		s.invalidate(ctx, userID, time.Time{})
		return nil, err
	}
	s.invalidate(ctx, userID, uc.LastUpdated)
	return uc, nil
}

func (s *contextService) AddTopic(ctx context.Context, userID, topic string) (*types.UserContext, error) {
	userID = normalizeUserID(userID)
	uc, err := s.contextRepo.AddTopic(dbctx.Context{Ctx: ctx}, userID, topic)
	if err != nil {
		s.invalidate(ctx, userID, time.Time{})
		return nil, err
	}
	s.invalidate(ctx, userID, uc.LastUpdated)
	return uc, nil
}

// fill and invalidate never fail the caller; storage is the source of truth.
func (s *contextService) fill(ctx context.Context, uc *types.UserContext) {
	stored, err := s.cache.Fill(ctx, uc)
	if err != nil {
		s.log.Warn("context cache write failed", "user_id", uc.UserID, "error", err)
		return
	}
	if !stored {
		s.log.Debug("context cache fill superseded by a newer write", "user_id", uc.UserID)
	}
}

func (s *contextService) invalidate(ctx context.Context, userID string, version time.Time) {
	if err := s.cache.Invalidate(ctx, userID, version); err != nil {
		s.log.Warn("context cache invalidate failed", "user_id", userID, "error", err)
	}
}
