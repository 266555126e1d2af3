package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/assistant-store/internal/data/repos"
	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

const DefaultSnapshotLimit = 20

// UserSnapshot is everything the assistant needs to answer one message. Context is
// nil when the user has never had one.
type UserSnapshot struct {
	User          *types.User              `json:"user"`
	Conversations []map[string]interface{} `json:"conversations"`
	Context       *types.UserContext       `json:"context"`
	Memories      []*types.UserMemory      `json:"memories"`
}

type SnapshotService interface {
	Load(ctx context.Context, userID string, limit int) (*UserSnapshot, error)
}

type snapshotService struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	convRepo    repos.ConversationRepo
	contextRepo repos.UserContextRepo
	memoryRepo  repos.UserMemoryRepo
}

func NewSnapshotService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	convRepo repos.ConversationRepo,
	contextRepo repos.UserContextRepo,
	memoryRepo repos.UserMemoryRepo,
) SnapshotService {
	return &snapshotService{
		log:         log.With("service", "SnapshotService"),
		userRepo:    userRepo,
		convRepo:    convRepo,
		contextRepo: contextRepo,
		memoryRepo:  memoryRepo,
	}
}

// Load reads the four parts concurrently outside any transaction. limit bounds both
// the recent conversations and the active memories; <= 0 means DefaultSnapshotLimit.
func (s *snapshotService) Load(ctx context.Context, userID string, limit int) (*UserSnapshot, error) {
	userID = normalizeUserID(userID)
	if userID == "" {
		return nil, dberr.Validation("snapshot.load", "missing user_id")
	}
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}

	var (
		user     *types.User
		convs    []*types.Conversation
		uc       *types.UserContext
		memories []*types.UserMemory
	)

	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}

	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(dbc, userID)
		return err
	})
	g.Go(func() error {
		var err error
		convs, err = s.convRepo.ListRecentByUser(dbc, userID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		uc, err = s.contextRepo.GetByUserID(dbc, userID)
		return err
	})
	g.Go(func() error {
		var err error
		memories, err = s.memoryRepo.ListActiveByUser(dbc, userID, nil, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dberr.NotFound("snapshot.load", "user not found")
	}

	out := &UserSnapshot{
		User:          user,
		Conversations: make([]map[string]interface{}, 0, len(convs)),
		Context:       uc,
		Memories:      memories,
	}
	for _, c := range convs {
		out.Conversations = append(out.Conversations, c.ToMap())
	}
	if out.Memories == nil {
		out.Memories = []*types.UserMemory{}
	}

	if len(memories) > 0 {
		ids := make([]int64, 0, len(memories))
		for _, m := range memories {
			ids = append(ids, m.ID)
		}
		if err := s.memoryRepo.MarkAccessed(dbctx.Context{Ctx: ctx}, ids, time.Now().UTC()); err != nil {
			s.log.Warn("mark memories accessed failed", "user_id", userID, "error", err)
		}
	}
	return out, nil
}
