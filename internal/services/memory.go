package services

import (
	"context"
	"strings"

	"github.com/yungbote/assistant-store/internal/data/db"
	"github.com/yungbote/assistant-store/internal/data/repos"
	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type MemoryInput struct {
	MemoryType     string                 `json:"memory_type"`
	Content        string                 `json:"content"`
	Importance     *float64               `json:"importance,omitempty"`
	MemoryMetadata map[string]interface{} `json:"memory_metadata,omitempty"`
	Embedding      []float64              `json:"embedding,omitempty"`
}

type MemoryService interface {
	Remember(ctx context.Context, userID string, in MemoryInput) (*types.UserMemory, error)
	ListActive(ctx context.Context, userID string, memoryTypes []string, limit int) ([]*types.UserMemory, error)
	// Forget deactivates one memory; the row is kept.
	Forget(ctx context.Context, userID string, memoryID int64) error
	SetImportance(ctx context.Context, userID string, memoryID int64, importance float64) (*types.UserMemory, error)
}

type memoryService struct {
	tx         db.TxRunner
	log        *logger.Logger
	memoryRepo repos.UserMemoryRepo
}

func NewMemoryService(tx db.TxRunner, log *logger.Logger, memoryRepo repos.UserMemoryRepo) MemoryService {
	return &memoryService{
		tx:         tx,
		log:        log.With("service", "MemoryService"),
		memoryRepo: memoryRepo,
	}
}

func (s *memoryService) Remember(ctx context.Context, userID string, in MemoryInput) (*types.UserMemory, error) {
	m := types.NewUserMemory(normalizeUserID(userID), strings.TrimSpace(in.MemoryType), in.Content)
	if in.Importance != nil {
		m.Importance = *in.Importance
	}
	if in.MemoryMetadata != nil {
		m.MemoryMetadata = in.MemoryMetadata
	}
	m.Embedding = in.Embedding

	var created *types.UserMemory
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		rows, err := s.memoryRepo.Create(dbc, []*types.UserMemory{m})
		if err != nil {
			return err
		}
		created = rows[0]
		// A requested importance of exactly zero is stored by a follow-up update in the
		// same transaction, since the insert substitutes the column default.
		if in.Importance != nil && *in.Importance == 0 {
			if err := s.memoryRepo.UpdateImportance(dbc, created.ID, 0); err != nil {
				return err
			}
			created.Importance = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *memoryService) ListActive(ctx context.Context, userID string, memoryTypes []string, limit int) ([]*types.UserMemory, error) {
	return s.memoryRepo.ListActiveByUser(dbctx.Context{Ctx: ctx}, normalizeUserID(userID), memoryTypes, limit)
}

func (s *memoryService) Forget(ctx context.Context, userID string, memoryID int64) error {
	n, err := s.memoryRepo.Deactivate(dbctx.Context{Ctx: ctx}, normalizeUserID(userID), []int64{memoryID})
	if err != nil {
		return err
	}
	if n == 0 {
		return dberr.NotFound("user_memories.deactivate", "no active memory with that id")
	}
	return nil
}

func (s *memoryService) SetImportance(ctx context.Context, userID string, memoryID int64, importance float64) (*types.UserMemory, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.memoryRepo.GetByIDs(dbc, []int64{memoryID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].UserID != normalizeUserID(userID) {
		return nil, dberr.NotFound("user_memories.update_importance", "memory not found")
	}
	if err := s.memoryRepo.UpdateImportance(dbc, memoryID, importance); err != nil {
		return nil, err
	}
	rows[0].Importance = importance
	return rows[0], nil
}
