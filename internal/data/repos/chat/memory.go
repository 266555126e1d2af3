package chat

import (
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type UserMemoryRepo interface {
	// Create always inserts active rows: IsActive=false cannot be told apart from
	// unset and is coerced to true. Use Deactivate to retire a memory. A zero
	// Importance takes the column default.
	Create(dbc dbctx.Context, rows []*types.UserMemory) ([]*types.UserMemory, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.UserMemory, error)
	ListActiveByUser(dbc dbctx.Context, userID string, memoryTypes []string, limit int) ([]*types.UserMemory, error)
	MarkAccessed(dbc dbctx.Context, ids []int64, at time.Time) error
	Deactivate(dbc dbctx.Context, userID string, ids []int64) (int64, error)
	UpdateImportance(dbc dbctx.Context, id int64, importance float64) error
}

type userMemoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserMemoryRepo(db *gorm.DB, log *logger.Logger) UserMemoryRepo {
	return &userMemoryRepo{
		db:  db,
		log: log.With("repo", "UserMemoryRepo"),
	}
}

func (r *userMemoryRepo) Create(dbc dbctx.Context, rows []*types.UserMemory) ([]*types.UserMemory, error) {
	const op = "user_memories.create"
	if len(rows) == 0 {
		return []*types.UserMemory{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		switch {
		case row == nil:
			return nil, dberr.Validation(op, "nil memory")
		case strings.TrimSpace(row.UserID) == "":
			return nil, dberr.Validation(op, "missing user_id")
		case strings.TrimSpace(row.MemoryType) == "":
			return nil, dberr.Validation(op, "missing memory_type")
		case row.Content == "":
			return nil, dberr.Validation(op, "missing content")
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if row.LastAccessed.IsZero() {
			row.LastAccessed = row.CreatedAt
		}
		// Zero values are replaced by the column defaults on insert; mirror that here
		// so the returned rows match what was stored.
		if row.Importance == 0 {
			row.Importance = types.DefaultImportance
		}
		row.IsActive = true
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, dberr.Map(op, err)
	}
	return rows, nil
}

func (r *userMemoryRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.UserMemory, error) {
	var results []*types.UserMemory
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.Conn(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, dberr.Map("user_memories.get_by_ids", err)
	}
	return results, nil
}

// ListActiveByUser orders by importance, then most recently accessed. An empty
// memoryTypes matches every type; limit <= 0 means no limit.
func (r *userMemoryRepo) ListActiveByUser(dbc dbctx.Context, userID string, memoryTypes []string, limit int) ([]*types.UserMemory, error) {
	var results []*types.UserMemory
	if userID == "" {
		return results, nil
	}
	q := dbc.Conn(r.db).Where("user_id = ? AND is_active = ?", userID, true)
	if len(memoryTypes) > 0 {
		q = q.Where("memory_type IN ?", memoryTypes)
	}
	q = q.Order("importance DESC").Order("last_accessed DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, dberr.Map("user_memories.list_active", err)
	}
	return results, nil
}

func (r *userMemoryRepo) MarkAccessed(dbc dbctx.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	if err := dbc.Conn(r.db).
		Model(&types.UserMemory{}).
		Where("id IN ?", ids).
		Update("last_accessed", at.UTC()).Error; err != nil {
		return dberr.Map("user_memories.mark_accessed", err)
	}
	return nil
}

// Deactivate soft-deletes the given memories of one user and reports how many rows
// changed. Rows are never removed here.
func (r *userMemoryRepo) Deactivate(dbc dbctx.Context, userID string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).
		Model(&types.UserMemory{}).
		Where("user_id = ? AND id IN ? AND is_active = ?", userID, ids, true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, dberr.Map("user_memories.deactivate", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *userMemoryRepo) UpdateImportance(dbc dbctx.Context, id int64, importance float64) error {
	res := dbc.Conn(r.db).
		Model(&types.UserMemory{}).
		Where("id = ?", id).
		Update("importance", importance)
	if res.Error != nil {
		return dberr.Map("user_memories.update_importance", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound("user_memories.update_importance", "memory not found")
	}
	return nil
}
