package chat

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type UserContextRepo interface {
	GetByUserID(dbc dbctx.Context, userID string) (*types.UserContext, error)
	GetOrCreate(dbc dbctx.Context, userID string) (*types.UserContext, error)
	Save(dbc dbctx.Context, row *types.UserContext) error
	AppendMessage(dbc dbctx.Context, userID, role, content string) (*types.UserContext, error)
	AddTopic(dbc dbctx.Context, userID, topic string) (*types.UserContext, error)
	UpdateFields(dbc dbctx.Context, userID string, updates map[string]interface{}) error
}

type userContextRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserContextRepo(db *gorm.DB, log *logger.Logger) UserContextRepo {
	return &userContextRepo{
		db:  db,
		log: log.With("repo", "UserContextRepo"),
	}
}

// GetByUserID returns nil, nil when the user has no context yet.
func (r *userContextRepo) GetByUserID(dbc dbctx.Context, userID string) (*types.UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, dberr.Validation("user_context.get", "missing user_id")
	}
	var out types.UserContext
	err := dbc.Conn(r.db).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Map("user_context.get", err)
	}
	return &out, nil
}

// GetOrCreate lazily creates the context with column defaults. The owning user must
// already exist.
func (r *userContextRepo) GetOrCreate(dbc dbctx.Context, userID string) (*types.UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, dberr.Validation("user_context.get_or_create", "missing user_id")
	}
	row := types.NewUserContext(userID)
	res := dbc.Conn(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, dberr.Map("user_context.get_or_create", res.Error)
	}
	if res.RowsAffected == 1 {
		return row, nil
	}
	ex, err := r.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if ex == nil {
		return nil, dberr.NotFound("user_context.get_or_create", "context vanished after conflict")
	}
	return ex, nil
}

func (r *userContextRepo) Save(dbc dbctx.Context, row *types.UserContext) error {
	if row == nil || strings.TrimSpace(row.UserID) == "" {
		return dberr.Validation("user_context.save", "missing user_id")
	}
	if row.LastUpdated.IsZero() {
		row.LastUpdated = time.Now().UTC()
	}
	if err := dbc.Conn(r.db).Save(row).Error; err != nil {
		return dberr.Map("user_context.save", err)
	}
	return nil
}

// AppendMessage adds one turn to the user's window and persists it, creating the
// context first if needed. On Postgres the row is locked for the read-modify-write.
func (r *userContextRepo) AppendMessage(dbc dbctx.Context, userID, role, content string) (*types.UserContext, error) {
	var out *types.UserContext
	err := r.mutate(dbc, "user_context.append", userID, func(row *types.UserContext) map[string]interface{} {
		row.AddMessage(role, content)
		out = row
		return map[string]interface{}{"context_messages": row.ContextMessages}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userContextRepo) AddTopic(dbc dbctx.Context, userID, topic string) (*types.UserContext, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, dberr.Validation("user_context.add_topic", "missing topic")
	}
	var out *types.UserContext
	err := r.mutate(dbc, "user_context.add_topic", userID, func(row *types.UserContext) map[string]interface{} {
		out = row
		if !row.AddTopic(topic) {
			return nil
		}
		return map[string]interface{}{"conversation_topics": row.ConversationTopics}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userContextRepo) UpdateFields(dbc dbctx.Context, userID string, updates map[string]interface{}) error {
	if strings.TrimSpace(userID) == "" {
		return dberr.Validation("user_context.update", "missing user_id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["last_updated"] = time.Now().UTC()
	res := dbc.Conn(r.db).
		Model(&types.UserContext{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return dberr.Map("user_context.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound("user_context.update", "context not found")
	}
	return nil
}

// mutate loads (or creates) the context inside a transaction, applies fn and writes
// back the columns fn returns. A nil map means nothing changed.
func (r *userContextRepo) mutate(dbc dbctx.Context, op, userID string, fn func(row *types.UserContext) map[string]interface{}) error {
	if strings.TrimSpace(userID) == "" {
		return dberr.Validation(op, "missing user_id")
	}
	return dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		if _, err := r.GetOrCreate(inner, userID); err != nil {
			return err
		}

		q := tx.Where("user_id = ?", userID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var row types.UserContext
		if err := q.First(&row).Error; err != nil {
			return dberr.Map(op, err)
		}

		updates := fn(&row)
		if updates == nil {
			return nil
		}
		row.LastUpdated = time.Now().UTC()
		updates["last_updated"] = row.LastUpdated
		if err := tx.Model(&types.UserContext{}).
			Where("user_id = ?", userID).
			Updates(updates).Error; err != nil {
			return dberr.Map(op, err)
		}
		return nil
	})
}
