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

type ConversationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Conversation, error)
	ListRecentByUser(dbc dbctx.Context, userID string, limit int) ([]*types.Conversation, error)
	ListByTopic(dbc dbctx.Context, userID, topic string, limit int) ([]*types.Conversation, error)
	CountByUser(dbc dbctx.Context, userID string) (int64, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{
		db:  db,
		log: log.With("repo", "ConversationRepo"),
	}
}

// Create stamps rows without a timestamp with the current time. Rows missing the
// user id, message, response or language are refused before reaching storage.
func (r *conversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	if len(rows) == 0 {
		return []*types.Conversation{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if err := validateConversation(row); err != nil {
			return nil, err
		}
		if row.Timestamp == nil {
			ts := now
			row.Timestamp = &ts
		}
	}
	if err := dbc.Conn(r.db).Create(&rows).Error; err != nil {
		return nil, dberr.Map("conversations.create", err)
	}
	return rows, nil
}

func validateConversation(row *types.Conversation) error {
	const op = "conversations.create"
	switch {
	case row == nil:
		return dberr.Validation(op, "nil conversation")
	case strings.TrimSpace(row.UserID) == "":
		return dberr.Validation(op, "missing user_id")
	case row.Message == "":
		return dberr.Validation(op, "missing message")
	case row.Response == "":
		return dberr.Validation(op, "missing response")
	case row.Language == "":
		return dberr.Validation(op, "missing language")
	}
	return nil
}

func (r *conversationRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Conversation, error) {
	var results []*types.Conversation
	if len(ids) == 0 {
		return results, nil
	}
	if err := dbc.Conn(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, dberr.Map("conversations.get_by_ids", err)
	}
	return results, nil
}

// ListRecentByUser returns newest first. limit <= 0 means no limit.
func (r *conversationRepo) ListRecentByUser(dbc dbctx.Context, userID string, limit int) ([]*types.Conversation, error) {
	var results []*types.Conversation
	if userID == "" {
		return results, nil
	}
	q := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, dberr.Map("conversations.list_recent", err)
	}
	return results, nil
}

func (r *conversationRepo) ListByTopic(dbc dbctx.Context, userID, topic string, limit int) ([]*types.Conversation, error) {
	var results []*types.Conversation
	if userID == "" || topic == "" {
		return results, nil
	}
	q := dbc.Conn(r.db).
		Where("user_id = ? AND topic = ?", userID, topic).
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, dberr.Map("conversations.list_by_topic", err)
	}
	return results, nil
}

func (r *conversationRepo) CountByUser(dbc dbctx.Context, userID string) (int64, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(&types.Conversation{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, dberr.Map("conversations.count", err)
	}
	return count, nil
}
