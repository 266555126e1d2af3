package user

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, userID string) (*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []string) ([]*types.User, error)
	GetOrCreate(dbc dbctx.Context, userID string) (*types.User, bool, error)
	TouchLastActive(dbc dbctx.Context, userID string, at time.Time) error
	UpdatePreferences(dbc dbctx.Context, userID string, prefs map[string]interface{}) error
	DeleteByIDs(dbc dbctx.Context, userIDs []string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	now := time.Now().UTC()
	for _, u := range users {
		if u == nil || strings.TrimSpace(u.ID) == "" {
			return nil, dberr.Validation("users.create", "missing user id")
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if u.LastActive.IsZero() {
			u.LastActive = u.CreatedAt
		}
	}
	if err := dbc.Conn(ur.db).Create(&users).Error; err != nil {
		return nil, dberr.Map("users.create", err)
	}
	return users, nil
}

// GetByID returns nil, nil when the user does not exist.
func (ur *userRepo) GetByID(dbc dbctx.Context, userID string) (*types.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, dberr.Validation("users.get", "missing user id")
	}
	var out types.User
	err := dbc.Conn(ur.db).Where("id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Map("users.get", err)
	}
	return &out, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []string) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, dberr.Map("users.get_by_ids", err)
	}
	return results, nil
}

// GetOrCreate is the first-contact path. The bool reports whether this call created
// the row; concurrent callers racing on the same id both get the stored user.
func (ur *userRepo) GetOrCreate(dbc dbctx.Context, userID string) (*types.User, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, dberr.Validation("users.get_or_create", "missing user id")
	}
	row := types.NewUser(userID)
	res := dbc.Conn(ur.db).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, false, dberr.Map("users.get_or_create", res.Error)
	}
	created := res.RowsAffected == 1
	if created {
		ur.log.Info("Created user on first contact", "user_id", userID)
		return row, true, nil
	}
	existing, err := ur.GetByID(dbc, userID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, dberr.NotFound("users.get_or_create", "user vanished after conflict")
	}
	return existing, false, nil
}

func (ur *userRepo) TouchLastActive(dbc dbctx.Context, userID string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	res := dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("last_active", at.UTC())
	if res.Error != nil {
		return dberr.Map("users.touch", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound("users.touch", "user not found")
	}
	return nil
}

func (ur *userRepo) UpdatePreferences(dbc dbctx.Context, userID string, prefs map[string]interface{}) error {
	res := dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("preferences", toJSONMap(prefs))
	if res.Error != nil {
		return dberr.Map("users.update_preferences", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberr.NotFound("users.update_preferences", "user not found")
	}
	return nil
}

// DeleteByIDs hard-deletes users. Conversations, context and memories go with them
// through the ON DELETE CASCADE foreign keys.
func (ur *userRepo) DeleteByIDs(dbc dbctx.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	if err := dbc.Conn(ur.db).
		Where("id IN ?", userIDs).
		Delete(&types.User{}).Error; err != nil {
		return dberr.Map("users.delete", err)
	}
	ur.log.Warn("Purged users", "count", len(userIDs))
	return nil
}

func toJSONMap(m map[string]interface{}) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}
