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

type UserService interface {
	Get(ctx context.Context, userID string) (*types.User, error)
	// Touch registers first contact (creating the user if needed) and bumps last_active.
	Touch(ctx context.Context, userID string) (*types.User, error)
	UpdatePreferences(ctx context.Context, userID string, prefs map[string]interface{}) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
	}
}

func (us *userService) Get(ctx context.Context, userID string) (*types.User, error) {
	u, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, normalizeUserID(userID))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, dberr.NotFound("users.get", "user not found")
	}
	return u, nil
}

func (us *userService) Touch(ctx context.Context, userID string) (*types.User, error) {
	userID = normalizeUserID(userID)
	var out *types.User
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		u, created, err := us.userRepo.GetOrCreate(dbc, userID)
		if err != nil {
			return err
		}
		if !created {
			now := time.Now().UTC()
			if err := us.userRepo.TouchLastActive(dbc, userID, now); err != nil {
				return err
			}
			u.LastActive = now
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (us *userService) UpdatePreferences(ctx context.Context, userID string, prefs map[string]interface{}) (*types.User, error) {
	userID = normalizeUserID(userID)
	dbc := dbctx.Context{Ctx: ctx}
	if err := us.userRepo.UpdatePreferences(dbc, userID, prefs); err != nil {
		return nil, err
	}
	return us.Get(ctx, userID)
}

func normalizeUserID(id string) string {
	return strings.TrimSpace(id)
}
