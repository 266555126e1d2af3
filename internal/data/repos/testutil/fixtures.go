package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/assistant-store/internal/domain"
)

// UserID returns a phone-number style id unique to this run.
func UserID() string {
	return "+1555" + uuid.NewString()[:8]
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, id string) *types.User {
	tb.Helper()
	u := types.NewUser(id)
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, message string, at time.Time) *types.Conversation {
	tb.Helper()
	c := &types.Conversation{
		UserID:    userID,
		Message:   message,
		Response:  "re: " + message,
		Language:  "en",
		Timestamp: PtrTime(at.UTC()),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed conversation: %v", err)
	}
	return c
}

func SeedMemory(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, memoryType, content string, importance float64) *types.UserMemory {
	tb.Helper()
	m := types.NewUserMemory(userID, memoryType, content)
	m.Importance = importance
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed memory: %v", err)
	}
	return m
}

func SeedContext(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string) *types.UserContext {
	tb.Helper()
	uc := types.NewUserContext(userID)
	if err := tx.WithContext(ctx).Create(uc).Error; err != nil {
		tb.Fatalf("seed context: %v", err)
	}
	return uc
}

func PtrString(v string) *string { return &v }

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
