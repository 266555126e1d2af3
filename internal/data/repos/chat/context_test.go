package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/assistant-store/internal/data/repos/testutil"
	"github.com/yungbote/assistant-store/internal/platform/dbctx"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
)

func TestUserContextRepo_GetOrCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserContextRepo(db, testutil.Logger(t))

	userID := testutil.UserID()
	testutil.SeedUser(t, ctx, tx, userID)

	if got, err := repo.GetByUserID(dbc, userID); err != nil || got != nil {
		t.Fatalf("GetByUserID before create: got=%v err=%v", got, err)
	}

	uc, err := repo.GetOrCreate(dbc, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if uc.ContextWindow != 10 || uc.RepetitionThreshold != 0.8 || len(uc.ContextMessages) != 0 {
		t.Fatalf("unexpected defaults: %+v", uc)
	}

	again, err := repo.GetOrCreate(dbc, userID)
	if err != nil || again.UserID != userID {
		t.Fatalf("second GetOrCreate: got=%v err=%v", again, err)
	}
	var n int64
	tx.Table("user_context").Where("user_id = ?", userID).Count(&n)
	if n != 1 {
		t.Fatalf("expected one context row, got %d", n)
	}
}

func TestUserContextRepo_AppendMessageKeepsWindow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserContextRepo(db, testutil.Logger(t))

	userID := testutil.UserID()
	testutil.SeedUser(t, ctx, tx, userID)

	if _, err := repo.GetOrCreate(dbc, userID); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if err := repo.UpdateFields(dbc, userID, map[string]interface{}{
		"context_window":     3,
		"preferred_language": "es",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	for i := 0; i < 5; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if _, err := repo.AppendMessage(dbc, userID, role, fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}

	stored, err := repo.GetByUserID(dbc, userID)
	if err != nil || stored == nil {
		t.Fatalf("GetByUserID: got=%v err=%v", stored, err)
	}
	if len(stored.ContextMessages) != 3 {
		t.Fatalf("expected 3 stored messages, got %d", len(stored.ContextMessages))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if stored.ContextMessages[i].Content != want {
			t.Fatalf("message %d = %q, want %q", i, stored.ContextMessages[i].Content, want)
		}
	}
	if stored.PreferredLanguage == nil || *stored.PreferredLanguage != "es" {
		t.Fatalf("preferred_language not persisted: %v", stored.PreferredLanguage)
	}
}

func TestUserContextRepo_AppendMessageCreatesContext(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserContextRepo(db, testutil.Logger(t))

	userID := testutil.UserID()
	testutil.SeedUser(t, ctx, tx, userID)

	uc, err := repo.AppendMessage(dbc, userID, "user", "Hola")
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if len(uc.ContextMessages) != 1 || uc.ContextMessages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", uc.ContextMessages)
	}
}

func TestUserContextRepo_AddTopic(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserContextRepo(db, testutil.Logger(t))

	userID := testutil.UserID()
	testutil.SeedUser(t, ctx, tx, userID)

	for _, topic := range []string{"travel", "food", "travel"} {
		if _, err := repo.AddTopic(dbc, userID, topic); err != nil {
			t.Fatalf("AddTopic(%s): %v", topic, err)
		}
	}
	stored, _ := repo.GetByUserID(dbc, userID)
	if len(stored.ConversationTopics) != 2 {
		t.Fatalf("expected 2 distinct topics, got %v", stored.ConversationTopics)
	}
	if _, err := repo.AddTopic(dbc, userID, " "); !dberr.IsCode(err, dberr.CodeValidation) {
		t.Fatalf("expected validation error for blank topic, got %v", err)
	}
}

func TestUserContextRepo_UnknownUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserContextRepo(db, testutil.Logger(t))

	_, err := repo.GetOrCreate(dbc, "+19999999999")
	if !dberr.IsCode(err, dberr.CodeForeignKeyViolation) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}
