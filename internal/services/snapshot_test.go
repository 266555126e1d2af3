package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/assistant-store/internal/data/repos"
	"github.com/yungbote/assistant-store/internal/data/repos/testutil"
	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
)

func newSnapshotService(t *testing.T) (SnapshotService, func(string)) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewSnapshotService(
		log,
		repos.NewUserRepo(db, log),
		repos.NewConversationRepo(db, log),
		repos.NewUserContextRepo(db, log),
		repos.NewUserMemoryRepo(db, log),
	)
	seed := func(id string) {
		ctx := context.Background()
		testutil.SeedUser(t, ctx, db, id)
		base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		for i, msg := range []string{"a", "b", "c"} {
			testutil.SeedConversation(t, ctx, db, id, msg, base.Add(time.Duration(i)*time.Hour))
		}
		testutil.SeedMemory(t, ctx, db, id, types.MemoryTypeFact, "has a dog", 3)
		testutil.SeedMemory(t, ctx, db, id, types.MemoryTypePreference, "short answers", 1)
	}
	return svc, seed
}

func TestSnapshotService_Load(t *testing.T) {
	svc, seed := newSnapshotService(t)
	id := testutil.UserID()
	seed(id)

	snap, err := svc.Load(context.Background(), id, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.User == nil || snap.User.ID != id {
		t.Fatalf("unexpected user: %+v", snap.User)
	}
	if len(snap.Conversations) != 2 || snap.Conversations[0]["message"] != "c" {
		t.Fatalf("expected two newest conversations, got %v", snap.Conversations)
	}
	if snap.Conversations[0]["timestamp"] != "2024-01-01T11:00:00+00:00" {
		t.Fatalf("unexpected timestamp rendering: %v", snap.Conversations[0]["timestamp"])
	}
	if snap.Context != nil {
		t.Fatalf("expected no context before first use, got %+v", snap.Context)
	}
	if len(snap.Memories) != 2 || snap.Memories[0].Content != "has a dog" {
		t.Fatalf("unexpected memories: %+v", snap.Memories)
	}
}

func TestSnapshotService_UnknownUser(t *testing.T) {
	svc, _ := newSnapshotService(t)
	if _, err := svc.Load(context.Background(), "+10000000000", 0); !dberr.IsCode(err, dberr.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if _, err := svc.Load(context.Background(), " ", 0); !dberr.IsCode(err, dberr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
