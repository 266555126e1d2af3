package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assistant-store/internal/clients/redis"
	datadb "github.com/yungbote/assistant-store/internal/data/db"
	"github.com/yungbote/assistant-store/internal/data/repos"
	"github.com/yungbote/assistant-store/internal/data/repos/testutil"
	httpH "github.com/yungbote/assistant-store/internal/http/handlers"
	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	convRepo := repos.NewConversationRepo(db, log)
	contextRepo := repos.NewUserContextRepo(db, log)
	memoryRepo := repos.NewUserMemoryRepo(db, log)
	cache := redis.NewNopContextCache()

	userSvc := services.NewUserService(db, log, userRepo)
	snapSvc := services.NewSnapshotService(log, userRepo, convRepo, contextRepo, memoryRepo)
	convSvc := services.NewConversationService(db, log, userRepo, convRepo, contextRepo, cache)
	ctxSvc := services.NewContextService(db, log, contextRepo, cache)
	memSvc := services.NewMemoryService(datadb.NewGormTxRunner(db), log, memoryRepo)

	return NewRouter(RouterConfig{
		Log:                 log,
		Metrics:             observability.NewMetrics(observability.MetricsConfig{Enabled: true}),
		HealthHandler:       httpH.NewHealthHandler(nil),
		UserHandler:         httpH.NewUserHandler(userSvc, snapSvc),
		ConversationHandler: httpH.NewConversationHandler(convSvc),
		ContextHandler:      httpH.NewContextHandler(ctxSvc),
		MemoryHandler:       httpH.NewMemoryHandler(memSvc),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func TestRouter_Healthcheck(t *testing.T) {
	r := newTestRouter(t)
	rec, _ := do(t, r, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_ConversationFlow(t *testing.T) {
	r := newTestRouter(t)
	base := "/api/users/" + testutil.UserID()

	if rec, body := do(t, r, http.MethodGet, base, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("GET unknown user: %d %v", rec.Code, body)
	}
	if rec, body := do(t, r, http.MethodPost, base+"/conversations", map[string]interface{}{
		"message": "hi", "response": "hello", "language": "en",
	}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("POST conversation for unknown user: %d %v", rec.Code, body)
	}

	if rec, body := do(t, r, http.MethodPost, base+"/touch", nil); rec.Code != http.StatusOK {
		t.Fatalf("touch: %d %v", rec.Code, body)
	}

	rec, body := do(t, r, http.MethodPost, base+"/conversations", map[string]interface{}{
		"message":    "Hola",
		"response":   "¡Hola! ¿En qué puedo ayudarte?",
		"language":   "es",
		"timestamp":  "2024-03-01T10:00:00Z",
		"num_tokens": 12,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create conversation: %d %v", rec.Code, body)
	}
	conv := body["conversation"].(map[string]interface{})
	if conv["timestamp"] != "2024-03-01T10:00:00+00:00" || conv["num_tokens"] != float64(12) {
		t.Fatalf("unexpected conversation map: %v", conv)
	}

	if rec, body := do(t, r, http.MethodPost, base+"/conversations", map[string]interface{}{
		"message": "", "response": "r", "language": "en",
	}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty message: %d %v", rec.Code, body)
	}

	rec, body = do(t, r, http.MethodGet, base+"/conversations?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list conversations: %d %v", rec.Code, body)
	}
	if convs := body["conversations"].([]interface{}); len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %v", convs)
	}
	if rec, _ := do(t, r, http.MethodGet, base+"/conversations?limit=abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: %d", rec.Code)
	}

	for _, msg := range []map[string]string{
		{"role": "user", "content": "Hola"},
		{"role": "assistant", "content": "¡Hola!"},
	} {
		if rec, body := do(t, r, http.MethodPost, base+"/context/messages", msg); rec.Code != http.StatusOK {
			t.Fatalf("append message: %d %v", rec.Code, body)
		}
	}
	rec, body = do(t, r, http.MethodGet, base+"/context", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get context: %d %v", rec.Code, body)
	}
	ctxBody := body["context"].(map[string]interface{})
	if msgs := ctxBody["context_messages"].([]interface{}); len(msgs) != 2 {
		t.Fatalf("expected 2 context messages, got %v", msgs)
	}

	rec, body = do(t, r, http.MethodGet, base+"/snapshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot: %d %v", rec.Code, body)
	}
	if body["context"] == nil || len(body["conversations"].([]interface{})) != 1 {
		t.Fatalf("unexpected snapshot: %v", body)
	}
}

func TestRouter_Memories(t *testing.T) {
	r := newTestRouter(t)
	base := "/api/users/" + testutil.UserID()
	if rec, _ := do(t, r, http.MethodPost, base+"/touch", nil); rec.Code != http.StatusOK {
		t.Fatalf("touch: %d", rec.Code)
	}

	rec, body := do(t, r, http.MethodPost, base+"/memories", map[string]interface{}{
		"memory_type": "fact", "content": "has two cats",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create memory: %d %v", rec.Code, body)
	}
	mem := body["memory"].(map[string]interface{})
	if mem["importance"] != 1.0 || mem["is_active"] != true {
		t.Fatalf("unexpected memory defaults: %v", mem)
	}
	id := int64(mem["id"].(float64))
	memPath := base + "/memories/" + jsonNumber(id)

	if rec, body := do(t, r, http.MethodPatch, memPath, map[string]interface{}{"importance": 3.5}); rec.Code != http.StatusOK {
		t.Fatalf("update importance: %d %v", rec.Code, body)
	}

	rec, body = do(t, r, http.MethodGet, base+"/memories?type=fact,preference", nil)
	if rec.Code != http.StatusOK || len(body["memories"].([]interface{})) != 1 {
		t.Fatalf("list memories: %d %v", rec.Code, body)
	}

	if rec, body := do(t, r, http.MethodDelete, memPath, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete memory: %d %v", rec.Code, body)
	}
	if rec, _ := do(t, r, http.MethodDelete, memPath, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
	if rec, _ := do(t, r, http.MethodDelete, base+"/memories/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad memory id: %d", rec.Code)
	}

	rec, body = do(t, r, http.MethodGet, base+"/memories", nil)
	if rec.Code != http.StatusOK || len(body["memories"].([]interface{})) != 0 {
		t.Fatalf("expected no active memories: %d %v", rec.Code, body)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodGet, "/healthcheck", nil)
	rec, _ := do(t, r, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `route="/healthcheck"`) {
		t.Fatalf("metrics: %d\n%s", rec.Code, rec.Body.String())
	}
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
