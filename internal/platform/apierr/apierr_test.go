package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/assistant-store/internal/platform/dberr"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{dberr.NotFound("op", "gone"), http.StatusNotFound, "not_found"},
		{dberr.Validation("op", "bad"), http.StatusBadRequest, "validation"},
		{dberr.NewError(dberr.CodeForeignKeyViolation, "op", "no user", nil), http.StatusUnprocessableEntity, "foreign_key_violation"},
		{dberr.NewError(dberr.CodeRetryable, "op", "busy", nil), http.StatusServiceUnavailable, "retryable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
		{BadRequest("invalid_limit", errors.New("limit")), http.StatusBadRequest, "invalid_limit"},
	}
	for _, tc := range cases {
		got := From(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%v: got %d/%s, want %d/%s", tc.err, got.Status, got.Code, tc.status, tc.code)
		}
	}
	if From(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
