package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/assistant-store/internal/platform/dberr"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// From turns any error into an API error. Storage errors keep their dberr code;
// anything unclassified becomes a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	code := dberr.CodeOf(err)
	if code == "" {
		return New(http.StatusInternalServerError, string(dberr.CodeInternal), err)
	}
	return New(StatusFor(code), string(code), err)
}

func StatusFor(code dberr.Code) int {
	switch code {
	case dberr.CodeValidation, dberr.CodeConstraintViolation:
		return http.StatusBadRequest
	case dberr.CodeNotFound:
		return http.StatusNotFound
	case dberr.CodeConflict:
		return http.StatusConflict
	case dberr.CodeForeignKeyViolation:
		return http.StatusUnprocessableEntity
	case dberr.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
