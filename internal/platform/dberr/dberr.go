package dberr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Code classifies storage failures so callers can react without parsing driver errors.
type Code string

const (
	CodeValidation          Code = "validation"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeConstraintViolation Code = "constraint_violation"
	CodeForeignKeyViolation Code = "foreign_key_violation"
	CodeRetryable           Code = "retryable"
	CodeInternal            Code = "internal"
)

// Error is the canonical storage error wrapper.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Validation is shorthand for a caller-input failure detected before touching storage.
func Validation(op, message string) error {
	return NewError(CodeValidation, op, message, nil)
}

// NotFound is shorthand for a missing row.
func NotFound(op, message string) error {
	return NewError(CodeNotFound, op, message, gorm.ErrRecordNotFound)
}

func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// Map classifies a gorm/driver error. Errors that already carry a Code pass through.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(CodeConflict, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Wrap(CodeForeignKeyViolation, op, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return Wrap(CodeConstraintViolation, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Wrap(CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23502", "23514":
			return Wrap(CodeConstraintViolation, op, err) // not_null_violation, check_violation
		case "23503":
			return Wrap(CodeForeignKeyViolation, op, err)
		case "23505":
			return Wrap(CodeConflict, op, err)
		case "40001", "40P01", "55P03":
			return Wrap(CodeRetryable, op, err)
		}
	}

	// SQLite reports constraint failures only through the message text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key constraint failed"):
		return Wrap(CodeForeignKeyViolation, op, err)
	case strings.Contains(msg, "not null constraint failed"),
		strings.Contains(msg, "check constraint failed"):
		return Wrap(CodeConstraintViolation, op, err)
	case strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "duplicate key"):
		return Wrap(CodeConflict, op, err)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "deadlock"):
		return Wrap(CodeRetryable, op, err)
	default:
		return Wrap(CodeInternal, op, err)
	}
}
