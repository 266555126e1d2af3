package db

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/platform/dberr"
)

const (
	tracerName = "github.com/yungbote/assistant-store/internal/data/db"
	spanKey    = "otel:span"
	startKey   = "otel:start"
	opKey      = "otel:op"
)

// RegisterTracing wraps every gorm operation in a client span and records it in the
// store metrics. Spans are no-ops until a tracer provider is installed; metrics are
// skipped while observability.Current() is nil.
func RegisterTracing(db *gorm.DB) error {
	tracer := otel.Tracer(tracerName)
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", startSpan(tracer, "create")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", endSpan); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", startSpan(tracer, "query")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", endSpan); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", startSpan(tracer, "update")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", endSpan); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", startSpan(tracer, "delete")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", endSpan); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("otel:before_row", startSpan(tracer, "row")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", endSpan); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", startSpan(tracer, "raw")); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("otel:after_raw", endSpan)
}

func startSpan(tracer trace.Tracer, op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Statement == nil || tx.Statement.Context == nil {
			return
		}
		ctx, span := tracer.Start(tx.Statement.Context, "gorm."+op, trace.WithSpanKind(trace.SpanKindClient))
		tx.Statement.Context = ctx
		tx.InstanceSet(spanKey, span)
		tx.InstanceSet(startKey, time.Now())
		tx.InstanceSet(opKey, op)
	}
}

func endSpan(tx *gorm.DB) {
	v, ok := tx.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", tx.Dialector.Name()),
		attribute.String("db.sql.table", tx.Statement.Table),
		attribute.Int64("db.rows_affected", tx.Statement.RowsAffected),
	)
	status := "ok"
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
		status = string(dberr.CodeOf(dberr.Map("", tx.Error)))
	}

	if m := observability.Current(); m != nil {
		op, _ := tx.InstanceGet(opKey)
		start, _ := tx.InstanceGet(startKey)
		opName, _ := op.(string)
		startedAt, ok := start.(time.Time)
		if !ok {
			startedAt = time.Now()
		}
		m.ObserveStoreOp(tx.Statement.Table, opName, status, time.Since(startedAt))
	}
}
