package ctxutil

import "context"

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
	// UserID is the subject user of the request, set once the route is resolved.
	UserID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// SetUserID records the subject user on the request's trace data, if any.
func SetUserID(ctx context.Context, userID string) {
	if td := GetTraceData(ctx); td != nil {
		td.UserID = userID
	}
}
