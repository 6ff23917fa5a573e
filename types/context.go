package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyTraceID   contextKey = "trace_id"
	keyRequestID contextKey = "request_id"
	keyUserID    contextKey = "user_id"
	keyTeamID    contextKey = "team_id"
	keyCompanyID contextKey = "company_id"
)

// WithTraceID adds a trace ID to context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID extracts the trace ID from context.
func TraceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTraceID).(string)
	return v, ok && v != ""
}

// WithRequestID adds a request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID extracts the request ID from context.
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}

// WithUserID adds a user ID to context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

// UserID extracts the user ID from context.
func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyUserID).(string)
	return v, ok && v != ""
}

// WithTeamID adds a team ID to context.
func WithTeamID(ctx context.Context, teamID string) context.Context {
	return context.WithValue(ctx, keyTeamID, teamID)
}

// TeamID extracts the team ID from context.
func TeamID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTeamID).(string)
	return v, ok && v != ""
}

// WithCompanyID adds a company ID to context.
func WithCompanyID(ctx context.Context, companyID string) context.Context {
	return context.WithValue(ctx, keyCompanyID, companyID)
}

// CompanyID extracts the company ID from context.
func CompanyID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyCompanyID).(string)
	return v, ok && v != ""
}
