package middleware

import "context"

type contextKey string

const (
	ctxOperatorID    contextKey = "operator_id"
	ctxOperatorName  contextKey = "operator_name"
	ctxSessionID     contextKey = "session_id"
	ctxUpstreamToken contextKey = "upstream_token"
)

func OperatorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorID).(string); ok {
		return v
	}
	return ""
}

func OperatorNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorName).(string); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// UpstreamTokenFromContext returns the bearer token forwarded on pharmacy
// backend calls for this request.
func UpstreamTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUpstreamToken).(string); ok {
		return v
	}
	return ""
}

// WithOperatorID injects the operator identifier into the context.
func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOperatorID, operatorID)
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithUpstreamToken injects the forwarded bearer token into the context.
func WithUpstreamToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUpstreamToken, token)
}
