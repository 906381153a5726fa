package ctxutil

import (
	"context"
	"errors"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	SubjectKey   ctxKey = "subject"
	RoleKey      ctxKey = "role"
)

const RequestIDHeader = "X-Request-ID"

var ErrNoSubject = errors.New("no subject in context")

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, reqID)
}

func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(RequestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetSubject returns the authenticated caller set by the auth middleware.
func GetSubject(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(SubjectKey).(string); ok && v != "" {
		return v, nil
	}
	return "", ErrNoSubject
}

func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(RoleKey).(string); ok {
		return v
	}
	return ""
}
