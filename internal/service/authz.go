package service

import (
	"context"

	"tastemate/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// RequireRole is the single authorization guard: a missing session is
// unauthenticated, a session with another role is forbidden.
func RequireRole(session *models.SessionSnapshot, role models.Role) error {
	if session == nil {
		return ErrUnauthenticated
	}
	if session.Role != role {
		return ErrForbidden
	}
	return nil
}

func WithSession(ctx context.Context, session *models.SessionSnapshot) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns nil for anonymous requests.
func SessionFromContext(ctx context.Context) *models.SessionSnapshot {
	session, _ := ctx.Value(sessionContextKey).(*models.SessionSnapshot)
	return session
}
