package app

import (
	"context"

	"hostel_hub/internal/domain"
)

type sessionKey struct{}

func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok && s.UserID != ""
}
