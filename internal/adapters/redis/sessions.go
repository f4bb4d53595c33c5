package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hostel_hub/internal/domain"
)

// Sessions persists sessions as JSON under session:<id>. Every Save refreshes the TTL.
type Sessions struct {
	c   *redis.Client
	ttl time.Duration
}

func NewSessions(c *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{c: c, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func (s *Sessions) Load(ctx context.Context, id string) (domain.Session, error) {
	b, err := s.c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var out domain.Session
	if err := json.Unmarshal(b, &out); err != nil {
		return domain.Session{}, err
	}
	return out, nil
}

func (s *Sessions) Save(ctx context.Context, sess domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.c.Set(ctx, sessionKey(sess.ID), b, s.ttl).Err()
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.c.Del(ctx, sessionKey(id)).Err()
}
