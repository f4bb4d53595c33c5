package redisad

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hostel_hub/internal/domain"
)

// Bus fans booking events out over redis pub/sub, one channel per owner.
type Bus struct{ c *redis.Client }

func NewBus(c *redis.Client) *Bus { return &Bus{c: c} }

func ownerChannel(ownerID string) string { return "bookings:owner:" + ownerID }

func (b *Bus) Publish(ctx context.Context, e domain.BookingEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.c.Publish(ctx, ownerChannel(e.OwnerID), payload).Err()
}

// Subscribe calls fn for every event on the owner's channel until the
// returned stop func is called. fn runs on a single goroutine.
func (b *Bus) Subscribe(ctx context.Context, ownerID string, fn func(domain.BookingEvent)) (func() error, error) {
	ps := b.c.Subscribe(ctx, ownerChannel(ownerID))
	// wait for the subscription confirmation so no publish after return is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	msgs := ps.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for m := range msgs {
			var e domain.BookingEvent
			if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
				log.Warn().Err(err).Str("channel", m.Channel).Msg("drop malformed booking event")
				continue
			}
			fn(e)
		}
	}()

	return func() error {
		err := ps.Close()
		<-done
		return err
	}, nil
}

var (
	_ domain.Cache        = (*Cache)(nil)
	_ domain.EventBus     = (*Bus)(nil)
	_ domain.SessionStore = (*Sessions)(nil)
)
