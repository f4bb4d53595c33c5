package domain

import "context"

// Persistence is the hosted-database collaborator the core reads hostels
// from and writes bookings to.
type Persistence interface {
	ListHostels(ctx context.Context) ([]Hostel, error)
	GetHostel(ctx context.Context, id string) (Hostel, error)

	CreateBooking(ctx context.Context, d BookingDraft) (Booking, error)
	UpdateRoomStatus(ctx context.Context, roomID string, status RoomStatus) (Room, error)

	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, q BookingQuery) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) (Booking, error)
}

type HostelWriter interface {
	UpsertHostel(ctx context.Context, h Hostel) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e BookingEvent) error
}

// EventBus delivers booking events per owner. The returned func stops the
// subscription.
type EventBus interface {
	EventPublisher
	Subscribe(ctx context.Context, ownerID string, fn func(BookingEvent)) (func() error, error)
}

type SessionStore interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}
