package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// DateLayout is the wire format for check-in and check-out dates.
const DateLayout = "2006-01-02"

type Booking struct {
	ID         string        `json:"id"`
	RoomID     string        `json:"room_id"`
	UserID     string        `json:"user_id"`
	Status     BookingStatus `json:"status"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	TotalPrice int64         `json:"total_price"`
	CreatedAt  time.Time     `json:"created_at"`
}

type BookingDraft struct {
	RoomID     string
	UserID     string
	CheckIn    time.Time
	CheckOut   time.Time
	TotalPrice int64
	Status     BookingStatus
}

// BookingQuery narrows ListBookings; empty fields are ignored.
type BookingQuery struct {
	UserID  string
	OwnerID string
}

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
)

type BookingEvent struct {
	Kind    EventKind `json:"kind"`
	OwnerID string    `json:"owner_id"`
	Booking Booking   `json:"booking"`
}
