package app

import (
	"github.com/dustin/go-humanize"

	"hostel_hub/internal/domain"
)

const DefaultCurrency = "UGX"

type RoomView struct {
	RoomID    string   `json:"room_id"`
	Type      string   `json:"type"`
	Price     string   `json:"price"`
	Capacity  int      `json:"capacity"`
	Amenities []string `json:"amenities"`
	Badge     string   `json:"badge"`
	Bookable  bool     `json:"bookable"`
}

// FormatPrice renders a whole-number amount, e.g. "UGX 450,000".
func FormatPrice(currency string, price int64) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return currency + " " + humanize.Comma(price)
}

func RenderRoom(r domain.Room, currency string) RoomView {
	v := RoomView{
		RoomID:    r.ID,
		Type:      r.Type,
		Price:     FormatPrice(currency, r.Price),
		Capacity:  r.Capacity,
		Amenities: append([]string{}, r.Amenities...),
		Badge:     "Booked",
	}
	if r.Available() {
		v.Badge, v.Bookable = "Available", true
	}
	return v
}

// BookControl is the "book" trigger of a rendered room. It is inert for
// rooms that are not available.
type BookControl struct {
	room    domain.Room
	onClick func(roomID string)
}

func NewBookControl(r domain.Room, onBookClick func(roomID string)) BookControl {
	return BookControl{room: r, onClick: onBookClick}
}

func (b BookControl) Enabled() bool { return b.room.Available() && b.onClick != nil }

// Click invokes the callback when enabled and reports whether it fired.
func (b BookControl) Click() bool {
	if !b.Enabled() {
		return false
	}
	b.onClick(b.room.ID)
	return true
}
