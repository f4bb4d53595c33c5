package domain

import (
	"fmt"
	"strings"
)

type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomBooked    RoomStatus = "booked"
)

func (s RoomStatus) Valid() bool { return s == RoomAvailable || s == RoomBooked }

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Location struct {
	Address    string  `json:"address" yaml:"address"`
	DistanceKm float64 `json:"distance_km" yaml:"distance_km"` // from the affiliated university
	Coords     *Coords `json:"coords,omitempty" yaml:"coords,omitempty"`
}

type Hostel struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	OwnerID     string   `json:"owner_id" yaml:"owner_id"`
	BrokerID    *string  `json:"broker_id,omitempty" yaml:"broker_id,omitempty"`
	Location    Location `json:"location" yaml:"location"`
	University  string   `json:"university" yaml:"university"`
	Rating      float64  `json:"rating" yaml:"rating"`
	ReviewCount int      `json:"review_count" yaml:"review_count"`
	Amenities   []string `json:"amenities" yaml:"amenities"`
	Rooms       []Room   `json:"rooms" yaml:"rooms"`
	Images      []string `json:"images" yaml:"images"`
}

type Room struct {
	ID        string     `json:"id" yaml:"id"`
	HostelID  string     `json:"hostel_id" yaml:"hostel_id"`
	Type      string     `json:"type" yaml:"type"` // free-form: Single, Double, Single Deluxe...
	Price     int64      `json:"price" yaml:"price"`
	Status    RoomStatus `json:"status" yaml:"status"`
	Capacity  int        `json:"capacity" yaml:"capacity"`
	Amenities []string   `json:"amenities" yaml:"amenities"`
	Images    []string   `json:"images" yaml:"images"`
}

func (r Room) Available() bool { return r.Status == RoomAvailable }

func (r Room) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("room: id is required")
	case r.Price <= 0:
		return fmt.Errorf("room %s: price must be positive, got %d", r.ID, r.Price)
	case r.Capacity < 1:
		return fmt.Errorf("room %s: capacity must be at least 1, got %d", r.ID, r.Capacity)
	case !r.Status.Valid():
		return fmt.Errorf("room %s: unknown status %q", r.ID, r.Status)
	}
	return nil
}

// Validate checks the invariants a listed hostel must hold before it is
// written to a store.
func (h Hostel) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("hostel: id is required")
	}
	if len(h.Rooms) == 0 {
		return fmt.Errorf("hostel %s: at least one room is required", h.ID)
	}
	if h.Rating < 0 || h.Rating > 5 {
		return fmt.Errorf("hostel %s: rating %.2f out of range [0,5]", h.ID, h.Rating)
	}
	for _, r := range h.Rooms {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("hostel %s: %w", h.ID, err)
		}
	}
	return nil
}

// MinPrice returns the cheapest room price; ok is false for a hostel without rooms.
func (h Hostel) MinPrice() (min int64, ok bool) {
	for i, r := range h.Rooms {
		if i == 0 || r.Price < min {
			min = r.Price
		}
	}
	return min, len(h.Rooms) > 0
}
