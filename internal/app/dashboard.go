package app

import (
	"context"

	"hostel_hub/internal/domain"
)

type StudentDashboard struct {
	Bookings []domain.Booking `json:"bookings"`
}

type OwnerDashboard struct {
	Hostels  []domain.Hostel  `json:"hostels"`
	Bookings []domain.Booking `json:"bookings"`
}

type BrokerListing struct {
	Hostel         domain.Hostel `json:"hostel"`
	AvailableRooms int           `json:"available_rooms"`
}

type BrokerDashboard struct {
	Listings []BrokerListing `json:"listings"`
}

type Dashboards struct {
	catalog  *Catalog
	bookings *BookingService
	feeds    *Feeds
}

func NewDashboards(c *Catalog, b *BookingService, f *Feeds) *Dashboards {
	return &Dashboards{catalog: c, bookings: b, feeds: f}
}

func (d *Dashboards) Student(ctx context.Context, s domain.Session) (StudentDashboard, error) {
	bs, err := d.bookings.ForUser(ctx, s.UserID)
	if err != nil {
		return StudentDashboard{}, err
	}
	return StudentDashboard{Bookings: nonNil(bs)}, nil
}

// Owner reads bookings from the owner's live feed.
func (d *Dashboards) Owner(ctx context.Context, s domain.Session) (OwnerDashboard, error) {
	out := OwnerDashboard{Hostels: []domain.Hostel{}}
	for _, h := range d.catalog.Snapshot() {
		if h.OwnerID == s.UserID {
			out.Hostels = append(out.Hostels, h)
		}
	}
	feed, err := d.feeds.For(s.UserID)
	if err != nil {
		return OwnerDashboard{}, err
	}
	out.Bookings = nonNil(feed.Snapshot())
	return out, nil
}

func (d *Dashboards) Broker(ctx context.Context, s domain.Session) (BrokerDashboard, error) {
	out := BrokerDashboard{Listings: []BrokerListing{}}
	for _, h := range d.catalog.Snapshot() {
		if h.BrokerID == nil || *h.BrokerID != s.UserID {
			continue
		}
		n := 0
		for _, r := range h.Rooms {
			if r.Available() {
				n++
			}
		}
		out.Listings = append(out.Listings, BrokerListing{Hostel: h, AvailableRooms: n})
	}
	return out, nil
}

func nonNil(bs []domain.Booking) []domain.Booking {
	if bs == nil {
		return []domain.Booking{}
	}
	return bs
}
