package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hostel_hub/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertHostel writes a hostel and its rooms in one transaction. Rooms
// missing from h are left in place because bookings reference them.
func (r *Repo) UpsertHostel(ctx context.Context, h domain.Hostel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lat, lon any
	if h.Location.Coords != nil {
		lat, lon = h.Location.Coords.Lat, h.Location.Coords.Lon
	}
	if _, err := tx.ExecContext(ctx, upsertHostelSQL,
		h.ID,
		h.Name,
		h.Description,
		h.OwnerID,
		valStr(h.BrokerID),
		h.Location.Address,
		h.Location.DistanceKm,
		lat, lon,
		h.University,
		h.Rating,
		h.ReviewCount,
		jsonList(h.Amenities),
		jsonList(h.Images),
	); err != nil {
		return fmt.Errorf("upsert hostel: %w", err)
	}

	for i, rm := range h.Rooms {
		if _, err := tx.ExecContext(ctx, upsertRoomSQL,
			rm.ID, h.ID, i, rm.Type, rm.Price, string(rm.Status), rm.Capacity,
			jsonList(rm.Amenities), jsonList(rm.Images),
		); err != nil {
			return fmt.Errorf("upsert room %s: %w", rm.ID, err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHostel(s rowScanner) (domain.Hostel, error) {
	var h domain.Hostel
	var desc, broker sql.NullString
	var lat, lon sql.NullFloat64
	var amenitiesJSON, imagesJSON []byte
	if err := s.Scan(
		&h.ID, &h.Name, &desc, &h.OwnerID, &broker,
		&h.Location.Address, &h.Location.DistanceKm,
		&lat, &lon,
		&h.University, &h.Rating, &h.ReviewCount,
		&amenitiesJSON, &imagesJSON,
	); err != nil {
		return domain.Hostel{}, err
	}
	h.Description = desc.String
	if broker.Valid {
		b := broker.String
		h.BrokerID = &b
	}
	if lat.Valid && lon.Valid {
		h.Location.Coords = &domain.Coords{Lat: lat.Float64, Lon: lon.Float64}
	}
	_ = json.Unmarshal(amenitiesJSON, &h.Amenities)
	_ = json.Unmarshal(imagesJSON, &h.Images)
	h.Rooms = []domain.Room{}
	return h, nil
}

func scanRoom(s rowScanner) (domain.Room, error) {
	var rm domain.Room
	var status string
	var amenitiesJSON, imagesJSON []byte
	if err := s.Scan(&rm.ID, &rm.HostelID, &rm.Type, &rm.Price, &status, &rm.Capacity, &amenitiesJSON, &imagesJSON); err != nil {
		return domain.Room{}, err
	}
	rm.Status = domain.RoomStatus(status)
	_ = json.Unmarshal(amenitiesJSON, &rm.Amenities)
	_ = json.Unmarshal(imagesJSON, &rm.Images)
	return rm, nil
}

func (r *Repo) ListHostels(ctx context.Context) ([]domain.Hostel, error) {
	rows, err := r.db.QueryContext(ctx, listHostelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Hostel
	index := map[string]int{}
	for rows.Next() {
		h, err := scanHostel(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(out)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roomRows, err := r.db.QueryContext(ctx, listRoomsSQL)
	if err != nil {
		return nil, err
	}
	defer roomRows.Close()
	for roomRows.Next() {
		rm, err := scanRoom(roomRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[rm.HostelID]; ok {
			out[i].Rooms = append(out[i].Rooms, rm)
		}
	}
	return out, roomRows.Err()
}

func (r *Repo) GetHostel(ctx context.Context, id string) (domain.Hostel, error) {
	h, err := scanHostel(r.db.QueryRowContext(ctx, getHostelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hostel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hostel{}, err
	}

	rows, err := r.db.QueryContext(ctx, listRoomsByHostelSQL, id)
	if err != nil {
		return domain.Hostel{}, err
	}
	defer rows.Close()
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return domain.Hostel{}, err
		}
		h.Rooms = append(h.Rooms, rm)
	}
	return h, rows.Err()
}

func (r *Repo) CreateBooking(ctx context.Context, d domain.BookingDraft) (domain.Booking, error) {
	b := domain.Booking{
		ID:         uuid.NewString(),
		RoomID:     d.RoomID,
		UserID:     d.UserID,
		Status:     d.Status,
		CheckIn:    d.CheckIn,
		CheckOut:   d.CheckOut,
		TotalPrice: d.TotalPrice,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID, b.RoomID, b.UserID, string(b.Status),
		b.CheckIn.Format(domain.DateLayout), b.CheckOut.Format(domain.DateLayout),
		b.TotalPrice, b.CreatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// UpdateRoomStatus reads the row back because MySQL reports zero affected
// rows when the status is already set.
func (r *Repo) UpdateRoomStatus(ctx context.Context, roomID string, status domain.RoomStatus) (domain.Room, error) {
	if _, err := r.db.ExecContext(ctx, updateRoomStatusSQL, string(status), roomID); err != nil {
		return domain.Room{}, err
	}
	rm, err := scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, err
}

func scanBooking(s rowScanner) (domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := s.Scan(&b.ID, &b.RoomID, &b.UserID, &status, &b.CheckIn, &b.CheckOut, &b.TotalPrice, &b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListBookings(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error) {
	var rows *sql.Rows
	var err error
	switch {
	case q.OwnerID != "":
		rows, err = r.db.QueryContext(ctx, listBookingsByOwnerSQL, q.OwnerID)
	case q.UserID != "":
		rows, err = r.db.QueryContext(ctx, listBookingsByUserSQL, q.UserID)
	default:
		rows, err = r.db.QueryContext(ctx, listBookingsSQL)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		if q.UserID != "" && b.UserID != q.UserID {
			continue
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	if _, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(status), id); err != nil {
		return domain.Booking{}, err
	}
	return r.GetBooking(ctx, id)
}

var (
	_ domain.Persistence  = (*Repo)(nil)
	_ domain.HostelWriter = (*Repo)(nil)
)
