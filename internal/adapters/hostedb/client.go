// internal/adapters/hostedb/client.go
package hostedb

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hostel_hub/internal/adapters/observability"
	"hostel_hub/internal/domain"
)

// Client talks to the hosted database's REST interface (PostgREST dialect).
// Reads are rate limited and retried; writes are sent once.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	ErrUnauthorized = errors.New("hostedb: unauthorized")
	ErrForbidden    = errors.New("hostedb: forbidden")
)

const hostelSelect = "*,rooms(*)"

// ---- Persistence ----

func (c *Client) ListHostels(ctx context.Context) ([]domain.Hostel, error) {
	q := url.Values{"select": {hostelSelect}, "order": {"created_at.asc"}, "rooms.order": {"created_at.asc"}}
	var rows []map[string]any
	if err := c.get(ctx, "hostels", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Hostel, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapHostel(r))
	}
	return out, nil
}

func (c *Client) GetHostel(ctx context.Context, id string) (domain.Hostel, error) {
	q := url.Values{"select": {hostelSelect}, "id": {"eq." + id}, "rooms.order": {"created_at.asc"}}
	var rows []map[string]any
	if err := c.get(ctx, "hostels", q, &rows); err != nil {
		return domain.Hostel{}, err
	}
	if len(rows) == 0 {
		return domain.Hostel{}, domain.ErrNotFound
	}
	return mapHostel(rows[0]), nil
}

func (c *Client) CreateBooking(ctx context.Context, d domain.BookingDraft) (domain.Booking, error) {
	body := map[string]any{
		"room_id":     d.RoomID,
		"user_id":     d.UserID,
		"check_in":    d.CheckIn.Format(domain.DateLayout),
		"check_out":   d.CheckOut.Format(domain.DateLayout),
		"total_price": d.TotalPrice,
		"status":      string(d.Status),
	}
	var rows []map[string]any
	if err := c.send(ctx, http.MethodPost, "bookings", nil, body, &rows); err != nil {
		return domain.Booking{}, err
	}
	if len(rows) == 0 {
		return domain.Booking{}, errors.New("hostedb: create returned no row")
	}
	return mapBooking(rows[0]), nil
}

func (c *Client) UpdateRoomStatus(ctx context.Context, roomID string, status domain.RoomStatus) (domain.Room, error) {
	var rows []map[string]any
	q := url.Values{"id": {"eq." + roomID}}
	if err := c.send(ctx, http.MethodPatch, "rooms", q, map[string]any{"status": string(status)}, &rows); err != nil {
		return domain.Room{}, err
	}
	if len(rows) == 0 {
		return domain.Room{}, domain.ErrNotFound
	}
	return mapRoom(rows[0]), nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	var rows []map[string]any
	if err := c.get(ctx, "bookings", url.Values{"id": {"eq." + id}}, &rows); err != nil {
		return domain.Booking{}, err
	}
	if len(rows) == 0 {
		return domain.Booking{}, domain.ErrNotFound
	}
	return mapBooking(rows[0]), nil
}

func (c *Client) ListBookings(ctx context.Context, bq domain.BookingQuery) ([]domain.Booking, error) {
	q := url.Values{"order": {"created_at.desc"}}
	if bq.UserID != "" {
		q.Set("user_id", "eq."+bq.UserID)
	}
	if bq.OwnerID != "" {
		// inner join through rooms -> hostels to filter on the owner
		q.Set("select", "*,rooms!inner(hostels!inner(owner_id))")
		q.Set("rooms.hostels.owner_id", "eq."+bq.OwnerID)
	}
	var rows []map[string]any
	if err := c.get(ctx, "bookings", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapBooking(r))
	}
	return out, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	var rows []map[string]any
	q := url.Values{"id": {"eq." + id}}
	if err := c.send(ctx, http.MethodPatch, "bookings", q, map[string]any{"status": string(status)}, &rows); err != nil {
		return domain.Booking{}, err
	}
	if len(rows) == 0 {
		return domain.Booking{}, domain.ErrNotFound
	}
	return mapBooking(rows[0]), nil
}

// ---- Internals ----

func (c *Client) endpoint(table string, q url.Values) string {
	u := c.base + "/" + table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hostel-hub/1.0")
	return req, nil
}

// send performs a single write and decodes the returned representation.
// Writes are not retried.
func (c *Client) send(ctx context.Context, method, table string, q url.Values, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, c.endpoint(table, q), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("hostedb", method+" "+table, 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("hostedb", method+" "+table, resp.StatusCode, time.Since(start))
	return decode(resp, out)
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, table string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	u := c.endpoint(table, q)

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := c.newRequest(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("hostedb", "GET "+table, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("hostedb", "GET "+table, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		err = decode(resp, out)
		resp.Body.Close()
		return err
	}
	return lastErr
}

func decode(resp *http.Response, out any) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

var _ domain.Persistence = (*Client)(nil)
