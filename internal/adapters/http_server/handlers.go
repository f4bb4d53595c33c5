package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hostel_hub/internal/app"
	"hostel_hub/internal/domain"
)

const maxBody = 1 << 20

type Handlers struct {
	Catalog     *app.Catalog
	Controllers *app.Controllers
	Flow        *app.BookingFlow
	Bookings    *app.BookingService
	Dashboards  *app.Dashboards
	Sessions    domain.SessionStore
	LoginURL    string
	Currency    string
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Group(func(r chi.Router) {
		r.Use(Session(h.Sessions))

		r.Post("/v1/session", h.login)
		r.Delete("/v1/session", h.logout)

		r.Get("/v1/hostels", h.listHostels)
		r.Get("/v1/hostels/{id}", h.getHostel)
		r.Get("/v1/hostels/{id}/rooms", h.listRooms)

		r.Get("/v1/search", h.getSearch)
		r.Put("/v1/search/term", h.putTerm)
		r.Put("/v1/search/filter", h.putFilter)
		r.Post("/v1/search/reset", h.resetSearch)

		r.Post("/v1/bookings", h.createBooking)
		r.Post("/v1/bookings/{id}/confirm", h.confirmBooking)
		r.Post("/v1/bookings/{id}/cancel", h.cancelBooking)

		r.Get("/v1/dashboard", h.dashboard)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var perr *domain.PersistenceError
	switch {
	case errors.As(err, &verr):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Validation Failed", Status: http.StatusUnprocessableEntity, Errors: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "a session is required")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrRoomUnavailable):
		writeProblem(w, http.StatusConflict, "Room Unavailable", "this room is not available")
	case errors.As(err, &perr):
		log.Error().Err(err).Msg("persistence failure")
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "the hostel database could not be reached")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached serves v with a weak ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// ---- session ----

type loginRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type loginResponse struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	Role      domain.Role `json:"role"`
}

// login is a mocked sign-in: any user id is accepted.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	verr := &domain.ValidationError{}
	if strings.TrimSpace(req.UserID) == "" {
		verr.Add("user_id", "user id is required")
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		verr.Add("role", "role must be student, owner or broker")
	}
	if !verr.Empty() {
		writeError(w, verr)
		return
	}
	sess := domain.Session{ID: uuid.NewString(), UserID: strings.TrimSpace(req.UserID), Name: req.Name, Role: role}
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		writeError(w, &domain.PersistenceError{Op: "save session", Err: err})
		return
	}
	log.Info().Str("user_id", sess.UserID).Str("role", role.String()).Msg("session started")
	writeJSON(w, http.StatusCreated, loginResponse{SessionID: sess.ID, UserID: sess.UserID, Role: role})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := app.SessionFrom(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	if err := h.Sessions.Delete(r.Context(), sess.ID); err != nil {
		writeError(w, &domain.PersistenceError{Op: "delete session", Err: err})
		return
	}
	h.Controllers.Drop(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- hostels ----

func (h *Handlers) listHostels(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Err(); err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	writeCached(w, r, app.Apply(h.Catalog.Snapshot(), q.Get("q"), app.ParseFilter(q)))
}

func (h *Handlers) getHostel(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Catalog.Hostel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, hs)
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Catalog.Hostel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]app.RoomView, 0, len(hs.Rooms))
	for _, room := range hs.Rooms {
		out = append(out, app.RenderRoom(room, h.Currency))
	}
	writeCached(w, r, out)
}

// ---- search ----

func (h *Handlers) controller(w http.ResponseWriter, r *http.Request) (*app.SearchController, bool) {
	sess, ok := app.SessionFrom(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return nil, false
	}
	return h.Controllers.For(sess.ID), true
}

func (h *Handlers) getSearch(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc.State())
}

func (h *Handlers) putTerm(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.controller(w, r)
	if !ok {
		return
	}
	var req struct {
		Term string `json:"term"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, sc.SetSearchTerm(req.Term))
}

func (h *Handlers) putFilter(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.controller(w, r)
	if !ok {
		return
	}
	var spec domain.FilterSpec
	if !decodeJSON(w, r, &spec) {
		return
	}
	writeJSON(w, http.StatusOK, sc.SetFilter(spec))
}

func (h *Handlers) resetSearch(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc.Reset())
}

// ---- bookings ----

type bookingRequest struct {
	RoomID string `json:"room_id"`
	app.BookingForm
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.SessionFrom(r.Context()); !ok {
		http.Redirect(w, r, h.LoginURL, http.StatusSeeOther)
		return
	}
	var req bookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, room, err := h.Catalog.Room(req.RoomID)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		booking   domain.Booking
		submitErr error
	)
	ctl := app.NewBookControl(room, func(string) {
		booking, submitErr = h.Flow.Submit(r.Context(), room, req.BookingForm)
	})
	if !ctl.Click() {
		writeError(w, domain.ErrRoomUnavailable)
		return
	}
	if errors.Is(submitErr, domain.ErrUnauthenticated) {
		http.Redirect(w, r, h.LoginURL, http.StatusSeeOther)
		return
	}
	if submitErr != nil {
		writeError(w, submitErr)
		return
	}
	w.Header().Set("Location", "/v1/bookings/"+booking.ID)
	writeJSON(w, http.StatusCreated, booking)
}

func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ---- dashboard ----

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := app.SessionFrom(r.Context())
	if !ok {
		writeError(w, domain.ErrUnauthenticated)
		return
	}
	var (
		v   any
		err error
	)
	switch sess.Role {
	case domain.RoleStudent:
		v, err = h.Dashboards.Student(r.Context(), sess)
	case domain.RoleOwner:
		v, err = h.Dashboards.Owner(r.Context(), sess)
	case domain.RoleBroker:
		v, err = h.Dashboards.Broker(r.Context(), sess)
	default:
		err = domain.ErrForbidden
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
