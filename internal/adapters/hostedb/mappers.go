package hostedb

import (
	"strconv"
	"strings"
	"time"

	"hostel_hub/internal/domain"
)

/********** alias registries **********/

// Column names drifted between schema revisions; the first non-empty alias wins.
var hostelAliases = map[string][]string{
	"university": {"university", "university_name", "university.name"},
	"address":    {"address", "location.address", "location"},
	"distance":   {"distance_km", "distance", "location.distance", "distance_from_university"},
	"lat":        {"latitude", "lat", "location.lat", "location.coordinates.lat"},
	"lon":        {"longitude", "lon", "lng", "location.lng", "location.coordinates.lng"},
	"broker":     {"broker_id", "broker.id"},
	"reviews":    {"review_count", "reviews_count", "total_reviews"},
}

var roomAliases = map[string][]string{
	"type":     {"type", "room_type", "name"},
	"capacity": {"capacity", "max_occupancy", "beds"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the value at path as a string; numeric ids are formatted.
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func firstStr(m map[string]any, paths ...string) string {
	for _, p := range paths {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "1,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func intOr(m map[string]any, def int64, paths ...string) int64 {
	if f := getFloatFlexible(m, paths...); f != nil {
		return int64(*f)
	}
	return def
}

// firstSliceStrings: accept []any with either strings or {name/url}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
					} else if u, ok := t["url"].(string); ok && u != "" {
						out = append(out, u)
					}
				}
			}
			return out
		}
	}
	return []string{}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, domain.DateLayout, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

/********** row mappers **********/

func mapHostel(p map[string]any) domain.Hostel {
	h := domain.Hostel{
		ID:          firstStr(p, "id"),
		Name:        firstStr(p, "name"),
		Description: firstStr(p, "description"),
		OwnerID:     firstStr(p, "owner_id", "owner.id"),
		University:  firstStr(p, hostelAliases["university"]...),
		ReviewCount: int(intOr(p, 0, hostelAliases["reviews"]...)),
		Amenities:   firstSliceStrings(p, "amenities", "facilities"),
		Images:      firstSliceStrings(p, "images", "photos"),
		Rooms:       []domain.Room{},
	}
	if b := firstStr(p, hostelAliases["broker"]...); b != "" {
		h.BrokerID = &b
	}
	if r := getFloatFlexible(p, "rating"); r != nil {
		h.Rating = *r
	}
	h.Location.Address = firstStr(p, hostelAliases["address"]...)
	if d := getFloatFlexible(p, hostelAliases["distance"]...); d != nil {
		h.Location.DistanceKm = *d
	}
	lat, lon := getFloatFlexible(p, hostelAliases["lat"]...), getFloatFlexible(p, hostelAliases["lon"]...)
	if lat != nil && lon != nil {
		h.Location.Coords = &domain.Coords{Lat: *lat, Lon: *lon}
	}
	if rooms, ok := p["rooms"].([]any); ok {
		for _, it := range rooms {
			if rm, ok := it.(map[string]any); ok {
				r := mapRoom(rm)
				if r.HostelID == "" {
					r.HostelID = h.ID
				}
				h.Rooms = append(h.Rooms, r)
			}
		}
	}
	return h
}

func mapRoom(m map[string]any) domain.Room {
	r := domain.Room{
		ID:        firstStr(m, "id"),
		HostelID:  firstStr(m, "hostel_id"),
		Type:      firstStr(m, roomAliases["type"]...),
		Price:     intOr(m, 0, "price", "price_per_semester"),
		Capacity:  int(intOr(m, 1, roomAliases["capacity"]...)),
		Amenities: firstSliceStrings(m, "amenities"),
		Images:    firstSliceStrings(m, "images", "photos"),
		Status:    domain.RoomAvailable,
	}
	switch strings.ToLower(firstStr(m, "status")) {
	case "available":
	case "booked", "occupied", "unavailable":
		r.Status = domain.RoomBooked
	default:
		if avail, ok := m["available"].(bool); ok && !avail {
			r.Status = domain.RoomBooked
		}
	}
	return r
}

func mapBooking(m map[string]any) domain.Booking {
	return domain.Booking{
		ID:         firstStr(m, "id"),
		RoomID:     firstStr(m, "room_id"),
		UserID:     firstStr(m, "user_id"),
		Status:     domain.BookingStatus(strings.ToLower(firstStr(m, "status"))),
		CheckIn:    parseTime(firstStr(m, "check_in", "check_in_date")),
		CheckOut:   parseTime(firstStr(m, "check_out", "check_out_date")),
		TotalPrice: intOr(m, 0, "total_price"),
		CreatedAt:  parseTime(firstStr(m, "created_at")),
	}
}
