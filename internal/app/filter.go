package app

import (
	"net/url"
	"strconv"
	"strings"

	"hostel_hub/internal/domain"
)

// Apply returns the hostels that pass every active stage of spec, in catalog
// order. It never mutates catalog.
func Apply(catalog []domain.Hostel, term string, spec domain.FilterSpec) []domain.Hostel {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Hostel, 0, len(catalog))
	for _, h := range catalog {
		if matches(h, term, spec) {
			out = append(out, h)
		}
	}
	return out
}

func matches(h domain.Hostel, term string, spec domain.FilterSpec) bool {
	if term != "" &&
		!strings.Contains(strings.ToLower(h.Name), term) &&
		!strings.Contains(strings.ToLower(h.University), term) {
		return false
	}
	if spec.University != nil && h.University != *spec.University {
		return false
	}
	if spec.Price != nil && (spec.Price.Min != nil || spec.Price.Max != nil) {
		min, ok := h.MinPrice()
		if !ok || !spec.Price.Contains(min) {
			return false
		}
	}
	if len(spec.RoomTypes) > 0 && !anyRoomType(h.Rooms, spec.RoomTypes) {
		return false
	}
	if len(spec.Amenities) > 0 && !hasAll(h.Amenities, spec.Amenities) {
		return false
	}
	if spec.MaxDistance != nil && h.Location.DistanceKm > *spec.MaxDistance {
		return false
	}
	return true
}

func anyRoomType(rooms []domain.Room, types []string) bool {
	for _, r := range rooms {
		for _, t := range types {
			if r.Type == t {
				return true
			}
		}
	}
	return false
}

func hasAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[a] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

// ParseFilter builds a FilterSpec from query parameters. Malformed numbers are
// dropped rather than rejected.
func ParseFilter(q url.Values) domain.FilterSpec {
	var spec domain.FilterSpec
	if u := strings.TrimSpace(q.Get("university")); u != "" {
		spec.University = &u
	}
	min, max := parseInt(q.Get("min_price")), parseInt(q.Get("max_price"))
	if min != nil || max != nil {
		spec.Price = &domain.PriceRange{Min: min, Max: max}
	}
	spec.Amenities = splitList(q["amenities"])
	spec.RoomTypes = splitList(q["room_types"])
	if d, err := strconv.ParseFloat(strings.TrimSpace(q.Get("max_distance")), 64); err == nil && d >= 0 {
		spec.MaxDistance = &d
	}
	return spec
}

func parseInt(s string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// splitList accepts both repeated keys and comma lists.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
