package domain

// FilterSpec narrows a hostel list. Every field is optional and the zero
// value applies no constraint.
type FilterSpec struct {
	University  *string     `json:"university,omitempty"`
	Price       *PriceRange `json:"price_range,omitempty"`
	Amenities   []string    `json:"amenities,omitempty"`  // all must be present
	RoomTypes   []string    `json:"room_types,omitempty"` // any room may match
	MaxDistance *float64    `json:"max_distance,omitempty"`
}

// PriceRange bounds are inclusive. A nil bound is open.
type PriceRange struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

func (p PriceRange) Contains(v int64) bool {
	if p.Min != nil && v < *p.Min {
		return false
	}
	if p.Max != nil && v > *p.Max {
		return false
	}
	return true
}
