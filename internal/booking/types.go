package booking

import (
	"encoding/json"
	"fmt"
	"sort"
)

// NewBooking is the payload for POST /api/bookings.
type NewBooking struct {
	RestaurantID    float64 `json:"restaurantId"`
	TableID         float64 `json:"tableId"`
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	CustomerPhone   string  `json:"customerPhone"`
	BookingDate     string  `json:"bookingDate"`
	BookingTime     string  `json:"bookingTime"`
	PartySize       float64 `json:"partySize"`
	SpecialRequests string  `json:"specialRequests"`
}

// UpdatableFields lists the booking fields a Patch may carry.
var UpdatableFields = []string{
	"customerName",
	"customerEmail",
	"bookingDate",
	"bookingTime",
	"partySize",
	"specialRequests",
	"tableId",
}

// Patch is a sparse set of booking fields. Only fields that were Set are sent,
// so an explicit "" or 0 is distinguishable from an absent field.
type Patch struct {
	fields map[string]any
}

// NewPatch returns an empty patch.
func NewPatch() *Patch { return &Patch{fields: make(map[string]any)} }

// Set marks name as present with value v.
func (p *Patch) Set(name string, v any) { p.fields[name] = v }

// Has reports whether name was Set.
func (p *Patch) Has(name string) bool {
	_, ok := p.fields[name]
	return ok
}

// Len returns the number of present fields.
func (p *Patch) Len() int { return len(p.fields) }

// Fields returns the present field names in sorted order.
func (p *Patch) Fields() []string {
	out := make([]string, 0, len(p.fields))
	for k := range p.fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON emits only the present fields.
func (p *Patch) MarshalJSON() ([]byte, error) {
	if p == nil || p.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.fields)
}

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	Code   int
	Status string
	// Body holds the raw response text, when the operation reads it.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("booking api status %d %s", e.Code, e.Status)
}
