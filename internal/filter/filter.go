// Package filter evaluates the map filter panel against a list of listings.
package filter

import (
	"strconv"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// Any is the control value meaning "no constraint".
const Any = "any"

// Bucket is a named closed price interval.
type Bucket struct {
	Name string
	Min  int
	Max  int
}

// Contains reports whether price lies in [Min, Max].
func (b Bucket) Contains(price int) bool {
	return price >= b.Min && price <= b.Max
}

// Buckets is the price bucket table. Neighbouring buckets share their
// boundary value, so a price of exactly 10000 matches both low and middle.
var Buckets = []Bucket{
	{Name: "low", Min: 0, Max: 10000},
	{Name: "middle", Min: 10000, Max: 50000},
	{Name: "high", Min: 50000, Max: 10000000},
}

// LookupBucket returns the bucket for name. "mid" is an alias of "middle".
func LookupBucket(name string) (Bucket, bool) {
	if name == "mid" {
		name = "middle"
	}
	for _, b := range Buckets {
		if b.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// Criteria is the active set of filter constraints. Empty strings and "any"
// impose no constraint.
type Criteria struct {
	Type     string            `json:"type,omitempty"`
	Price    string            `json:"price,omitempty"`
	Rooms    string            `json:"rooms,omitempty"`
	Guests   string            `json:"guests,omitempty"`
	Features []listing.Feature `json:"features,omitempty"`
}

// IsEmpty reports whether c imposes no constraint at all.
func (c Criteria) IsEmpty() bool {
	return !active(c.Type) && !active(c.Rooms) && !active(c.Guests) &&
		!c.hasBucket() && len(c.Features) == 0
}

func (c Criteria) hasBucket() bool {
	_, ok := LookupBucket(c.Price)
	return ok
}

// Match reports whether l satisfies every active predicate of c.
func (c Criteria) Match(l listing.Listing) bool {
	o := l.Offer
	if !matchValue(c.Type, string(o.Type)) {
		return false
	}
	if !matchValue(c.Rooms, strconv.Itoa(o.Rooms)) {
		return false
	}
	if !matchValue(c.Guests, strconv.Itoa(o.Guests)) {
		return false
	}
	if b, ok := LookupBucket(c.Price); ok && !b.Contains(o.Price) {
		return false
	}
	for _, f := range c.Features {
		if !o.HasFeature(f) {
			return false
		}
	}
	return true
}

// Apply returns the listings matching c in input order. The result never
// shares a backing array with listings.
func Apply(listings []listing.Listing, c Criteria) []listing.Listing {
	out := make([]listing.Listing, 0, len(listings))
	if c.IsEmpty() {
		return append(out, listings...)
	}
	for _, l := range listings {
		if c.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Indexes returns the positions in listings of the listings matching c,
// in input order.
func Indexes(listings []listing.Listing, c Criteria) []int {
	all := c.IsEmpty()
	out := make([]int, 0, len(listings))
	for i, l := range listings {
		if all || c.Match(l) {
			out = append(out, i)
		}
	}
	return out
}

func active(v string) bool {
	return v != "" && v != Any
}

func matchValue(want, got string) bool {
	if !active(want) {
		return true
	}
	if want == "bungalo" {
		want = string(listing.Bungalow)
	}
	return want == got
}
