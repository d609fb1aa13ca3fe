// Package form implements the new-listing form: field constraints,
// validation and the submit state machine.
package form

import (
	"slices"
	"strconv"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// MinPrice is the minimum nightly price per housing type.
var MinPrice = map[listing.OfferType]int{
	listing.Bungalow: 0,
	listing.Flat:     1000,
	listing.House:    5000,
	listing.Palace:   10000,
}

// MaxPrice is the upper bound for any price.
const MaxPrice = 1000000

// Title length bounds.
const (
	TitleMinLength = 30
	TitleMaxLength = 100
)

// Times are the selectable check-in and check-out values.
var Times = []string{"12:00", "13:00", "14:00"}

// RoomOptions are the selectable room counts, in display order.
var RoomOptions = []string{"1", "2", "3", "100"}

// CapacityOptions are the selectable guest counts, in display order.
// "0" means the place is not for guests.
var CapacityOptions = []string{"3", "2", "1", "0"}

// capacityByRooms maps a room count to the guest counts it allows.
var capacityByRooms = map[string][]string{
	"1":   {"1"},
	"2":   {"1", "2"},
	"3":   {"1", "2", "3"},
	"100": {"0"},
}

// AllowedCapacity returns the guest counts allowed for rooms, or nil when the
// room count is not selectable.
func AllowedCapacity(rooms string) []string {
	return capacityByRooms[rooms]
}

// CapacityAllowed reports whether guests is allowed for rooms.
func CapacityAllowed(rooms, guests string) bool {
	return slices.Contains(capacityByRooms[rooms], guests)
}

// Option is a rendered <option> with its availability.
type Option struct {
	Value    string `json:"value"`
	Disabled bool   `json:"disabled"`
	Selected bool   `json:"selected"`
}

// CorrectCapacity keeps guests when the room count allows it, otherwise it
// switches to the first allowed value. It also returns the capacity options
// with unavailable values disabled.
func CorrectCapacity(rooms, guests string) (string, []Option) {
	allowed := capacityByRooms[rooms]
	if len(allowed) > 0 && !slices.Contains(allowed, guests) {
		guests = allowed[0]
	}
	opts := make([]Option, len(CapacityOptions))
	for i, v := range CapacityOptions {
		opts[i] = Option{
			Value:    v,
			Disabled: !slices.Contains(allowed, v),
			Selected: v == guests,
		}
	}
	return guests, opts
}

// MinPriceFor returns the minimum price for the named type. Unknown types
// have no minimum.
func MinPriceFor(typ string) int {
	t, err := listing.ParseOfferType(typ)
	if err != nil {
		return 0
	}
	return MinPrice[t]
}

// MirrorTime returns the check-in and check-out values after one of them
// changed to value: both always end up equal.
func MirrorTime(value string) (checkin, checkout string) {
	return value, value
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}
