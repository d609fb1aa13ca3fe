// Package listing holds the listing (ad) records shown on the map.
package listing

import (
	"encoding/json"
	"fmt"
	"slices"
)

// OfferType is the kind of housing being offered.
type OfferType string

const (
	Flat     OfferType = "flat"
	House    OfferType = "house"
	Palace   OfferType = "palace"
	Bungalow OfferType = "bungalow"
)

// OfferTypes lists the known housing types in display order.
var OfferTypes = []OfferType{Bungalow, Flat, House, Palace}

// ParseOfferType accepts the canonical names and the legacy "bungalo" spelling.
func ParseOfferType(s string) (OfferType, error) {
	switch s {
	case "flat":
		return Flat, nil
	case "house":
		return House, nil
	case "palace":
		return Palace, nil
	case "bungalow", "bungalo":
		return Bungalow, nil
	}
	return "", fmt.Errorf("unknown offer type %q", s)
}

var offerTypeLabels = map[OfferType]string{
	Flat:     "Flat",
	House:    "House",
	Palace:   "Palace",
	Bungalow: "Bungalow",
}

// Label is the human readable name of the type.
func (t OfferType) Label() string {
	if l, ok := offerTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// UnmarshalJSON normalizes legacy spellings. Unknown values are kept as-is so
// a single odd record does not fail a whole feed.
func (t *OfferType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, err := ParseOfferType(s); err == nil {
		*t = parsed
		return nil
	}
	*t = OfferType(s)
	return nil
}

// Feature is an amenity a listing may provide.
type Feature string

const (
	Wifi        Feature = "wifi"
	Dishwasher  Feature = "dishwasher"
	Parking     Feature = "parking"
	Washer      Feature = "washer"
	Elevator    Feature = "elevator"
	Conditioner Feature = "conditioner"
)

// Features lists every known amenity in filter-panel order.
var Features = []Feature{Wifi, Dishwasher, Parking, Washer, Elevator, Conditioner}

// Author describes who posted the listing.
type Author struct {
	Avatar string `json:"avatar" doc:"Path to the author's avatar image" example:"img/avatars/user01.png"`
}

// Offer holds the housing details of a listing.
type Offer struct {
	Title       string    `json:"title" doc:"Listing title" example:"Big cozy flat"`
	Address     string    `json:"address" doc:"Address as \"x, y\" map coordinates" example:"600, 350"`
	Price       int       `json:"price" minimum:"0" doc:"Price per night" example:"5200"`
	Type        OfferType `json:"type" enum:"flat,house,palace,bungalow" doc:"Housing type" example:"flat"`
	Rooms       int       `json:"rooms" minimum:"0" doc:"Number of rooms" example:"2"`
	Guests      int       `json:"guests" minimum:"0" doc:"Number of guests" example:"3"`
	Checkin     string    `json:"checkin" doc:"Check-in time" example:"12:00"`
	Checkout    string    `json:"checkout" doc:"Check-out time" example:"12:00"`
	Features    []Feature `json:"features" doc:"Available amenities"`
	Description string    `json:"description" doc:"Free-form description"`
	Photos      []string  `json:"photos" doc:"Photo URLs"`
}

// HasFeature reports whether the offer provides f.
func (o Offer) HasFeature(f Feature) bool {
	return slices.Contains(o.Features, f)
}

// Location is a point on the map in map pixels.
type Location struct {
	X int `json:"x" doc:"Horizontal map coordinate" example:"600"`
	Y int `json:"y" doc:"Vertical map coordinate" example:"350"`
}

// Listing is one ad. Listings are never mutated after they are received.
type Listing struct {
	Author   Author   `json:"author"`
	Offer    Offer    `json:"offer"`
	Location Location `json:"location"`
}
