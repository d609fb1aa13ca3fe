// Package view turns listings into render descriptions for the map: pins,
// the draggable main pin and the popup card. It knows nothing about HTML.
package view

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// Pin marker size in pixels.
const (
	PinWidth  = 50
	PinHeight = 70
)

// Pin is one marker on the map.
type Pin struct {
	Index  int    `json:"index"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Avatar string `json:"avatar"`
	Alt    string `json:"alt"`
	Active bool   `json:"active"`
}

// Pins returns one marker per listing, anchored at the marker's bottom
// centre. ids[i] identifies listings[i] and becomes the pin's Index; a nil
// ids numbers the pins by position. active is the id of the pin whose card
// is open, or -1.
func Pins(listings []listing.Listing, ids []int, active int) []Pin {
	pins := make([]Pin, len(listings))
	for i, l := range listings {
		id := i
		if ids != nil {
			id = ids[i]
		}
		pins[i] = Pin{
			Index:  id,
			Left:   l.Location.X - PinWidth/2,
			Top:    l.Location.Y - PinHeight,
			Avatar: l.Author.Avatar,
			Alt:    l.Offer.Title,
			Active: id == active,
		}
	}
	return pins
}

// Style is the inline CSS placing the pin.
func (p Pin) Style() string {
	return fmt.Sprintf("left: %dpx; top: %dpx;", p.Left, p.Top)
}

// FeatureCollection exports listings as GeoJSON points in map coordinates.
func FeatureCollection(listings []listing.Listing) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, l := range listings {
		f := geojson.NewFeature(orb.Point{float64(l.Location.X), float64(l.Location.Y)})
		f.ID = i
		f.Properties["title"] = l.Offer.Title
		f.Properties["type"] = string(l.Offer.Type)
		f.Properties["price"] = l.Offer.Price
		f.Properties["rooms"] = l.Offer.Rooms
		f.Properties["guests"] = l.Offer.Guests
		f.Properties["avatar"] = l.Author.Avatar
		fc.Append(f)
	}
	return fc
}
