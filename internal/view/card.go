package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// Photo thumbnail size in the card.
const (
	PhotoWidth  = 45
	PhotoHeight = 40
	PhotoAlt    = "Housing photo"
)

// CardView is the popup content for one listing. Empty optional sections
// (description, features, photos) are left empty and not rendered.
type CardView struct {
	Index       int
	Avatar      string
	Title       string
	Address     string
	Price       string
	Type        string
	Capacity    string
	Time        string
	Description string
	Features    []string
	Photos      []string
}

// CardRenderer builds CardViews, formatting numbers for one language.
type CardRenderer struct {
	printer *message.Printer
}

// NewCardRenderer creates a renderer for tag. The zero tag means English.
func NewCardRenderer(tag language.Tag) *CardRenderer {
	if tag == language.Und {
		tag = language.English
	}
	return &CardRenderer{printer: message.NewPrinter(tag)}
}

// Card describes the popup of the listing at index.
func (r *CardRenderer) Card(index int, l listing.Listing) CardView {
	o := l.Offer
	features := make([]string, len(o.Features))
	for i, f := range o.Features {
		features[i] = string(f)
	}
	return CardView{
		Index:       index,
		Avatar:      l.Author.Avatar,
		Title:       o.Title,
		Address:     o.Address,
		Price:       r.printer.Sprintf("%d₽/night", o.Price),
		Type:        o.Type.Label(),
		Capacity:    r.printer.Sprintf("%d rooms for %d guests", o.Rooms, o.Guests),
		Time:        r.printer.Sprintf("Check-in after %s, check-out before %s", o.Checkin, o.Checkout),
		Description: o.Description,
		Features:    features,
		Photos:      append([]string(nil), o.Photos...),
	}
}

// HasFeatures reports whether the features section should be shown.
func (c CardView) HasFeatures() bool { return len(c.Features) > 0 }

// HasPhotos reports whether the photos section should be shown.
func (c CardView) HasPhotos() bool { return len(c.Photos) > 0 }

// PhotoWidth is the thumbnail width, for templates.
func (CardView) PhotoWidth() int { return PhotoWidth }

// PhotoHeight is the thumbnail height, for templates.
func (CardView) PhotoHeight() int { return PhotoHeight }

// PhotoAlt is the thumbnail alt text, for templates.
func (CardView) PhotoAlt() string { return PhotoAlt }
