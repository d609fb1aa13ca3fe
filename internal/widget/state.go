// Package widget holds the application state of one map widget session
// and the pure transitions between states. Every transition returns a new
// State and leaves its argument untouched.
package widget

import (
	"slices"

	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/view"
)

// NoCard marks that no popup is open.
const NoCard = -1

// State is the full widget state.
//
// A listing is identified by its position in Listings, which is fixed
// until the next activation. Shown holds the identifiers of the Visible
// listings and ActiveCard the identifier of the open popup.
type State struct {
	Active      bool
	Listings    []listing.Listing
	Visible     []listing.Listing
	Shown       []int
	Criteria    filter.Criteria
	ActiveCard  int
	MainPin     view.MainPin
	Form        form.Ad
	FormState   form.State
	SubmitToken string
	Errors      form.FieldErrors
	Message     string
}

// Reset returns the pre-activation state: faded map, no listings, main pin
// at its default place and the form disabled.
func Reset() State {
	pin := view.DefaultMainPin()
	return State{
		ActiveCard: NoCard,
		MainPin:    pin,
		Form:       form.Defaults(pin.AddressString()),
		FormState:  form.Disabled,
	}
}

// Activate enables the map and the form and stores the downloaded listings.
// Activating an already active widget only replaces the listings.
func Activate(s State, listings []listing.Listing) State {
	next := s.clone()
	next.Active = true
	next.Listings = slices.Clone(listings)
	next.refilter()
	next.ActiveCard = NoCard
	if next.FormState == form.Disabled {
		next.FormState = form.Enabled
	}
	next.Form.Address = next.MainPin.AddressString()
	return next
}

// ApplyCriteria recomputes the visible subset and closes any open popup.
func ApplyCriteria(s State, c filter.Criteria) State {
	next := s.clone()
	next.Criteria = c
	next.refilter()
	next.ActiveCard = NoCard
	return next
}

func (s *State) refilter() {
	s.Shown = filter.Indexes(s.Listings, s.Criteria)
	s.Visible = make([]listing.Listing, len(s.Shown))
	for i, id := range s.Shown {
		s.Visible[i] = s.Listings[id]
	}
}

// ResetFilter clears every criterion.
func ResetFilter(s State) State {
	return ApplyCriteria(s, filter.Criteria{})
}

// OpenCard opens the popup of listing id, replacing any open one. A
// listing that is not visible leaves the state unchanged.
func OpenCard(s State, id int) (State, bool) {
	if !slices.Contains(s.Shown, id) {
		return s, false
	}
	next := s.clone()
	next.ActiveCard = id
	return next, true
}

// CloseCard closes the popup and deactivates its pin.
func CloseCard(s State) State {
	next := s.clone()
	next.ActiveCard = NoCard
	return next
}

// MovePin drags the main pin and refreshes the address field.
func MovePin(s State, dx, dy int) State {
	next := s.clone()
	next.MainPin = s.MainPin.Move(dx, dy)
	next.Form.Address = next.MainPin.AddressString()
	return next
}

// Card returns the listing whose popup is open.
func (s State) Card() (listing.Listing, bool) {
	if !slices.Contains(s.Shown, s.ActiveCard) {
		return listing.Listing{}, false
	}
	return s.Listings[s.ActiveCard], true
}

// Pins describes the markers of the visible subset.
func (s State) Pins() []view.Pin {
	if !s.Active {
		return nil
	}
	return view.Pins(s.Visible, s.Shown, s.ActiveCard)
}

func (s State) clone() State {
	next := s
	next.Listings = slices.Clone(s.Listings)
	next.Visible = slices.Clone(s.Visible)
	next.Shown = slices.Clone(s.Shown)
	next.Criteria.Features = slices.Clone(s.Criteria.Features)
	next.Form.Features = slices.Clone(s.Form.Features)
	if s.Errors != nil {
		next.Errors = make(form.FieldErrors, len(s.Errors))
		for k, v := range s.Errors {
			next.Errors[k] = v
		}
	}
	return next
}

// WithMessage sets the error message shown to the user. An empty msg
// clears it.
func WithMessage(s State, msg string) State {
	next := s.clone()
	next.Message = msg
	return next
}
