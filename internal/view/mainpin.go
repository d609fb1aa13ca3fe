package view

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Main pin geometry.
const (
	MainPinWidth       = 65
	MainPinHeight      = 79
	MainPinDefaultLeft = 570
	MainPinDefaultTop  = 375
)

// MapBounds limits where the main pin may point.
var MapBounds = orb.Bound{
	Min: orb.Point{0, 130},
	Max: orb.Point{1200, 630},
}

// MainPin is the draggable address marker. Left/Top are the element offsets.
type MainPin struct {
	Left int `json:"left"`
	Top  int `json:"top"`
}

// DefaultMainPin is the pin position before activation and after reset.
func DefaultMainPin() MainPin {
	return MainPin{Left: MainPinDefaultLeft, Top: MainPinDefaultTop}
}

// Address is the point the pin's tip marks.
func (p MainPin) Address() (x, y int) {
	return p.Left + MainPinWidth/2, p.Top + MainPinHeight
}

// AddressString formats Address the way the form's address field shows it.
func (p MainPin) AddressString() string {
	x, y := p.Address()
	return fmt.Sprintf("%d, %d", x, y)
}

// Move shifts the pin by (dx, dy). Each axis moves only if the resulting
// address stays inside MapBounds.
func (p MainPin) Move(dx, dy int) MainPin {
	next := p
	if moved := (MainPin{Left: next.Left, Top: next.Top + dy}); moved.Within() {
		next = moved
	}
	if moved := (MainPin{Left: next.Left + dx, Top: next.Top}); moved.Within() {
		next = moved
	}
	return next
}

// Within reports whether the pin's address lies inside MapBounds.
func (p MainPin) Within() bool {
	x, y := p.Address()
	return MapBounds.Contains(orb.Point{float64(x), float64(y)})
}

// Style is the inline CSS placing the main pin.
func (p MainPin) Style() string {
	return fmt.Sprintf("left: %dpx; top: %dpx;", p.Left, p.Top)
}
