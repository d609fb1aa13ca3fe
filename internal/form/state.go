package form

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of the form.
type State int

const (
	Disabled State = iota
	Enabled
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrTransition is returned for a transition the current state does not allow.
var ErrTransition = errors.New("invalid form transition")

// allowed lists the legal transitions. Reset to Disabled is always allowed.
var allowed = map[State][]State{
	Disabled:   {Enabled},
	Enabled:    {Submitting},
	Submitting: {Succeeded, Failed},
	Succeeded:  {Enabled},
	Failed:     {Enabled, Submitting},
}

// Transition returns the next state or ErrTransition.
func (s State) Transition(to State) (State, error) {
	if to == Disabled {
		return Disabled, nil
	}
	for _, next := range allowed[s] {
		if next == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("%w: %s -> %s", ErrTransition, s, to)
}

// Editable reports whether fields accept input in this state.
func (s State) Editable() bool {
	return s == Enabled || s == Failed || s == Succeeded
}
