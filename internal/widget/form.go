package widget

import (
	"fmt"

	"github.com/joeblew999/plat-stay/internal/form"
)

// ChangeForm replaces the ad fields with ad and applies the dependent field
// rules: the address always follows the main pin, a capacity the room
// count does not allow is corrected, and a changed check-in or check-out
// time is mirrored into the other one. changed names the field the user
// edited, or is empty.
func ChangeForm(s State, ad form.Ad, changed string) State {
	next := s.clone()
	if !next.FormState.Editable() {
		return next
	}
	ad.Address = next.MainPin.AddressString()
	ad.Capacity, _ = form.CorrectCapacity(ad.Rooms, ad.Capacity)
	switch changed {
	case form.FieldTimein:
		ad.Timein, ad.Timeout = form.MirrorTime(ad.Timein)
	case form.FieldTimeout:
		ad.Timein, ad.Timeout = form.MirrorTime(ad.Timeout)
	}
	next.Form = ad
	if next.Errors != nil {
		delete(next.Errors, changed)
	}
	return next
}

// BeginSubmit validates the form. An invalid form keeps its state and
// flags every invalid field; a valid one moves to Submitting under token,
// which the caller passes back to FinishSubmit.
func BeginSubmit(s State, token string) (State, error) {
	next := s.clone()
	if errs := form.Validate(next.Form); errs != nil {
		next.Errors = errs
		return next, errs
	}
	st, err := next.FormState.Transition(form.Submitting)
	if err != nil {
		return s, err
	}
	next.FormState = st
	next.SubmitToken = token
	next.Errors = nil
	next.Message = ""
	return next, nil
}

// FinishSubmit records the upload outcome of the submit started with
// token. Success returns the whole widget to its pre-activation state;
// failure keeps the form for another attempt and shows the message. The
// result is dropped and ok is false when s is no longer waiting for that
// submit, for instance after a reset.
func FinishSubmit(s State, token string, uploadErr error) (next State, ok bool) {
	if s.FormState != form.Submitting || s.SubmitToken != token {
		return s, false
	}
	if uploadErr == nil {
		return Reset(), true
	}
	next = s.clone()
	if st, err := next.FormState.Transition(form.Failed); err == nil {
		next.FormState = st
	}
	next.SubmitToken = ""
	next.Message = SubmitErrorMessage(uploadErr)
	return next, true
}

// SubmitErrorMessage is the text shown when an upload fails.
func SubmitErrorMessage(err error) string {
	return fmt.Sprintf("Form not sent. %s", err)
}
