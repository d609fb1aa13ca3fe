package widget

import (
	"errors"
	"strings"
	"testing"

	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/listing"
)

func sample() []listing.Listing {
	return []listing.Listing{
		{Offer: listing.Offer{Title: "flat", Type: listing.Flat, Price: 5000, Rooms: 1, Guests: 1}, Location: listing.Location{X: 100, Y: 200}},
		{Offer: listing.Offer{Title: "house", Type: listing.House, Price: 20000, Rooms: 3, Guests: 3}, Location: listing.Location{X: 300, Y: 400}},
		{Offer: listing.Offer{Title: "palace", Type: listing.Palace, Price: 80000, Rooms: 100, Guests: 0}, Location: listing.Location{X: 500, Y: 600}},
	}
}

func TestResetIsInactive(t *testing.T) {
	s := Reset()
	if s.Active || s.FormState != form.Disabled || s.ActiveCard != NoCard {
		t.Fatalf("state=%+v", s)
	}
	if s.Form.Address != "602, 454" {
		t.Fatalf("address=%q", s.Form.Address)
	}
	if len(s.Pins()) != 0 {
		t.Fatal("inactive widget has pins")
	}
}

func TestActivate(t *testing.T) {
	s := Activate(Reset(), sample())
	if !s.Active || s.FormState != form.Enabled {
		t.Fatalf("state=%+v", s)
	}
	if len(s.Visible) != 3 || len(s.Pins()) != 3 {
		t.Fatalf("visible=%d pins=%d, want 3", len(s.Visible), len(s.Pins()))
	}
}

func TestActivateEmpty(t *testing.T) {
	s := Activate(Reset(), nil)
	if !s.Active || len(s.Visible) != 0 {
		t.Fatalf("state=%+v", s)
	}
}

func TestApplyCriteria(t *testing.T) {
	s := Activate(Reset(), sample())
	s, _ = OpenCard(s, 2)

	f := ApplyCriteria(s, filter.Criteria{Type: "house"})
	if len(f.Visible) != 1 || f.Visible[0].Offer.Title != "house" {
		t.Fatalf("visible=%v", f.Visible)
	}
	if f.ActiveCard != NoCard {
		t.Fatal("filtering must close the popup")
	}
	if len(f.Listings) != 3 {
		t.Fatal("full list changed")
	}
	if s.ActiveCard != 2 || len(s.Visible) != 3 {
		t.Fatal("argument state was modified")
	}

	r := ResetFilter(f)
	if len(r.Visible) != 3 || r.Criteria.Type != "" {
		t.Fatalf("reset filter visible=%d", len(r.Visible))
	}
}

func TestCards(t *testing.T) {
	s := Activate(Reset(), sample())

	if _, ok := OpenCard(s, 3); ok {
		t.Fatal("out of range card opened")
	}

	s, ok := OpenCard(s, 0)
	if !ok {
		t.Fatal("card 0 not opened")
	}
	s, _ = OpenCard(s, 1)
	pins := s.Pins()
	if pins[0].Active || !pins[1].Active {
		t.Fatal("only the last opened pin may be active")
	}
	if l, ok := s.Card(); !ok || l.Offer.Title != "house" {
		t.Fatalf("card=%v ok=%v", l.Offer.Title, ok)
	}

	s = CloseCard(s)
	if _, ok := s.Card(); ok {
		t.Fatal("card still open")
	}
	for _, p := range s.Pins() {
		if p.Active {
			t.Fatal("pin still active")
		}
	}
}

func TestCardFollowsListingAfterFilter(t *testing.T) {
	s := Activate(Reset(), sample())
	if p := s.Pins()[0]; p.Index != 0 || p.Alt != "flat" {
		t.Fatalf("pin 0=%+v", p)
	}

	s = ApplyCriteria(s, filter.Criteria{Type: "house"})
	if _, ok := OpenCard(s, 0); ok {
		t.Fatal("filtered out listing opened")
	}

	pins := s.Pins()
	if len(pins) != 1 || pins[0].Index != 1 {
		t.Fatalf("pins=%+v, want the house at index 1", pins)
	}
	s, ok := OpenCard(s, pins[0].Index)
	if !ok {
		t.Fatal("visible listing not opened")
	}
	if l, _ := s.Card(); l.Offer.Title != "house" {
		t.Fatalf("card=%q, want house", l.Offer.Title)
	}
	if !s.Pins()[0].Active {
		t.Fatal("pin of the open card not active")
	}
}

func TestMovePin(t *testing.T) {
	s := MovePin(Reset(), 10, 10)
	if s.Form.Address != "612, 464" {
		t.Fatalf("address=%q", s.Form.Address)
	}
	s = MovePin(s, 0, -1000)
	if s.Form.Address != "612, 464" {
		t.Fatalf("address=%q after out of bounds move", s.Form.Address)
	}
}

func validAd() form.Ad {
	ad := form.Defaults("")
	ad.Title = strings.Repeat("a", 40)
	ad.Price = "2000"
	return ad
}

func TestChangeForm(t *testing.T) {
	s := Activate(Reset(), sample())
	ad := s.Form
	ad.Rooms = "2"
	ad.Capacity = "3"
	ad.Timein = "14:00"
	ad.Address = "elsewhere"

	s = ChangeForm(s, ad, form.FieldTimein)
	if s.Form.Capacity != "1" {
		t.Fatalf("capacity=%q, want 1", s.Form.Capacity)
	}
	if s.Form.Timeout != "14:00" {
		t.Fatalf("timeout=%q, want 14:00", s.Form.Timeout)
	}
	if s.Form.Address != s.MainPin.AddressString() {
		t.Fatalf("address=%q", s.Form.Address)
	}
}

func TestChangeFormDisabled(t *testing.T) {
	s := Reset()
	ad := s.Form
	ad.Title = "changed"
	if got := ChangeForm(s, ad, form.FieldTitle); got.Form.Title != "" {
		t.Fatal("disabled form accepted input")
	}
}

func TestSubmitInvalid(t *testing.T) {
	s := Activate(Reset(), sample())
	next, err := BeginSubmit(s, "t1")
	var errs form.FieldErrors
	if !errors.As(err, &errs) {
		t.Fatalf("err=%v, want field errors", err)
	}
	if _, ok := next.Errors[form.FieldTitle]; !ok {
		t.Fatalf("errors=%v", next.Errors)
	}
	if next.FormState != form.Enabled {
		t.Fatalf("state=%v, want enabled", next.FormState)
	}
}

func TestSubmitSuccess(t *testing.T) {
	s := Activate(Reset(), sample())
	s = ChangeForm(s, validAd(), "")
	s, err := BeginSubmit(s, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if s.FormState != form.Submitting {
		t.Fatalf("state=%v", s.FormState)
	}
	s, ok := FinishSubmit(s, "t1", nil)
	if !ok {
		t.Fatal("result dropped")
	}
	if s.Active || len(s.Listings) != 0 || s.FormState != form.Disabled {
		t.Fatalf("state=%+v, want pre-activation", s)
	}
}

func TestSubmitFailure(t *testing.T) {
	s := Activate(Reset(), sample())
	s = ChangeForm(s, validAd(), "")
	s, _ = BeginSubmit(s, "t1")
	s, _ = FinishSubmit(s, "t1", errors.New("Error 500: Internal Server Error"))
	if s.FormState != form.Failed {
		t.Fatalf("state=%v", s.FormState)
	}
	if s.Message != "Form not sent. Error 500: Internal Server Error" {
		t.Fatalf("message=%q", s.Message)
	}
	if s.Form.Price != "2000" || !s.Active {
		t.Fatal("form not preserved")
	}
	if _, err := BeginSubmit(s, "t2"); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestSubmitResultAfterReset(t *testing.T) {
	s := Activate(Reset(), sample())
	s = ChangeForm(s, validAd(), "")
	s, _ = BeginSubmit(s, "t1")

	r := Reset()
	got, ok := FinishSubmit(r, "t1", errors.New("Error 500: boom"))
	if ok || got.Message != "" || got.FormState != form.Disabled {
		t.Fatalf("ok=%v message=%q form=%v, want result dropped", ok, got.Message, got.FormState)
	}

	// Reset, reactivate and submit again: the first upload's success must
	// not wipe the second submit.
	again := ChangeForm(Activate(r, sample()), validAd(), "")
	again, _ = BeginSubmit(again, "t2")
	got, ok = FinishSubmit(again, "t1", nil)
	if ok || !got.Active || got.FormState != form.Submitting {
		t.Fatalf("ok=%v active=%v form=%v, want second submit untouched", ok, got.Active, got.FormState)
	}
	if got, ok = FinishSubmit(again, "t2", nil); !ok || got.Active {
		t.Fatalf("ok=%v active=%v, want reset after own result", ok, got.Active)
	}
}
