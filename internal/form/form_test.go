package form

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/joeblew999/plat-stay/internal/listing"
)

func validAd() Ad {
	ad := Defaults("602, 454")
	ad.Title = "A quiet flat with a view of the old harbour"
	ad.Price = "1500"
	return ad
}

func TestValidAd(t *testing.T) {
	if errs := Validate(validAd()); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestMinPriceByType(t *testing.T) {
	tests := []struct {
		typ   string
		price string
		ok    bool
	}{
		{"bungalow", "0", true},
		{"flat", "999", false},
		{"flat", "1000", true},
		{"house", "4999", false},
		{"house", "5000", true},
		{"palace", "9999", false},
		{"palace", "10000", true},
	}
	for _, tt := range tests {
		ad := validAd()
		ad.Type, ad.Price = tt.typ, tt.price
		errs := Validate(ad)
		msg, bad := errs[FieldPrice]
		if bad == tt.ok {
			t.Fatalf("%s/%s: errors=%v, want ok=%v", tt.typ, tt.price, errs, tt.ok)
		}
		if bad {
			if !strings.Contains(msg, tt.typ) {
				t.Fatalf("message %q does not name %s", msg, tt.typ)
			}
			want := map[string]string{"flat": "1000", "house": "5000", "palace": "10000"}[tt.typ]
			if !strings.Contains(msg, want) {
				t.Fatalf("message %q does not name minimum %s", msg, want)
			}
		}
	}
}

func TestCapacityRules(t *testing.T) {
	tests := []struct {
		rooms, guests string
		ok            bool
	}{
		{"1", "1", true},
		{"1", "2", false},
		{"2", "2", true},
		{"2", "3", false},
		{"3", "3", true},
		{"3", "0", false},
		{"100", "0", true},
		{"100", "1", false},
	}
	for _, tt := range tests {
		ad := validAd()
		ad.Rooms, ad.Capacity = tt.rooms, tt.guests
		_, bad := Validate(ad)[FieldCapacity]
		if bad == tt.ok {
			t.Fatalf("rooms=%s guests=%s: invalid=%v, want ok=%v", tt.rooms, tt.guests, bad, tt.ok)
		}
	}

	ad := validAd()
	ad.Rooms = "4"
	if _, bad := Validate(ad)[FieldRooms]; !bad {
		t.Fatal("4 rooms should be invalid")
	}
}

func TestCorrectCapacity(t *testing.T) {
	got, opts := CorrectCapacity("1", "3")
	if got != "1" {
		t.Fatalf("capacity=%q, want 1", got)
	}
	disabled := map[string]bool{}
	for _, o := range opts {
		disabled[o.Value] = o.Disabled
		if o.Selected != (o.Value == "1") {
			t.Fatalf("option %s selected=%v", o.Value, o.Selected)
		}
	}
	if !disabled["2"] || !disabled["3"] || !disabled["0"] || disabled["1"] {
		t.Fatalf("disabled=%v", disabled)
	}

	if got, _ := CorrectCapacity("3", "2"); got != "2" {
		t.Fatalf("allowed value changed to %q", got)
	}
	if got, _ := CorrectCapacity("100", "3"); got != "0" {
		t.Fatalf("100 rooms capacity=%q, want 0", got)
	}
}

func TestMirrorTime(t *testing.T) {
	in, out := MirrorTime("13:00")
	if in != "13:00" || out != "13:00" {
		t.Fatalf("got %s/%s", in, out)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	errs := Validate(Ad{})
	for _, f := range []string{FieldTitle, FieldAddress, FieldType, FieldPrice, FieldTimein, FieldTimeout, FieldRooms} {
		if _, ok := errs[f]; !ok {
			t.Fatalf("missing error for %s in %v", f, errs)
		}
	}
	if !strings.HasPrefix(errs.Error(), "invalid form: ") {
		t.Fatalf("Error()=%q", errs.Error())
	}
}

func TestValuesRoundTrip(t *testing.T) {
	ad := validAd()
	ad.Features = []listing.Feature{listing.Wifi, listing.Washer}
	ad.Description = "Sea view"
	if got := FromValues(ad.Values()); !reflect.DeepEqual(got, ad) {
		t.Fatalf("got %+v, want %+v", got, ad)
	}
}

func TestAdListing(t *testing.T) {
	l, err := validAd().Listing("img/avatars/default.png", listing.Location{X: 602, Y: 454})
	if err != nil {
		t.Fatal(err)
	}
	if l.Offer.Price != 1500 || l.Offer.Type != listing.Flat || l.Offer.Guests != 1 {
		t.Fatalf("listing=%+v", l.Offer)
	}

	_, err = Ad{}.Listing("", listing.Location{})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err=%v, want FieldErrors", err)
	}
}

func TestStateTransitions(t *testing.T) {
	s := Disabled
	var err error
	for _, next := range []State{Enabled, Submitting, Failed, Submitting, Succeeded, Enabled} {
		if s, err = s.Transition(next); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := Disabled.Transition(Submitting); !errors.Is(err, ErrTransition) {
		t.Fatalf("err=%v, want ErrTransition", err)
	}
	if got, _ := Submitting.Transition(Disabled); got != Disabled {
		t.Fatalf("reset gave %s", got)
	}
	if Disabled.Editable() || !Enabled.Editable() {
		t.Fatal("editable flags wrong")
	}
}
