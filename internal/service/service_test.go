package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/joeblew999/plat-stay/internal/db"
	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/widget"
)

func seed() []listing.Listing {
	return listing.NewGenerator(listing.DefaultGeneratorConfig, 1).Generate(3)
}

func newListing(title string) listing.Listing {
	return listing.Listing{
		Offer:    listing.Offer{Title: title, Type: listing.House, Price: 7000, Features: []listing.Feature{}, Photos: []string{}},
		Location: listing.Location{X: 10, Y: 200},
	}
}

func testOffers(t *testing.T, svc *OfferService) {
	t.Helper()
	ctx := context.Background()

	ads, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ads) != 3 {
		t.Fatalf("len=%d, want 3", len(ads))
	}

	for _, title := range []string{"first", "second"} {
		if _, err := svc.Add(ctx, newListing(title)); err != nil {
			t.Fatal(err)
		}
	}

	ads, err = svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ads) != 5 {
		t.Fatalf("len=%d, want 5", len(ads))
	}
	if ads[3].Offer.Title != "first" || ads[4].Offer.Title != "second" {
		t.Fatalf("order=%q,%q", ads[3].Offer.Title, ads[4].Offer.Title)
	}
	if ads[4].Offer.Type != listing.House || ads[4].Location.Y != 200 {
		t.Fatalf("listing=%+v", ads[4])
	}
	if n, err := svc.Count(ctx); err != nil || n != 5 {
		t.Fatalf("count=%d err=%v", n, err)
	}
}

func TestOfferServiceMemory(t *testing.T) {
	testOffers(t, NewOfferService(nil, seed(), nil, nil))
}

func TestOfferServiceDuckDB(t *testing.T) {
	conn, err := db.Open(context.Background(), db.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	svc := NewOfferService(conn, seed(), nil, nil)
	// Offers created within the same clock tick still list in insert order.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	testOffers(t, svc)
}

func TestOfferServicePublishes(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("")
	defer bus.Unsubscribe(ch)

	svc := NewOfferService(nil, nil, bus, nil)
	o, err := svc.Add(context.Background(), newListing("x"))
	if err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-ch:
		if e.Kind != EventOfferAdded || e.ID != o.ID {
			t.Fatalf("event=%+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestEventBusSessionFilter(t *testing.T) {
	bus := NewEventBus()
	a := bus.Subscribe("a")
	b := bus.Subscribe("b")
	defer bus.Unsubscribe(a)
	defer bus.Unsubscribe(b)

	bus.Publish(Event{Kind: EventRender, Session: "a"})
	bus.Publish(Event{Kind: EventOfferAdded})

	if got := len(a); got != 2 {
		t.Fatalf("a received %d events, want 2", got)
	}
	if got := len(b); got != 1 {
		t.Fatalf("b received %d events, want 1", got)
	}
}

func TestSessionDebounce(t *testing.T) {
	bus := NewEventBus()
	sessions := NewSessionService(20*time.Millisecond, bus, nil)
	sess := sessions.Create()
	ch := bus.Subscribe(sess.ID)
	defer bus.Unsubscribe(ch)

	sess.Update(func(s widget.State) widget.State { return widget.Activate(s, seed()) })
	for _, typ := range []string{"flat", "house", "palace"} {
		c := filter.Criteria{Type: typ}
		sess.Debounce(func(s widget.State) widget.State { return widget.ApplyCriteria(s, c) })
	}

	select {
	case e := <-ch:
		if e.Kind != EventRender || e.Session != sess.ID {
			t.Fatalf("event=%+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced update never ran")
	}
	if got := sess.State().Criteria.Type; got != "palace" {
		t.Fatalf("criteria type=%q, want palace", got)
	}
	select {
	case e := <-ch:
		t.Fatalf("unexpected second event %+v", e)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestSessionService(t *testing.T) {
	sessions := NewSessionService(0, nil, nil)
	a := sessions.Create()
	if got, ok := sessions.Get(a.ID); !ok || got != a {
		t.Fatal("created session not found")
	}
	if _, ok := sessions.Get("unknown"); ok {
		t.Fatal("unknown session found")
	}
	b := sessions.Create()
	if b.ID == a.ID || sessions.Len() != 2 {
		t.Fatalf("id=%q len=%d", b.ID, sessions.Len())
	}
	if st := b.State(); st.Active {
		t.Fatal("new session is active")
	}

	time.Sleep(50 * time.Millisecond)
	b.Update(func(s widget.State) widget.State { return s })
	if n := sessions.Prune(25 * time.Millisecond); n != 1 {
		t.Fatalf("pruned=%d, want 1", n)
	}
	if _, ok := sessions.Get(a.ID); ok {
		t.Fatal("idle session survived")
	}
	sessions.Delete(b.ID)
	if sessions.Len() != 0 {
		t.Fatal("session not deleted")
	}
}

func TestUploadService(t *testing.T) {
	svc := NewUploadService(t.TempDir())

	if _, err := svc.Save("avatar.bmp", strings.NewReader("x")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("err=%v, want ErrUnsupportedImage", err)
	}

	name, err := svc.Save("Avatar.PNG", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("name=%q", name)
	}

	files, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].FileType != "PNG" || files[0].Size != "9 B" {
		t.Fatalf("files=%+v", files)
	}
}

func TestUploadSaveFailure(t *testing.T) {
	svc := NewUploadService(t.TempDir())
	broken := io.MultiReader(strings.NewReader("half"), iotest.ErrReader(errors.New("connection reset")))

	if _, err := svc.Save("photo.jpg", broken); err == nil {
		t.Fatal("expected error")
	}
	files, err := svc.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Fatalf("files=%+v, want none", files)
	}
	raw, _ := json.Marshal(files)
	if string(raw) != "[]" {
		t.Fatalf("got=%s, want []", raw)
	}
}

func TestUploadRemove(t *testing.T) {
	svc := NewUploadService(t.TempDir())
	name, err := svc.Save("a.gif", strings.NewReader("gif"))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove(name); err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove(name); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if files, _ := svc.List(); len(files) != 0 {
		t.Fatalf("files=%+v, want none", files)
	}
}
