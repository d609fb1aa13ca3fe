package ui

import (
	"encoding/json"
	"net/http"

	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/view"
	"github.com/joeblew999/plat-stay/internal/widget"
)

// OptionView is one <option> of a select.
type OptionView struct {
	Value    string
	Label    string
	Disabled bool
	Selected bool
}

// CheckView is one feature checkbox.
type CheckView struct {
	Value  string
	Label  string
	Signal string
}

// SelectView is one select of the filter panel or the form.
type SelectView struct {
	ID      string
	Signal  string
	Options []OptionView
}

var filterTypes = []OptionView{
	{Value: filter.Any, Label: "Any type"},
	{Value: string(listing.Palace), Label: "Palace"},
	{Value: string(listing.Flat), Label: "Flat"},
	{Value: string(listing.House), Label: "House"},
	{Value: string(listing.Bungalow), Label: "Bungalow"},
}

var filterPrices = []OptionView{
	{Value: filter.Any, Label: "Any"},
	{Value: "middle", Label: "10000 - 50000₽"},
	{Value: "low", Label: "up to 10000₽"},
	{Value: "high", Label: "from 50000₽"},
}

var filterRooms = []OptionView{
	{Value: filter.Any, Label: "Any number of rooms"},
	{Value: "1", Label: "One room"},
	{Value: "2", Label: "Two rooms"},
	{Value: "3", Label: "Three rooms"},
}

var filterGuests = []OptionView{
	{Value: filter.Any, Label: "Any number of guests"},
	{Value: "2", Label: "Two guests"},
	{Value: "1", Label: "One guest"},
	{Value: "0", Label: "Not for guests"},
}

var featureLabels = map[listing.Feature]string{
	listing.Wifi:        "Wi-Fi",
	listing.Dishwasher:  "Dishwasher",
	listing.Parking:     "Parking",
	listing.Washer:      "Washer",
	listing.Elevator:    "Elevator",
	listing.Conditioner: "Air conditioner",
}

var roomLabels = map[string]string{
	"1":   "1 room",
	"2":   "2 rooms",
	"3":   "3 rooms",
	"100": "100 rooms",
}

var capacityLabels = map[string]string{
	"3": "for 3 guests",
	"2": "for 2 guests",
	"1": "for 1 guest",
	"0": "not for guests",
}

// PageData is the initial page.
type PageData struct {
	Signals     string
	MainPin     view.MainPin
	Filters     []SelectView
	FilterFeats []CheckView
	Types       []OptionView
	Times       []OptionView
	Rooms       []OptionView
	Capacity    []OptionView
	AdFeats     []CheckView
	Fields      map[string]humastar.FormField
	MaxPrice    int
}

// Page serves the widget page. Each load starts a new session.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	st := sess.State()

	data, err := h.pageData(sess.ID, st)
	if err != nil {
		h.Logger.Error("page signals", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	html, err := h.Renderer.Render("page", data)
	if err != nil {
		h.Logger.Error("render failed", "template", "page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (h *Handler) pageData(sid string, st widget.State) (PageData, error) {
	signals := stateSignals(st)
	signals[SigSession] = sid
	signals[SigPinDX] = 0
	signals[SigPinDY] = 0
	signals[SigChanged] = ""
	signals[SigSuccess] = ""
	raw, err := json.Marshal(signals)
	if err != nil {
		return PageData{}, err
	}

	filters := []SelectView{
		{ID: filter.ControlType, Signal: filterSignal[filter.ControlType], Options: filterTypes},
		{ID: filter.ControlPrice, Signal: filterSignal[filter.ControlPrice], Options: filterPrices},
		{ID: filter.ControlRooms, Signal: filterSignal[filter.ControlRooms], Options: filterRooms},
		{ID: filter.ControlGuests, Signal: filterSignal[filter.ControlGuests], Options: filterGuests},
	}
	var filterFeats, adFeats []CheckView
	for _, f := range listing.Features {
		filterFeats = append(filterFeats, CheckView{Value: string(f), Label: featureLabels[f], Signal: featureSignal(f)})
		adFeats = append(adFeats, CheckView{Value: string(f), Label: featureLabels[f], Signal: adFeatPrefix + string(f)})
	}

	fields := humastar.Fields(h.adForm,
		form.FieldTitle, form.FieldAddress, form.FieldType, form.FieldPrice,
		form.FieldTimein, form.FieldRooms, form.FieldCapacity,
		form.FieldFeatures, form.FieldDescription,
	)

	var types, times, rooms []OptionView
	for _, v := range fields[form.FieldType].Enum {
		types = append(types, OptionView{Value: v, Label: listing.OfferType(v).Label(), Selected: v == st.Form.Type})
	}
	for _, v := range fields[form.FieldTimein].Enum {
		times = append(times, OptionView{Value: v, Label: "After " + v})
	}
	for _, v := range fields[form.FieldRooms].Enum {
		rooms = append(rooms, OptionView{Value: v, Label: roomLabels[v], Selected: v == st.Form.Rooms})
	}

	return PageData{
		Signals:     string(raw),
		MainPin:     st.MainPin,
		Filters:     filters,
		FilterFeats: filterFeats,
		Types:       types,
		Times:       times,
		Rooms:       rooms,
		Capacity:    capacityOptions(st.Form),
		AdFeats:     adFeats,
		Fields:      fields,
		MaxPrice:    form.MaxPrice,
	}, nil
}

// capacityOptions lists the guest options for the form's room count.
func capacityOptions(ad form.Ad) []OptionView {
	_, opts := form.CorrectCapacity(ad.Rooms, ad.Capacity)
	out := make([]OptionView, len(opts))
	for i, o := range opts {
		out[i] = OptionView{
			Value:    o.Value,
			Label:    capacityLabels[o.Value],
			Disabled: o.Disabled,
			Selected: o.Selected,
		}
	}
	return out
}
