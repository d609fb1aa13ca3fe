package ui

import (
	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/widget"
)

// Element selectors patched by the handlers.
const (
	selPins     = "#map-pins"
	selCard     = "#map-card"
	selCapacity = "#ad-capacity"
)

// renderMap patches the pins and the popup.
func (h *Handler) renderMap(sse humastar.SSE, st widget.State) {
	sse.Signals(map[string]any{
		SigActive:  st.Active,
		SigPinLeft: st.MainPin.Left,
		SigPinTop:  st.MainPin.Top,
	})
	sse.Patch(h.Render("pins", st.Pins()), selPins)
	h.renderCard(sse, st)
}

func (h *Handler) renderCard(sse humastar.SSE, st widget.State) {
	l, ok := st.Card()
	if !ok {
		sse.Clear(selCard)
		return
	}
	sse.Patch(h.Render("card", h.cards.Card(st.ActiveCard, l)), selCard)
}

// renderForm patches the form values, the invalid flags and the capacity
// options.
func (h *Handler) renderForm(sse humastar.SSE, st widget.State) {
	signals := map[string]any{
		SigFormEnabled: st.FormState.Editable(),
		SigSubmitting:  st.FormState == form.Submitting,
	}
	for k, v := range adSignals(st.Form) {
		signals[k] = v
	}
	for k, v := range invalidSignals(st.Errors) {
		signals[k] = v
	}
	sse.Signals(signals)
	sse.Patch(h.Render("capacity-options", capacityOptions(st.Form)), selCapacity)
}

// renderAll patches everything derived from st.
func (h *Handler) renderAll(sse humastar.SSE, st widget.State) {
	sse.Signals(stateSignals(st))
	sse.Patch(h.Render("pins", st.Pins()), selPins)
	h.renderCard(sse, st)
	sse.Patch(h.Render("capacity-options", capacityOptions(st.Form)), selCapacity)
}
