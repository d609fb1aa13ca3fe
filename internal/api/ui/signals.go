package ui

import (
	"math"
	"strconv"

	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/widget"
)

// Signal names shared with the page templates.
const (
	SigSession     = "sid"
	SigActive      = "active"
	SigFormEnabled = "form_enabled"
	SigSubmitting  = "submitting"
	SigError       = "error"
	SigSuccess     = "success"
	SigPinLeft     = "pin_left"
	SigPinTop      = "pin_top"
	SigPinDX       = "pin_dx"
	SigPinDY       = "pin_dy"
	SigChanged     = "ad_changed"
	SigMinPrice    = "ad_min_price"

	filterPrefix  = "filter_"
	adPrefix      = "ad_"
	adFeatPrefix  = "ad_feature_"
	invalidPrefix = "invalid_"
)

// filterSignal maps filter panel controls to signal names.
var filterSignal = map[string]string{
	filter.ControlType:   filterPrefix + "type",
	filter.ControlPrice:  filterPrefix + "price",
	filter.ControlRooms:  filterPrefix + "rooms",
	filter.ControlGuests: filterPrefix + "guests",
}

func featureSignal(f listing.Feature) string {
	return filterPrefix + string(f)
}

// criteriaFromSignals reads the filter panel.
func criteriaFromSignals(s humastar.Signals) filter.Criteria {
	values := make(map[string]string, len(filterSignal))
	for control, sig := range filterSignal {
		values[control] = s.String(sig)
	}
	checked := make(map[string]bool, len(listing.Features))
	for _, f := range listing.Features {
		checked[filter.FeatureControl(f)] = s.Bool(featureSignal(f))
	}
	return filter.ParseCriteria(values, checked)
}

// criteriaSignals is the panel state for c.
func criteriaSignals(c filter.Criteria) map[string]any {
	values, checked := c.Values()
	out := make(map[string]any, len(values)+len(checked))
	for control, v := range values {
		out[filterSignal[control]] = v
	}
	for _, f := range listing.Features {
		out[featureSignal(f)] = checked[filter.FeatureControl(f)]
	}
	return out
}

// adFromSignals reads the new-listing form.
func adFromSignals(s humastar.Signals) form.Ad {
	ad := form.Ad{
		Title:       s.String(adPrefix + form.FieldTitle),
		Address:     s.String(adPrefix + form.FieldAddress),
		Type:        s.String(adPrefix + form.FieldType),
		Price:       numberString(s, adPrefix+form.FieldPrice),
		Timein:      s.String(adPrefix + form.FieldTimein),
		Timeout:     s.String(adPrefix + form.FieldTimeout),
		Rooms:       s.String(adPrefix + form.FieldRooms),
		Capacity:    s.String(adPrefix + form.FieldCapacity),
		Description: s.String(adPrefix + form.FieldDescription),
	}
	for _, f := range listing.Features {
		if s.Bool(adFeatPrefix + string(f)) {
			ad.Features = append(ad.Features, f)
		}
	}
	return ad
}

// numberString accepts a bound number input both as a JSON number and as
// a string. A fractional or out of range number is kept as written so
// validation rejects it.
func numberString(s humastar.Signals, key string) string {
	switch v := s[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= 1<<53 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// adSignals is the form state for ad.
func adSignals(ad form.Ad) map[string]any {
	out := map[string]any{
		adPrefix + form.FieldTitle:       ad.Title,
		adPrefix + form.FieldAddress:     ad.Address,
		adPrefix + form.FieldType:        ad.Type,
		adPrefix + form.FieldPrice:       ad.Price,
		adPrefix + form.FieldTimein:      ad.Timein,
		adPrefix + form.FieldTimeout:     ad.Timeout,
		adPrefix + form.FieldRooms:       ad.Rooms,
		adPrefix + form.FieldCapacity:    ad.Capacity,
		adPrefix + form.FieldDescription: ad.Description,
		SigMinPrice:                      form.MinPriceFor(ad.Type),
	}
	for _, f := range listing.Features {
		out[adFeatPrefix+string(f)] = false
	}
	for _, f := range ad.Features {
		out[adFeatPrefix+string(f)] = true
	}
	return out
}

// invalidSignals flags every field in errs and clears the rest.
func invalidSignals(errs form.FieldErrors) map[string]any {
	out := make(map[string]any, len(form.Fields))
	for _, field := range form.Fields {
		_, bad := errs[field]
		out[invalidPrefix+field] = bad
	}
	return out
}

// stateSignals is every signal derived from st.
func stateSignals(st widget.State) map[string]any {
	out := map[string]any{
		SigActive:      st.Active,
		SigFormEnabled: st.FormState.Editable(),
		SigSubmitting:  st.FormState == form.Submitting,
		SigPinLeft:     st.MainPin.Left,
		SigPinTop:      st.MainPin.Top,
		SigError:       st.Message,
	}
	for k, v := range criteriaSignals(st.Criteria) {
		out[k] = v
	}
	for k, v := range adSignals(st.Form) {
		out[k] = v
	}
	for k, v := range invalidSignals(st.Errors) {
		out[k] = v
	}
	return out
}
