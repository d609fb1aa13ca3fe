package filter

import (
	"strings"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// Control names of the filter panel.
const (
	ControlType   = "housing-type"
	ControlPrice  = "housing-price"
	ControlRooms  = "housing-rooms"
	ControlGuests = "housing-guests"
	featurePrefix = "filter-"
)

// FeatureControl returns the checkbox control name for f.
func FeatureControl(f listing.Feature) string {
	return featurePrefix + string(f)
}

// ParseCriteria rebuilds criteria from the panel's select values and
// checkbox states. Unknown controls are ignored and unknown features are
// dropped rather than turned into a constraint nothing could satisfy.
func ParseCriteria(values map[string]string, checked map[string]bool) Criteria {
	c := Criteria{
		Type:   normalize(values[ControlType]),
		Price:  normalize(values[ControlPrice]),
		Rooms:  normalize(values[ControlRooms]),
		Guests: normalize(values[ControlGuests]),
	}
	for _, f := range listing.Features {
		if checked[FeatureControl(f)] {
			c.Features = append(c.Features, f)
		}
	}
	return c
}

// ParseFeatureList parses a comma separated feature list such as
// "wifi,parking", keeping known features in panel order.
func ParseFeatureList(s string) []listing.Feature {
	if s == "" {
		return nil
	}
	want := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		want[strings.TrimSpace(part)] = true
	}
	var out []listing.Feature
	for _, f := range listing.Features {
		if want[string(f)] {
			out = append(out, f)
		}
	}
	return out
}

// Values is the inverse of ParseCriteria, used to re-render the panel.
func (c Criteria) Values() (map[string]string, map[string]bool) {
	values := map[string]string{
		ControlType:   orAny(c.Type),
		ControlPrice:  orAny(c.Price),
		ControlRooms:  orAny(c.Rooms),
		ControlGuests: orAny(c.Guests),
	}
	checked := make(map[string]bool, len(listing.Features))
	for _, f := range listing.Features {
		checked[FeatureControl(f)] = false
	}
	for _, f := range c.Features {
		checked[FeatureControl(f)] = true
	}
	return values, checked
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == Any {
		return ""
	}
	return v
}

func orAny(v string) string {
	if v == "" {
		return Any
	}
	return v
}
