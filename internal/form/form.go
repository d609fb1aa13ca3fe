package form

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joeblew999/plat-stay/internal/listing"
)

// Field names as used by the form and the multipart submission.
const (
	FieldTitle       = "title"
	FieldAddress     = "address"
	FieldType        = "type"
	FieldPrice       = "price"
	FieldTimein      = "timein"
	FieldTimeout     = "timeout"
	FieldRooms       = "room_number"
	FieldCapacity    = "capacity"
	FieldFeatures    = "features"
	FieldDescription = "description"
)

// Fields lists the validated fields in form order.
var Fields = []string{
	FieldTitle, FieldAddress, FieldType, FieldPrice,
	FieldTimein, FieldTimeout, FieldRooms, FieldCapacity,
}

// Ad holds the raw values of the new-listing form. The struct tags are
// published as the form's schema and drive the rendered inputs; the
// defaults and enums must agree with Defaults and the option tables.
type Ad struct {
	Title       string            `json:"title" doc:"Listing title" minLength:"30" maxLength:"100"`
	Address     string            `json:"address" doc:"Address (coordinates)"`
	Type        string            `json:"type" enum:"bungalow,flat,house,palace" default:"flat" doc:"Housing type"`
	Price       string            `json:"price" doc:"Price per night, ₽"`
	Timein      string            `json:"timein" enum:"12:00,13:00,14:00" default:"12:00" doc:"Check-in / check-out"`
	Timeout     string            `json:"timeout" enum:"12:00,13:00,14:00" default:"12:00" doc:"Check-out time"`
	Rooms       string            `json:"room_number" enum:"1,2,3,100" default:"1" doc:"Rooms"`
	Capacity    string            `json:"capacity" enum:"3,2,1,0" default:"1" doc:"Guests"`
	Features    []listing.Feature `json:"features,omitempty" doc:"Amenities"`
	Description string            `json:"description,omitempty" doc:"Description (optional)"`
}

// Defaults returns the form as it looks after a reset.
func Defaults(address string) Ad {
	return Ad{
		Address:  address,
		Type:     string(listing.Flat),
		Timein:   Times[0],
		Timeout:  Times[0],
		Rooms:    RoomOptions[0],
		Capacity: "1",
	}
}

// FieldErrors maps a field name to the reason it is invalid.
type FieldErrors map[string]string

// Error implements error.
func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e[name]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate checks every field and returns all violations. A nil result
// means the ad can be submitted.
func Validate(ad Ad) FieldErrors {
	errs := FieldErrors{}

	title := strings.TrimSpace(ad.Title)
	switch n := len([]rune(title)); {
	case n == 0:
		errs[FieldTitle] = "title is required"
	case n < TitleMinLength:
		errs[FieldTitle] = fmt.Sprintf("title must be at least %d characters", TitleMinLength)
	case n > TitleMaxLength:
		errs[FieldTitle] = fmt.Sprintf("title must be at most %d characters", TitleMaxLength)
	}

	if strings.TrimSpace(ad.Address) == "" {
		errs[FieldAddress] = "address is required"
	}

	typ, typeErr := listing.ParseOfferType(ad.Type)
	if typeErr != nil {
		errs[FieldType] = fmt.Sprintf("unknown housing type %q", ad.Type)
	}

	if ad.Price == "" {
		errs[FieldPrice] = "price is required"
	} else if price, ok := atoi(ad.Price); !ok {
		errs[FieldPrice] = "price must be a whole number"
	} else if price > MaxPrice {
		errs[FieldPrice] = fmt.Sprintf("price must not exceed %d", MaxPrice)
	} else if typeErr == nil && price < MinPrice[typ] {
		errs[FieldPrice] = fmt.Sprintf("minimum price for %s is %d", strings.ToLower(typ.Label()), MinPrice[typ])
	}

	if !slices.Contains(Times, ad.Timein) {
		errs[FieldTimein] = fmt.Sprintf("check-in time must be one of %s", strings.Join(Times, ", "))
	}
	if !slices.Contains(Times, ad.Timeout) {
		errs[FieldTimeout] = fmt.Sprintf("check-out time must be one of %s", strings.Join(Times, ", "))
	}

	if AllowedCapacity(ad.Rooms) == nil {
		errs[FieldRooms] = fmt.Sprintf("room count must be one of %s", strings.Join(RoomOptions, ", "))
	} else if !CapacityAllowed(ad.Rooms, ad.Capacity) {
		errs[FieldCapacity] = capacityMessage(ad.Rooms)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func capacityMessage(rooms string) string {
	if rooms == "100" {
		return "100 rooms are not for guests"
	}
	return fmt.Sprintf("%s room(s) allow at most %s guest(s)", rooms, rooms)
}

// Values returns the multipart field set of the ad, mirroring the offer shape.
func (ad Ad) Values() map[string][]string {
	v := map[string][]string{
		FieldTitle:    {ad.Title},
		FieldAddress:  {ad.Address},
		FieldType:     {ad.Type},
		FieldPrice:    {ad.Price},
		FieldTimein:   {ad.Timein},
		FieldTimeout:  {ad.Timeout},
		FieldRooms:    {ad.Rooms},
		FieldCapacity: {ad.Capacity},
	}
	if ad.Description != "" {
		v[FieldDescription] = []string{ad.Description}
	}
	for _, f := range ad.Features {
		v[FieldFeatures] = append(v[FieldFeatures], string(f))
	}
	return v
}

// FromValues is the inverse of Values, used by the submit endpoint.
func FromValues(v map[string][]string) Ad {
	first := func(key string) string {
		if vals := v[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}
	ad := Ad{
		Title:       first(FieldTitle),
		Address:     first(FieldAddress),
		Type:        first(FieldType),
		Price:       first(FieldPrice),
		Timein:      first(FieldTimein),
		Timeout:     first(FieldTimeout),
		Rooms:       first(FieldRooms),
		Capacity:    first(FieldCapacity),
		Description: first(FieldDescription),
	}
	for _, f := range v[FieldFeatures] {
		if slices.Contains(listing.Features, listing.Feature(f)) {
			ad.Features = append(ad.Features, listing.Feature(f))
		}
	}
	return ad
}

// Listing converts a valid ad into a listing located at loc.
func (ad Ad) Listing(avatar string, loc listing.Location) (listing.Listing, error) {
	if errs := Validate(ad); errs != nil {
		return listing.Listing{}, errs
	}
	typ, _ := listing.ParseOfferType(ad.Type)
	price, _ := atoi(ad.Price)
	rooms, _ := atoi(ad.Rooms)
	guests, _ := atoi(ad.Capacity)
	features := ad.Features
	if features == nil {
		features = []listing.Feature{}
	}
	return listing.Listing{
		Author: listing.Author{Avatar: avatar},
		Offer: listing.Offer{
			Title:       strings.TrimSpace(ad.Title),
			Address:     ad.Address,
			Price:       price,
			Type:        typ,
			Rooms:       rooms,
			Guests:      guests,
			Checkin:     ad.Timein,
			Checkout:    ad.Timeout,
			Features:    features,
			Description: ad.Description,
			Photos:      []string{},
		},
		Location: loc,
	}, nil
}
