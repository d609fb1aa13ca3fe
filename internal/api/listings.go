package api

import (
	"context"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-stay/internal/filter"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/view"
)

// ListingFilter holds the filter panel criteria as query parameters.
type ListingFilter struct {
	Type     string `query:"type" doc:"Housing type, or any" example:"flat"`
	Price    string `query:"price" doc:"Price bucket: low, middle (mid) or high" example:"middle"`
	Rooms    string `query:"rooms" doc:"Exact room count" example:"2"`
	Guests   string `query:"guests" doc:"Exact guest count" example:"2"`
	Features string `query:"features" doc:"Comma separated required features" example:"wifi,parking"`
}

// Criteria converts the query into filter criteria.
func (f ListingFilter) Criteria() filter.Criteria {
	values := map[string]string{
		filter.ControlType:   f.Type,
		filter.ControlPrice:  f.Price,
		filter.ControlRooms:  f.Rooms,
		filter.ControlGuests: f.Guests,
	}
	checked := map[string]bool{}
	for _, feat := range filter.ParseFeatureList(f.Features) {
		checked[filter.FeatureControl(feat)] = true
	}
	return filter.ParseCriteria(values, checked)
}

// Query returns the non-empty parameters, carried into pagination links.
func (f ListingFilter) Query() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"type": f.Type, "price": f.Price, "rooms": f.Rooms,
		"guests": f.Guests, "features": f.Features,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

type ListingsInput struct {
	ListingFilter
	humastar.PageInput
}

type ListingsOutput struct {
	Body humastar.PageBody[listing.Listing]
}

type DataOutput struct {
	Body []listing.Listing
}

type GeoJSONOutput struct {
	Body *geojson.FeatureCollection
}

func (h *APIHandler) all(ctx context.Context) ([]listing.Listing, error) {
	if h.svc == nil || h.svc.Offers == nil {
		return []listing.Listing{}, nil
	}
	ads, err := h.svc.Offers.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("load listings", err)
	}
	return ads, nil
}

// GetData is the feed the widget downloads on activation.
func (h *APIHandler) GetData(ctx context.Context, input *struct{}) (*DataOutput, error) {
	ads, err := h.all(ctx)
	if err != nil {
		return nil, err
	}
	return &DataOutput{Body: ads}, nil
}

func (h *APIHandler) GetListings(ctx context.Context, input *ListingsInput) (*ListingsOutput, error) {
	ads, err := h.all(ctx)
	if err != nil {
		return nil, err
	}
	page := humastar.Paginate(filter.Apply(ads, input.Criteria()), input.Offset, input.Limit)
	page.Query = input.Query()
	return &ListingsOutput{Body: page}, nil
}

func (h *APIHandler) GetListingsGeoJSON(ctx context.Context, input *ListingFilter) (*GeoJSONOutput, error) {
	ads, err := h.all(ctx)
	if err != nil {
		return nil, err
	}
	return &GeoJSONOutput{Body: view.FeatureCollection(filter.Apply(ads, input.Criteria()))}, nil
}
