package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-stay/internal/form"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/logging"
	"github.com/joeblew999/plat-stay/internal/service"
)

// DefaultAvatar is used for submissions without an avatar.
const DefaultAvatar = "img/avatars/default.png"

// UploadsPath is where stored images are served.
const UploadsPath = "/uploads/"

// OfferFiles are the optional images of a submission. The text fields are
// read from the form values.
type OfferFiles struct {
	Avatar huma.FormFile   `form:"avatar" required:"false" doc:"Author avatar (.gif, .jpg, .jpeg or .png)"`
	Images []huma.FormFile `form:"images" required:"false" doc:"Housing photos (.gif, .jpg, .jpeg or .png)"`
}

type OfferInput struct {
	RawBody huma.MultipartFormFiles[OfferFiles]
}

// OfferCreatedBody is returned for an accepted submission.
type OfferCreatedBody struct {
	ID      string          `json:"id" doc:"Offer identifier"`
	Listing listing.Listing `json:"listing" doc:"The published listing"`
	Message string          `json:"message" doc:"Result message"`
}

// Actions points to where the new listing shows up.
func (b OfferCreatedBody) Actions() []humastar.Action {
	return []humastar.Action{
		{Rel: "collection", Href: "/api/v1/data", Method: "GET", Title: "Data feed"},
		{Rel: "related", Href: "/api/v1/listings", Method: "GET", Title: "Listings"},
	}
}

type OffersOutput struct {
	Body humastar.PageBody[service.StoredOffer]
}

// PostOffer accepts a listing from the widget form. The fields are checked
// with the same rules the widget applies before uploading.
func (h *APIHandler) PostOffer(ctx context.Context, input *OfferInput) (*struct{ Body OfferCreatedBody }, error) {
	if h.svc == nil || h.svc.Offers == nil {
		return nil, huma.Error503ServiceUnavailable("offers not available")
	}
	mf := input.RawBody.Form
	if mf == nil {
		return nil, huma.Error400BadRequest("multipart form expected")
	}

	ad := form.FromValues(mf.Value)
	if errs := form.Validate(ad); errs != nil {
		return nil, fieldError(errs)
	}
	loc, err := ParseAddress(ad.Address)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error(), &huma.ErrorDetail{
			Location: "body." + form.FieldAddress, Message: err.Error(), Value: ad.Address,
		})
	}

	avatars := mf.File["avatar"]
	images := mf.File["images"]
	for _, fh := range append(slices.Clone(avatars), images...) {
		if !service.ImageAllowed(fh.Filename) {
			return nil, huma.Error422UnprocessableEntity(
				fmt.Sprintf("%s: %s", service.ErrUnsupportedImage, fh.Filename))
		}
	}

	// Images saved so far are removed again when the offer is rejected.
	var saved []string
	ok := false
	defer func() {
		if !ok {
			h.discard(ctx, saved)
		}
	}()

	avatar := DefaultAvatar
	if len(avatars) > 0 {
		if avatar, err = h.save(avatars[0]); err != nil {
			return nil, err
		}
		saved = append(saved, avatar)
	}

	l, err := ad.Listing(avatar, loc)
	if err != nil {
		var errs form.FieldErrors
		if errors.As(err, &errs) {
			return nil, fieldError(errs)
		}
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	for _, fh := range images {
		photo, err := h.save(fh)
		if err != nil {
			return nil, err
		}
		saved = append(saved, photo)
		l.Offer.Photos = append(l.Offer.Photos, photo)
	}

	stored, err := h.svc.Offers.Add(ctx, l)
	if err != nil {
		return nil, huma.Error500InternalServerError("store offer", err)
	}
	ok = true
	return &struct{ Body OfferCreatedBody }{Body: OfferCreatedBody{
		ID: stored.ID, Listing: stored.Listing, Message: "Offer published",
	}}, nil
}

func (h *APIHandler) save(fh *multipart.FileHeader) (string, error) {
	if h.svc.Uploads == nil {
		return "", huma.Error503ServiceUnavailable("uploads not available")
	}
	f, err := fh.Open()
	if err != nil {
		return "", huma.Error400BadRequest("read upload: " + err.Error())
	}
	defer f.Close()
	name, err := h.svc.Uploads.Save(fh.Filename, f)
	if err != nil {
		return "", huma.Error500InternalServerError("save upload", err)
	}
	return UploadsPath + name, nil
}

// discard removes uploads saved for a rejected offer.
func (h *APIHandler) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := h.svc.Uploads.Remove(strings.TrimPrefix(p, UploadsPath)); err != nil {
			logging.FromContext(ctx).Warn("remove upload", "path", p, "error", err)
		}
	}
}

// GetOffers pages through the accepted submissions.
func (h *APIHandler) GetOffers(ctx context.Context, input *humastar.PageInput) (*OffersOutput, error) {
	if h.svc == nil || h.svc.Offers == nil {
		return &OffersOutput{Body: humastar.Paginate([]service.StoredOffer{}, input.Offset, input.Limit)}, nil
	}
	offers, err := h.svc.Offers.Offers(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("load offers", err)
	}
	return &OffersOutput{Body: humastar.Paginate(offers, input.Offset, input.Limit)}, nil
}

func fieldError(errs form.FieldErrors) error {
	details := make([]error, 0, len(errs))
	for _, field := range form.Fields {
		if msg, ok := errs[field]; ok {
			details = append(details, &huma.ErrorDetail{Location: "body." + field, Message: msg})
		}
	}
	return huma.Error422UnprocessableEntity("invalid offer", details...)
}

// ParseAddress reads the "x, y" address the main pin writes into the form.
func ParseAddress(s string) (listing.Location, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return listing.Location{}, fmt.Errorf("address %q is not \"x, y\"", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil {
		return listing.Location{}, fmt.Errorf("address %q is not \"x, y\"", s)
	}
	return listing.Location{X: x, Y: y}, nil
}
