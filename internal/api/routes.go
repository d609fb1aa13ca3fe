// Package api defines the Huma JSON API: the demo data feed and submit
// endpoint the widget talks to, plus read-only listing queries.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-stay/internal/service"
)

// Version is reported by the health and info endpoints.
const Version = "1.0.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Offers  *service.OfferService
	Uploads *service.UploadService
}

// Types

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterData registers the widget's data feed.
func (h *APIHandler) RegisterData(api huma.API) {
	huma.Get(api, "/api/v1/data", h.GetData, huma.OperationTags("data"))
}

// RegisterListings registers the listing query routes.
func (h *APIHandler) RegisterListings(api huma.API) {
	huma.Get(api, "/api/v1/listings", h.GetListings, huma.OperationTags("listings"))
	huma.Get(api, "/api/v1/listings/geojson", h.GetListingsGeoJSON, huma.OperationTags("listings"))
}

// RegisterOffers registers the submit endpoint and the accepted offers.
func (h *APIHandler) RegisterOffers(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "post-offer",
		Method:      "POST",
		Path:        "/api/v1/offers",
		Summary:     "Submit a listing",
		Description: "Multipart form with the listing fields, an optional avatar and photos.",
		Tags:        []string{"offers"},
	}, h.PostOffer)
	huma.Get(api, "/api/v1/offers", h.GetOffers, huma.OperationTags("offers"))
}

// RegisterUploads registers the uploaded image listing.
func (h *APIHandler) RegisterUploads(api huma.API) {
	huma.Get(api, "/api/v1/uploads", h.GetUploads, huma.OperationTags("uploads"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetUploads(ctx context.Context, input *struct{}) (*struct{ Body []service.UploadFile }, error) {
	if h.svc == nil || h.svc.Uploads == nil {
		return &struct{ Body []service.UploadFile }{Body: []service.UploadFile{}}, nil
	}
	files, err := h.svc.Uploads.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("list uploads", err)
	}
	return &struct{ Body []service.UploadFile }{Body: files}, nil
}
