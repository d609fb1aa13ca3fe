package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-stay/internal/service"
)

// InfoConfig describes the running instance.
type InfoConfig struct {
	DataDir   string
	DataURL   string
	SubmitURL string
	Demo      bool
	DB        bool
}

type InfoHandler struct {
	cfg    InfoConfig
	offers *service.OfferService
}

func NewInfoHandler(cfg InfoConfig, offers *service.OfferService) *InfoHandler {
	return &InfoHandler{cfg: cfg, offers: offers}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name      string   `json:"name" doc:"Service name"`
	Version   string   `json:"version" doc:"Service version"`
	DataDir   string   `json:"data_dir,omitempty" doc:"Data directory path"`
	DataURL   string   `json:"data_url" doc:"Where the widget downloads listings"`
	SubmitURL string   `json:"submit_url" doc:"Where the widget uploads the form"`
	Demo      bool     `json:"demo" doc:"Whether the demo backend is served"`
	DB        bool     `json:"db" doc:"Whether offers are stored in DuckDB"`
	Listings  int      `json:"listings" doc:"Listings in the demo feed"`
	Features  []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:      "plat-stay",
		Version:   Version,
		DataDir:   h.cfg.DataDir,
		DataURL:   h.cfg.DataURL,
		SubmitURL: h.cfg.SubmitURL,
		Demo:      h.cfg.Demo,
		DB:        h.cfg.DB,
		Features:  []string{"datastar", "geojson"},
	}
	if h.cfg.DB {
		body.Features = append(body.Features, "duckdb")
	}
	if h.offers != nil {
		n, err := h.offers.Count(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("count listings", err)
		}
		body.Listings = n
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
