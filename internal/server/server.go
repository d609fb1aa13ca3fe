// Package server wires the services, the JSON API and the widget handlers
// into one chi router.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/text/language"

	"github.com/joeblew999/plat-stay/internal/api"
	"github.com/joeblew999/plat-stay/internal/api/ui"
	"github.com/joeblew999/plat-stay/internal/backend"
	"github.com/joeblew999/plat-stay/internal/db"
	"github.com/joeblew999/plat-stay/internal/humastar"
	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/logging"
	"github.com/joeblew999/plat-stay/internal/service"
	"github.com/joeblew999/plat-stay/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port string

	// DataURL and SubmitURL are the remote data service. In demo mode
	// they default to this server's own feed and submit endpoint.
	DataURL   string
	SubmitURL string
	Timeout   time.Duration
	Debounce  time.Duration

	Demo bool
	Seed uint64
	Ads  int

	DataDir      string // DuckDB and uploads; empty keeps offers in memory
	StaticDir    string // stylesheet and images served under /static/
	TemplatesDir string // overrides the embedded fragments when set
	Language     language.Tag

	Logger *slog.Logger
}

// BaseURL is the address the server is reachable at.
func (c Config) BaseURL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", host, c.Port)
}

// Server is the plat-stay HTTP server.
type Server struct {
	config   Config
	router   chi.Router
	humaAPI  huma.API
	db       *sql.DB
	services *api.Services
	sessions *service.SessionService
	renderer *templates.Renderer
	logger   *slog.Logger
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Demo {
		if cfg.DataURL == "" {
			cfg.DataURL = cfg.BaseURL() + "/api/v1/data"
		}
		if cfg.SubmitURL == "" {
			cfg.SubmitURL = cfg.BaseURL() + "/api/v1/offers"
		}
	}

	renderer, err := newRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		renderer: renderer,
		logger:   logger,
	}

	if cfg.DataDir != "" {
		conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "stay"})
		if err != nil {
			logger.Warn("duckdb unavailable, offers kept in memory", "error", err)
		} else {
			s.db = conn
		}
	}

	var seed []listing.Listing
	if cfg.Demo {
		seed = listing.NewGenerator(listing.DefaultGeneratorConfig, cfg.Seed).Generate(cfg.Ads)
	}

	bus := service.NewEventBus()
	s.services = &api.Services{
		Offers: service.NewOfferService(s.db, seed, bus, logger),
	}
	if cfg.DataDir != "" {
		s.services.Uploads = service.NewUploadService(cfg.DataDir)
	}
	s.sessions = service.NewSessionService(cfg.Debounce, bus, logger)

	client := backend.NewClient(backend.Config{
		DataURL:   cfg.DataURL,
		SubmitURL: cfg.SubmitURL,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	})

	s.router = chi.NewRouter()
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.Middleware(logger),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Datastar-Request"},
			ExposedHeaders: []string{"Link"},
			MaxAge:         300,
		}),
	)

	humaConfig := huma.DefaultConfig("plat-stay API", api.Version)
	humaConfig.Info.Description = "Rental listings on a map: data feed, submissions and the Datastar widget."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL(), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, humastar.LinkTransformer())
	s.humaAPI = humachi.New(s.router, humaConfig)

	s.routes(bus, client)
	return s, nil
}

func newRenderer(dir string) (*templates.Renderer, error) {
	if dir != "" {
		return templates.NewFromDir(dir)
	}
	return templates.New()
}

func (s *Server) routes(bus *service.EventBus, client *backend.Client) {
	// JSON API (OpenAPI-documented, hypermedia links)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.services))
	api.NewInfoHandler(api.InfoConfig{
		DataDir:   s.config.DataDir,
		DataURL:   s.config.DataURL,
		SubmitURL: s.config.SubmitURL,
		Demo:      s.config.Demo,
		DB:        s.db != nil,
	}, s.services.Offers).RegisterRoutes(s.humaAPI)
	api.NewDBHandler(s.db).RegisterRoutes(s.humaAPI)

	// Widget SSE routes
	widget := ui.NewHandler(ui.Config{
		Sessions: s.sessions,
		Backend:  client,
		Bus:      bus,
		Renderer: s.renderer,
		Language: s.config.Language,
		Logger:   s.logger,
	})
	widget.RegisterRoutes(s.humaAPI)
	s.router.Get("/", widget.Page)

	humastar.AutoLinks(s.humaAPI, "widget")

	if s.services.Uploads != nil {
		s.router.Handle(api.UploadsPath+"*", http.StripPrefix(api.UploadsPath,
			http.FileServer(http.Dir(s.services.Uploads.UploadsDir()))))
	}
	if s.config.StaticDir != "" {
		s.router.Handle("/static/*", http.StripPrefix("/static/",
			http.FileServer(http.Dir(s.config.StaticDir))))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return s.config
}

// PruneSessions drops idle widget sessions every interval until ctx ends.
func (s *Server) PruneSessions(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Prune(maxIdle); n > 0 {
				s.logger.Info("sessions pruned", "count", n, "remaining", s.sessions.Len())
			}
		}
	}
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return db.Close()
}
