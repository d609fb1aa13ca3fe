package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-stay/internal/listing"
	"github.com/joeblew999/plat-stay/internal/logging"
	"github.com/joeblew999/plat-stay/internal/server"
)

// Options defines all CLI flags and env vars for the stay server.
// Flags: --host, --port, --data-url, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_URL, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataURL      string `doc:"Listing feed URL (defaults to the demo feed)"`
	SubmitURL    string `doc:"Form submit URL (defaults to the demo endpoint)"`
	TimeoutMS    int    `doc:"Timeout of one backend request in milliseconds" default:"10000"`
	DebounceMS   int    `doc:"Filter debounce period in milliseconds" default:"300"`
	Demo         bool   `doc:"Serve generated listings and accept submissions" default:"true"`
	Seed         int    `doc:"Seed for generated listings" default:"1"`
	Ads          int    `doc:"Number of generated listings" default:"8"`
	DataDir      string `doc:"Directory for DuckDB and uploads (empty keeps offers in memory)" default:".data"`
	StaticDir    string `doc:"Directory served under /static/" default:"web/static"`
	TemplatesDir string `doc:"Fragment template directory (empty uses the embedded templates)"`
	Lang         string `doc:"Language for card texts" default:"en"`
	SessionTTL   int    `doc:"Minutes before an idle widget session is dropped" default:"30"`
	LogLevel     string `doc:"Log level: debug, info, warn, error" default:"info"`
	LogJSON      bool   `doc:"Log JSON instead of text"`
	FluentHost   string `doc:"Fluent Bit host; empty disables forwarding"`
	FluentPort   int    `doc:"Fluent Bit forward port" default:"24224"`
}

func newLogger(opts *Options) (*slog.Logger, func()) {
	logger, closer, err := logging.New(logging.Config{
		Level: logging.ParseLevel(opts.LogLevel),
		JSON:  opts.LogJSON,
		Color: !opts.LogJSON,
		Fluent: logging.FluentConfig{
			Host: opts.FluentHost,
			Port: opts.FluentPort,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fluent forwarding disabled: %v\n", err)
		logger, closer, _ = logging.New(logging.Config{
			Level: logging.ParseLevel(opts.LogLevel),
			JSON:  opts.LogJSON,
			Color: !opts.LogJSON,
		})
	}
	return logger, func() { closer.Close() }
}

func newServer(opts *Options, logger *slog.Logger) (*server.Server, error) {
	lang, err := language.Parse(opts.Lang)
	if err != nil {
		lang = language.English
	}
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataURL:      opts.DataURL,
		SubmitURL:    opts.SubmitURL,
		Timeout:      time.Duration(opts.TimeoutMS) * time.Millisecond,
		Debounce:     time.Duration(opts.DebounceMS) * time.Millisecond,
		Demo:         opts.Demo,
		Seed:         uint64(opts.Seed),
		Ads:          opts.Ads,
		DataDir:      opts.DataDir,
		StaticDir:    opts.StaticDir,
		TemplatesDir: opts.TemplatesDir,
		Language:     lang,
		Logger:       logger,
	})
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		logger, closeLogs := newLogger(opts)
		slog.SetDefault(logger)

		srv, err := newServer(opts, logger)
		if err != nil {
			logger.Error("server setup failed", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}

		hooks.OnStart(func() {
			cfg := srv.Config()
			baseURL := cfg.BaseURL()

			fmt.Println()
			fmt.Printf("plat-stay server starting...\n")
			fmt.Printf("  Widget:  %s/\n", baseURL)
			fmt.Printf("  Data:    %s\n", cfg.DataURL)
			fmt.Printf("  Submit:  %s\n", cfg.SubmitURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			go srv.PruneSessions(ctx, time.Minute, time.Duration(opts.SessionTTL)*time.Minute)

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			cancel()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", "error", err)
			}
			if err := srv.Close(); err != nil {
				logger.Warn("close", "error", err)
			}
			logger.Info("server stopped")
			closeLogs()
		})
	})

	cli.Root().Use = "stay"
	cli.Root().Short = "Rental listings on a map"
	cli.Root().Version = "1.0.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			logger, closeLogs := newLogger(opts)
			defer closeLogs()
			opts.DataDir = ""
			srv, err := newServer(opts, logger)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
				os.Exit(1)
			}
			useYAML, _ := cmd.Flags().GetBool("yaml")
			if err := printAs(srv.OpenAPI(), useYAML); err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// gen-ads subcommand: print generated listings
	genAdsCmd := &cobra.Command{
		Use:   "gen-ads",
		Short: "Print generated demo listings (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			n, _ := cmd.Flags().GetInt("count")
			if n <= 0 {
				n = opts.Ads
			}
			ads := listing.NewGenerator(listing.DefaultGeneratorConfig, uint64(opts.Seed)).Generate(n)
			useYAML, _ := cmd.Flags().GetBool("yaml")
			if err := printAs(ads, useYAML); err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling listings: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	genAdsCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	genAdsCmd.Flags().IntP("count", "n", 0, "Number of listings (defaults to --ads)")
	cli.Root().AddCommand(genAdsCmd)

	cli.Run()
}

func printAs(v any, useYAML bool) error {
	var output []byte
	var err error
	if useYAML {
		output, err = yaml.Marshal(v)
	} else {
		output, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
