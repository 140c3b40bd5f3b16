package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"toolbridge/internal/config"
	"toolbridge/internal/integrations/asana"
	"toolbridge/internal/integrations/calendar"
	"toolbridge/internal/integrations/maps"
	"toolbridge/internal/integrations/medicare"
	"toolbridge/internal/integrations/perplexity"
	"toolbridge/internal/integrations/places"
	"toolbridge/internal/logger"
	"toolbridge/internal/server"
	"toolbridge/internal/tool"

	"github.com/spf13/cobra"
)

var (
	configPath string
	timeout    int
	verbose    bool
	noColor    bool
)

// toolSource builds the tool set for one integration from the loaded
// configuration and the shared HTTP client.
type toolSource func(cfg *config.Config, hc *http.Client) []*tool.Definition

func main() {
	rootCmd := &cobra.Command{
		Use:   "toolbridge",
		Short: "MCP adapter servers for third-party web APIs",
		Long: "Toolbridge exposes third-party web APIs as schema-validated MCP tools\n" +
			"over stdio. Each subcommand runs one adapter server; credentials come\n" +
			"from environment variables or an optional YAML config file.",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0, "Upstream HTTP timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		serveCmd("medicare", "Serve Medicare Hospital Compare tools", func(cfg *config.Config, hc *http.Client) []*tool.Definition {
			return medicare.NewService(hc).Tools()
		}),
		serveCmd("maps", "Serve Google Maps distance, directions and place tools", func(cfg *config.Config, hc *http.Client) []*tool.Definition {
			return maps.NewService(cfg.GoogleMapsAPIKey, hc).Tools()
		}),
		serveCmd("places", "Serve Google Places, Routes and Geocoding tools", func(cfg *config.Config, hc *http.Client) []*tool.Definition {
			return places.NewService(cfg.GoogleMapsAPIKey, hc).Tools()
		}),
		serveCmd("calendar", "Serve Google Calendar tools", func(cfg *config.Config, hc *http.Client) []*tool.Definition {
			return calendar.NewService(cfg.CalendarAccessToken, cfg.CalendarID, hc).Tools()
		}),
		serveCmd("asana", "Serve Asana task management tools", func(cfg *config.Config, hc *http.Client) []*tool.Definition {
			return asana.NewService(cfg.AsanaAccessToken, cfg.AsanaDefaultWorkspace, hc).Tools()
		}),
		serveCmd("perplexity", "Serve Perplexity search tools", func(cfg *config.Config, hc *http.Client) []*tool.Definition {
			return perplexity.NewService(cfg.PerplexityAPIKey, hc).Tools()
		}),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd(name, short string, source toolSource) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(name, source)
		},
	}
}

func serve(name string, source toolSource) error {
	logLevel := logger.LevelInfo
	if verbose {
		logLevel = logger.LevelDebug
	}
	log := logger.New(os.Stderr, logLevel)
	if noColor {
		log.SetColorMode(false)
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if timeout > 0 {
		cfg.HTTPTimeout = time.Duration(timeout) * time.Second
	}

	hc := &http.Client{Timeout: cfg.HTTPTimeout}

	registry := tool.NewRegistry()
	registry.MustRegister(source(cfg, hc)...)

	log.Debug("Registered %d tools for %s", len(registry.List()), name)

	srv := server.New("toolbridge-"+name, registry, log)
	return srv.Run(context.Background())
}
