package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/lrs"
	"github.com/joeblew999/plat-lrs/internal/server"
)

// Options defines all CLI flags and env vars for the LRS server.
// Flags: --host, --port, --service-url, --map-service-url, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_SERVICE_URL, ...
type Options struct {
	Host          string `doc:"Host to bind to" default:"0.0.0.0"`
	Port          int    `doc:"Port to listen on" short:"p" default:"8087"`
	ServiceURL    string `doc:"Linear referencing service URL"`
	MapServiceURL string `doc:"Map service URL for route layer queries"`
	MapUnits      string `doc:"Map units of the service spatial reference" default:"esriMeters"`
	OutWKID       int    `doc:"Spatial reference WKID for result geometry"`
	Precision     int    `doc:"Measure rounding precision for overlay results, -1 to use network precision" default:"-1"`
	Timeout       int    `doc:"Upstream request timeout in seconds" default:"30"`
}

func serverConfig(opts *Options) server.Config {
	return server.Config{
		Host:          opts.Host,
		Port:          fmt.Sprintf("%d", opts.Port),
		ServiceURL:    opts.ServiceURL,
		MapServiceURL: opts.MapServiceURL,
		MapUnits:      opts.MapUnits,
		OutWKID:       opts.OutWKID,
		Precision:     opts.Precision,
		Timeout:       time.Duration(opts.Timeout) * time.Second,
		Logger:        slog.Default(),
	}
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		hooks.OnStart(func() {
			srv, err := server.New(context.Background(), serverConfig(opts))
			if err != nil {
				log.Fatalf("Server startup error: %v", err)
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-lrs API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Service: %s\n", opts.ServiceURL)
			fmt.Println()
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})
	})

	cli.Root().Use = "lrs"
	cli.Root().Short = "Linear referencing system for routes, measures, and event overlays"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			cfg := serverConfig(opts)
			gw := gateway.New(cfg.ServiceURL, cfg.MapServiceURL, nil, cfg.Logger)
			srv := server.NewWithConfig(cfg, gw, lrs.ServiceConfig{})
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}
