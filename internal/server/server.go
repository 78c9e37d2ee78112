package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-lrs/internal/api"
	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/lrs"
)

// Config holds the server configuration.
type Config struct {
	Host          string
	Port          string
	ServiceURL    string // Linear referencing service endpoint
	MapServiceURL string // Map service endpoint for layer queries
	MapUnits      string
	OutWKID       int
	// Precision overrides network measure precision in overlay results
	// when non-negative.
	Precision int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Server is the LRS HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	services *api.Services
	log      *slog.Logger
}

// New creates a new LRS server. The upstream service configuration is
// fetched once and cached for the server's lifetime.
func New(ctx context.Context, cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	gw := gateway.New(cfg.ServiceURL, cfg.MapServiceURL, &http.Client{Timeout: timeout}, log)

	serviceConfig, err := gw.ServiceConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load service config: %w", err)
	}
	log.Info("loaded service config",
		"networks", len(serviceConfig.NetworkLayers),
		"events", len(serviceConfig.EventLayers))
	return NewWithConfig(cfg, gw, *serviceConfig), nil
}

// NewWithConfig creates a server over an already loaded service
// configuration. Used directly for OpenAPI export, where no upstream
// round trip should happen.
func NewWithConfig(cfg Config, gw *gateway.Client, serviceConfig lrs.ServiceConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	cache := lrs.NewConfigCache(serviceConfig)

	var outSR *lrs.SpatialReference
	if cfg.OutWKID != 0 {
		outSR = &lrs.SpatialReference{WKID: cfg.OutWKID}
	}
	var precision *int
	if cfg.Precision >= 0 {
		p := cfg.Precision
		precision = &p
	}

	services := &api.Services{
		Cache:     cache,
		Gateway:   gw,
		OutSR:     outSR,
		MapUnits:  cfg.MapUnits,
		Precision: precision,
		Log:       log,
	}

	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-lrs API", "1.0.0")
	humaConfig.Info.Description = "Linear referencing API for resolving route and measure locations and overlaying event attributes."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
		log:      log,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services)

	info := api.NewInfoHandler(
		s.config.ServiceURL,
		s.config.MapServiceURL,
		len(s.services.Cache.Networks()),
		s.services.Cache.EventCount(),
	)
	info.RegisterRoutes(s.humaAPI)
}
