package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	serviceURL    string
	mapServiceURL string
	networks      int
	events        int
}

func NewInfoHandler(serviceURL, mapServiceURL string, networks, events int) *InfoHandler {
	return &InfoHandler{
		serviceURL:    serviceURL,
		mapServiceURL: mapServiceURL,
		networks:      networks,
		events:        events,
	}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name          string `json:"name" doc:"Service name"`
	Version       string `json:"version" doc:"Service version"`
	ServiceURL    string `json:"service_url" doc:"Upstream linear referencing service URL"`
	MapServiceURL string `json:"map_service_url" doc:"Upstream map service URL"`
	Networks      int    `json:"networks" doc:"Number of network layers"`
	Events        int    `json:"events" doc:"Number of event layers"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:          "plat-lrs",
		Version:       "0.1.0",
		ServiceURL:    h.serviceURL,
		MapServiceURL: h.mapServiceURL,
		Networks:      h.networks,
		Events:        h.events,
	}}, nil
}
