// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/lrs"
	"github.com/joeblew999/plat-lrs/internal/overlay"
	"github.com/joeblew999/plat-lrs/internal/resolver"
	"github.com/joeblew999/plat-lrs/internal/validation"
)

// Services holds the service dependencies for API handlers.
type Services struct {
	Cache    *lrs.ConfigCache
	Gateway  *gateway.Client
	OutSR    *lrs.SpatialReference
	MapUnits string
	// Precision overrides network measure precision in overlay
	// results when set.
	Precision *int
	Log       *slog.Logger
}

func (s *Services) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Services) network(id int) (*lrs.NetworkLayer, error) {
	network, ok := s.Cache.Network(id)
	if !ok {
		return nil, huma.Error404NotFound("network layer not found")
	}
	return network, nil
}

func (s *Services) resolverFor(network *lrs.NetworkLayer) *resolver.Resolver {
	return resolver.New(s.Gateway, network, resolver.Options{
		OutSR:    s.OutSR,
		MapUnits: s.MapUnits,
		Logger:   s.logger(),
	})
}

// Types

type NetworkIDInput struct {
	ID int `path:"id" doc:"Network layer ID" example:"0"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type NetworksOutput struct {
	Body []lrs.NetworkLayer
}

type EventsOutput struct {
	Body []lrs.EventLayer
}

type LocationBody struct {
	RouteID     string   `json:"routeId" doc:"Route identifier"`
	ToRouteID   string   `json:"toRouteId,omitempty" doc:"To-route identifier for line-spanning sections"`
	FromMeasure *float64 `json:"fromMeasure,omitempty" doc:"Start measure"`
	ToMeasure   *float64 `json:"toMeasure,omitempty" doc:"End measure"`
}

type ResolveBody struct {
	GeometryType string        `json:"geometryType" doc:"Resolved geometry type"`
	Geometry     *lrs.Geometry `json:"geometry" doc:"Resolved geometry"`
}

type RouteLookupInput struct {
	NetworkIDInput
	Value string `path:"value" doc:"Route identity value"`
	By    string `query:"by" enum:"auto,id,name" default:"auto" doc:"Lookup mode: the network's identity field, the route ID, or the route name"`
}

type RouteBody struct {
	RouteID     string        `json:"routeId" doc:"Composite route identifier"`
	RouteName   string        `json:"routeName,omitempty" doc:"Route name, when the network carries one"`
	LineID      string        `json:"lineId,omitempty" doc:"Line identifier on line networks"`
	LineName    string        `json:"lineName,omitempty" doc:"Line name on line networks"`
	LineOrder   *float64      `json:"lineOrder,omitempty" doc:"Position of the route on its line"`
	FromMeasure *float64      `json:"fromMeasure,omitempty" doc:"Measure at the route start"`
	ToMeasure   *float64      `json:"toMeasure,omitempty" doc:"Measure at the route end"`
	Geometry    *lrs.Geometry `json:"geometry,omitempty" doc:"Generalized route geometry"`
}

type LineRoutesInput struct {
	NetworkIDInput
	LineID    string   `path:"lineId" doc:"Line identifier"`
	FromOrder *float64 `query:"fromOrder" doc:"Lower bound of the line-order range"`
	ToOrder   *float64 `query:"toOrder" doc:"Upper bound of the line-order range"`
}

type LineRoutesOutput struct {
	Body []RouteBody
}

type LocateRequestBody struct {
	X         float64 `json:"x" doc:"Point X in map units"`
	Y         float64 `json:"y" doc:"Point Y in map units"`
	Tolerance float64 `json:"tolerance,omitempty" doc:"Search tolerance in map units"`
	RouteID   string  `json:"routeId,omitempty" doc:"Restrict matching to this route"`
}

type LocateBody struct {
	Found   bool     `json:"found" doc:"Whether a route/measure was found"`
	RouteID string   `json:"routeId,omitempty" doc:"Matched route identifier"`
	Measure *float64 `json:"measure,omitempty" doc:"Matched measure"`
}

type ValidateRequestBody struct {
	FromRoute   string `json:"fromRoute,omitempty" doc:"From-route input value"`
	ToRoute     string `json:"toRoute,omitempty" doc:"To-route input value, line networks only"`
	FromMeasure string `json:"fromMeasure,omitempty" doc:"From-measure input value"`
	ToMeasure   string `json:"toMeasure,omitempty" doc:"To-measure input value"`
}

type FieldResultBody struct {
	State  string `json:"state" doc:"Validation state"`
	Reason string `json:"reason,omitempty" doc:"Failure reason code"`
}

type ValidateBody struct {
	Valid       bool            `json:"valid" doc:"Whether the input combination is acceptable"`
	Reason      string          `json:"reason,omitempty" doc:"First violated combination rule"`
	FromRoute   FieldResultBody `json:"fromRoute"`
	ToRoute     FieldResultBody `json:"toRoute,omitempty"`
	FromMeasure FieldResultBody `json:"fromMeasure"`
	ToMeasure   FieldResultBody `json:"toMeasure"`
	Location    *LocationBody   `json:"location,omitempty" doc:"Wire location built from valid inputs"`
}

type OverlayRequestBody struct {
	Location    LocationBody `json:"location" doc:"Network location to overlay"`
	EventLayers []int        `json:"eventLayers" doc:"Event layer IDs to include"`
	Precision   *int         `json:"precision,omitempty" doc:"Measure rounding precision override"`
}

type OverlayOutput struct {
	Body gateway.FeatureSet
}

// APIHandler holds all REST API handlers. Methods named Register* are
// wired up by RegisterRoutes.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every API route on the given Huma API.
func RegisterRoutes(api huma.API, svc *Services) {
	h := NewAPIHandler(svc)
	h.RegisterHealth(api)
	h.RegisterNetworks(api)
	h.RegisterLocations(api)
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterNetworks registers network, event, and route listing routes.
func (h *APIHandler) RegisterNetworks(api huma.API) {
	huma.Get(api, "/api/v1/networks", h.GetNetworks, huma.OperationTags("networks"))
	huma.Get(api, "/api/v1/networks/{id}/events", h.GetNetworkEvents, huma.OperationTags("networks"))
	huma.Get(api, "/api/v1/networks/{id}/routes/{value}", h.GetRoute, huma.OperationTags("networks"))
	huma.Get(api, "/api/v1/networks/{id}/lines/{lineId}/routes", h.GetLineRoutes, huma.OperationTags("networks"))
}

// RegisterLocations registers the location resolution routes.
func (h *APIHandler) RegisterLocations(api huma.API) {
	huma.Post(api, "/api/v1/networks/{id}/resolve", h.Resolve, huma.OperationTags("locations"))
	huma.Post(api, "/api/v1/networks/{id}/locate", h.Locate, huma.OperationTags("locations"))
	huma.Post(api, "/api/v1/networks/{id}/validate", h.Validate, huma.OperationTags("locations"))
	huma.Post(api, "/api/v1/networks/{id}/overlay", h.Overlay, huma.OperationTags("locations"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetNetworks(ctx context.Context, input *struct{}) (*NetworksOutput, error) {
	networks := h.svc.Cache.Networks()
	out := make([]lrs.NetworkLayer, 0, len(networks))
	for _, n := range networks {
		out = append(out, *n)
	}
	return &NetworksOutput{Body: out}, nil
}

func (h *APIHandler) GetNetworkEvents(ctx context.Context, input *NetworkIDInput) (*EventsOutput, error) {
	if _, err := h.svc.network(input.ID); err != nil {
		return nil, err
	}
	events := h.svc.Cache.EventsForNetwork(input.ID)
	out := make([]lrs.EventLayer, 0, len(events))
	for _, e := range events {
		out = append(out, *e)
	}
	return &EventsOutput{Body: out}, nil
}

// GetRoute returns one route's identity and measure range. Measure
// ranges feed input bounds the same way route selection does in a map
// client.
func (h *APIHandler) GetRoute(ctx context.Context, input *RouteLookupInput) (*struct{ Body RouteBody }, error) {
	network, err := h.svc.network(input.ID)
	if err != nil {
		return nil, err
	}
	res := h.svc.resolverFor(network)

	var feature *lrs.Feature
	switch input.By {
	case "id":
		feature, err = res.RouteByID(ctx, input.Value, true, true)
	case "name":
		feature, err = res.RouteByName(ctx, input.Value, true, true)
	default:
		feature, err = res.RouteByValue(ctx, input.Value, true, true)
	}
	if err != nil {
		return nil, huma.Error502BadGateway("route lookup failed", err)
	}
	if feature == nil {
		return nil, huma.Error404NotFound("route not found")
	}

	body := routeBody(network, feature)
	body.Geometry = feature.Geometry
	return &struct{ Body RouteBody }{Body: body}, nil
}

// GetLineRoutes lists the routes of a line in line order, optionally
// restricted to an order range.
func (h *APIHandler) GetLineRoutes(ctx context.Context, input *LineRoutesInput) (*LineRoutesOutput, error) {
	network, err := h.svc.network(input.ID)
	if err != nil {
		return nil, err
	}
	if !network.SupportsLines {
		return nil, huma.Error400BadRequest("network does not support lines")
	}

	features, err := h.svc.resolverFor(network).RoutesOnLine(ctx, input.LineID, input.FromOrder, input.ToOrder, false, false)
	if err != nil {
		return nil, huma.Error502BadGateway("line route query failed", err)
	}
	out := make([]RouteBody, 0, len(features))
	for i := range features {
		out = append(out, routeBody(network, &features[i]))
	}
	return &LineRoutesOutput{Body: out}, nil
}

func routeBody(network *lrs.NetworkLayer, feature *lrs.Feature) RouteBody {
	body := RouteBody{}
	attr := func(name string) string {
		if name == "" {
			return ""
		}
		if v, ok := feature.Attributes[name]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	body.RouteID = attr(network.CompositeRouteIDFieldName)
	body.RouteName = attr(network.RouteNameFieldName)
	body.LineID = attr(network.LineIDFieldName)
	body.LineName = attr(network.LineNameFieldName)
	if network.LineOrderFieldName != "" {
		if v, ok := feature.Attributes[network.LineOrderFieldName]; ok {
			if n, ok := lrs.ParseNumber(fmt.Sprint(v)); ok {
				body.LineOrder = &n
			}
		}
	}
	body.FromMeasure, body.ToMeasure = validation.RouteEndpointMeasures(feature)
	return body
}

func (h *APIHandler) Resolve(ctx context.Context, input *struct {
	NetworkIDInput
	Body LocationBody
}) (*struct{ Body ResolveBody }, error) {
	network, err := h.svc.network(input.ID)
	if err != nil {
		return nil, err
	}
	if input.Body.RouteID == "" {
		return nil, huma.Error400BadRequest("routeId is required")
	}

	loc := resolver.BuildLocation(input.Body.RouteID, input.Body.ToRouteID, input.Body.FromMeasure, input.Body.ToMeasure)
	located, err := h.svc.resolverFor(network).MeasureToGeometry(ctx, loc)
	if err != nil {
		var noMatch *resolver.NoMatchError
		if errors.As(err, &noMatch) {
			return nil, huma.Error404NotFound(noMatch.Error())
		}
		return nil, huma.Error502BadGateway("location resolution failed", err)
	}
	return &struct{ Body ResolveBody }{Body: ResolveBody{
		GeometryType: located.GeometryType,
		Geometry:     located.Geometry,
	}}, nil
}

func (h *APIHandler) Locate(ctx context.Context, input *struct {
	NetworkIDInput
	Body LocateRequestBody
}) (*struct{ Body LocateBody }, error) {
	network, err := h.svc.network(input.ID)
	if err != nil {
		return nil, err
	}
	tolerance := input.Body.Tolerance
	if tolerance <= 0 {
		tolerance = 1
	}

	point := orb.Point{input.Body.X, input.Body.Y}
	candidate, err := h.svc.resolverFor(network).LocatePoint(ctx, point, input.Body.RouteID, tolerance)
	if err != nil {
		var ambiguous *resolver.AmbiguousRouteError
		if errors.As(err, &ambiguous) {
			return nil, huma.Error409Conflict(ambiguous.Error())
		}
		return nil, huma.Error502BadGateway("point location failed", err)
	}
	if candidate == nil {
		return &struct{ Body LocateBody }{Body: LocateBody{Found: false}}, nil
	}
	measure := candidate.Measure
	return &struct{ Body LocateBody }{Body: LocateBody{
		Found:   true,
		RouteID: candidate.RouteID,
		Measure: &measure,
	}}, nil
}

func (h *APIHandler) Validate(ctx context.Context, input *struct {
	NetworkIDInput
	Body ValidateRequestBody
}) (*struct{ Body ValidateBody }, error) {
	network, err := h.svc.network(input.ID)
	if err != nil {
		return nil, err
	}
	res := h.svc.resolverFor(network)

	set := validation.NewInputSet(network, res, res, h.svc.logger())
	set.FromRoute.SetValue(input.Body.FromRoute)
	if set.ToRoute != nil {
		set.ToRoute.SetValue(input.Body.ToRoute)
	}
	set.FromMeasure.SetValue(input.Body.FromMeasure)
	set.ToMeasure.SetValue(input.Body.ToMeasure)

	inputs, err := set.Resolve(ctx)
	if err != nil {
		return nil, huma.Error502BadGateway("validation failed", err)
	}

	body := ValidateBody{
		FromRoute:   fieldResult(inputs.FromRouteState, set.FromRoute.Reason()),
		FromMeasure: fieldResult(inputs.FromMeasureState, set.FromMeasure.Reason()),
		ToMeasure:   fieldResult(inputs.ToMeasureState, set.ToMeasure.Reason()),
	}
	if set.ToRoute != nil {
		body.ToRoute = fieldResult(inputs.ToRouteState, set.ToRoute.Reason())
	}
	if reason, ok := set.Check(inputs); !ok {
		body.Reason = string(reason)
	} else {
		body.Valid = true
		loc := set.Location(inputs)
		body.Location = &LocationBody{
			RouteID:     loc.RouteID,
			ToRouteID:   loc.ToRouteID,
			FromMeasure: loc.FromMeasure,
			ToMeasure:   loc.ToMeasure,
		}
		if loc.Measure != nil {
			body.Location.FromMeasure = loc.Measure
		}
	}
	return &struct{ Body ValidateBody }{Body: body}, nil
}

func (h *APIHandler) Overlay(ctx context.Context, input *struct {
	NetworkIDInput
	Body OverlayRequestBody
}) (*OverlayOutput, error) {
	network, err := h.svc.network(input.ID)
	if err != nil {
		return nil, err
	}
	if input.Body.Location.RouteID == "" {
		return nil, huma.Error400BadRequest("location.routeId is required")
	}
	if len(input.Body.EventLayers) == 0 {
		return nil, huma.Error400BadRequest("at least one event layer is required")
	}

	var layers []*lrs.EventLayer
	for _, id := range input.Body.EventLayers {
		layer, ok := h.svc.Cache.Event(id)
		if !ok {
			return nil, huma.Error404NotFound("event layer not found")
		}
		if layer.ParentNetwork.ID != network.ID {
			return nil, huma.Error400BadRequest("event layer does not belong to the network")
		}
		layers = append(layers, layer)
	}

	precision := h.svc.Precision
	if input.Body.Precision != nil {
		precision = input.Body.Precision
	}
	engine := overlay.New(h.svc.Gateway, h.svc.Cache, network, overlay.Options{
		Precision: precision,
		OutSR:     h.svc.OutSR,
		Logger:    h.svc.logger(),
	})

	loc := resolver.BuildLocation(
		input.Body.Location.RouteID,
		input.Body.Location.ToRouteID,
		input.Body.Location.FromMeasure,
		input.Body.Location.ToMeasure,
	)
	fs, err := engine.Overlay(ctx, loc, overlay.BuildAttributeSet(layers))
	if err != nil {
		var svcErr *gateway.ServiceError
		if errors.As(err, &svcErr) {
			return nil, huma.Error502BadGateway(svcErr.Error())
		}
		return nil, huma.Error502BadGateway("overlay failed", err)
	}
	return &OverlayOutput{Body: *fs}, nil
}

func fieldResult(st validation.State, reason validation.Reason) FieldResultBody {
	out := FieldResultBody{State: st.String()}
	if st == validation.Invalid {
		out.Reason = string(reason)
	}
	return out
}
