// Package resolver converts between route/measure locations and map
// geometry through the linear referencing service, including candidate
// search and ambiguity resolution for map clicks.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/geometry"
	"github.com/joeblew999/plat-lrs/internal/lrs"
)

// Gateway is the slice of the service client the resolver depends on.
type Gateway interface {
	MeasureToGeometry(ctx context.Context, networkID int, params gateway.MeasureToGeometryParams) (*gateway.MeasureToGeometryResponse, error)
	GeometryToMeasure(ctx context.Context, networkID int, params gateway.GeometryToMeasureParams) (*gateway.GeometryToMeasureResponse, error)
	Query(ctx context.Context, layerID int, q gateway.Query) (*gateway.FeatureSet, error)
}

// RouteChooser resolves a multi-route ambiguity: given the route
// features found under a map click, it returns the chosen composite
// route ID, or "" when the user declines to choose.
type RouteChooser interface {
	ChooseRoute(ctx context.Context, routes []lrs.Feature) (string, error)
}

// NoMatchError reports a location the service could not fully locate,
// carrying the raw locating status for diagnostics.
type NoMatchError struct {
	Status string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no fully matching location found (status %s)", e.Status)
}

// AmbiguousRouteError reports a map click matching several routes when
// no chooser is configured to pick one.
type AmbiguousRouteError struct {
	RouteIDs []string
}

func (e *AmbiguousRouteError) Error() string {
	return fmt.Sprintf("point matches %d routes and no route chooser is configured", len(e.RouteIDs))
}

// Resolver resolves locations against one network layer.
type Resolver struct {
	gw      Gateway
	network *lrs.NetworkLayer
	outSR   *lrs.SpatialReference
	// MapUnits drives maxAllowableOffset when generalized geometry is
	// requested; empty means unknown units and no generalization.
	mapUnits string
	chooser  RouteChooser
	log      *slog.Logger
}

// Options configures a Resolver beyond its required collaborators.
type Options struct {
	OutSR    *lrs.SpatialReference
	MapUnits string
	Chooser  RouteChooser
	Logger   *slog.Logger
}

// New creates a resolver for a network layer.
func New(gw Gateway, network *lrs.NetworkLayer, opts Options) *Resolver {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		gw:       gw,
		network:  network,
		outSR:    opts.OutSR,
		mapUnits: opts.MapUnits,
		chooser:  opts.Chooser,
		log:      log,
	}
}

// Network returns the network layer this resolver is bound to.
func (r *Resolver) Network() *lrs.NetworkLayer { return r.network }

// Located is a successfully resolved location: the wire geometry (with
// the envelope spatial reference already applied) and its typed form.
type Located struct {
	GeometryType string
	Geometry     *lrs.Geometry
	Shape        orb.Geometry
}

// MeasureToGeometry resolves a single location to geometry. Only the
// fully located status is accepted; any other status is rejected with a
// NoMatchError carrying the raw status.
func (r *Resolver) MeasureToGeometry(ctx context.Context, loc lrs.Location) (*Located, error) {
	resp, err := r.gw.MeasureToGeometry(ctx, r.network.ID, gateway.MeasureToGeometryParams{
		Locations: []lrs.Location{loc},
		OutSR:     r.outSR,
	})
	if err != nil {
		return nil, err
	}

	for _, result := range resp.Locations {
		if result.Status == lrs.LocatingOK {
			return &Located{
				GeometryType: result.GeometryType,
				Geometry:     result.Geometry,
				Shape:        geometry.Create(result.GeometryType, result.Geometry),
			}, nil
		}
	}

	status := ""
	if len(resp.Locations) > 0 {
		status = resp.Locations[0].Status
	}
	r.log.Debug("location not fully matched", "routeId", loc.RouteID, "status", status)
	return nil, &NoMatchError{Status: status}
}

// ResolveGeometry resolves a partial-route section between two measures
// in one round trip. toRouteID is included only when present, enabling
// line-spanning segments.
func (r *Resolver) ResolveGeometry(ctx context.Context, routeID, toRouteID string, fromMeasure, toMeasure float64) (*Located, error) {
	return r.MeasureToGeometry(ctx, BuildLocation(routeID, toRouteID, &fromMeasure, &toMeasure))
}

// BuildLocation assembles the wire location for a route and up to two
// measures: both measures form a from/to pair (with the to-route when
// given), a single measure in either slot becomes a point location, and
// no measures select the whole route.
func BuildLocation(routeID, toRouteID string, fromMeasure, toMeasure *float64) lrs.Location {
	loc := lrs.Location{RouteID: routeID}
	switch {
	case fromMeasure != nil && toMeasure != nil:
		loc.FromMeasure = fromMeasure
		loc.ToMeasure = toMeasure
		if toRouteID != "" {
			loc.ToRouteID = toRouteID
		}
	case fromMeasure != nil:
		loc.Measure = fromMeasure
	case toMeasure != nil:
		loc.Measure = toMeasure
	}
	return loc
}

// MeasureCheck is the result of testing a measure against a route.
type MeasureCheck struct {
	Valid    bool
	Geometry *lrs.Geometry
	Shape    orb.Geometry
}

// IsMeasureOnRoute reports whether a measure locates on a route. A
// non-success locating status means the measure is not on the route; it
// is not an error.
func (r *Resolver) IsMeasureOnRoute(ctx context.Context, routeID string, measure float64) (MeasureCheck, error) {
	if routeID == "" {
		return MeasureCheck{}, nil
	}
	located, err := r.MeasureToGeometry(ctx, BuildLocation(routeID, "", &measure, nil))
	if err != nil {
		var noMatch *NoMatchError
		if errors.As(err, &noMatch) {
			return MeasureCheck{}, nil
		}
		return MeasureCheck{}, err
	}
	return MeasureCheck{Valid: true, Geometry: located.Geometry, Shape: located.Shape}, nil
}

// Candidate is one route/measure match for a clicked point.
type Candidate struct {
	RouteID  string
	Measure  float64
	Geometry orb.Point
}

// GeometryToMeasure finds the route/measure candidates within tolerance
// (in map units) of a point. routeID, when set, constrains matching to
// that route.
func (r *Resolver) GeometryToMeasure(ctx context.Context, point orb.Point, routeID string, tolerance float64) ([]Candidate, error) {
	x, y := point.X(), point.Y()
	resp, err := r.gw.GeometryToMeasure(ctx, r.network.ID, gateway.GeometryToMeasureParams{
		Locations: []gateway.PointLocation{{
			RouteID:  routeID,
			Geometry: lrs.Geometry{X: &x, Y: &y},
		}},
		Tolerance: tolerance,
		InSR:      r.outSR,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Locations) == 0 {
		return nil, nil
	}

	var candidates []Candidate
	for _, match := range resp.Locations[0].Results {
		c := Candidate{RouteID: match.RouteID, Measure: match.Measure}
		if g := match.Geometry; g != nil && g.X != nil && g.Y != nil {
			c.Geometry = orb.Point{*g.X, *g.Y}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// LocatePoint resolves a map click to one route/measure. Candidates
// spanning several routes are first narrowed to a single route, by the
// configured chooser when the buffered route search still finds more
// than one; among the remaining candidates the geometrically nearest by
// planar distance wins, ties broken by input order. Returns nil when
// nothing is found or the chooser declines.
func (r *Resolver) LocatePoint(ctx context.Context, point orb.Point, routeID string, tolerance float64) (*Candidate, error) {
	candidates, err := r.GeometryToMeasure(ctx, point, routeID, tolerance)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if ids := distinctRouteIDs(candidates); len(ids) > 1 {
		chosen, err := r.chooseRoute(ctx, point, tolerance, ids)
		if err != nil {
			return nil, err
		}
		if chosen == "" {
			return nil, nil
		}
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.RouteID == chosen {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
		if len(candidates) == 0 {
			return nil, nil
		}
	}

	// Only candidates with geometry compete on distance; the first
	// candidate stands when none carries geometry.
	nearest := candidates[0]
	bestDist := -1.0
	for _, c := range candidates {
		if c.Geometry == (orb.Point{}) {
			continue
		}
		d := planar.Distance(point, c.Geometry)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			nearest = c
		}
	}
	return &nearest, nil
}

// chooseRoute narrows a multi-route click: the routes under the click
// are fetched, and if more than one remains the chooser picks.
func (r *Resolver) chooseRoute(ctx context.Context, point orb.Point, tolerance float64, ids []string) (string, error) {
	features, err := r.RoutesAtPoint(ctx, point, tolerance, true)
	if err != nil {
		return "", err
	}
	if len(features) == 0 {
		return "", nil
	}
	if len(features) == 1 {
		return r.routeIDOf(features[0]), nil
	}
	if r.chooser == nil {
		return "", &AmbiguousRouteError{RouteIDs: ids}
	}
	return r.chooser.ChooseRoute(ctx, features)
}

func (r *Resolver) routeIDOf(f lrs.Feature) string {
	v, ok := f.Attributes[r.network.CompositeRouteIDFieldName]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// RoutesAtPoint returns the routes intersecting a square buffer of the
// given tolerance around a point. Generalized geometry is requested when
// the map units support a max allowable offset.
func (r *Resolver) RoutesAtPoint(ctx context.Context, point orb.Point, tolerance float64, generalize bool) ([]lrs.Feature, error) {
	extent := geometry.PointToExtent(point, tolerance)
	q := gateway.Query{
		Geometry:       geometry.BoundEnvelope(extent, r.outSR),
		OutFields:      []string{"*"},
		ReturnGeometry: true,
		ReturnM:        true,
		OutSR:          r.outSR,
	}
	if generalize {
		if offset, ok := geometry.MaxAllowableOffset(5, r.mapUnits, r.log); ok {
			q.MaxAllowableOffset = &offset
		}
	}
	fs, err := r.gw.Query(ctx, r.network.ID, q)
	if err != nil {
		return nil, fmt.Errorf("routes at point: %w", err)
	}
	return fs.Features, nil
}

func distinctRouteIDs(candidates []Candidate) []string {
	seen := make(map[string]bool, len(candidates))
	var ids []string
	for _, c := range candidates {
		if !seen[c.RouteID] {
			seen[c.RouteID] = true
			ids = append(ids, c.RouteID)
		}
	}
	return ids
}
