package resolver

import (
	"context"
	"fmt"

	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/geometry"
	"github.com/joeblew999/plat-lrs/internal/lrs"
	"github.com/joeblew999/plat-lrs/internal/routefield"
)

// RouteByValue fetches a route feature by its user-facing identity
// value, which is the route name when the network uses names and the
// composite route ID otherwise. Returns nil when no route matches.
func (r *Resolver) RouteByValue(ctx context.Context, value string, returnGeometry, generalize bool) (*lrs.Feature, error) {
	return r.routeQuery(ctx, routefield.RouteValueWhere(r.network, value), returnGeometry, generalize)
}

// RouteByID fetches a route feature by composite route ID regardless of
// the network's identity mode.
func (r *Resolver) RouteByID(ctx context.Context, routeID string, returnGeometry, generalize bool) (*lrs.Feature, error) {
	return r.routeQuery(ctx, routefield.RouteIDWhere(r.network, routeID), returnGeometry, generalize)
}

// RouteByName fetches a route feature by route name. Returns nil when
// the network has no route name field.
func (r *Resolver) RouteByName(ctx context.Context, name string, returnGeometry, generalize bool) (*lrs.Feature, error) {
	where := routefield.RouteNameWhere(r.network, name)
	if where == "" {
		return nil, nil
	}
	return r.routeQuery(ctx, where, returnGeometry, generalize)
}

func (r *Resolver) routeQuery(ctx context.Context, where string, returnGeometry, generalize bool) (*lrs.Feature, error) {
	fs, err := r.runRouteQuery(ctx, where, returnGeometry, generalize, "")
	if err != nil {
		return nil, err
	}
	if len(fs.Features) == 0 {
		return nil, nil
	}
	return &fs.Features[0], nil
}

// RoutesOnLine fetches the routes of a line, optionally restricted to a
// line-order range, in line order.
func (r *Resolver) RoutesOnLine(ctx context.Context, lineID string, fromOrder, toOrder *float64, returnGeometry, generalize bool) ([]lrs.Feature, error) {
	where := routefield.LineWhere(r.network, lineID, fromOrder, toOrder)
	if where == "" {
		return nil, nil
	}
	fs, err := r.runRouteQuery(ctx, where, returnGeometry, generalize, r.network.LineOrderFieldName)
	if err != nil {
		return nil, err
	}
	return fs.Features, nil
}

func (r *Resolver) runRouteQuery(ctx context.Context, where string, returnGeometry, generalize bool, orderBy string) (*gateway.FeatureSet, error) {
	q := gateway.Query{
		Where:          where,
		OutFields:      []string{"*"},
		ReturnGeometry: returnGeometry,
		ReturnM:        returnGeometry,
		OutSR:          r.outSR,
	}
	if orderBy != "" {
		q.OrderByFields = []string{orderBy}
	}
	if returnGeometry && generalize {
		if offset, ok := geometry.MaxAllowableOffset(5, r.mapUnits, r.log); ok {
			q.MaxAllowableOffset = &offset
		}
	}
	fs, err := r.gw.Query(ctx, r.network.ID, q)
	if err != nil {
		return nil, fmt.Errorf("route query: %w", err)
	}
	return fs, nil
}
