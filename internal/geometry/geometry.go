// Package geometry builds and inspects typed geometries from the wire
// representation the linear referencing service speaks.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-lrs/internal/lrs"
)

// Create builds a typed geometry from a wire geometry, dispatching on the
// geometry type tag. Returns nil when the geometry is absent or the type
// tag is unknown. Polylines become multi line strings, one line per path.
func Create(geometryType string, g *lrs.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	switch geometryType {
	case lrs.GeometryPoint:
		if g.X == nil || g.Y == nil {
			return nil
		}
		return orb.Point{*g.X, *g.Y}
	case lrs.GeometryPolyline:
		ml := make(orb.MultiLineString, 0, len(g.Paths))
		for _, path := range g.Paths {
			ml = append(ml, toLineString(path))
		}
		return ml
	case lrs.GeometryPolygon:
		poly := make(orb.Polygon, 0, len(g.Rings))
		for _, ring := range g.Rings {
			poly = append(poly, orb.Ring(toLineString(ring)))
		}
		return poly
	case lrs.GeometryMultipoint:
		mp := make(orb.MultiPoint, 0, len(g.Points))
		for _, pt := range g.Points {
			if len(pt) >= 2 {
				mp = append(mp, orb.Point{pt[0], pt[1]})
			}
		}
		return mp
	}
	return nil
}

func toLineString(path [][]float64) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, pt := range path {
		if len(pt) >= 2 {
			ls = append(ls, orb.Point{pt[0], pt[1]})
		}
	}
	return ls
}

// IsValid reports whether a wire geometry is well formed for its type:
// a point needs numeric coordinates, a polyline a first path of at least
// two vertices, a polygon a first ring of at least three, a multipoint
// at least one point. expectedType, when non-empty, must also match.
func IsValid(geometryType string, g *lrs.Geometry, expectedType string) bool {
	if g == nil {
		return false
	}
	if expectedType != "" && geometryType != expectedType {
		return false
	}
	switch geometryType {
	case lrs.GeometryPoint:
		return g.X != nil && g.Y != nil && !math.IsNaN(*g.X) && !math.IsNaN(*g.Y)
	case lrs.GeometryMultipoint:
		return len(g.Points) > 0
	case lrs.GeometryPolyline:
		return len(g.Paths) > 0 && len(g.Paths[0]) >= 2
	case lrs.GeometryPolygon:
		return len(g.Rings) > 0 && len(g.Rings[0]) >= 3
	}
	return false
}

// PointToExtent expands a point into a square extent using a symmetric
// buffer distance.
func PointToExtent(p orb.Point, buffer float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{p.X() - buffer, p.Y() - buffer},
		Max: orb.Point{p.X() + buffer, p.Y() + buffer},
	}
}

// BoundEnvelope converts a bound to its wire form.
func BoundEnvelope(b orb.Bound, sr *lrs.SpatialReference) *lrs.Envelope {
	return &lrs.Envelope{
		XMin:             b.Min.X(),
		YMin:             b.Min.Y(),
		XMax:             b.Max.X(),
		YMax:             b.Max.Y(),
		SpatialReference: sr,
	}
}

// NavigationPoint returns the point used to center the map on a
// geometry: the point itself, a polygon's centroid, or the center of the
// geometry's bound.
func NavigationPoint(g orb.Geometry) (orb.Point, bool) {
	switch geom := g.(type) {
	case nil:
		return orb.Point{}, false
	case orb.Point:
		return geom, true
	case orb.Polygon:
		c, _ := planar.CentroidArea(geom)
		return c, true
	default:
		return g.Bound().Center(), true
	}
}

// PathEndpoints returns the first vertex of the first path and the last
// vertex of the last path of a wire polyline, with M values when the
// vertices carry a third ordinate. Returns false when there are no paths.
func PathEndpoints(g *lrs.Geometry) (start, end Endpoint, ok bool) {
	if g == nil || len(g.Paths) == 0 {
		return Endpoint{}, Endpoint{}, false
	}
	first := g.Paths[0]
	last := g.Paths[len(g.Paths)-1]
	if len(first) == 0 || len(last) == 0 {
		return Endpoint{}, Endpoint{}, false
	}
	return makeEndpoint(first[0]), makeEndpoint(last[len(last)-1]), true
}

// Endpoint is a path vertex with an optional measure ordinate.
type Endpoint struct {
	Point orb.Point
	M     *float64
}

func makeEndpoint(v []float64) Endpoint {
	ep := Endpoint{}
	if len(v) >= 2 {
		ep.Point = orb.Point{v[0], v[1]}
	}
	if len(v) > 2 {
		m := v[2]
		ep.M = &m
	}
	return ep
}
