package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-lrs/internal/lrs"
)

func f(v float64) *float64 { return &v }

func TestCreate_Point(t *testing.T) {
	g := Create(lrs.GeometryPoint, &lrs.Geometry{X: f(1), Y: f(2)})
	assert.Equal(t, orb.Point{1, 2}, g)

	assert.Nil(t, Create(lrs.GeometryPoint, &lrs.Geometry{X: f(1)}))
	assert.Nil(t, Create(lrs.GeometryPoint, nil))
}

func TestCreate_Polyline(t *testing.T) {
	wire := &lrs.Geometry{Paths: [][][]float64{
		{{0, 0, 5}, {1, 1, 6}},
		{{2, 2, 7}, {3, 3, 8}},
	}}
	g := Create(lrs.GeometryPolyline, wire)
	ml, ok := g.(orb.MultiLineString)
	require.True(t, ok)
	require.Len(t, ml, 2)
	assert.Equal(t, orb.Point{0, 0}, ml[0][0])
	assert.Equal(t, orb.Point{3, 3}, ml[1][1])
}

func TestCreate_UnknownType(t *testing.T) {
	assert.Nil(t, Create("esriGeometryBag", &lrs.Geometry{}))
}

func TestIsValid(t *testing.T) {
	point := &lrs.Geometry{X: f(1), Y: f(2)}
	assert.True(t, IsValid(lrs.GeometryPoint, point, ""))
	assert.True(t, IsValid(lrs.GeometryPoint, point, lrs.GeometryPoint))
	assert.False(t, IsValid(lrs.GeometryPoint, point, lrs.GeometryPolyline))
	assert.False(t, IsValid(lrs.GeometryPoint, nil, ""))

	line := &lrs.Geometry{Paths: [][][]float64{{{0, 0}, {1, 1}}}}
	assert.True(t, IsValid(lrs.GeometryPolyline, line, ""))
	short := &lrs.Geometry{Paths: [][][]float64{{{0, 0}}}}
	assert.False(t, IsValid(lrs.GeometryPolyline, short, ""))

	poly := &lrs.Geometry{Rings: [][][]float64{{{0, 0}, {1, 0}, {0, 1}}}}
	assert.True(t, IsValid(lrs.GeometryPolygon, poly, ""))
}

func TestPointToExtent(t *testing.T) {
	b := PointToExtent(orb.Point{10, 20}, 2)
	assert.Equal(t, orb.Point{8, 18}, b.Min)
	assert.Equal(t, orb.Point{12, 22}, b.Max)

	env := BoundEnvelope(b, &lrs.SpatialReference{WKID: 3857})
	assert.Equal(t, 8.0, env.XMin)
	assert.Equal(t, 22.0, env.YMax)
	assert.Equal(t, 3857, env.SpatialReference.WKID)
}

func TestNavigationPoint(t *testing.T) {
	p, ok := NavigationPoint(orb.Point{3, 4})
	assert.True(t, ok)
	assert.Equal(t, orb.Point{3, 4}, p)

	ml := orb.MultiLineString{{{0, 0}, {4, 2}}}
	p, ok = NavigationPoint(ml)
	assert.True(t, ok)
	assert.Equal(t, orb.Point{2, 1}, p)

	_, ok = NavigationPoint(nil)
	assert.False(t, ok)
}

func TestPathEndpoints(t *testing.T) {
	wire := &lrs.Geometry{Paths: [][][]float64{
		{{0, 0, 100}, {1, 1, 150}},
		{{1, 1, 150}, {2, 2, 200}},
	}}
	start, end, ok := PathEndpoints(wire)
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, start.Point)
	require.NotNil(t, start.M)
	assert.Equal(t, 100.0, *start.M)
	require.NotNil(t, end.M)
	assert.Equal(t, 200.0, *end.M)

	// vertices without M ordinates
	flat := &lrs.Geometry{Paths: [][][]float64{{{0, 0}, {1, 1}}}}
	start, _, ok = PathEndpoints(flat)
	require.True(t, ok)
	assert.Nil(t, start.M)

	_, _, ok = PathEndpoints(&lrs.Geometry{})
	assert.False(t, ok)
}
