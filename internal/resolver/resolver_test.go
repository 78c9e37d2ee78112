package resolver

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/lrs"
)

type fakeGateway struct {
	m2gResp  *gateway.MeasureToGeometryResponse
	m2gErr   error
	g2mResp  *gateway.GeometryToMeasureResponse
	g2mErr   error
	queryFS  *gateway.FeatureSet
	queryErr error

	lastM2G   gateway.MeasureToGeometryParams
	lastQuery gateway.Query
}

func (f *fakeGateway) MeasureToGeometry(ctx context.Context, networkID int, params gateway.MeasureToGeometryParams) (*gateway.MeasureToGeometryResponse, error) {
	f.lastM2G = params
	return f.m2gResp, f.m2gErr
}

func (f *fakeGateway) GeometryToMeasure(ctx context.Context, networkID int, params gateway.GeometryToMeasureParams) (*gateway.GeometryToMeasureResponse, error) {
	return f.g2mResp, f.g2mErr
}

func (f *fakeGateway) Query(ctx context.Context, layerID int, q gateway.Query) (*gateway.FeatureSet, error) {
	f.lastQuery = q
	return f.queryFS, f.queryErr
}

func testNetwork() *lrs.NetworkLayer {
	return &lrs.NetworkLayer{
		ID:                        0,
		CompositeRouteIDFieldName: "ROUTE_ID",
		Fields: []lrs.Field{
			{Name: "ROUTE_ID", Type: lrs.FieldTypeString},
		},
	}
}

func f(v float64) *float64 { return &v }

func TestBuildLocation(t *testing.T) {
	// both measures form a from/to pair with the to-route
	loc := BuildLocation("R1", "R2", f(1), f(2))
	assert.Equal(t, "R1", loc.RouteID)
	assert.Equal(t, "R2", loc.ToRouteID)
	assert.Equal(t, 1.0, *loc.FromMeasure)
	assert.Equal(t, 2.0, *loc.ToMeasure)
	assert.Nil(t, loc.Measure)

	// a single measure in either slot becomes a point location
	loc = BuildLocation("R1", "", f(5), nil)
	assert.Equal(t, 5.0, *loc.Measure)
	assert.Nil(t, loc.FromMeasure)

	loc = BuildLocation("R1", "", nil, f(7))
	assert.Equal(t, 7.0, *loc.Measure)

	// no measures select the whole route, to-route never alone
	loc = BuildLocation("R1", "R2", nil, nil)
	assert.Equal(t, lrs.Location{RouteID: "R1"}, loc)
}

func TestMeasureToGeometry_FirstFullyLocatedWins(t *testing.T) {
	gw := &fakeGateway{m2gResp: &gateway.MeasureToGeometryResponse{
		Locations: []gateway.LocationResult{
			{RouteID: "R1", Status: "esriLocatingCannotFindRoute"},
			{RouteID: "R1", Status: lrs.LocatingOK, GeometryType: lrs.GeometryPoint,
				Geometry: &lrs.Geometry{X: f(1), Y: f(2)}},
		},
	}}
	r := New(gw, testNetwork(), Options{})

	located, err := r.MeasureToGeometry(context.Background(), lrs.Location{RouteID: "R1", Measure: f(10)})
	require.NoError(t, err)
	assert.Equal(t, lrs.GeometryPoint, located.GeometryType)
	assert.Equal(t, orb.Point{1, 2}, located.Shape)
}

func TestMeasureToGeometry_NoMatchCarriesStatus(t *testing.T) {
	gw := &fakeGateway{m2gResp: &gateway.MeasureToGeometryResponse{
		Locations: []gateway.LocationResult{
			{RouteID: "R1", Status: "esriLocatingCannotFindLocation"},
		},
	}}
	r := New(gw, testNetwork(), Options{})

	_, err := r.MeasureToGeometry(context.Background(), lrs.Location{RouteID: "R1", Measure: f(10)})
	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, "esriLocatingCannotFindLocation", noMatch.Status)
}

func TestIsMeasureOnRoute(t *testing.T) {
	gw := &fakeGateway{m2gResp: &gateway.MeasureToGeometryResponse{
		Locations: []gateway.LocationResult{
			{RouteID: "R1", Status: lrs.LocatingOK, GeometryType: lrs.GeometryPoint,
				Geometry: &lrs.Geometry{X: f(3), Y: f(4)}},
		},
	}}
	r := New(gw, testNetwork(), Options{})

	check, err := r.IsMeasureOnRoute(context.Background(), "R1", 10)
	require.NoError(t, err)
	assert.True(t, check.Valid)
	require.Len(t, gw.lastM2G.Locations, 1)
	assert.Equal(t, 10.0, *gw.lastM2G.Locations[0].Measure)

	// a non-success status is not an error, just not on the route
	gw.m2gResp = &gateway.MeasureToGeometryResponse{
		Locations: []gateway.LocationResult{{Status: "esriLocatingCannotFindLocation"}},
	}
	check, err = r.IsMeasureOnRoute(context.Background(), "R1", 999)
	require.NoError(t, err)
	assert.False(t, check.Valid)

	// empty route is trivially not checkable
	check, err = r.IsMeasureOnRoute(context.Background(), "", 10)
	require.NoError(t, err)
	assert.False(t, check.Valid)
}

func g2mResponse(results ...gateway.MeasureMatch) *gateway.GeometryToMeasureResponse {
	return &gateway.GeometryToMeasureResponse{
		Locations: []gateway.GeometryToMeasureLocation{{Results: results}},
	}
}

func TestLocatePoint_NearestWins(t *testing.T) {
	gw := &fakeGateway{g2mResp: g2mResponse(
		gateway.MeasureMatch{RouteID: "R1", Measure: 5, Geometry: &lrs.Geometry{X: f(10), Y: f(0)}},
		gateway.MeasureMatch{RouteID: "R1", Measure: 8, Geometry: &lrs.Geometry{X: f(1), Y: f(0)}},
	)}
	r := New(gw, testNetwork(), Options{})

	c, err := r.LocatePoint(context.Background(), orb.Point{0, 0}, "", 5)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 8.0, c.Measure)
}

func TestLocatePoint_TieBreaksToFirst(t *testing.T) {
	gw := &fakeGateway{g2mResp: g2mResponse(
		gateway.MeasureMatch{RouteID: "R1", Measure: 5, Geometry: &lrs.Geometry{X: f(1), Y: f(0)}},
		gateway.MeasureMatch{RouteID: "R1", Measure: 8, Geometry: &lrs.Geometry{X: f(1), Y: f(0)}},
	)}
	r := New(gw, testNetwork(), Options{})

	c, err := r.LocatePoint(context.Background(), orb.Point{0, 0}, "", 5)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 5.0, c.Measure)
}

func TestLocatePoint_NoCandidates(t *testing.T) {
	gw := &fakeGateway{g2mResp: g2mResponse()}
	r := New(gw, testNetwork(), Options{})

	c, err := r.LocatePoint(context.Background(), orb.Point{0, 0}, "", 5)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestLocatePoint_SingleRouteUnderClickFilters(t *testing.T) {
	gw := &fakeGateway{
		g2mResp: g2mResponse(
			gateway.MeasureMatch{RouteID: "R1", Measure: 5, Geometry: &lrs.Geometry{X: f(9), Y: f(0)}},
			gateway.MeasureMatch{RouteID: "R2", Measure: 3, Geometry: &lrs.Geometry{X: f(1), Y: f(0)}},
		),
		// buffered route query finds only R1, so R2's nearer candidate is discarded
		queryFS: &gateway.FeatureSet{Features: []lrs.Feature{
			{Attributes: map[string]any{"ROUTE_ID": "R1"}},
		}},
	}
	r := New(gw, testNetwork(), Options{})

	c, err := r.LocatePoint(context.Background(), orb.Point{0, 0}, "", 5)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "R1", c.RouteID)
	assert.Equal(t, 5.0, c.Measure)
}

type fixedChooser struct{ routeID string }

func (c fixedChooser) ChooseRoute(ctx context.Context, routes []lrs.Feature) (string, error) {
	return c.routeID, nil
}

func TestLocatePoint_ChooserPicksAmongRoutes(t *testing.T) {
	gw := &fakeGateway{
		g2mResp: g2mResponse(
			gateway.MeasureMatch{RouteID: "R1", Measure: 5, Geometry: &lrs.Geometry{X: f(1), Y: f(0)}},
			gateway.MeasureMatch{RouteID: "R2", Measure: 3, Geometry: &lrs.Geometry{X: f(2), Y: f(0)}},
		),
		queryFS: &gateway.FeatureSet{Features: []lrs.Feature{
			{Attributes: map[string]any{"ROUTE_ID": "R1"}},
			{Attributes: map[string]any{"ROUTE_ID": "R2"}},
		}},
	}
	r := New(gw, testNetwork(), Options{Chooser: fixedChooser{routeID: "R2"}})

	c, err := r.LocatePoint(context.Background(), orb.Point{0, 0}, "", 5)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "R2", c.RouteID)
}

func TestLocatePoint_AmbiguousWithoutChooser(t *testing.T) {
	gw := &fakeGateway{
		g2mResp: g2mResponse(
			gateway.MeasureMatch{RouteID: "R1", Measure: 5, Geometry: &lrs.Geometry{X: f(1), Y: f(0)}},
			gateway.MeasureMatch{RouteID: "R2", Measure: 3, Geometry: &lrs.Geometry{X: f(2), Y: f(0)}},
		),
		queryFS: &gateway.FeatureSet{Features: []lrs.Feature{
			{Attributes: map[string]any{"ROUTE_ID": "R1"}},
			{Attributes: map[string]any{"ROUTE_ID": "R2"}},
		}},
	}
	r := New(gw, testNetwork(), Options{})

	_, err := r.LocatePoint(context.Background(), orb.Point{0, 0}, "", 5)
	var ambiguous *AmbiguousRouteError
	require.ErrorAs(t, err, &ambiguous)
	assert.ElementsMatch(t, []string{"R1", "R2"}, ambiguous.RouteIDs)
}

func TestRoutesAtPoint_QueryShape(t *testing.T) {
	gw := &fakeGateway{queryFS: &gateway.FeatureSet{}}
	r := New(gw, testNetwork(), Options{MapUnits: "esriMeters"})

	_, err := r.RoutesAtPoint(context.Background(), orb.Point{100, 200}, 3, true)
	require.NoError(t, err)

	q := gw.lastQuery
	require.NotNil(t, q.Geometry)
	assert.Equal(t, 97.0, q.Geometry.XMin)
	assert.Equal(t, 203.0, q.Geometry.YMax)
	assert.True(t, q.ReturnGeometry)
	assert.True(t, q.ReturnM)
	require.NotNil(t, q.MaxAllowableOffset)
	assert.Equal(t, 5.0, *q.MaxAllowableOffset)
}

func TestRouteByValue_FirstFeatureOrNil(t *testing.T) {
	gw := &fakeGateway{queryFS: &gateway.FeatureSet{Features: []lrs.Feature{
		{Attributes: map[string]any{"ROUTE_ID": "R1"}},
		{Attributes: map[string]any{"ROUTE_ID": "R1-dup"}},
	}}}
	r := New(gw, testNetwork(), Options{})

	feat, err := r.RouteByValue(context.Background(), "R1", false, false)
	require.NoError(t, err)
	require.NotNil(t, feat)
	assert.Equal(t, "R1", feat.Attributes["ROUTE_ID"])
	assert.Equal(t, "ROUTE_ID='R1'", gw.lastQuery.Where)

	gw.queryFS = &gateway.FeatureSet{}
	feat, err = r.RouteByValue(context.Background(), "nope", false, false)
	require.NoError(t, err)
	assert.Nil(t, feat)
}

func TestRouteByIDAndName_ExplicitIdentity(t *testing.T) {
	network := testNetwork()
	network.RouteNameFieldName = "ROUTE_NAME"
	network.Fields = append(network.Fields, lrs.Field{Name: "ROUTE_NAME", Type: lrs.FieldTypeString})
	gw := &fakeGateway{queryFS: &gateway.FeatureSet{Features: []lrs.Feature{
		{Attributes: map[string]any{"ROUTE_ID": "R1", "ROUTE_NAME": "Main St"}},
	}}}
	r := New(gw, network, Options{})

	feat, err := r.RouteByID(context.Background(), "R1", false, false)
	require.NoError(t, err)
	require.NotNil(t, feat)
	assert.Equal(t, "ROUTE_ID='R1'", gw.lastQuery.Where)

	feat, err = r.RouteByName(context.Background(), "Main St", false, false)
	require.NoError(t, err)
	require.NotNil(t, feat)
	assert.Equal(t, "ROUTE_NAME='Main St'", gw.lastQuery.Where)
}

func TestRouteByName_NoNameField(t *testing.T) {
	gw := &fakeGateway{}
	r := New(gw, testNetwork(), Options{})

	feat, err := r.RouteByName(context.Background(), "Main St", false, false)
	require.NoError(t, err)
	assert.Nil(t, feat)
	assert.Empty(t, gw.lastQuery.Where)
}

func TestRoutesOnLine_OrderedLineQuery(t *testing.T) {
	network := testNetwork()
	network.SupportsLines = true
	network.LineIDFieldName = "LINE_ID"
	network.LineOrderFieldName = "LINE_ORDER"
	network.Fields = append(network.Fields,
		lrs.Field{Name: "LINE_ID", Type: lrs.FieldTypeInteger},
		lrs.Field{Name: "LINE_ORDER", Type: lrs.FieldTypeInteger},
	)
	gw := &fakeGateway{queryFS: &gateway.FeatureSet{Features: []lrs.Feature{
		{Attributes: map[string]any{"ROUTE_ID": "R1", "LINE_ORDER": 1}},
		{Attributes: map[string]any{"ROUTE_ID": "R2", "LINE_ORDER": 2}},
	}}}
	r := New(gw, network, Options{})

	// a reversed order range is swapped into ascending order
	routes, err := r.RoutesOnLine(context.Background(), "7", f(5), f(2), false, false)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "(LINE_ID=7) AND (LINE_ORDER>=2 AND LINE_ORDER<=5)", gw.lastQuery.Where)
	assert.Equal(t, []string{"LINE_ORDER"}, gw.lastQuery.OrderByFields)

	// a network without lines has no line routes
	r = New(gw, testNetwork(), Options{})
	routes, err = r.RoutesOnLine(context.Background(), "7", nil, nil, false, false)
	require.NoError(t, err)
	assert.Nil(t, routes)
}

func TestLocatePoint_SkipsCandidatesWithoutGeometry(t *testing.T) {
	gw := &fakeGateway{g2mResp: g2mResponse(
		gateway.MeasureMatch{RouteID: "R1", Measure: 10},
		gateway.MeasureMatch{RouteID: "R1", Measure: 20, Geometry: &lrs.Geometry{X: f(30), Y: f(40)}},
	)}
	r := New(gw, testNetwork(), Options{})

	// the geometry-less candidate must not compete as the origin point
	c, err := r.LocatePoint(context.Background(), orb.Point{1, 1}, "", 5)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 20.0, c.Measure)
}

func TestLocatePoint_AllWithoutGeometryFallsBackToFirst(t *testing.T) {
	gw := &fakeGateway{g2mResp: g2mResponse(
		gateway.MeasureMatch{RouteID: "R1", Measure: 10},
		gateway.MeasureMatch{RouteID: "R1", Measure: 20},
	)}
	r := New(gw, testNetwork(), Options{})

	c, err := r.LocatePoint(context.Background(), orb.Point{1, 1}, "", 5)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 10.0, c.Measure)
}
