package routefield

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeblew999/plat-lrs/internal/lrs"
)

func idNetwork() *lrs.NetworkLayer {
	return &lrs.NetworkLayer{
		CompositeRouteIDFieldName: "ROUTE_ID",
		AutoGenerateRouteName:     true,
		Fields: []lrs.Field{
			{Name: "ROUTE_ID", Type: lrs.FieldTypeString},
			{Name: "LINE_ID", Type: lrs.FieldTypeInteger},
			{Name: "LINE_ORDER", Type: lrs.FieldTypeInteger},
		},
	}
}

func nameNetwork() *lrs.NetworkLayer {
	n := idNetwork()
	n.AutoGenerateRouteName = false
	n.RouteNameFieldName = "ROUTE_NAME"
	n.Fields = append(n.Fields, lrs.Field{Name: "ROUTE_NAME", Type: lrs.FieldTypeString})
	return n
}

func TestUseRouteName(t *testing.T) {
	assert.False(t, UseRouteName(idNetwork()))
	assert.True(t, UseRouteName(nameNetwork()))

	// configured but auto-generated names do not identify routes
	auto := nameNetwork()
	auto.AutoGenerateRouteName = true
	assert.False(t, UseRouteName(auto))

	assert.False(t, UseRouteName(nil))
}

func TestRouteFieldName(t *testing.T) {
	assert.Equal(t, "ROUTE_ID", RouteFieldName(idNetwork()))
	assert.Equal(t, "ROUTE_NAME", RouteFieldName(nameNetwork()))
}

func TestEventSupportsRouteName(t *testing.T) {
	assert.False(t, EventSupportsRouteName(nil))
	assert.False(t, EventSupportsRouteName(&lrs.EventLayer{}))
	assert.True(t, EventSupportsRouteName(&lrs.EventLayer{RouteNameFieldName: "RN"}))

	spanning := &lrs.EventLayer{RouteNameFieldName: "RN", CanSpanRoutes: true}
	assert.False(t, EventSupportsRouteName(spanning))
	spanning.ToRouteNameFieldName = "TRN"
	assert.True(t, EventSupportsRouteName(spanning))
}

func TestEscapeAndEnquote(t *testing.T) {
	assert.Equal(t, "O''Brien", EscapeSQL("O'Brien"))
	assert.Equal(t, "'O''Brien'", EnquoteValue("O'Brien", true))
	assert.Equal(t, "42", EnquoteValue("42", false))
}

func TestRouteValueWhere(t *testing.T) {
	assert.Equal(t, "ROUTE_ID='R1'", RouteValueWhere(idNetwork(), "R1"))
	assert.Equal(t, "ROUTE_NAME='Main St'", RouteValueWhere(nameNetwork(), "Main St"))
}

func TestRouteNameWhere_NoNameField(t *testing.T) {
	assert.Equal(t, "", RouteNameWhere(idNetwork(), "Main St"))
}

func TestLineWhere(t *testing.T) {
	n := idNetwork()
	n.SupportsLines = true
	n.LineIDFieldName = "LINE_ID"
	n.LineOrderFieldName = "LINE_ORDER"

	assert.Equal(t, "LINE_ID=7", LineWhere(n, "7", nil, nil))

	lo, hi := 2.0, 5.0
	assert.Equal(t,
		"(LINE_ID=7) AND (LINE_ORDER>=2 AND LINE_ORDER<=5)",
		LineWhere(n, "7", &lo, &hi))

	// reversed order pair swaps into ascending order
	assert.Equal(t,
		"(LINE_ID=7) AND (LINE_ORDER>=2 AND LINE_ORDER<=5)",
		LineWhere(n, "7", &hi, &lo))

	assert.Equal(t, "", LineWhere(idNetwork(), "7", nil, nil))
}
