package gateway

import "github.com/joeblew999/plat-lrs/internal/lrs"

// MeasureToGeometryParams is the request for the measureToGeometry
// operation.
type MeasureToGeometryParams struct {
	Locations []lrs.Location        `json:"locations"`
	OutSR     *lrs.SpatialReference `json:"outSR,omitempty"`
}

// LocationResult is one located position in a measureToGeometry
// response. Only status LocatingOK carries a usable geometry.
type LocationResult struct {
	RouteID      string        `json:"routeId,omitempty"`
	Status       string        `json:"status"`
	GeometryType string        `json:"geometryType,omitempty"`
	Geometry     *lrs.Geometry `json:"geometry,omitempty"`
}

// MeasureToGeometryResponse is the measureToGeometry response envelope.
type MeasureToGeometryResponse struct {
	Locations        []LocationResult      `json:"locations"`
	SpatialReference *lrs.SpatialReference `json:"spatialReference,omitempty"`
}

// PointLocation is one input position for geometryToMeasure. RouteID,
// when set, constrains matching to that route.
type PointLocation struct {
	RouteID  string       `json:"routeId,omitempty"`
	Geometry lrs.Geometry `json:"geometry"`
}

// GeometryToMeasureParams is the request for the geometryToMeasure
// operation. Tolerance is in map units.
type GeometryToMeasureParams struct {
	Locations []PointLocation       `json:"locations"`
	Tolerance float64               `json:"tolerance,omitempty"`
	InSR      *lrs.SpatialReference `json:"inSR,omitempty"`
}

// MeasureMatch is one route/measure candidate for an input point.
type MeasureMatch struct {
	RouteID  string        `json:"routeId"`
	Measure  float64       `json:"measure"`
	Geometry *lrs.Geometry `json:"geometry,omitempty"`
}

// GeometryToMeasureLocation groups the candidates found for one input
// point.
type GeometryToMeasureLocation struct {
	Status  string         `json:"status,omitempty"`
	Results []MeasureMatch `json:"results"`
}

// GeometryToMeasureResponse is the geometryToMeasure response envelope.
type GeometryToMeasureResponse struct {
	Locations        []GeometryToMeasureLocation `json:"locations"`
	SpatialReference *lrs.SpatialReference       `json:"spatialReference,omitempty"`
}

// AttributeSetEntry names one event layer and the fields requested from
// it. The order of entries and fields is the positional contract for
// decoding the merged response.
type AttributeSetEntry struct {
	LayerID int      `json:"layerId"`
	Fields  []string `json:"fields"`
}

// QueryAttributeSetParams is the request for the queryAttributeSet
// operation.
type QueryAttributeSetParams struct {
	Locations    []lrs.Location        `json:"locations"`
	AttributeSet []AttributeSetEntry   `json:"attributeSet"`
	OutSR        *lrs.SpatialReference `json:"outSR,omitempty"`
}

// FeatureSet is the merged multi-layer result of queryAttributeSet, and
// doubles as the shape of generic layer query responses.
type FeatureSet struct {
	GeometryType     string                `json:"geometryType,omitempty"`
	Fields           []lrs.Field           `json:"fields,omitempty"`
	FieldAliases     map[string]string     `json:"fieldAliases,omitempty"`
	Features         []lrs.Feature         `json:"features"`
	SpatialReference *lrs.SpatialReference `json:"spatialReference,omitempty"`
}

// Query is a generic attribute/spatial query against a single map layer.
type Query struct {
	Where                string
	Geometry             *lrs.Envelope
	OutFields            []string
	ReturnGeometry       bool
	ReturnM              bool
	ReturnDistinctValues bool
	OrderByFields        []string
	OutSR                *lrs.SpatialReference
	MaxAllowableOffset   *float64
}
