// Package lrs contains the shared domain model for the linear referencing
// service: layer metadata, field infos, wire geometry, and locations.
package lrs

// Esri field type tags as they appear in layer metadata.
const (
	FieldTypeString       = "esriFieldTypeString"
	FieldTypeInteger      = "esriFieldTypeInteger"
	FieldTypeSmallInteger = "esriFieldTypeSmallInteger"
	FieldTypeDouble       = "esriFieldTypeDouble"
	FieldTypeSingle       = "esriFieldTypeSingle"
	FieldTypeDate         = "esriFieldTypeDate"
	FieldTypeOID          = "esriFieldTypeOID"
	FieldTypeGUID         = "esriFieldTypeGUID"
	FieldTypeGlobalID     = "esriFieldTypeGlobalID"
)

// Geometry type tags used in request/response envelopes.
const (
	GeometryPoint      = "esriGeometryPoint"
	GeometryPolyline   = "esriGeometryPolyline"
	GeometryPolygon    = "esriGeometryPolygon"
	GeometryMultipoint = "esriGeometryMultipoint"
	GeometryEnvelope   = "esriGeometryEnvelope"
)

// Event layer type tags.
const (
	PointEventLayer  = "esriLRSPointEventLayer"
	LinearEventLayer = "esriLRSLinearEventLayer"
)

// DomainCodedValue is the domain type tag for code/name lookup tables.
const DomainCodedValue = "codedValue"

// CodedValue is one code to human-readable name pair in a domain.
type CodedValue struct {
	Name string `json:"name"`
	Code any    `json:"code"`
}

// Domain is a field domain. Only coded-value domains are decoded here;
// range domains pass through untouched.
type Domain struct {
	Type        string       `json:"type"`
	Name        string       `json:"name,omitempty"`
	CodedValues []CodedValue `json:"codedValues,omitempty"`
}

// Subtype is a discriminator value that selects per-field domains.
type Subtype struct {
	Name    string            `json:"name"`
	Code    any               `json:"code"`
	Domains map[string]Domain `json:"domains,omitempty"`
}

// Field describes one attribute field of a layer.
type Field struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Alias  string  `json:"alias,omitempty"`
	Domain *Domain `json:"domain,omitempty"`
}

// NetworkLayer describes one linear network: a feature class with
// calibrated measures. Loaded once at service discovery and read-only
// for the lifetime of a session.
type NetworkLayer struct {
	ID                        int     `json:"id"`
	Name                      string  `json:"name"`
	SupportsLines             bool    `json:"supportsLines"`
	AutoGenerateRouteName     bool    `json:"autoGenerateRouteName"`
	CompositeRouteIDFieldName string  `json:"compositeRouteIdFieldName"`
	RouteNameFieldName        string  `json:"routeNameFieldName,omitempty"`
	LineIDFieldName           string  `json:"lineIdFieldName,omitempty"`
	LineNameFieldName         string  `json:"lineNameFieldName,omitempty"`
	LineOrderFieldName        string  `json:"lineOrderFieldName,omitempty"`
	MeasurePrecision          int     `json:"measurePrecision"`
	UnitsOfMeasure            string  `json:"unitsOfMeasure,omitempty"`
	Fields                    []Field `json:"fields"`
}

// ParentNetwork identifies the network an event layer is registered to.
type ParentNetwork struct {
	ID int `json:"id"`
}

// EventLayer describes one attribute-bearing layer overlaid on a network.
// The *FieldName members are the LRS-internal fields that locate each
// record; they are excluded from user-facing attribute sets.
type EventLayer struct {
	ID            int           `json:"id"`
	Name          string        `json:"name"`
	Type          string        `json:"type"`
	ParentNetwork ParentNetwork `json:"parentNetwork"`
	CanSpanRoutes bool          `json:"canSpanRoutes"`

	EventIDFieldName                 string `json:"eventIdFieldName,omitempty"`
	RouteIDFieldName                 string `json:"routeIdFieldName,omitempty"`
	ToRouteIDFieldName               string `json:"toRouteIdFieldName,omitempty"`
	RouteNameFieldName               string `json:"routeNameFieldName,omitempty"`
	ToRouteNameFieldName             string `json:"toRouteNameFieldName,omitempty"`
	FromMeasureFieldName             string `json:"fromMeasureFieldName,omitempty"`
	ToMeasureFieldName               string `json:"toMeasureFieldName,omitempty"`
	MeasureFieldName                 string `json:"measureFieldName,omitempty"`
	FromDateFieldName                string `json:"fromDateFieldName,omitempty"`
	ToDateFieldName                  string `json:"toDateFieldName,omitempty"`
	LocErrorFieldName                string `json:"locErrorFieldName,omitempty"`
	StationFieldName                 string `json:"stationFieldName,omitempty"`
	BackStationFieldName             string `json:"backStationFieldName,omitempty"`
	StationMeasureDirectionFieldName string `json:"stationMeasureDirectionFieldName,omitempty"`
	FromReferentMethodFieldName      string `json:"fromReferentMethodFieldName,omitempty"`
	FromReferentLocationFieldName    string `json:"fromReferentLocationFieldName,omitempty"`
	FromReferentOffsetFieldName      string `json:"fromReferentOffsetFieldName,omitempty"`
	ToReferentMethodFieldName        string `json:"toReferentMethodFieldName,omitempty"`
	ToReferentLocationFieldName      string `json:"toReferentLocationFieldName,omitempty"`
	ToReferentOffsetFieldName        string `json:"toReferentOffsetFieldName,omitempty"`

	SubtypeFieldName string    `json:"subtypeFieldName,omitempty"`
	Subtypes         []Subtype `json:"subtypes,omitempty"`
	MeasurePrecision int       `json:"measurePrecision,omitempty"`
	Fields           []Field   `json:"fields"`
}

// ServiceConfig is the per-session LRS service metadata, fetched once
// from the service's layers resource.
type ServiceConfig struct {
	NetworkLayers []NetworkLayer `json:"networkLayers"`
	EventLayers   []EventLayer   `json:"eventLayers"`
}

// SpatialReference is the minimal wire spatial reference.
type SpatialReference struct {
	WKID       int `json:"wkid,omitempty"`
	LatestWKID int `json:"latestWkid,omitempty"`
}

// Geometry is the wire geometry shape shared by all geometry types.
// Exactly one of the coordinate members is populated depending on the
// geometry type tag carried next to it. Path and ring vertices may carry
// an M value as a third ordinate.
type Geometry struct {
	X                *float64          `json:"x,omitempty"`
	Y                *float64          `json:"y,omitempty"`
	M                *float64          `json:"m,omitempty"`
	Points           [][]float64       `json:"points,omitempty"`
	Paths            [][][]float64     `json:"paths,omitempty"`
	Rings            [][][]float64     `json:"rings,omitempty"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// Envelope is a rectangular extent on the wire.
type Envelope struct {
	XMin             float64           `json:"xmin"`
	YMin             float64           `json:"ymin"`
	XMax             float64           `json:"xmax"`
	YMax             float64           `json:"ymax"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// Feature is one attribute row with optional geometry.
type Feature struct {
	Attributes map[string]any `json:"attributes"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
}

// Location is the wire unit of a route position: a single measure, a
// from/to measure pair, or the whole route. ToRouteID may be set only
// together with a measure pair on a lines-capable network.
type Location struct {
	RouteID     string   `json:"routeId"`
	ToRouteID   string   `json:"toRouteId,omitempty"`
	Measure     *float64 `json:"measure,omitempty"`
	FromMeasure *float64 `json:"fromMeasure,omitempty"`
	ToMeasure   *float64 `json:"toMeasure,omitempty"`
}

// LocatingOK is the only locating status treated as success; every other
// status is a failure to locate.
const LocatingOK = "esriLocatingOK"
