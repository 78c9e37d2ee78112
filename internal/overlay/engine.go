// Package overlay runs event overlays: it queries event attributes
// along a network location and reshapes the merged result set into a
// presentable feature set with one object ID, decoded domain values,
// rounded measures, and layer-qualified aliases.
package overlay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joeblew999/plat-lrs/internal/gateway"
	"github.com/joeblew999/plat-lrs/internal/lrs"
)

// Attribute names the merged result set always carries ahead of the
// event fields.
const (
	measureFieldName     = "measure"
	fromMeasureFieldName = "from_measure"
	toMeasureFieldName   = "to_measure"
)

const objectIDAlias = "Object ID"

// Source runs the attribute-set query against one network.
type Source interface {
	QueryAttributeSet(ctx context.Context, networkID int, params gateway.QueryAttributeSetParams) (*gateway.FeatureSet, error)
}

// Engine overlays event layers on one network.
type Engine struct {
	src     Source
	cache   *lrs.ConfigCache
	network *lrs.NetworkLayer
	// precision, when set, overrides the network's measure precision
	// for rounding result measures.
	precision *int
	outSR     *lrs.SpatialReference
	log       *slog.Logger
}

// Options configures an Engine beyond its required collaborators.
type Options struct {
	Precision *int
	OutSR     *lrs.SpatialReference
	Logger    *slog.Logger
}

// New creates an overlay engine for a network layer.
func New(src Source, cache *lrs.ConfigCache, network *lrs.NetworkLayer, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		src:       src,
		cache:     cache,
		network:   network,
		precision: opts.Precision,
		outSR:     opts.OutSR,
		log:       log,
	}
}

// BuildAttributeSet lists the queryable fields of each event layer,
// excluding the measure/route bookkeeping fields, the object ID, and
// shape fields. Entry and field order is the positional contract used
// to decode the renamed result fields.
func BuildAttributeSet(layers []*lrs.EventLayer) []gateway.AttributeSetEntry {
	set := make([]gateway.AttributeSetEntry, 0, len(layers))
	for _, layer := range layers {
		exclude := layer.ReservedFieldNames()
		if oid := lrs.ObjectIDField(layer.Fields); oid != nil {
			exclude = append(exclude, strings.ToLower(oid.Name))
		}
		exclude = append(exclude, lrs.ShapeFieldNames()...)

		var fields []string
		for _, f := range layer.Fields {
			if !contains(exclude, strings.ToLower(f.Name)) {
				fields = append(fields, f.Name)
			}
		}
		set = append(set, gateway.AttributeSetEntry{LayerID: layer.ID, Fields: fields})
	}
	return set
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// StartIndex is the position of the first event field in the result
// field list. Point results open with route ID and measure, line
// results with route ID and the measure pair; the route name and the
// three line fields follow when the network has them.
func (e *Engine) StartIndex(geometryType string) int {
	n := 3
	if geometryType == lrs.GeometryPoint {
		n = 2
	}
	if e.network != nil {
		if e.network.RouteNameFieldName != "" {
			n++
		}
		if e.network.SupportsLines {
			n += 3
		}
	}
	return n
}

// Overlay queries the event layers along a location and returns the
// reshaped result. The input feature set from the service is never
// partially transformed: any failure surfaces as an error with no
// result.
func (e *Engine) Overlay(ctx context.Context, loc lrs.Location, set []gateway.AttributeSetEntry) (*gateway.FeatureSet, error) {
	fs, err := e.src.QueryAttributeSet(ctx, e.network.ID, gateway.QueryAttributeSetParams{
		Locations:    []lrs.Location{loc},
		AttributeSet: set,
		OutSR:        e.outSR,
	})
	if err != nil {
		return nil, fmt.Errorf("overlay query: %w", err)
	}

	// The object ID fields must be collapsed before the positional
	// field mapping so they do not shift the count.
	e.fixObjectID(fs)
	origins := e.fieldOrigins(fs.GeometryType, fs.Fields, set)
	renames := e.layerFieldRenames(fs.GeometryType, fs.Fields, set)
	e.applyMeasurePrecision(fs)
	e.applyDomains(fs, origins, renames)
	e.applyAliases(fs, origins)
	return fs, nil
}

// fixObjectID strips the per-layer object ID fields, whose values
// collide after merging and splitting, and adds a single new object ID
// field numbered by feature position.
func (e *Engine) fixObjectID(fs *gateway.FeatureSet) {
	var oidNames []string
	kept := fs.Fields[:0]
	for _, f := range fs.Fields {
		if f.Type == lrs.FieldTypeOID {
			oidNames = append(oidNames, f.Name)
			delete(fs.FieldAliases, f.Name)
			continue
		}
		kept = append(kept, f)
	}
	fs.Fields = kept

	oidName := lrs.UniqueFieldName("OBJECTID", fs.Fields)
	fs.Fields = append(fs.Fields, lrs.Field{
		Name:  oidName,
		Type:  lrs.FieldTypeOID,
		Alias: objectIDAlias,
	})
	if fs.FieldAliases == nil {
		fs.FieldAliases = make(map[string]string)
	}
	fs.FieldAliases[oidName] = objectIDAlias

	for i := range fs.Features {
		for _, name := range oidNames {
			delete(fs.Features[i].Attributes, name)
		}
		if fs.Features[i].Attributes == nil {
			fs.Features[i].Attributes = make(map[string]any)
		}
		fs.Features[i].Attributes[oidName] = i
	}
}

// fieldOrigin ties a renamed result field back to the event layer and
// field it came from.
type fieldOrigin struct {
	layer *lrs.EventLayer
	field *lrs.Field
}

// fieldOrigins maps each result field name to its originating layer
// and field. Result fields are assumed to follow the attribute set
// order, offset by the bookkeeping fields at the front.
func (e *Engine) fieldOrigins(geometryType string, resultFields []lrs.Field, set []gateway.AttributeSetEntry) map[string]fieldOrigin {
	idx := e.StartIndex(geometryType)
	origins := make(map[string]fieldOrigin)
	if len(resultFields) <= idx {
		return origins
	}
	for _, entry := range set {
		layer, _ := e.cache.Event(entry.LayerID)
		for _, fieldName := range entry.Fields {
			if idx >= len(resultFields) {
				return origins
			}
			if layer != nil {
				origins[resultFields[idx].Name] = fieldOrigin{
					layer: layer,
					field: lrs.FindField(layer.Fields, fieldName),
				}
			}
			idx++
		}
	}
	return origins
}

// layerFieldRenames maps, per layer, each requested field name to the
// name it carries in the result.
func (e *Engine) layerFieldRenames(geometryType string, resultFields []lrs.Field, set []gateway.AttributeSetEntry) map[int]map[string]string {
	idx := e.StartIndex(geometryType)
	renames := make(map[int]map[string]string)
	if len(resultFields) <= idx {
		return renames
	}
	for _, entry := range set {
		oldToNew := make(map[string]string, len(entry.Fields))
		for _, fieldName := range entry.Fields {
			if idx >= len(resultFields) {
				renames[entry.LayerID] = oldToNew
				return renames
			}
			oldToNew[fieldName] = resultFields[idx].Name
			idx++
		}
		renames[entry.LayerID] = oldToNew
	}
	return renames
}

// applyMeasurePrecision rounds the measure attributes of every feature
// to the session precision, or the network's when none is set.
func (e *Engine) applyMeasurePrecision(fs *gateway.FeatureSet) {
	if e.network == nil {
		return
	}
	precision := e.network.MeasurePrecision
	if e.precision != nil {
		precision = *e.precision
	}
	fields := []string{toMeasureFieldName, fromMeasureFieldName}
	if fs.GeometryType == lrs.GeometryPoint {
		fields = []string{measureFieldName}
	}
	for i := range fs.Features {
		for _, name := range fields {
			if value, ok := numericValue(fs.Features[i].Attributes[name]); ok {
				fs.Features[i].Attributes[name] = lrs.RoundMeasure(value, precision)
			}
		}
	}
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// applyDomains replaces coded attribute values with "code - name" when
// the layer defines a coded value domain for the field and the decoded
// name differs from the code. Subtype-controlled domains are selected
// by the feature's subtype value, read from the renamed result field.
func (e *Engine) applyDomains(fs *gateway.FeatureSet, origins map[string]fieldOrigin, renames map[int]map[string]string) {
	for i := range fs.Features {
		attrs := fs.Features[i].Attributes
		original := make(map[string]any, len(attrs))
		for k, v := range attrs {
			original[k] = v
		}
		for newField := range attrs {
			origin, ok := origins[newField]
			if !ok || origin.field == nil || origin.layer == nil {
				continue
			}
			var subtypeAttrs map[string]any
			if origin.layer.SubtypeFieldName != "" {
				subtypeAttrs = map[string]any{
					origin.layer.SubtypeFieldName: original[renames[origin.layer.ID][origin.layer.SubtypeFieldName]],
				}
			}
			codedValues := lrs.CodedValues(origin.field, origin.layer, subtypeAttrs)
			if codedValues == nil {
				continue
			}
			code := attrs[newField]
			name, found := lrs.FindCodedName(codedValues, code)
			if found && name != fmt.Sprint(code) {
				attrs[newField] = fmt.Sprintf("%v - %s", code, name)
			}
		}
	}
}

// applyAliases prefixes each mapped field's alias with its event layer
// name. The object ID field keeps its own alias.
func (e *Engine) applyAliases(fs *gateway.FeatureSet, origins map[string]fieldOrigin) {
	if fs.FieldAliases == nil {
		fs.FieldAliases = make(map[string]string)
	}
	for i := range fs.Fields {
		f := &fs.Fields[i]
		if f.Type == lrs.FieldTypeOID {
			continue
		}
		origin, ok := origins[f.Name]
		if !ok || origin.layer == nil {
			continue
		}
		f.Alias = fmt.Sprintf("%s.%s", origin.layer.Name, f.Alias)
		fs.FieldAliases[f.Name] = f.Alias
	}
}
