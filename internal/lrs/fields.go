package lrs

import (
	"strconv"
	"strings"
)

// shapeFieldNames are the geometry pseudo-fields that various backends
// expose as regular columns. Always excluded from attribute sets.
var shapeFieldNames = []string{
	"shape", "shape.len", "shape_len", "shape_length",
	"st_length(shape)", "shape.stlength()", "shape_area", "shape.starea()",
}

// FindField returns the field with the given name, compared
// case-insensitively, or nil when not present.
func FindField(fields []Field, name string) *Field {
	if name == "" {
		return nil
	}
	for i := range fields {
		if strings.EqualFold(fields[i].Name, name) {
			return &fields[i]
		}
	}
	return nil
}

// IsStringField reports whether the named field holds string data
// (string, GUID, or global ID).
func IsStringField(fields []Field, name string) bool {
	return isFieldType(fields, name, FieldTypeString, FieldTypeGUID, FieldTypeGlobalID)
}

// IsNumberField reports whether the named field holds numeric data.
func IsNumberField(fields []Field, name string) bool {
	return isFieldType(fields, name,
		FieldTypeInteger, FieldTypeSmallInteger, FieldTypeOID, FieldTypeDouble, FieldTypeSingle)
}

// IsIntegerField reports whether the named field holds integer data.
func IsIntegerField(fields []Field, name string) bool {
	return isFieldType(fields, name, FieldTypeInteger, FieldTypeSmallInteger, FieldTypeOID)
}

// IsDateField reports whether the named field holds date data.
func IsDateField(fields []Field, name string) bool {
	return isFieldType(fields, name, FieldTypeDate)
}

// IsDecimalType reports whether a field type tag is a floating-point type.
func IsDecimalType(fieldType string) bool {
	return fieldType == FieldTypeDouble || fieldType == FieldTypeSingle
}

func isFieldType(fields []Field, name string, types ...string) bool {
	f := FindField(fields, name)
	if f == nil {
		return false
	}
	for _, t := range types {
		if f.Type == t {
			return true
		}
	}
	return false
}

// ObjectIDField returns the object ID field of a schema, or nil.
func ObjectIDField(fields []Field) *Field {
	for i := range fields {
		if fields[i].Type == FieldTypeOID {
			return &fields[i]
		}
	}
	return nil
}

// ReservedFieldNames returns the lowercased LRS-internal field names of an
// event layer: the identity, route, measure, date, and referent fields
// that locate each record but are not user-facing attributes.
func (e *EventLayer) ReservedFieldNames() []string {
	names := make([]string, 0, 20)
	add := func(name string) {
		if name != "" {
			names = append(names, strings.ToLower(name))
		}
	}
	add(e.EventIDFieldName)
	add(e.RouteIDFieldName)
	add(e.ToRouteIDFieldName)
	add(e.RouteNameFieldName)
	add(e.ToRouteNameFieldName)
	add(e.FromMeasureFieldName)
	add(e.ToMeasureFieldName)
	add(e.MeasureFieldName)
	add(e.FromDateFieldName)
	add(e.ToDateFieldName)
	add(e.LocErrorFieldName)
	add(e.StationFieldName)
	add(e.BackStationFieldName)
	add(e.StationMeasureDirectionFieldName)
	add(e.FromReferentMethodFieldName)
	add(e.FromReferentLocationFieldName)
	add(e.FromReferentOffsetFieldName)
	add(e.ToReferentMethodFieldName)
	add(e.ToReferentLocationFieldName)
	add(e.ToReferentOffsetFieldName)
	return names
}

// ShapeFieldNames returns the geometry pseudo-field names, lowercased.
func ShapeFieldNames() []string {
	out := make([]string, len(shapeFieldNames))
	copy(out, shapeFieldNames)
	return out
}

// UniqueFieldName returns start if no field already uses it, otherwise
// start with the smallest numeric suffix that makes it unique. Names are
// compared case-insensitively.
func UniqueFieldName(start string, fields []Field) string {
	taken := make(map[string]bool, len(fields))
	for _, f := range fields {
		taken[strings.ToLower(f.Name)] = true
	}
	name := start
	for i := 1; taken[strings.ToLower(name)]; i++ {
		name = start + strconv.Itoa(i)
	}
	return name
}
