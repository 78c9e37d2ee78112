package lrs

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CodesEqual compares two domain codes the way attribute values arrive
// off the wire: numerically when both sides are numbers or numeric
// strings, otherwise by string form. Two nils are equal.
func CodesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// FindCodedName returns the human-readable name for a code in a coded
// value list.
func FindCodedName(codedValues []CodedValue, code any) (string, bool) {
	for _, cv := range codedValues {
		if CodesEqual(cv.Code, code) {
			return cv.Name, true
		}
	}
	return "", false
}

// CodedValues resolves the coded value list applying to a field:
//
//   - the layer's subtype list when the field is the subtype field itself;
//   - the domain selected by the controlling subtype value (read from
//     attributes) when the layer has subtypes and the field is controlled
//     by one;
//   - otherwise the field's own coded-value domain.
//
// Returns nil when no coded values apply. layer and attributes may be nil
// to skip the subtype checks.
func CodedValues(field *Field, layer *EventLayer, attributes map[string]any) []CodedValue {
	if field == nil {
		return nil
	}

	var coded []CodedValue
	subtyped := false
	if layer != nil {
		if layer.SubtypeFieldName == field.Name {
			coded = subtypeCodedValues(layer.Subtypes)
		} else if len(layer.Subtypes) > 0 && attributes != nil {
			domain := SubtypeDomain(field.Name, layer, attributes)
			subtyped = domain != nil
			if domain != nil && domain.Type == DomainCodedValue {
				coded = domain.CodedValues
			}
		}
	}

	if coded == nil && !subtyped && field.Domain != nil && field.Domain.Type == DomainCodedValue {
		coded = field.Domain.CodedValues
	}
	if coded == nil {
		return nil
	}
	out := make([]CodedValue, len(coded))
	copy(out, coded)
	return out
}

// SubtypeDomain returns the domain of a field selected by the layer's
// controlling subtype value, or nil when the field is not controlled by
// a subtype.
func SubtypeDomain(fieldName string, layer *EventLayer, attributes map[string]any) *Domain {
	if fieldName == "" || layer == nil || attributes == nil ||
		len(layer.Subtypes) == 0 || layer.SubtypeFieldName == fieldName {
		return nil
	}
	control, ok := attributes[layer.SubtypeFieldName]
	if !ok || control == nil {
		return nil
	}
	for i := range layer.Subtypes {
		if CodesEqual(layer.Subtypes[i].Code, control) {
			if d, ok := layer.Subtypes[i].Domains[fieldName]; ok {
				return &d
			}
			return nil
		}
	}
	return nil
}

func subtypeCodedValues(subtypes []Subtype) []CodedValue {
	if len(subtypes) == 0 {
		return nil
	}
	out := make([]CodedValue, 0, len(subtypes))
	for _, st := range subtypes {
		out = append(out, CodedValue{Name: st.Name, Code: st.Code})
	}
	return out
}
