// Package routefield decides how routes are identified on a network
// (composite ID vs human-readable name) and builds the matching query
// predicates.
package routefield

import (
	"fmt"
	"strings"

	"github.com/joeblew999/plat-lrs/internal/lrs"
)

// UseRouteName reports whether routes on a network are identified by
// name: true when route names are configured and not auto-generated.
func UseRouteName(network *lrs.NetworkLayer) bool {
	if network == nil {
		return false
	}
	return !network.AutoGenerateRouteName && network.RouteNameFieldName != ""
}

// RouteFieldName returns the field routes are identified by: the route
// name field when names are in use, else the composite route ID field.
func RouteFieldName(network *lrs.NetworkLayer) string {
	if UseRouteName(network) {
		return network.RouteNameFieldName
	}
	return network.CompositeRouteIDFieldName
}

// NetworkSupportsRouteName reports whether a network has a route name
// field configured.
func NetworkSupportsRouteName(network *lrs.NetworkLayer) bool {
	return network != nil && network.RouteNameFieldName != ""
}

// EventSupportsRouteName reports whether an event layer has the route
// name fields it needs: layers that can span routes need a to-route name
// field as well.
func EventSupportsRouteName(layer *lrs.EventLayer) bool {
	if layer == nil || layer.RouteNameFieldName == "" {
		return false
	}
	if layer.CanSpanRoutes {
		return layer.ToRouteNameFieldName != ""
	}
	return true
}

// EscapeSQL doubles single quotes so a value is safe inside a SQL string
// literal.
func EscapeSQL(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// EnquoteValue formats a field value for a where clause: string fields
// are escaped and single-quoted, numeric fields stay bare.
func EnquoteValue(value string, isStringField bool) string {
	if isStringField {
		return "'" + EscapeSQL(value) + "'"
	}
	return value
}

// FieldWhere builds a "field = literal" predicate with field-type-aware
// quoting. Returns "" when the field is not configured.
func FieldWhere(network *lrs.NetworkLayer, fieldName, value string) string {
	if network == nil || fieldName == "" {
		return ""
	}
	isString := lrs.IsStringField(network.Fields, fieldName)
	return fieldName + "=" + EnquoteValue(value, isString)
}

// RouteValueWhere builds the predicate matching a route by whichever
// identity the network uses.
func RouteValueWhere(network *lrs.NetworkLayer, routeValue string) string {
	return FieldWhere(network, RouteFieldName(network), routeValue)
}

// RouteIDWhere builds the predicate matching a composite route ID.
func RouteIDWhere(network *lrs.NetworkLayer, routeID string) string {
	if network == nil {
		return ""
	}
	return FieldWhere(network, network.CompositeRouteIDFieldName, routeID)
}

// RouteNameWhere builds the predicate matching a route name.
func RouteNameWhere(network *lrs.NetworkLayer, routeName string) string {
	if network == nil {
		return ""
	}
	return FieldWhere(network, network.RouteNameFieldName, routeName)
}

// LineWhere builds the predicate selecting routes on a line: line ID
// equality, optionally restricted to a line order range. The order pair
// is swapped into ascending order when reversed.
func LineWhere(network *lrs.NetworkLayer, lineID string, fromOrder, toOrder *float64) string {
	if network == nil || !network.SupportsLines {
		return ""
	}
	where := FieldWhere(network, network.LineIDFieldName, lineID)
	if fromOrder != nil && toOrder != nil {
		lo, hi := *fromOrder, *toOrder
		if lo > hi {
			lo, hi = hi, lo
		}
		f := network.LineOrderFieldName
		orderWhere := fmt.Sprintf("%s>=%v AND %s<=%v", f, lo, f, hi)
		where = ConcatWhere(where, orderWhere, "")
	}
	return where
}
