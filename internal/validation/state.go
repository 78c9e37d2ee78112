// Package validation tracks route and measure inputs through remote
// validation, with stale results from superseded inputs discarded.
package validation

// State is the validation lifecycle of an input value.
type State int

const (
	Unvalidated State = iota
	Validating
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Unvalidated:
		return "unvalidated"
	case Validating:
		return "validating"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Reason identifies why an input or input combination is invalid.
type Reason string

const (
	ReasonRouteNotFound           Reason = "ROUTE_NOT_FOUND"
	ReasonRouteNameVsIDMismatch   Reason = "ROUTE_NAME_VS_ID_MISMATCH"
	ReasonInvalidRouteOnLine      Reason = "INVALID_ROUTE_ON_LINE"
	ReasonNotANumber              Reason = "NOT_A_NUMBER"
	ReasonMeasureNotOnRoute       Reason = "MEASURE_NOT_ON_ROUTE"
	ReasonEnterRoute              Reason = "ENTER_ROUTE"
	ReasonEnterFromRoute          Reason = "ENTER_FROM_ROUTE"
	ReasonInvalidToRoute          Reason = "INVALID_TO_ROUTE"
	ReasonInvalidFromAndToMeasure Reason = "INVALID_FROM_AND_TO_MEASURES"
	ReasonInvalidFromMeasure      Reason = "INVALID_FROM_MEASURE"
	ReasonInvalidToMeasure        Reason = "INVALID_TO_MEASURE"
	ReasonInvalidToLocation       Reason = "INVALID_TO_LOCATION"
	ReasonInvalidLineMeasures     Reason = "INVALID_LINE_FROM_AND_TO_MEASURE"
)
