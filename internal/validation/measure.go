package validation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-lrs/internal/geometry"
	"github.com/joeblew999/plat-lrs/internal/lrs"
	"github.com/joeblew999/plat-lrs/internal/resolver"
)

// MeasureSource checks whether a measure locates on a route.
type MeasureSource interface {
	IsMeasureOnRoute(ctx context.Context, routeID string, measure float64) (resolver.MeasureCheck, error)
}

// MeasureValues is the outcome of validating a measure input. Measure
// is nil when the input was empty or did not parse as a number. Valid
// reports whether the measure was confirmed on the route; a measure
// entered without a route is trivially valid with no geometry.
type MeasureValues struct {
	Measure  *float64
	Valid    bool
	Geometry *lrs.Geometry
	Shape    orb.Geometry
}

// MeasureValidator validates one measure input against the route held
// by its route validator. Superseded validations are discarded like
// RouteValidator's.
type MeasureValidator struct {
	source MeasureSource
	route  *RouteValidator
	log    *slog.Logger

	mu      sync.Mutex
	seq     uint64
	input   string
	state   State
	reason  Reason
	values  MeasureValues
	changed chan struct{}
}

// NewMeasureValidator creates a validator for a measure input. route
// supplies the route the measure is checked against.
func NewMeasureValidator(source MeasureSource, route *RouteValidator, log *slog.Logger) *MeasureValidator {
	if log == nil {
		log = slog.Default()
	}
	return &MeasureValidator{
		source:  source,
		route:   route,
		log:     log,
		state:   Unvalidated,
		changed: make(chan struct{}),
	}
}

// SetRoute rebinds the validator to another route validator, for
// networks where the to-measure follows the from-route.
func (v *MeasureValidator) SetRoute(route *RouteValidator) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.route = route
	v.seq++
	v.state = Unvalidated
	v.reason = ""
	v.values = MeasureValues{}
	v.broadcastLocked()
}

// SetValue replaces the input and marks it unvalidated.
func (v *MeasureValidator) SetValue(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.input = value
	v.state = Unvalidated
	v.reason = ""
	v.values = MeasureValues{}
	v.broadcastLocked()
}

// SetValues installs measure values obtained outside the input flow.
// With validate false the values settle as Valid as-is; with validate
// true the measure only seeds the input and is revalidated.
func (v *MeasureValidator) SetValues(vals MeasureValues, validate bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.input = ""
	if vals.Measure != nil {
		v.input = strconv.FormatFloat(*vals.Measure, 'f', -1, 64)
	}
	v.reason = ""
	if validate {
		v.state = Unvalidated
		v.values = MeasureValues{}
	} else {
		v.state = Valid
		v.values = vals
	}
	v.broadcastLocked()
}

// SeedFromRouteStart sets the measure to the M value at the start of
// the validated route's geometry.
func (v *MeasureValidator) SeedFromRouteStart(ctx context.Context) error {
	return v.seedEndpoint(ctx, true)
}

// SeedFromRouteEnd sets the measure to the M value at the end of the
// validated route's geometry.
func (v *MeasureValidator) SeedFromRouteEnd(ctx context.Context) error {
	return v.seedEndpoint(ctx, false)
}

func (v *MeasureValidator) seedEndpoint(ctx context.Context, start bool) error {
	v.mu.Lock()
	route := v.route
	v.mu.Unlock()
	if route == nil {
		return errors.New("no route to take a measure from")
	}
	st, vals, err := route.Values(ctx)
	if err != nil {
		return err
	}
	if st != Valid || vals.Feature == nil {
		return errors.New("route is not valid")
	}
	from, to := RouteEndpointMeasures(vals.Feature)
	m := from
	if !start {
		m = to
	}
	if m == nil {
		return errors.New("route geometry carries no measures")
	}
	v.SetValues(MeasureValues{Measure: m, Valid: true}, false)
	return nil
}

// Input returns the current input value.
func (v *MeasureValidator) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

// State returns the current validation state.
func (v *MeasureValidator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Reason returns the failure reason when the state is Invalid.
func (v *MeasureValidator) Reason() Reason {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reason
}

// Values blocks until the current input settles and returns the
// outcome. An unvalidated input is validated on demand.
func (v *MeasureValidator) Values(ctx context.Context) (State, MeasureValues, error) {
	for {
		v.mu.Lock()
		switch v.state {
		case Valid, Invalid:
			st, vals := v.state, v.values
			v.mu.Unlock()
			return st, vals, nil
		case Unvalidated:
			v.mu.Unlock()
			if err := v.Validate(ctx); err != nil {
				return Unvalidated, MeasureValues{}, err
			}
		default:
			ch := v.changed
			v.mu.Unlock()
			select {
			case <-ctx.Done():
				return Unvalidated, MeasureValues{}, ctx.Err()
			case <-ch:
			}
		}
	}
}

// Validate runs the check for the current input. A value that does not
// parse as a number fails without a remote call; once the route is
// known, the measure is confirmed against it.
func (v *MeasureValidator) Validate(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	tok := v.seq
	input := v.input
	route := v.route
	v.state = Validating
	v.reason = ""
	v.values = MeasureValues{}
	v.broadcastLocked()
	v.mu.Unlock()

	if input == "" {
		v.settle(tok, Valid, "", MeasureValues{Valid: true})
		return nil
	}

	m, ok := lrs.ParseNumber(input)
	if !ok {
		v.settle(tok, Invalid, ReasonNotANumber, MeasureValues{})
		return nil
	}

	if route == nil || v.source == nil {
		v.settle(tok, Valid, "", MeasureValues{Measure: &m, Valid: true})
		return nil
	}
	st, routeVals, err := route.Values(ctx)
	if err != nil {
		v.reopen(tok)
		return err
	}
	if st != Valid || routeVals.RouteID == "" {
		// No route to check against; the number stands on its own.
		v.settle(tok, Valid, "", MeasureValues{Measure: &m, Valid: true})
		return nil
	}

	check, err := v.source.IsMeasureOnRoute(ctx, routeVals.RouteID, m)
	if err != nil {
		if ctx.Err() != nil {
			v.reopen(tok)
			return ctx.Err()
		}
		v.log.Warn("measure check failed", "routeId", routeVals.RouteID, "measure", m, "error", err)
		v.settle(tok, Invalid, ReasonMeasureNotOnRoute, MeasureValues{Measure: &m})
		return nil
	}
	if !check.Valid {
		v.settle(tok, Invalid, ReasonMeasureNotOnRoute, MeasureValues{Measure: &m})
		return nil
	}
	v.settle(tok, Valid, "", MeasureValues{
		Measure:  &m,
		Valid:    true,
		Geometry: check.Geometry,
		Shape:    check.Shape,
	})
	return nil
}

func (v *MeasureValidator) settle(tok uint64, st State, reason Reason, vals MeasureValues) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if tok != v.seq {
		return
	}
	v.state = st
	v.reason = reason
	v.values = vals
	v.broadcastLocked()
}

func (v *MeasureValidator) reopen(tok uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if tok != v.seq {
		return
	}
	v.state = Unvalidated
	v.broadcastLocked()
}

func (v *MeasureValidator) broadcastLocked() {
	close(v.changed)
	v.changed = make(chan struct{})
}

// RouteEndpointMeasures returns the measures at the start and end of a
// route feature's geometry, when measures are present.
func RouteEndpointMeasures(f *lrs.Feature) (from, to *float64) {
	if f == nil || f.Geometry == nil {
		return nil, nil
	}
	start, end, ok := geometry.PathEndpoints(f.Geometry)
	if !ok {
		return nil, nil
	}
	return start.M, end.M
}
