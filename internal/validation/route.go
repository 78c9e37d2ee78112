package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joeblew999/plat-lrs/internal/lrs"
	"github.com/joeblew999/plat-lrs/internal/routefield"
)

// RouteSource looks up a route feature by its identity value.
type RouteSource interface {
	RouteByValue(ctx context.Context, value string, returnGeometry, generalize bool) (*lrs.Feature, error)
}

// RouteValues is the identity captured from a validated route feature.
// A zero RouteValues is the null identity of an empty input.
type RouteValues struct {
	RouteID   string
	RouteName string
	LineID    any
	Feature   *lrs.Feature
}

// RouteValidator validates one route input field. Each SetValue
// supersedes any in-flight validation; a superseded result is
// discarded rather than applied.
type RouteValidator struct {
	source  RouteSource
	network *lrs.NetworkLayer
	log     *slog.Logger

	mu      sync.Mutex
	seq     uint64
	input   string
	state   State
	reason  Reason
	values  RouteValues
	changed chan struct{}

	// peer is the from-route of a to-route validator; when set and the
	// network supports lines, the validated route must share the
	// from-route's line.
	peer *RouteValidator
}

// NewRouteValidator creates a validator for a route input on a network.
func NewRouteValidator(source RouteSource, network *lrs.NetworkLayer, log *slog.Logger) *RouteValidator {
	if log == nil {
		log = slog.Default()
	}
	return &RouteValidator{
		source:  source,
		network: network,
		log:     log,
		state:   Unvalidated,
		changed: make(chan struct{}),
	}
}

// SetPeer registers the from-route validator used for the same-line
// cross-check on line networks.
func (v *RouteValidator) SetPeer(from *RouteValidator) { v.peer = from }

// SetValue replaces the input and marks it unvalidated. Any in-flight
// validation of the previous value is superseded.
func (v *RouteValidator) SetValue(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.input = value
	v.state = Unvalidated
	v.reason = ""
	v.values = RouteValues{}
	v.broadcastLocked()
}

// SetValues installs route values obtained outside the input flow,
// such as a map pick. With validate false the values settle as Valid
// as-is; with validate true they only seed the input and the route is
// validated like a typed value.
func (v *RouteValidator) SetValues(vals RouteValues, validate bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.input = vals.RouteID
	if routefield.UseRouteName(v.network) && vals.RouteName != "" {
		v.input = vals.RouteName
	}
	v.reason = ""
	if validate {
		v.state = Unvalidated
		v.values = RouteValues{}
	} else {
		v.state = Valid
		v.values = vals
	}
	v.broadcastLocked()
}

// Input returns the current input value.
func (v *RouteValidator) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

// State returns the current validation state.
func (v *RouteValidator) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Reason returns the failure reason when the state is Invalid.
func (v *RouteValidator) Reason() Reason {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reason
}

// Values blocks until the current input settles and returns the
// outcome. An unvalidated input is validated on demand.
func (v *RouteValidator) Values(ctx context.Context) (State, RouteValues, error) {
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
				return Unvalidated, RouteValues{}, err
			}
		default:
			ch := v.changed
			v.mu.Unlock()
			select {
			case <-ctx.Done():
				return Unvalidated, RouteValues{}, ctx.Err()
			case <-ch:
			}
		}
	}
}

// Validate runs the remote check for the current input. Lookup
// failures settle the input as Invalid; only context cancellation is
// returned as an error.
func (v *RouteValidator) Validate(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	tok := v.seq
	input := v.input
	v.state = Validating
	v.reason = ""
	v.values = RouteValues{}
	v.broadcastLocked()
	v.mu.Unlock()

	// An empty input is acceptable. Required-ness is checked at the
	// input-set level, not per field.
	if input == "" || v.source == nil || v.network == nil {
		v.settle(tok, Valid, "", RouteValues{})
		return nil
	}

	feature, err := v.source.RouteByValue(ctx, input, true, true)
	if err != nil {
		if ctx.Err() != nil {
			v.reopen(tok)
			return ctx.Err()
		}
		v.log.Warn("route lookup failed", "value", input, "error", err)
		v.settle(tok, Invalid, v.notFoundReason(), RouteValues{})
		return nil
	}
	if feature == nil {
		v.settle(tok, Invalid, v.notFoundReason(), RouteValues{})
		return nil
	}

	vals := v.routeValues(feature)
	if v.peer != nil && v.network.SupportsLines {
		st, fromVals, err := v.peer.Values(ctx)
		if err != nil {
			v.reopen(tok)
			return err
		}
		if st == Valid && fromVals.RouteID != "" && !lrs.CodesEqual(vals.LineID, fromVals.LineID) {
			v.settle(tok, Invalid, ReasonInvalidRouteOnLine, RouteValues{})
			return nil
		}
	}
	v.settle(tok, Valid, "", vals)
	return nil
}

func (v *RouteValidator) settle(tok uint64, st State, reason Reason, vals RouteValues) {
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

// reopen returns an interrupted validation to Unvalidated so a later
// call can retry it.
func (v *RouteValidator) reopen(tok uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if tok != v.seq {
		return
	}
	v.state = Unvalidated
	v.broadcastLocked()
}

func (v *RouteValidator) broadcastLocked() {
	close(v.changed)
	v.changed = make(chan struct{})
}

func (v *RouteValidator) routeValues(f *lrs.Feature) RouteValues {
	vals := RouteValues{Feature: f}
	if id, ok := f.Attributes[v.network.CompositeRouteIDFieldName]; ok && id != nil {
		vals.RouteID = fmt.Sprint(id)
	}
	if v.network.LineIDFieldName != "" {
		vals.LineID = f.Attributes[v.network.LineIDFieldName]
	}
	if routefield.NetworkSupportsRouteName(v.network) {
		if name, ok := f.Attributes[v.network.RouteNameFieldName]; ok && name != nil {
			vals.RouteName = fmt.Sprint(name)
		}
	}
	return vals
}

func (v *RouteValidator) notFoundReason() Reason {
	if routefield.UseRouteName(v.network) {
		return ReasonRouteNameVsIDMismatch
	}
	return ReasonRouteNotFound
}
