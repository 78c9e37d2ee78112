package validation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/joeblew999/plat-lrs/internal/lrs"
	"github.com/joeblew999/plat-lrs/internal/resolver"
)

// InputSet groups the four inputs of a route-and-measure form: from
// route, to route (line networks only), and the two measures. It joins
// their individual validations and applies the combination rules that
// no single field can check alone.
type InputSet struct {
	network     *lrs.NetworkLayer
	FromRoute   *RouteValidator
	ToRoute     *RouteValidator
	FromMeasure *MeasureValidator
	ToMeasure   *MeasureValidator
}

// NewInputSet wires the validators for a network. On a line network
// the to-measure is checked against the to-route and the to-route is
// cross-checked against the from-route's line; otherwise both measures
// follow the from-route and there is no to-route input.
func NewInputSet(network *lrs.NetworkLayer, routes RouteSource, measures MeasureSource, log *slog.Logger) *InputSet {
	if log == nil {
		log = slog.Default()
	}
	set := &InputSet{network: network}
	set.FromRoute = NewRouteValidator(routes, network, log)
	set.FromMeasure = NewMeasureValidator(measures, set.FromRoute, log)
	if network != nil && network.SupportsLines {
		set.ToRoute = NewRouteValidator(routes, network, log)
		set.ToRoute.SetPeer(set.FromRoute)
		set.ToMeasure = NewMeasureValidator(measures, set.ToRoute, log)
	} else {
		set.ToMeasure = NewMeasureValidator(measures, set.FromRoute, log)
	}
	return set
}

// Inputs is the settled outcome of all four fields.
type Inputs struct {
	FromRoute        RouteValues
	FromRouteState   State
	ToRoute          RouteValues
	ToRouteState     State
	FromMeasure      MeasureValues
	FromMeasureState State
	ToMeasure        MeasureValues
	ToMeasureState   State
}

// Resolve validates all inputs and blocks until every field settles.
func (s *InputSet) Resolve(ctx context.Context) (Inputs, error) {
	var (
		out  Inputs
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		st, vals, err := s.FromRoute.Values(ctx)
		if err != nil {
			fail(err)
			return
		}
		out.FromRouteState, out.FromRoute = st, vals
	}()
	if s.ToRoute != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, vals, err := s.ToRoute.Values(ctx)
			if err != nil {
				fail(err)
				return
			}
			out.ToRouteState, out.ToRoute = st, vals
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		st, vals, err := s.FromMeasure.Values(ctx)
		if err != nil {
			fail(err)
			return
		}
		out.FromMeasureState, out.FromMeasure = st, vals
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		st, vals, err := s.ToMeasure.Values(ctx)
		if err != nil {
			fail(err)
			return
		}
		out.ToMeasureState, out.ToMeasure = st, vals
	}()
	wg.Wait()

	if len(errs) > 0 {
		return Inputs{}, errs[0]
	}
	return out, nil
}

// Check applies the cross-field rules to settled inputs and returns
// the first violated rule. The rules run in a fixed order so that the
// most fundamental problem is reported first.
func (s *InputSet) Check(in Inputs) (Reason, bool) {
	lines := s.network != nil && s.network.SupportsLines

	if in.FromRoute.RouteID == "" {
		if lines {
			return ReasonEnterFromRoute, false
		}
		return ReasonEnterRoute, false
	}

	if lines && in.ToRouteState == Invalid {
		return ReasonInvalidToRoute, false
	}

	fromBad := in.FromMeasure.Measure != nil && !in.FromMeasure.Valid
	toBad := in.ToMeasure.Measure != nil && !in.ToMeasure.Valid
	switch {
	case fromBad && toBad:
		return ReasonInvalidFromAndToMeasure, false
	case fromBad:
		return ReasonInvalidFromMeasure, false
	case toBad:
		return ReasonInvalidToMeasure, false
	}

	if s.ToRoute != nil {
		toMeasure := in.ToMeasure.Measure != nil
		fromMeasure := in.FromMeasure.Measure != nil
		toRoute := in.ToRoute.RouteID != ""
		switch {
		case toMeasure && !toRoute:
			return ReasonInvalidToLocation, false
		case toMeasure && toRoute && !fromMeasure:
			return ReasonInvalidLineMeasures, false
		case fromMeasure && toRoute && !toMeasure:
			return ReasonInvalidToLocation, false
		}
	}

	return "", true
}

// Location builds the wire location for checked inputs. The to-route
// is included only on a from/to measure pair.
func (s *InputSet) Location(in Inputs) lrs.Location {
	toRouteID := ""
	if s.ToRoute != nil {
		toRouteID = in.ToRoute.RouteID
	}
	return resolver.BuildLocation(in.FromRoute.RouteID, toRouteID, in.FromMeasure.Measure, in.ToMeasure.Measure)
}
