// README: Stateful estimator for one booking form; only the latest trigger may update state.
package trip

import (
	"context"
	"sync"

	"guava/internal/modules/pricing"
	"guava/internal/types"
)

type routeKey struct {
	pickup      types.Point
	destination types.Point
}

// Estimator holds the booking form's estimate. Every change to pickup, destination or
// service type recomputes; each recompute takes a generation token and its results are
// dropped if a newer recompute has started by the time they arrive.
type Estimator struct {
	svc *Service

	mu        sync.Mutex
	gen       uint64
	state     State
	lastRoute *routeKey
}

func (e *Estimator) SetPickup(ctx context.Context, p types.Point) State {
	e.mu.Lock()
	e.state.Pickup = p
	e.mu.Unlock()
	return e.Recompute(ctx)
}

func (e *Estimator) SetDestination(ctx context.Context, p types.Point) State {
	e.mu.Lock()
	e.state.Destination = p
	e.mu.Unlock()
	return e.Recompute(ctx)
}

func (e *Estimator) ClearPickup(ctx context.Context) State {
	return e.SetPickup(ctx, types.Point{})
}

func (e *Estimator) ClearDestination(ctx context.Context) State {
	return e.SetDestination(ctx, types.Point{})
}

// Swap exchanges pickup and destination.
func (e *Estimator) Swap(ctx context.Context) State {
	e.mu.Lock()
	e.state.Pickup, e.state.Destination = e.state.Destination, e.state.Pickup
	e.mu.Unlock()
	return e.Recompute(ctx)
}

func (e *Estimator) SetServiceType(ctx context.Context, st pricing.ServiceType) State {
	e.mu.Lock()
	e.state.ServiceType = st
	e.mu.Unlock()
	return e.Recompute(ctx)
}

// Snapshot returns a copy of the current display state.
func (e *Estimator) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Recompute derives the estimate for the current points. With either point unset the
// estimate is cleared immediately and any in-flight lookup is invalidated.
func (e *Estimator) Recompute(ctx context.Context) State {
	e.mu.Lock()
	e.gen++
	token := e.gen
	req := Request{Pickup: e.state.Pickup, Destination: e.state.Destination, ServiceType: e.state.ServiceType}
	e.state.Notice = nil
	if !req.Valid() {
		e.state.Estimate = nil
		e.state.Loading = false
		s := e.snapshotLocked()
		e.mu.Unlock()
		return s
	}
	e.state.Loading = true
	e.mu.Unlock()

	routed, notice := e.svc.route(ctx, req.Pickup, req.Destination)

	e.mu.Lock()
	if token != e.gen {
		s := e.snapshotLocked()
		e.mu.Unlock()
		return s
	}
	if notice != nil {
		key := routeKey{pickup: req.Pickup, destination: req.Destination}
		if e.lastRoute == nil || *e.lastRoute != key || e.state.Estimate == nil {
			e.state.Estimate = nil
		} else {
			// Only distance and duration outlive a failed refresh; the fare may belong
			// to a service type that is no longer selected.
			e.state.Estimate = &Result{
				DistanceKm:      e.state.Estimate.DistanceKm,
				DurationMinutes: e.state.Estimate.DurationMinutes,
			}
		}
		e.state.Notice = notice
		e.state.Loading = false
		s := e.snapshotLocked()
		e.mu.Unlock()
		return s
	}
	r := routed.clone()
	e.state.Estimate = &r
	e.lastRoute = &routeKey{pickup: req.Pickup, destination: req.Destination}
	e.mu.Unlock()

	priced := e.svc.quote(ctx, req, routed)

	e.mu.Lock()
	defer e.mu.Unlock()
	if token == e.gen {
		e.state.Estimate = &priced
		e.state.Loading = false
	}
	return e.snapshotLocked()
}

func (e *Estimator) snapshotLocked() State {
	s := e.state
	if s.Estimate != nil {
		r := s.Estimate.clone()
		s.Estimate = &r
	}
	if s.Notice != nil {
		n := *s.Notice
		s.Notice = &n
	}
	return s
}
