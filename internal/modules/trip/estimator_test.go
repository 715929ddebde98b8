package trip

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"guava/internal/maps"
	"guava/internal/modules/pricing"
	"guava/internal/types"
)

var (
	pickup      = types.Point{Lat: 17.4, Lng: 78.4}
	destination = types.Point{Lat: 17.5, Lng: 78.5}
	elsewhere   = types.Point{Lat: 17.6, Lng: 78.6}
)

type fakeRouter struct {
	mu      sync.Mutex
	legs    map[types.Point]maps.Leg
	errs    map[types.Point]error
	gates   map[types.Point]chan struct{}
	entered chan types.Point
	calls   int
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{
		legs:  map[types.Point]maps.Leg{},
		errs:  map[types.Point]error{},
		gates: map[types.Point]chan struct{}{},
	}
}

func (f *fakeRouter) Route(ctx context.Context, _, dest types.Point) (maps.Leg, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[dest]
	entered := f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- dest
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return maps.Leg{}, fmt.Errorf("%w: %v", maps.ErrTransport, ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[dest]; ok {
		return maps.Leg{}, err
	}
	leg, ok := f.legs[dest]
	if !ok {
		return maps.Leg{}, maps.ErrNoRoute
	}
	return leg, nil
}

func (f *fakeRouter) setErr(dest types.Point, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[dest] = err
}

type fakeQuoter struct {
	mu    sync.Mutex
	quote *pricing.FareQuote
	err   error
	reqs  []pricing.FareEstimateRequest
}

func (f *fakeQuoter) EstimateFare(_ context.Context, req pricing.FareEstimateRequest) (pricing.FareQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return pricing.FareQuote{}, f.err
	}
	if f.quote == nil {
		return pricing.FareQuote{}, errors.New("no quote configured")
	}
	return *f.quote, nil
}

func (f *fakeQuoter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func newTestEstimator(r *fakeRouter, q *fakeQuoter) *Estimator {
	return NewService(r, q, 0, nil).NewSession()
}

func TestEstimator_EndToEndFallback(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	q := &fakeQuoter{err: errors.New("connection refused")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	s := e.SetDestination(ctx, destination)

	if s.Notice != nil {
		t.Errorf("fare fallback must be silent, got notice %+v", s.Notice)
	}
	if s.Estimate == nil {
		t.Fatal("expected an estimate")
	}
	if s.Estimate.DistanceKm != 8.2 || s.Estimate.DurationMinutes != 17 {
		t.Errorf("distance/duration = %v/%v", s.Estimate.DistanceKm, s.Estimate.DurationMinutes)
	}
	if s.Estimate.Fare == nil || s.Estimate.Fare.Amount != 173 {
		t.Errorf("fare = %+v, want 173", s.Estimate.Fare)
	}
	if s.Estimate.FareSource != FareFromFallback || s.Estimate.Breakdown != nil {
		t.Errorf("expected fallback without breakdown, got %s %+v", s.Estimate.FareSource, s.Estimate.Breakdown)
	}
	if s.Loading {
		t.Error("estimate should not be loading")
	}

	if len(q.reqs) != 1 {
		t.Fatalf("fare calls = %d, want 1", len(q.reqs))
	}
	got := q.reqs[0]
	want := pricing.FareEstimateRequest{
		ServiceType: pricing.ServiceCar, DistanceKm: 8.2, DurationMin: 17,
		PickupLat: 17.4, PickupLng: 78.4, DropLat: 17.5, DropLng: 78.5,
	}
	if got != want {
		t.Errorf("fare request = %+v, want %+v", got, want)
	}
}

func TestEstimator_BackendFare(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 12345, DurationSeconds: 905}
	b := pricing.Breakdown{BaseFare: 50, DistanceFare: 120, TimeFare: 17, PlatformFee: 5, Subtotal: 192, GST: 9.6, Discount: 10, FinalTotal: 191.6}
	q := &fakeQuoter{quote: &pricing.FareQuote{FinalTotal: 191.6, Breakdown: b}}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	s := e.SetDestination(ctx, destination)

	if s.Estimate == nil || s.Estimate.DistanceKm != 12.3 || s.Estimate.DurationMinutes != 15 {
		t.Fatalf("estimate = %+v", s.Estimate)
	}
	if s.Estimate.Fare.Amount != 192 || s.Estimate.FareSource != FareFromBackend {
		t.Errorf("fare = %+v from %s", s.Estimate.Fare, s.Estimate.FareSource)
	}
	if s.Estimate.Breakdown == nil || *s.Estimate.Breakdown != b {
		t.Errorf("breakdown = %+v", s.Estimate.Breakdown)
	}
}

func TestEstimator_ServiceTypeIsForwarded(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 1000, DurationSeconds: 60}
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	e.SetDestination(ctx, destination)
	e.SetServiceType(ctx, pricing.ServiceBike)

	if len(q.reqs) != 2 || q.reqs[1].ServiceType != pricing.ServiceBike {
		t.Errorf("fare requests = %+v", q.reqs)
	}
}

func TestEstimator_UnsetPointClearsEstimate(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	r.legs[pickup] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	q := &fakeQuoter{err: errors.New("down")}
	ctx := context.Background()

	clears := []struct {
		name  string
		clear func(*Estimator) State
	}{
		{name: "clear pickup", clear: func(e *Estimator) State { return e.ClearPickup(ctx) }},
		{name: "clear destination", clear: func(e *Estimator) State { return e.ClearDestination(ctx) }},
		{name: "zero pickup", clear: func(e *Estimator) State { return e.SetPickup(ctx, types.Point{}) }},
	}
	for _, tc := range clears {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEstimator(r, q)
			e.SetPickup(ctx, pickup)
			if s := e.SetDestination(ctx, destination); s.Estimate == nil {
				t.Fatal("expected an estimate before clearing")
			}
			s := tc.clear(e)
			if s.Estimate != nil || s.Notice != nil || s.Loading {
				t.Errorf("state not cleared: %+v", s)
			}
			if snap := e.Snapshot(); snap.Estimate != nil {
				t.Errorf("snapshot not cleared: %+v", snap.Estimate)
			}
		})
	}

	e := newTestEstimator(r, q)
	if s := e.SetDestination(ctx, destination); s.Estimate != nil {
		t.Error("no estimate expected with only a destination")
	}
}

func TestEstimator_RouteUnavailable(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	e.SetDestination(ctx, destination)
	fareCalls := q.calls()

	// New route with no result: estimate cleared, notice shown, no fare lookup.
	s := e.SetDestination(ctx, elsewhere)
	if s.Notice == nil || s.Notice.Kind != NoticeRouteUnavailable {
		t.Fatalf("notice = %+v", s.Notice)
	}
	if s.Estimate != nil {
		t.Errorf("estimate for a new route must be cleared, got %+v", s.Estimate)
	}
	if q.calls() != fareCalls {
		t.Error("fare lookup must not follow a failed route lookup")
	}
}

func TestEstimator_RefreshKeepsPriorEstimate(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	e.SetDestination(ctx, destination)

	r.setErr(destination, maps.ErrNoRoute)
	s := e.Recompute(ctx)
	if s.Notice == nil || s.Notice.Kind != NoticeRouteUnavailable {
		t.Fatalf("notice = %+v", s.Notice)
	}
	if s.Estimate == nil || s.Estimate.DistanceKm != 8.2 || s.Estimate.DurationMinutes != 17 {
		t.Errorf("refresh of a valid route should keep the prior estimate, got %+v", s.Estimate)
	}
}

func TestEstimator_FailedRefreshDropsStaleFare(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	b := pricing.Breakdown{BaseFare: 50, DistanceFare: 250, Subtotal: 300, FinalTotal: 300}
	q := &fakeQuoter{quote: &pricing.FareQuote{FinalTotal: 300, Breakdown: b}}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	s := e.SetDestination(ctx, destination)
	if s.Estimate == nil || s.Estimate.Fare == nil || s.Estimate.Fare.Amount != 300 {
		t.Fatalf("expected a CAR fare of 300, got %+v", s.Estimate)
	}

	r.setErr(destination, maps.ErrNoRoute)
	s = e.SetServiceType(ctx, pricing.ServiceBike)

	if s.ServiceType != pricing.ServiceBike || s.Notice == nil || s.Notice.Kind != NoticeRouteUnavailable {
		t.Fatalf("state = %+v notice = %+v", s, s.Notice)
	}
	if s.Estimate == nil || s.Estimate.DistanceKm != 8.2 || s.Estimate.DurationMinutes != 17 {
		t.Fatalf("distance/duration should survive, got %+v", s.Estimate)
	}
	if s.Estimate.Fare != nil || s.Estimate.Breakdown != nil || s.Estimate.FareSource != "" {
		t.Errorf("fare from the previous service type kept: %+v", s.Estimate)
	}
}

func TestEstimator_TransportFailure(t *testing.T) {
	r := newFakeRouter()
	r.errs[destination] = fmt.Errorf("%w: dial tcp: refused", maps.ErrTransport)
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	s := e.SetDestination(ctx, destination)
	if s.Notice == nil || s.Notice.Kind != NoticeTransportFailure {
		t.Fatalf("notice = %+v", s.Notice)
	}
	if s.Estimate != nil || q.calls() != 0 {
		t.Errorf("estimate = %+v, fare calls = %d", s.Estimate, q.calls())
	}
}

func TestEstimator_SwapRecomputes(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	r.legs[pickup] = maps.Leg{DistanceMeters: 9100, DurationSeconds: 1200}
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.SetPickup(ctx, pickup)
	e.SetDestination(ctx, destination)
	s := e.Swap(ctx)

	if s.Pickup != destination || s.Destination != pickup {
		t.Errorf("points not swapped: %+v", s)
	}
	if s.Estimate == nil || s.Estimate.DistanceKm != 9.1 || s.Estimate.DurationMinutes != 20 {
		t.Errorf("estimate = %+v", s.Estimate)
	}
}

// A slow lookup for an older selection must not overwrite a newer one.
func TestEstimator_LastWriteWins(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	r.legs[elsewhere] = maps.Leg{DistanceMeters: 3000, DurationSeconds: 600}
	gate := make(chan struct{})
	r.gates[destination] = gate
	r.entered = make(chan types.Point, 4)
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.mu.Lock()
	e.state.Pickup = pickup
	e.mu.Unlock()

	done := make(chan State)
	go func() { done <- e.SetDestination(ctx, destination) }()
	if got := <-r.entered; got != destination {
		t.Fatalf("first lookup for %v", got)
	}

	s := e.SetDestination(ctx, elsewhere)
	<-r.entered
	if s.Estimate == nil || s.Estimate.DistanceKm != 3 {
		t.Fatalf("newer estimate = %+v", s.Estimate)
	}

	close(gate)
	<-done

	final := e.Snapshot()
	if final.Destination != elsewhere || final.Estimate == nil || final.Estimate.DistanceKm != 3 {
		t.Errorf("stale lookup overwrote state: %+v", final.Estimate)
	}
	if final.Estimate.Fare == nil || final.Estimate.Fare.Amount != pricing.FallbackFare(3) {
		t.Errorf("fare = %+v", final.Estimate.Fare)
	}
}

// Clearing a point while a lookup is in flight must leave the estimate empty.
func TestEstimator_ClearDuringLookup(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	gate := make(chan struct{})
	r.gates[destination] = gate
	r.entered = make(chan types.Point, 2)
	q := &fakeQuoter{err: errors.New("down")}
	e := newTestEstimator(r, q)
	ctx := context.Background()

	e.mu.Lock()
	e.state.Pickup = pickup
	e.mu.Unlock()

	done := make(chan State)
	go func() { done <- e.SetDestination(ctx, destination) }()
	<-r.entered

	if s := e.ClearPickup(ctx); s.Estimate != nil {
		t.Fatalf("estimate after clear = %+v", s.Estimate)
	}
	close(gate)
	<-done

	if s := e.Snapshot(); s.Estimate != nil {
		t.Errorf("in-flight lookup repopulated a cleared estimate: %+v", s.Estimate)
	}
	if q.calls() != 0 {
		t.Errorf("fare lookup issued for a superseded route")
	}
}

func TestService_Estimate(t *testing.T) {
	r := newFakeRouter()
	r.legs[destination] = maps.Leg{DistanceMeters: 8200, DurationSeconds: 1020}
	q := &fakeQuoter{err: errors.New("down")}
	svc := NewService(r, q, 0, nil)
	ctx := context.Background()

	res, err := svc.Estimate(ctx, Request{Pickup: pickup, Destination: destination})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Fare == nil || res.Fare.Amount != 173 {
		t.Errorf("fare = %+v", res.Fare)
	}

	if _, err := svc.Estimate(ctx, Request{Pickup: pickup}); !errors.Is(err, ErrIncompleteRoute) {
		t.Errorf("expected ErrIncompleteRoute, got %v", err)
	}
	if _, err := svc.Estimate(ctx, Request{Pickup: pickup, Destination: elsewhere}); !errors.Is(err, ErrRouteUnavailable) {
		t.Errorf("expected ErrRouteUnavailable, got %v", err)
	}
	r.setErr(destination, maps.ErrTransport)
	if _, err := svc.Estimate(ctx, Request{Pickup: pickup, Destination: destination}); !errors.Is(err, ErrRouteFailed) {
		t.Errorf("expected ErrRouteFailed, got %v", err)
	}
}
