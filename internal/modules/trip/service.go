// README: Trip estimation: directions lookup, then fare lookup with a silent local fallback.
package trip

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"guava/internal/maps"
	"guava/internal/modules/pricing"
	"guava/internal/types"
)

// DefaultCallTimeout bounds each directions and fare call.
const DefaultCallTimeout = 10 * time.Second

type Router interface {
	Route(ctx context.Context, origin, destination types.Point) (maps.Leg, error)
}

type FareQuoter interface {
	EstimateFare(ctx context.Context, req pricing.FareEstimateRequest) (pricing.FareQuote, error)
}

type Service struct {
	router  Router
	fares   FareQuoter
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(router Router, fares FareQuoter, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{router: router, fares: fares, timeout: timeout, logger: logger}
}

// NewSession returns a stateful estimator for one rider's booking form.
func (s *Service) NewSession() *Estimator {
	return &Estimator{svc: s, state: State{ServiceType: pricing.DefaultServiceType}}
}

// Estimate runs one estimate without session state. Route failures are returned as
// ErrRouteUnavailable or ErrRouteFailed; fare failures fall back silently.
func (s *Service) Estimate(ctx context.Context, req Request) (Result, error) {
	if !req.Valid() {
		return Result{}, ErrIncompleteRoute
	}
	result, notice := s.route(ctx, req.Pickup, req.Destination)
	if notice != nil {
		if notice.Kind == NoticeRouteUnavailable {
			return Result{}, ErrRouteUnavailable
		}
		return Result{}, ErrRouteFailed
	}
	return s.quote(ctx, req, result), nil
}

// route resolves distance and duration. A non-nil notice means no fare lookup may follow.
func (s *Service) route(ctx context.Context, pickup, destination types.Point) (Result, *Notice) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	leg, err := s.router.Route(ctx, pickup, destination)
	switch {
	case err == nil:
	case errors.Is(err, maps.ErrNoRoute):
		s.logger.Info("route unavailable", zap.Stringer("pickup", pickup), zap.Stringer("destination", destination), zap.Error(err))
		n := routeUnavailableNotice
		return Result{}, &n
	default:
		s.logger.Warn("directions call failed", zap.Stringer("pickup", pickup), zap.Stringer("destination", destination), zap.Error(err))
		n := transportFailureNotice
		return Result{}, &n
	}

	return Result{
		DistanceKm:      pricing.KmFromMeters(leg.DistanceMeters),
		DurationMinutes: pricing.MinutesFromSeconds(leg.DurationSeconds),
	}, nil
}

// quote fills in the fare for a routed result. It never fails: any fare-service problem
// switches to the fallback formula.
func (s *Service) quote(ctx context.Context, req Request, routed Result) Result {
	st := req.ServiceType
	if st == "" {
		st = pricing.DefaultServiceType
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out := routed.clone()
	q, err := s.fares.EstimateFare(ctx, pricing.FareEstimateRequest{
		ServiceType: st,
		DistanceKm:  routed.DistanceKm,
		DurationMin: routed.DurationMinutes,
		PickupLat:   req.Pickup.Lat,
		PickupLng:   req.Pickup.Lng,
		DropLat:     req.Destination.Lat,
		DropLng:     req.Destination.Lng,
	})
	if err != nil {
		s.logger.Debug("fare service unavailable, using fallback", zap.Float64("distance_km", routed.DistanceKm), zap.Error(err))
		fare := types.Rupees(pricing.FallbackFare(routed.DistanceKm))
		out.Fare = &fare
		out.FareSource = FareFromFallback
		out.Breakdown = nil
		return out
	}

	fare := types.Rupees(pricing.DisplayFare(q.FinalTotal))
	b := q.Breakdown
	out.Fare = &fare
	out.FareSource = FareFromBackend
	out.Breakdown = &b
	return out
}
