// README: API gateway; holds module services and per-caller session registries.
package http

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"guava/internal/config"
	"guava/internal/http/middleware"
	"guava/internal/infra"
	"guava/internal/modules/places"
	"guava/internal/modules/pricing"
	"guava/internal/modules/tiereditor"
	"guava/internal/modules/trip"
	"guava/internal/session"
)

type ServerDeps struct {
	Trips  *trip.Service
	Places *places.Service
	// Tiers is optional; without it the /tiers host routes are not mounted.
	Tiers     *pricing.Service
	NewEditor func() *tiereditor.Editor
	Verifier  infra.TokenVerifier
	Logger    *zap.Logger
	HTTP      config.HTTPConfig
	Debounce  time.Duration
}

type Server struct {
	trips     *trip.Service
	places    *places.Service
	tiers     *pricing.Service
	verifier  infra.TokenVerifier
	logger    *zap.Logger
	cfg       config.HTTPConfig
	estimates *session.Registry[*trip.Estimator]
	searches  *session.Registry[*places.Debouncer]
	editors   *session.Registry[*tiereditor.Editor]
	limiters  *session.Registry[*rate.Limiter]
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		trips:    deps.Trips,
		places:   deps.Places,
		tiers:    deps.Tiers,
		verifier: deps.Verifier,
		logger:   logger,
		cfg:      deps.HTTP,
	}
	s.estimates = session.NewRegistry(deps.Trips.NewSession)
	s.searches = session.NewRegistry(func() *places.Debouncer {
		return places.NewDebouncer(deps.Places.Search, deps.Debounce)
	})
	s.editors = session.NewRegistry(deps.NewEditor)
	s.limiters = middleware.NewLimiters(deps.HTTP.RatePerMinute, deps.HTTP.RateBurst)
	return s
}

// RunJanitors evicts idle rider sessions, suggestion debouncers, operator editors and
// per-IP rate buckets until ctx is done.
func (s *Server) RunJanitors(ctx context.Context, tick, maxIdle time.Duration) {
	if s.limiters != nil {
		go s.limiters.RunJanitor(ctx, tick, maxIdle)
	}
	go s.estimates.RunJanitor(ctx, tick, maxIdle)
	go s.searches.RunJanitor(ctx, tick, maxIdle)
	s.editors.RunJanitor(ctx, tick, maxIdle)
}
