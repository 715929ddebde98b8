// README: Place suggestion search; cache first, provider second.
package places

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"guava/internal/maps"
	"guava/internal/types"
)

// MinQueryLength is the shortest query sent to the provider.
const MinQueryLength = 3

type Provider interface {
	Autocomplete(ctx context.Context, query string) ([]maps.Suggestion, error)
	Resolve(ctx context.Context, placeID string) (types.Point, error)
}

type Service struct {
	provider Provider
	cache    Cache
	logger   *zap.Logger
}

// NewService wires a provider with an optional cache (nil disables caching).
func NewService(provider Provider, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cache: cache, logger: logger}
}

// Search returns suggestions for query. Short queries return nothing without a provider call.
// Cache errors are logged and otherwise ignored.
func (s *Service) Search(ctx context.Context, query string) ([]maps.Suggestion, error) {
	q := normalize(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, q)
		if err != nil {
			s.logger.Warn("suggestion cache read failed", zap.String("query", q), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	suggestions, err := s.provider.Autocomplete(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, q, suggestions); err != nil {
			s.logger.Warn("suggestion cache write failed", zap.String("query", q), zap.Error(err))
		}
	}
	return suggestions, nil
}

// Resolve turns a chosen suggestion into a point for the estimator.
func (s *Service) Resolve(ctx context.Context, placeID string) (types.Point, error) {
	return s.provider.Resolve(ctx, placeID)
}

func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
