// README: Pricing tier service hosts the /tiers contract the admin editor consumes.
package pricing

import (
	"context"

	"go.uber.org/zap"
)

// TierRepository is the persistence the tier service needs; *Store satisfies it.
type TierRepository interface {
	ListTiers(ctx context.Context, st ServiceType) ([]Tier, error)
	UpsertTier(ctx context.Context, t Tier) (Tier, error)
	ReplaceTiers(ctx context.Context, st ServiceType, tiers []Tier) error
	DeleteTier(ctx context.Context, id int64) error
}

type Service struct {
	store  TierRepository
	logger *zap.Logger
}

func NewService(store TierRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) List(ctx context.Context, st ServiceType) ([]Tier, error) {
	if _, err := ParseServiceType(string(st)); err != nil {
		return nil, err
	}
	return s.store.ListTiers(ctx, st)
}

func (s *Service) Upsert(ctx context.Context, t Tier) (Tier, error) {
	if _, err := ParseServiceType(string(t.ServiceType)); err != nil {
		return Tier{}, err
	}
	if err := ValidateTier(t); err != nil {
		return Tier{}, err
	}
	saved, err := s.store.UpsertTier(ctx, t)
	if err != nil {
		return Tier{}, err
	}
	s.logger.Info("tier saved",
		zap.String("service_type", string(saved.ServiceType)),
		zap.String("range", RangeLabel(saved)),
	)
	return saved, nil
}

// ReplaceAll persists a complete tier set for st. The set must be contiguous.
func (s *Service) ReplaceAll(ctx context.Context, st ServiceType, tiers []Tier) error {
	if _, err := ParseServiceType(string(st)); err != nil {
		return err
	}
	if err := CheckContiguity(tiers); err != nil {
		return err
	}
	ordered := CloneTiers(tiers)
	SortTiers(ordered)
	for i := range ordered {
		ordered[i].ServiceType = st
	}
	if err := s.store.ReplaceTiers(ctx, st, ordered); err != nil {
		return err
	}
	s.logger.Info("tiers replaced", zap.String("service_type", string(st)), zap.Int("count", len(ordered)))
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrBadRequest
	}
	if err := s.store.DeleteTier(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tier deleted", zap.Int64("id", id))
	return nil
}
