// README: Pricing tier store backed by PostgreSQL.
package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const tierColumns = `id, service_type, distance_from_km, distance_to_km, rate_per_km, base_fare, display_order, is_active`

func (s *Store) ListTiers(ctx context.Context, st ServiceType) ([]Tier, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tierColumns+`
		FROM pricing_tiers
		WHERE service_type = $1
		ORDER BY distance_from_km, display_order`, string(st),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := []Tier{}
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func (s *Store) UpsertTier(ctx context.Context, t Tier) (Tier, error) {
	var row pgx.Row
	if t.ID == nil {
		row = s.db.QueryRow(ctx, `
			INSERT INTO pricing_tiers (
				service_type, distance_from_km, distance_to_km, rate_per_km,
				base_fare, display_order, is_active, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING `+tierColumns,
			string(t.ServiceType), t.DistanceFromKm, t.DistanceToKm, t.RatePerKm,
			t.BaseFare, t.DisplayOrder, t.IsActive,
		)
	} else {
		row = s.db.QueryRow(ctx, `
			UPDATE pricing_tiers
			SET service_type = $2,
				distance_from_km = $3,
				distance_to_km = $4,
				rate_per_km = $5,
				base_fare = $6,
				display_order = $7,
				is_active = $8,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+tierColumns,
			*t.ID, string(t.ServiceType), t.DistanceFromKm, t.DistanceToKm, t.RatePerKm,
			t.BaseFare, t.DisplayOrder, t.IsActive,
		)
	}
	saved, err := scanTier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tier{}, ErrNotFound
	}
	return saved, err
}

// ReplaceTiers swaps the whole set for st inside one transaction.
func (s *Store) ReplaceTiers(ctx context.Context, st ServiceType, tiers []Tier) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM pricing_tiers WHERE service_type = $1`, string(st)); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, t := range tiers {
		batch.Queue(`
			INSERT INTO pricing_tiers (
				service_type, distance_from_km, distance_to_km, rate_per_km,
				base_fare, display_order, is_active, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			string(st), t.DistanceFromKm, t.DistanceToKm, t.RatePerKm,
			t.BaseFare, t.DisplayOrder, t.IsActive,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteTier(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM pricing_tiers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTier(row pgx.Row) (Tier, error) {
	var t Tier
	var id int64
	var st string
	if err := row.Scan(
		&id, &st, &t.DistanceFromKm, &t.DistanceToKm, &t.RatePerKm,
		&t.BaseFare, &t.DisplayOrder, &t.IsActive,
	); err != nil {
		return Tier{}, err
	}
	t.ID = &id
	t.ServiceType = ServiceType(st)
	return t, nil
}
