// README: Tier editor holds every service type's tiers in memory and reconciles with the backend.
package tiereditor

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"guava/internal/modules/pricing"
)

// Backend is the remote tier contract; *backend.Client satisfies it.
type Backend interface {
	ListTiers(ctx context.Context, st pricing.ServiceType) ([]pricing.Tier, error)
	UpsertTier(ctx context.Context, t pricing.Tier) (pricing.Tier, error)
	ReplaceTiers(ctx context.Context, st pricing.ServiceType, tiers []pricing.Tier) error
	DeleteTier(ctx context.Context, id int64) error
}

// Editor owns a keyed serviceType -> tiers map. Local edits touch only the active type
// and are not re-sorted or re-validated until a save.
type Editor struct {
	backend Backend
	logger  *zap.Logger

	mu        sync.Mutex
	tiers     map[pricing.ServiceType][]pricing.Tier
	rowErrors map[pricing.ServiceType]map[int]string
	active    pricing.ServiceType
}

func New(backend Backend, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Editor{
		backend:   backend,
		logger:    logger,
		tiers:     map[pricing.ServiceType][]pricing.Tier{},
		rowErrors: map[pricing.ServiceType]map[int]string{},
		active:    pricing.ServiceTypes[0],
	}
	for _, st := range pricing.ServiceTypes {
		e.rowErrors[st] = map[int]string{}
	}
	return e
}

// Load fetches all four service types concurrently. Types that come back empty, or
// fail to load, get the built-in defaults so no type is ever empty. The first fetch
// error is returned after every type has been settled.
func (e *Editor) Load(ctx context.Context) error {
	fetched := make([][]pricing.Tier, len(pricing.ServiceTypes))
	errs := make([]error, len(pricing.ServiceTypes))

	var g errgroup.Group
	for i, st := range pricing.ServiceTypes {
		g.Go(func() error {
			tiers, err := e.backend.ListTiers(ctx, st)
			fetched[i], errs[i] = tiers, err
			return err
		})
	}
	firstErr := g.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, st := range pricing.ServiceTypes {
		if errs[i] != nil {
			e.logger.Warn("tier load failed", zap.String("service_type", string(st)), zap.Error(errs[i]))
			if len(e.tiers[st]) == 0 {
				e.tiers[st] = pricing.DefaultTiers(st)
			}
			continue
		}
		e.setLocked(st, fetched[i])
	}
	return firstErr
}

// Refresh re-fetches one service type, replacing whatever is held locally.
func (e *Editor) Refresh(ctx context.Context, st pricing.ServiceType) error {
	if _, err := pricing.ParseServiceType(string(st)); err != nil {
		return err
	}
	tiers, err := e.backend.ListTiers(ctx, st)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setLocked(st, tiers)
	return nil
}

func (e *Editor) setLocked(st pricing.ServiceType, tiers []pricing.Tier) {
	if len(tiers) == 0 {
		tiers = pricing.DefaultTiers(st)
	}
	e.tiers[st] = pricing.CloneTiers(tiers)
	e.rowErrors[st] = map[int]string{}
}

// SetActive switches the edited service type. It never fetches.
func (e *Editor) SetActive(st pricing.ServiceType) error {
	if _, err := pricing.ParseServiceType(string(st)); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = st
	return nil
}

func (e *Editor) Active() pricing.ServiceType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Tiers returns a copy of the tiers held for st.
func (e *Editor) Tiers(st pricing.ServiceType) []pricing.Tier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pricing.CloneTiers(e.tiers[st])
}

// RowErrors returns the validation messages for st keyed by row index.
func (e *Editor) RowErrors(st pricing.ServiceType) map[int]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int]string, len(e.rowErrors[st]))
	for k, v := range e.rowErrors[st] {
		out[k] = v
	}
	return out
}

func (e *Editor) View(st pricing.ServiceType) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{ServiceType: st, Active: st == e.active, Rows: []Row{}}
	for i, t := range e.tiers[st] {
		v.Rows = append(v.Rows, Row{
			Index: i,
			Tier:  t.Clone(),
			Range: pricing.RangeLabel(t),
			Error: e.rowErrors[st][i],
		})
	}
	return v
}

// EditField sets one field of one row of the active type. A nil value is only
// accepted for distanceToKm ("and above") and baseFare.
func (e *Editor) EditField(index int, field Field, value *float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tiers := e.tiers[e.active]
	if index < 0 || index >= len(tiers) {
		return ErrRowNotFound
	}
	t := &tiers[index]
	switch field {
	case FieldDistanceFrom:
		if value == nil {
			return ErrInvalidValue
		}
		t.DistanceFromKm = *value
	case FieldDistanceTo:
		t.DistanceToKm = copyFloat(value)
	case FieldRatePerKm:
		if value == nil {
			return ErrInvalidValue
		}
		t.RatePerKm = *value
	case FieldBaseFare:
		t.BaseFare = copyFloat(value)
	default:
		return ErrUnknownField
	}
	return nil
}

// DefaultRowWidthKm closes an open-ended last row when there is no earlier row to copy a width from.
const DefaultRowWidthKm = 5

// AddRow appends an open-ended row to the active type, starting where the last row ends.
// An open-ended last row is first closed, one row-width past its start, so the set stays
// contiguous.
func (e *Editor) AddRow() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	tiers := e.tiers[e.active]
	row := pricing.Tier{ServiceType: e.active, DisplayOrder: len(tiers) + 1, IsActive: true}
	if n := len(tiers); n > 0 {
		last := &tiers[n-1]
		if last.DistanceToKm == nil {
			width := float64(DefaultRowWidthKm)
			if n > 1 && last.DistanceFromKm > tiers[n-2].DistanceFromKm {
				width = last.DistanceFromKm - tiers[n-2].DistanceFromKm
			}
			last.DistanceToKm = pricing.Float(last.DistanceFromKm + width)
		}
		row.DistanceFromKm = *last.DistanceToKm
	} else {
		row.BaseFare = pricing.Float(0)
	}
	e.tiers[e.active] = append(tiers, row)
	return len(tiers)
}

// SaveRow validates and upserts one row of the active type, then re-fetches that type.
// A validation failure is recorded against the row and no request is sent.
func (e *Editor) SaveRow(ctx context.Context, index int) error {
	e.mu.Lock()
	st := e.active
	tiers := e.tiers[st]
	if index < 0 || index >= len(tiers) {
		e.mu.Unlock()
		return ErrRowNotFound
	}
	t := tiers[index].Clone()
	e.mu.Unlock()

	if t.ServiceType == "" {
		t.ServiceType = st
	}
	if err := pricing.ValidateTier(t); err != nil {
		e.setRowError(st, index, err.Error())
		return err
	}
	e.setRowError(st, index, "")
	return e.upsert(ctx, t)
}

// SaveTier validates and upserts a tier built outside the table (the create dialog),
// then re-fetches its service type.
func (e *Editor) SaveTier(ctx context.Context, t pricing.Tier) error {
	if t.ServiceType == "" {
		t.ServiceType = e.Active()
	}
	if _, err := pricing.ParseServiceType(string(t.ServiceType)); err != nil {
		return err
	}
	if err := pricing.ValidateTier(t); err != nil {
		return err
	}
	return e.upsert(ctx, t)
}

func (e *Editor) upsert(ctx context.Context, t pricing.Tier) error {
	if _, err := e.backend.UpsertTier(ctx, t); err != nil {
		e.logger.Warn("tier upsert failed", zap.String("service_type", string(t.ServiceType)), zap.Error(err))
		return err
	}
	return e.Refresh(ctx, t.ServiceType)
}

// BulkSave validates the active type's whole set, submits it in range order, holds the
// submitted set locally, then re-fetches. On a failed submit the submitted set stays
// in place until the next refresh.
func (e *Editor) BulkSave(ctx context.Context) error {
	e.mu.Lock()
	st := e.active
	tiers := pricing.CloneTiers(e.tiers[st])
	e.mu.Unlock()

	if len(tiers) == 0 {
		return &pricing.ValidationError{Field: "tiers", Message: pricing.MsgNoTiers}
	}

	rowErrs := map[int]string{}
	for i, t := range tiers {
		if err := pricing.ValidateTier(t); err != nil {
			rowErrs[i] = err.Error()
		}
	}
	if len(rowErrs) > 0 {
		e.mu.Lock()
		e.rowErrors[st] = rowErrs
		e.mu.Unlock()
		for i := range tiers {
			if msg, ok := rowErrs[i]; ok {
				return &pricing.ValidationError{Field: "tiers", Message: msg}
			}
		}
	}
	if err := pricing.CheckContiguity(tiers); err != nil {
		return err
	}

	pricing.SortTiers(tiers)
	for i := range tiers {
		tiers[i].ServiceType = st
		tiers[i].DisplayOrder = i + 1
	}

	err := e.backend.ReplaceTiers(ctx, st, tiers)

	e.mu.Lock()
	e.tiers[st] = pricing.CloneTiers(tiers)
	e.rowErrors[st] = map[int]string{}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("bulk tier save failed", zap.String("service_type", string(st)), zap.Error(err))
		return err
	}
	e.logger.Info("bulk tier save", zap.String("service_type", string(st)), zap.Int("count", len(tiers)))
	return e.Refresh(ctx, st)
}

// Delete removes a persisted tier after the operator confirmed, then re-fetches.
func (e *Editor) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	st := e.serviceTypeOf(id)
	if err := e.backend.DeleteTier(ctx, id); err != nil {
		e.logger.Warn("tier delete failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return e.Refresh(ctx, st)
}

func (e *Editor) serviceTypeOf(id int64) pricing.ServiceType {
	e.mu.Lock()
	defer e.mu.Unlock()
	for st, tiers := range e.tiers {
		for _, t := range tiers {
			if t.ID != nil && *t.ID == id {
				return st
			}
		}
	}
	return e.active
}

func (e *Editor) setRowError(st pricing.ServiceType, index int, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if msg == "" {
		delete(e.rowErrors[st], index)
		return
	}
	e.rowErrors[st][index] = msg
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
