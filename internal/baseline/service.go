package baseline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/validate"
)

// Invalidator drops cached KPI results after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service validates and resolves expense baselines.
type Service struct {
	repo      Repository
	cache     Invalidator
	validator *validate.Validator
	logger    *slog.Logger
}

// NewService constructs a baseline service. cache may be nil.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		validator: validate.New(),
		logger:    logger,
	}
}

// SaveBaseline validates and stores the per-day baseline of a store.
func (s *Service) SaveBaseline(ctx context.Context, storeID string, req BaselineRequest) (Baseline, error) {
	if err := s.validator.Struct(req); err != nil {
		return Baseline{}, err
	}
	saved, err := s.repo.UpsertBaseline(ctx, Baseline{
		StoreID: storeID,
		ExpenseBaseline: kpi.ExpenseBaseline{
			LaborCost:     req.LaborCost,
			Utilities:     req.Utilities,
			Rent:          req.Rent,
			Consumables:   req.Consumables,
			Promotion:     req.Promotion,
			Cleaning:      req.Cleaning,
			Misc:          req.Misc,
			Communication: req.Communication,
			Others:        req.Others,
		},
	})
	if err != nil {
		return Baseline{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("baseline saved", slog.String("store_id", storeID))
	return saved, nil
}

// SaveMonthly validates and stores a monthly expense declaration.
func (s *Service) SaveMonthly(ctx context.Context, storeID, month string, req MonthlyRequest) (MonthlyExpense, error) {
	if err := s.validator.Struct(monthKey{Month: month}); err != nil {
		return MonthlyExpense{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return MonthlyExpense{}, err
	}
	saved, err := s.repo.UpsertMonthly(ctx, MonthlyExpense{
		StoreID:       storeID,
		Month:         month,
		LaborCost:     req.LaborCost,
		Utilities:     req.Utilities,
		Rent:          req.Rent,
		Consumables:   req.Consumables,
		Promotion:     req.Promotion,
		Cleaning:      req.Cleaning,
		Misc:          req.Misc,
		Communication: req.Communication,
		Others:        req.Others,
		OpenDays:      req.OpenDays,
	})
	if err != nil {
		return MonthlyExpense{}, err
	}
	s.invalidate(ctx)
	s.logger.Info("monthly expense saved", slog.String("store_id", storeID), slog.String("month", month))
	return saved, nil
}

// Baseline returns the stored per-day baseline of a store.
func (s *Service) Baseline(ctx context.Context, storeID string) (Baseline, error) {
	return s.repo.GetBaseline(ctx, storeID)
}

// Monthly returns the monthly expense covering month, or nil when none is stored.
func (s *Service) Monthly(ctx context.Context, storeID string, month time.Time) (*MonthlyExpense, error) {
	m, err := s.repo.GetMonthly(ctx, storeID, month.Format(MonthLayout))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Resolve returns the baseline the engine should use for a store in the month
// containing month: the stored per-day baseline, else one derived from the
// monthly expense, else nil.
func (s *Service) Resolve(ctx context.Context, storeID string, month time.Time) (*kpi.ExpenseBaseline, error) {
	stored, err := s.repo.GetBaseline(ctx, storeID)
	switch {
	case err == nil:
		return &stored.ExpenseBaseline, nil
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("resolve baseline: %w", err)
	}

	monthly, err := s.Monthly(ctx, storeID, month)
	if err != nil {
		return nil, fmt.Errorf("resolve baseline: %w", err)
	}
	if monthly == nil {
		return nil, nil
	}
	days := monthly.OpenDays
	if days <= 0 {
		days = DaysIn(month)
	}
	derived := PerDay(*monthly, days)
	return &derived, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("kpi cache bump failed", slog.Any("error", err))
	}
}
