package targets

import (
	"context"
	"errors"
	"log/slog"

	"github.com/storepulse/storepulse/internal/platform/validate"
)

// Service validates and loads store targets.
type Service struct {
	repo      Repository
	validator *validate.Validator
	logger    *slog.Logger
}

// NewService constructs a targets service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: validate.New(), logger: logger}
}

// Save validates req and stores it as the targets of storeID.
func (s *Service) Save(ctx context.Context, storeID string, req Request) (Target, error) {
	if err := s.validator.Struct(req); err != nil {
		return Target{}, err
	}
	saved, err := s.repo.Upsert(ctx, Target{
		StoreID:          storeID,
		MonthlySales:     req.MonthlySales,
		MaxPurchaseRate:  req.MaxPurchaseRate,
		MaxLaborRate:     req.MaxLaborRate,
		MaxPrimeCostRate: req.MaxPrimeCostRate,
		MinProfitMargin:  req.MinProfitMargin,
		MinAverageTicket: req.MinAverageTicket,
	})
	if err != nil {
		return Target{}, err
	}
	s.logger.Info("targets saved", slog.String("store_id", storeID))
	return saved, nil
}

// Get returns the stored targets of storeID.
func (s *Service) Get(ctx context.Context, storeID string) (Target, error) {
	return s.repo.Get(ctx, storeID)
}

// Lookup is Get without the not-found error: nil means no targets are set.
func (s *Service) Lookup(ctx context.Context, storeID string) (*Target, error) {
	t, err := s.repo.Get(ctx, storeID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
