package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/validate"
)

// Invalidator drops cached KPI results after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Recorder counts accepted rows.
type Recorder interface {
	ReportSubmitted(operationType string)
}

// Service validates, stores and reads report rows.
type Service struct {
	repo      Repository
	cache     Invalidator
	metrics   Recorder
	validator *validate.Validator
	logger    *slog.Logger
	newID     func() uuid.UUID
}

// NewService constructs a report service. cache and metrics may be nil.
func NewService(repo Repository, cache Invalidator, metrics Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate.New(),
		logger:    logger,
		newID:     uuid.New,
	}
}

// Submit validates and stores one report row.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Report, error) {
	stored, err := s.SubmitBatch(ctx, BatchRequest{Reports: []SubmitRequest{req}})
	if err != nil {
		return Report{}, err
	}
	return stored[0], nil
}

// SubmitBatch validates and stores several rows atomically.
func (s *Service) SubmitBatch(ctx context.Context, req BatchRequest) ([]Report, error) {
	var err error
	if len(req.Reports) == 1 {
		err = s.validator.Struct(req.Reports[0])
	} else {
		err = s.validator.Struct(req)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]Report, 0, len(req.Reports))
	for _, r := range req.Reports {
		rec, err := r.Record()
		if err != nil {
			return nil, err
		}
		rows = append(rows, Report{ID: s.newID(), ReportRecord: rec})
	}

	stored, err := s.repo.Insert(ctx, rows)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("kpi cache bump failed", slog.Any("error", err))
		}
	}
	for _, r := range stored {
		if s.metrics != nil {
			s.metrics.ReportSubmitted(string(r.OperationType))
		}
		s.logger.Info("report submitted",
			slog.String("store_id", r.StoreID),
			slog.String("date", r.Date.Format(DateLayout)),
			slog.String("operation_type", string(r.OperationType)))
	}
	return stored, nil
}

// List returns stored rows matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	return s.repo.List(ctx, filter)
}

// Records loads a store's rows between from and to inclusive as engine input.
func (s *Service) Records(ctx context.Context, storeID string, from, to time.Time) ([]kpi.ReportRecord, error) {
	rows, err := s.repo.List(ctx, ListFilter{StoreID: storeID, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return Records(rows), nil
}

// ActiveStores lists the stores with at least one row between from and to.
func (s *Service) ActiveStores(ctx context.Context, from, to time.Time) ([]string, error) {
	return s.repo.Stores(ctx, from, to)
}
