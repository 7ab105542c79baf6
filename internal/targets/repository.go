package targets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists store targets.
type Repository interface {
	Get(ctx context.Context, storeID string) (Target, error)
	Upsert(ctx context.Context, t Target) (Target, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, storeID string) (Target, error) {
	query := `SELECT store_id, monthly_sales, max_purchase_rate, max_labor_rate, max_prime_cost_rate,
		min_profit_margin, min_average_ticket, updated_at
		FROM kpi_targets WHERE store_id = $1`
	var t Target
	err := r.db.QueryRow(ctx, query, storeID).Scan(
		&t.StoreID, &t.MonthlySales, &t.MaxPurchaseRate, &t.MaxLaborRate, &t.MaxPrimeCostRate,
		&t.MinProfitMargin, &t.MinAverageTicket, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Target{}, ErrNotFound
	}
	if err != nil {
		return Target{}, fmt.Errorf("get targets: %w", err)
	}
	return t, nil
}

func (r *repository) Upsert(ctx context.Context, t Target) (Target, error) {
	query := `INSERT INTO kpi_targets (store_id, monthly_sales, max_purchase_rate, max_labor_rate,
			max_prime_cost_rate, min_profit_margin, min_average_ticket, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (store_id) DO UPDATE SET
			monthly_sales = EXCLUDED.monthly_sales,
			max_purchase_rate = EXCLUDED.max_purchase_rate,
			max_labor_rate = EXCLUDED.max_labor_rate,
			max_prime_cost_rate = EXCLUDED.max_prime_cost_rate,
			min_profit_margin = EXCLUDED.min_profit_margin,
			min_average_ticket = EXCLUDED.min_average_ticket,
			updated_at = NOW()
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		t.StoreID, t.MonthlySales, t.MaxPurchaseRate, t.MaxLaborRate, t.MaxPrimeCostRate,
		t.MinProfitMargin, t.MinAverageTicket,
	).Scan(&t.UpdatedAt)
	if err != nil {
		return Target{}, fmt.Errorf("upsert targets: %w", err)
	}
	return t, nil
}
