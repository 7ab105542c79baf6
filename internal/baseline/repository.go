package baseline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists baselines and monthly expenses.
type Repository interface {
	GetBaseline(ctx context.Context, storeID string) (Baseline, error)
	UpsertBaseline(ctx context.Context, b Baseline) (Baseline, error)
	GetMonthly(ctx context.Context, storeID, month string) (MonthlyExpense, error)
	UpsertMonthly(ctx context.Context, m MonthlyExpense) (MonthlyExpense, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetBaseline(ctx context.Context, storeID string) (Baseline, error) {
	query := `SELECT store_id, labor_cost, utilities, rent, consumables, promotion, cleaning,
		misc, communication, others, updated_at
		FROM expense_baselines WHERE store_id = $1`
	var b Baseline
	err := r.db.QueryRow(ctx, query, storeID).Scan(
		&b.StoreID, &b.LaborCost, &b.Utilities, &b.Rent, &b.Consumables, &b.Promotion,
		&b.Cleaning, &b.Misc, &b.Communication, &b.Others, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Baseline{}, ErrNotFound
	}
	if err != nil {
		return Baseline{}, fmt.Errorf("get baseline: %w", err)
	}
	return b, nil
}

func (r *repository) UpsertBaseline(ctx context.Context, b Baseline) (Baseline, error) {
	query := `INSERT INTO expense_baselines (store_id, labor_cost, utilities, rent, consumables,
			promotion, cleaning, misc, communication, others, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (store_id) DO UPDATE SET
			labor_cost = EXCLUDED.labor_cost,
			utilities = EXCLUDED.utilities,
			rent = EXCLUDED.rent,
			consumables = EXCLUDED.consumables,
			promotion = EXCLUDED.promotion,
			cleaning = EXCLUDED.cleaning,
			misc = EXCLUDED.misc,
			communication = EXCLUDED.communication,
			others = EXCLUDED.others,
			updated_at = NOW()
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		b.StoreID, b.LaborCost, b.Utilities, b.Rent, b.Consumables, b.Promotion,
		b.Cleaning, b.Misc, b.Communication, b.Others,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return Baseline{}, fmt.Errorf("upsert baseline: %w", err)
	}
	return b, nil
}

func (r *repository) GetMonthly(ctx context.Context, storeID, month string) (MonthlyExpense, error) {
	query := `SELECT store_id, month, labor_cost, utilities, rent, consumables, promotion, cleaning,
		misc, communication, others, open_days, updated_at
		FROM monthly_expenses WHERE store_id = $1 AND month = $2`
	var m MonthlyExpense
	err := r.db.QueryRow(ctx, query, storeID, month).Scan(
		&m.StoreID, &m.Month, &m.LaborCost, &m.Utilities, &m.Rent, &m.Consumables, &m.Promotion,
		&m.Cleaning, &m.Misc, &m.Communication, &m.Others, &m.OpenDays, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return MonthlyExpense{}, ErrNotFound
	}
	if err != nil {
		return MonthlyExpense{}, fmt.Errorf("get monthly expense: %w", err)
	}
	return m, nil
}

func (r *repository) UpsertMonthly(ctx context.Context, m MonthlyExpense) (MonthlyExpense, error) {
	query := `INSERT INTO monthly_expenses (store_id, month, labor_cost, utilities, rent, consumables,
			promotion, cleaning, misc, communication, others, open_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (store_id, month) DO UPDATE SET
			labor_cost = EXCLUDED.labor_cost,
			utilities = EXCLUDED.utilities,
			rent = EXCLUDED.rent,
			consumables = EXCLUDED.consumables,
			promotion = EXCLUDED.promotion,
			cleaning = EXCLUDED.cleaning,
			misc = EXCLUDED.misc,
			communication = EXCLUDED.communication,
			others = EXCLUDED.others,
			open_days = EXCLUDED.open_days,
			updated_at = NOW()
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		m.StoreID, m.Month, m.LaborCost, m.Utilities, m.Rent, m.Consumables, m.Promotion,
		m.Cleaning, m.Misc, m.Communication, m.Others, m.OpenDays,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return MonthlyExpense{}, fmt.Errorf("upsert monthly expense: %w", err)
	}
	return m, nil
}
