package reports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storepulse/storepulse/internal/kpi"
	"github.com/storepulse/storepulse/internal/platform/db"
)

// Repository persists report rows.
type Repository interface {
	Insert(ctx context.Context, reports []Report) ([]Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, error)
	Stores(ctx context.Context, from, to time.Time) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const reportColumns = `id, report_date, store_id, operation_type, sales, customers, purchase,
	labor_cost, utilities, rent, consumables, promotion, cleaning, misc, communication, others, created_at`

// Insert stores every row in one transaction; a duplicate aborts the batch.
func (r *repository) Insert(ctx context.Context, reports []Report) ([]Report, error) {
	query := `INSERT INTO daily_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		RETURNING created_at`

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range reports {
			rep := &reports[i]
			err := tx.QueryRow(ctx, query,
				rep.ID, rep.Date, rep.StoreID, string(rep.OperationType), rep.Sales, rep.Customers,
				rep.Purchase, rep.LaborCost, rep.Utilities, rep.Rent, rep.Consumables, rep.Promotion,
				rep.Cleaning, rep.Misc, rep.Communication, rep.Others,
			).Scan(&rep.CreatedAt)
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%s %s %s: %w", rep.StoreID, rep.Date.Format(DateLayout), rep.OperationType, ErrDuplicate)
			}
			if err != nil {
				return fmt.Errorf("insert report: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM daily_reports WHERE 1=1`
	args := []any{}

	if filter.StoreID != "" {
		args = append(args, filter.StoreID)
		query += ` AND store_id = $` + strconv.Itoa(len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND report_date >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND report_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY report_date, store_id, operation_type`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var rep Report
		var op string
		if err := rows.Scan(
			&rep.ID, &rep.Date, &rep.StoreID, &op, &rep.Sales, &rep.Customers, &rep.Purchase,
			&rep.LaborCost, &rep.Utilities, &rep.Rent, &rep.Consumables, &rep.Promotion,
			&rep.Cleaning, &rep.Misc, &rep.Communication, &rep.Others, &rep.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rep.OperationType = kpi.OperationType(op)
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *repository) Stores(ctx context.Context, from, to time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT store_id FROM daily_reports WHERE report_date BETWEEN $1 AND $2 ORDER BY store_id`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("list active stores: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
