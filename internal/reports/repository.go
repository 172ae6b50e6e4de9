package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the precomputed reporting views. All views are owned by the
// database; this layer only filters and orders them.
type Repository interface {
	TripProfitability(ctx context.Context, v2 bool, from, to *time.Time) ([]TripProfitability, error)
	MonthlyProfitLoss(ctx context.Context, months int) ([]MonthlyProfitLoss, error)
	ReceivablesAging(ctx context.Context) ([]ReceivablesAging, error)
	CustomerAging(ctx context.Context, minAgeDays int) ([]CustomerAging, error)
	FleetAvailability(ctx context.Context) ([]FleetAvailability, error)
	ExpiringDocuments(ctx context.Context) ([]ExpiringDocument, error)
	DualStreamProfitability(ctx context.Context, months int) ([]DualStreamProfitability, error)
	RefreshProfitability(ctx context.Context) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed reports repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) TripProfitability(ctx context.Context, v2 bool, from, to *time.Time) ([]TripProfitability, error) {
	view := "trip_profitability"
	if v2 {
		view = "trip_profitability_v2"
	}

	query := "SELECT order_id, waybill_number, customer_name, revenue, expenses, profit, delivered_at FROM " + view
	var args []interface{}
	argPos := 1
	clause := " WHERE"
	if from != nil {
		query += fmt.Sprintf("%s delivered_at >= $%d", clause, argPos)
		args = append(args, *from)
		argPos++
		clause = " AND"
	}
	if to != nil {
		query += fmt.Sprintf("%s delivered_at < $%d", clause, argPos)
		args = append(args, *to)
	}
	query += " ORDER BY delivered_at DESC"

	return collectRows[TripProfitability](ctx, r.pool, query, args...)
}

func (r *repository) MonthlyProfitLoss(ctx context.Context, months int) ([]MonthlyProfitLoss, error) {
	return collectRows[MonthlyProfitLoss](ctx, r.pool, `
		SELECT month, revenue, expenses, profit
		FROM monthly_profit_loss
		ORDER BY month DESC
		LIMIT $1
	`, months)
}

func (r *repository) ReceivablesAging(ctx context.Context) ([]ReceivablesAging, error) {
	return collectRows[ReceivablesAging](ctx, r.pool, `
		SELECT customer_id, customer_name, current, days_30, days_60, days_90_plus, total
		FROM receivables_aging
		ORDER BY total DESC
	`)
}

func (r *repository) CustomerAging(ctx context.Context, minAgeDays int) ([]CustomerAging, error) {
	return collectRows[CustomerAging](ctx, r.pool, `
		SELECT customer_id, order_id, amount, outstanding, age_days
		FROM customer_aging
		WHERE age_days >= $1
		ORDER BY age_days DESC
	`, minAgeDays)
}

func (r *repository) FleetAvailability(ctx context.Context) ([]FleetAvailability, error) {
	return collectRows[FleetAvailability](ctx, r.pool, `
		SELECT truck_id, plate_number, status, driver_name
		FROM fleet_availability
		ORDER BY plate_number
	`)
}

func (r *repository) ExpiringDocuments(ctx context.Context) ([]ExpiringDocument, error) {
	return collectRows[ExpiringDocument](ctx, r.pool, `
		SELECT document_id, type, reference, owner, expires_at, days_left
		FROM expiring_documents
		ORDER BY expires_at
	`)
}

func (r *repository) DualStreamProfitability(ctx context.Context, months int) ([]DualStreamProfitability, error) {
	return collectRows[DualStreamProfitability](ctx, r.pool, `
		SELECT month, trading_revenue, trading_profit, haulage_revenue, haulage_profit
		FROM dual_stream_profitability
		ORDER BY month DESC
		LIMIT $1
	`, months)
}

// RefreshProfitability rebuilds the materialized profitability views.
// CONCURRENTLY keeps readers unblocked while the worker refreshes.
func (r *repository) RefreshProfitability(ctx context.Context) error {
	for _, view := range []string{"trip_profitability_v2", "dual_stream_profitability"} {
		if _, err := r.pool.Exec(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY "+view); err != nil {
			return fmt.Errorf("refresh %s: %w", view, err)
		}
	}
	return nil
}

func collectRows[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}
