package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haulage-erp/haulage-erp/internal/platform/db"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// ErrInsufficientStock is returned when an issue would take a row negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository provides depot and stock data access.
type Repository interface {
	GetDepot(ctx context.Context, id uuid.UUID) (*Depot, error)
	ListDepots(ctx context.Context, activeOnly bool) ([]Depot, error)
	CreateDepot(ctx context.Context, d Depot) (uuid.UUID, error)
	UpdateDepot(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	ListStock(ctx context.Context, depotID *uuid.UUID) ([]StockRow, error)
	AdjustStock(ctx context.Context, depotID uuid.UUID, cementType, unit string, delta float64) (*StockRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed inventory repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetDepot(ctx context.Context, id uuid.UUID) (*Depot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, location, active, created_at, updated_at
		FROM depots WHERE id = $1
	`, id)

	var d Depot
	err := row.Scan(&d.ID, &d.Name, &d.Location, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDepots(ctx context.Context, activeOnly bool) ([]Depot, error) {
	query := "SELECT id, name, location, active, created_at, updated_at FROM depots"
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Depot
	for rows.Next() {
		var d Depot
		if err := rows.Scan(&d.ID, &d.Name, &d.Location, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) CreateDepot(ctx context.Context, d Depot) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO depots (name, location, active)
		VALUES ($1, $2, $3)
		RETURNING id
	`, d.Name, d.Location, d.Active).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) UpdateDepot(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	allowed := []string{"name", "location", "active"}
	query := "UPDATE depots SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range allowed {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListStock(ctx context.Context, depotID *uuid.UUID) ([]StockRow, error) {
	query := `
		SELECT i.id, i.depot_id, i.cement_type, i.quantity, i.unit, i.updated_at, d.name
		FROM inventory i
		JOIN depots d ON d.id = i.depot_id`
	var args []interface{}
	if depotID != nil {
		query += " WHERE i.depot_id = $1"
		args = append(args, *depotID)
	}
	query += " ORDER BY d.name, i.cement_type"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockRow
	for rows.Next() {
		var s StockRow
		if err := rows.Scan(&s.ID, &s.DepotID, &s.CementType, &s.Quantity, &s.Unit, &s.UpdatedAt, &s.DepotName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AdjustStock upserts the (depot, cement_type) row inside a transaction. The
// row is locked before the delta is applied so concurrent issues cannot both
// pass the non-negative check.
func (r *repository) AdjustStock(ctx context.Context, depotID uuid.UUID, cementType, unit string, delta float64) (*StockRow, error) {
	var out StockRow
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current float64
		var rowID uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT id, quantity FROM inventory
			WHERE depot_id = $1 AND cement_type = $2
			FOR UPDATE
		`, depotID, cementType).Scan(&rowID, &current)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if delta < 0 {
				return ErrInsufficientStock
			}
			return tx.QueryRow(ctx, `
				INSERT INTO inventory (depot_id, cement_type, quantity, unit)
				VALUES ($1, $2, $3, $4)
				RETURNING id, depot_id, cement_type, quantity, unit, updated_at
			`, depotID, cementType, delta, unit).
				Scan(&out.ID, &out.DepotID, &out.CementType, &out.Quantity, &out.Unit, &out.UpdatedAt)
		case err != nil:
			return err
		}

		if current+delta < 0 {
			return ErrInsufficientStock
		}
		return tx.QueryRow(ctx, `
			UPDATE inventory SET quantity = quantity + $2, updated_at = NOW()
			WHERE id = $1
			RETURNING id, depot_id, cement_type, quantity, unit, updated_at
		`, rowID, delta).
			Scan(&out.ID, &out.DepotID, &out.CementType, &out.Quantity, &out.Unit, &out.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
