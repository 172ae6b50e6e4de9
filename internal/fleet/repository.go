package fleet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Repository provides data access for trucks, drivers and the driver ledger.
type Repository interface {
	GetTruck(ctx context.Context, id uuid.UUID) (*Truck, error)
	ListTrucks(ctx context.Context, activeOnly bool) ([]Truck, error)
	CreateTruck(ctx context.Context, t Truck) (uuid.UUID, error)
	UpdateTruck(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error)
	ListDrivers(ctx context.Context, activeOnly bool) ([]Driver, error)
	CreateDriver(ctx context.Context, d Driver) (uuid.UUID, error)
	UpdateDriver(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	InsertTransaction(ctx context.Context, tx DriverTransaction) (uuid.UUID, error)
	ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]DriverTransaction, int, error)
	LedgerBalance(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed fleet repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetTruck(ctx context.Context, id uuid.UUID) (*Truck, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, plate_number, model, capacity_tons, active, driver_id, created_at, updated_at
		FROM trucks WHERE id = $1
	`, id)

	var t Truck
	var driverID pgtype.UUID
	err := row.Scan(&t.ID, &t.PlateNumber, &t.Model, &t.CapacityTons, &t.Active, &driverID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if driverID.Valid {
		val := uuid.UUID(driverID.Bytes)
		t.DriverID = &val
	}
	return &t, nil
}

func (r *repository) ListTrucks(ctx context.Context, activeOnly bool) ([]Truck, error) {
	query := `
		SELECT id, plate_number, model, capacity_tons, active, driver_id, created_at, updated_at
		FROM trucks`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY plate_number"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Truck
	for rows.Next() {
		var t Truck
		var driverID pgtype.UUID
		if err := rows.Scan(&t.ID, &t.PlateNumber, &t.Model, &t.CapacityTons, &t.Active, &driverID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if driverID.Valid {
			val := uuid.UUID(driverID.Bytes)
			t.DriverID = &val
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) CreateTruck(ctx context.Context, t Truck) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO trucks (plate_number, model, capacity_tons, active, driver_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.PlateNumber, t.Model, t.CapacityTons, t.Active, t.DriverID).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) UpdateTruck(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.applyUpdates(ctx, "trucks", id, updates, []string{"model", "capacity_tons", "driver_id", "active"})
}

func (r *repository) GetDriver(ctx context.Context, id uuid.UUID) (*Driver, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, full_name, phone, license_number, active, total_deliveries, successful_deliveries, created_at, updated_at
		FROM drivers WHERE id = $1
	`, id)

	var d Driver
	err := row.Scan(&d.ID, &d.FullName, &d.Phone, &d.LicenseNumber, &d.Active,
		&d.TotalDeliveries, &d.SuccessfulDeliveries, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDrivers(ctx context.Context, activeOnly bool) ([]Driver, error) {
	query := `
		SELECT id, full_name, phone, license_number, active, total_deliveries, successful_deliveries, created_at, updated_at
		FROM drivers`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY full_name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.ID, &d.FullName, &d.Phone, &d.LicenseNumber, &d.Active,
			&d.TotalDeliveries, &d.SuccessfulDeliveries, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) CreateDriver(ctx context.Context, d Driver) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO drivers (full_name, phone, license_number, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, d.FullName, d.Phone, d.LicenseNumber, d.Active).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) UpdateDriver(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.applyUpdates(ctx, "drivers", id, updates, []string{"full_name", "phone", "license_number", "active"})
}

func (r *repository) InsertTransaction(ctx context.Context, tx DriverTransaction) (uuid.UUID, error) {
	var note pgtype.Text
	if tx.Note != nil {
		note = pgtype.Text{String: *tx.Note, Valid: true}
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO driver_transactions (driver_id, type, amount, order_id, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, tx.DriverID, tx.Type, decimalToNumeric(tx.Amount), tx.OrderID, note).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) ListTransactions(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]DriverTransaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM driver_transactions WHERE driver_id = $1", driverID).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, driver_id, type, amount, order_id, note, created_at
		FROM driver_transactions
		WHERE driver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, driverID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []DriverTransaction
	for rows.Next() {
		var tx DriverTransaction
		var orderID pgtype.UUID
		var note pgtype.Text
		var amount pgtype.Numeric
		if err := rows.Scan(&tx.ID, &tx.DriverID, &tx.Type, &amount, &orderID, &note, &tx.CreatedAt); err != nil {
			return nil, 0, err
		}
		tx.Amount = numericToDecimal(amount)
		if orderID.Valid {
			val := uuid.UUID(orderID.Bytes)
			tx.OrderID = &val
		}
		if note.Valid {
			tx.Note = &note.String
		}
		out = append(out, tx)
	}
	return out, total, rows.Err()
}

func (r *repository) LedgerBalance(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error) {
	var balance pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'shortage_deduction' THEN -amount ELSE amount END), 0)
		FROM driver_transactions
		WHERE driver_id = $1
	`, driverID).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}
	return numericToDecimal(balance), nil
}

func (r *repository) applyUpdates(ctx context.Context, table string, id uuid.UUID, updates map[string]interface{}, allowed []string) error {
	query := fmt.Sprintf("UPDATE %s SET updated_at = NOW()", table)
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

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}
