package customers

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

// Repository provides customer data access.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error)
	Create(ctx context.Context, c Customer) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Summary(ctx context.Context, id uuid.UUID) (*AccountSummary, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed customer repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, address, active, created_at, updated_at
		FROM customers WHERE id = $1
	`, id)
	return scanCustomer(row)
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	where := ""
	countArgs := []interface{}{}
	if search != "" {
		where = " WHERE name ILIKE $1 OR phone ILIKE $1"
		countArgs = append(countArgs, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers"+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	args := append(countArgs, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, name, phone, email, address, active, created_at, updated_at
		FROM customers%s ORDER BY name LIMIT $%d OFFSET $%d
	`, where, len(countArgs)+1, len(countArgs)+2)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, email, address, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.Name, c.Phone, c.Email, c.Address, c.Active).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	allowed := []string{"name", "phone", "email", "address", "active"}
	query := "UPDATE customers SET updated_at = NOW()"
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

// Summary aggregates billed vs paid across the customer's orders. Outstanding
// matches the receivables_aging view but is computed here so a single record
// can be fetched without scanning the whole view.
func (r *repository) Summary(ctx context.Context, id uuid.UUID) (*AccountSummary, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(o.id),
			COALESCE(SUM(o.total_amount) FILTER (WHERE o.status <> 'cancelled'), 0),
			COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.customer_id = $1), 0)
		FROM orders o
		WHERE o.customer_id = $1
	`, id)

	var s AccountSummary
	var billed, paid pgtype.Numeric
	if err := row.Scan(&s.OrderCount, &billed, &paid); err != nil {
		return nil, err
	}
	s.CustomerID = id
	s.TotalBilled = numericToDecimal(billed)
	s.TotalPaid = numericToDecimal(paid)
	s.Outstanding = s.TotalBilled.Sub(s.TotalPaid)
	return &s, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var email, address pgtype.Text
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &email, &address, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if email.Valid {
		c.Email = &email.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	return &c, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
