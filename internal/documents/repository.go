package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Repository provides document data access.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	ListExpiring(ctx context.Context, within time.Duration) ([]Document, error)
	Create(ctx context.Context, d Document) (uuid.UUID, error)
	Renew(ctx context.Context, id uuid.UUID, reference string, issuedAt, expiresAt time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed document repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const documentColumns = "id, type, truck_id, driver_id, reference, issued_at, expires_at, created_at, updated_at"

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = $1", id)
	return scanDocument(row)
}

func (r *repository) List(ctx context.Context) ([]Document, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY expires_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListExpiring reads the expiring_documents view, bounded to documents whose
// expiry falls inside the window (or has already passed).
func (r *repository) ListExpiring(ctx context.Context, within time.Duration) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM expiring_documents
		WHERE expires_at < $1
		ORDER BY expires_at
	`, time.Now().Add(within))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) Create(ctx context.Context, d Document) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (type, truck_id, driver_id, reference, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, d.Type, d.TruckID, d.DriverID, d.Reference, d.IssuedAt, d.ExpiresAt).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) Renew(ctx context.Context, id uuid.UUID, reference string, issuedAt, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET reference = $2, issued_at = $3, expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`, id, reference, issuedAt, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var truckID, driverID pgtype.UUID
	err := row.Scan(&d.ID, &d.Type, &truckID, &driverID, &d.Reference,
		&d.IssuedAt, &d.ExpiresAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if truckID.Valid {
		val := uuid.UUID(truckID.Bytes)
		d.TruckID = &val
	}
	if driverID.Valid {
		val := uuid.UUID(driverID.Bytes)
		d.DriverID = &val
	}
	return &d, nil
}
