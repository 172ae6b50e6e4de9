package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// ReconciliationParams mirrors the signature of process_delivery_reconciliation.
type ReconciliationParams struct {
	OrderID    uuid.UUID
	OTP        string
	QtyGood    float64
	QtyMissing float64
	QtyDamaged float64
	Reason     *string
}

// Repository provides data access for orders.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error)
	Create(ctx context.Context, o Order) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
	Dispatch(ctx context.Context, id uuid.UUID, truckID, driverID uuid.UUID, otp, waybill string) error
	Reassign(ctx context.Context, id uuid.UUID, truckID, driverID uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
	StatusCounts(ctx context.Context) (PipelineCounts, error)
	CallReconciliation(ctx context.Context, p ReconciliationParams) (ReconcileResult, error)
	ListShortages(ctx context.Context, orderID *uuid.UUID, limit, offset int) ([]Shortage, int, error)
	GenerateWaybill(ctx context.Context, date time.Time) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed orders repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, customer_id, cement_type, quantity, unit, status, payment_status,
	truck_id, driver_id, delivery_otp, total_amount, waybill_number,
	dispatched_at, delivered_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithDetails, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT o.id, o.customer_id, o.cement_type, o.quantity, o.unit, o.status, o.payment_status,
		       o.truck_id, o.driver_id, o.delivery_otp, o.total_amount, o.waybill_number,
		       o.dispatched_at, o.delivered_at, o.created_at, o.updated_at,
		       c.name AS customer_name,
		       t.plate_number AS truck_plate,
		       d.full_name AS driver_name
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		LEFT JOIN trucks t ON o.truck_id = t.id
		LEFT JOIN drivers d ON o.driver_id = d.id
		%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []OrderWithDetails
	for rows.Next() {
		var o OrderWithDetails
		var truckID, driverID pgtype.UUID
		var otp, waybill, truckPlate, driverName pgtype.Text
		var dispatchedAt, deliveredAt pgtype.Timestamptz
		var totalAmount pgtype.Numeric

		err := rows.Scan(
			&o.ID, &o.CustomerID, &o.CementType, &o.Quantity, &o.Unit, &o.Status, &o.PaymentStatus,
			&truckID, &driverID, &otp, &totalAmount, &waybill,
			&dispatchedAt, &deliveredAt, &o.CreatedAt, &o.UpdatedAt,
			&o.CustomerName, &truckPlate, &driverName,
		)
		if err != nil {
			return nil, 0, err
		}

		applyNullableOrderFields(&o.Order, truckID, driverID, otp, waybill, dispatchedAt, deliveredAt, totalAmount)
		if truckPlate.Valid {
			o.TruckPlate = &truckPlate.String
		}
		if driverName.Valid {
			o.DriverName = &driverName.String
		}
		out = append(out, o)
	}

	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Order) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (customer_id, cement_type, quantity, unit, status, payment_status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, o.CustomerID, o.CementType, o.Quantity, o.Unit, o.Status, o.PaymentStatus, decimalToNumeric(o.TotalAmount)).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	query := "UPDATE orders SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"cement_type", "quantity", "unit", "total_amount"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d AND status = $%d", argPos, argPos+1)
	args = append(args, id, StatusRequested)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM orders WHERE id = $1 AND status = $2", id, StatusRequested)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Dispatch(ctx context.Context, id uuid.UUID, truckID, driverID uuid.UUID, otp, waybill string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET truck_id = $1, driver_id = $2, delivery_otp = $3, waybill_number = $4,
		    status = $5, dispatched_at = NOW(), updated_at = NOW()
		WHERE id = $6 AND status = $7
	`, truckID, driverID, otp, waybill, StatusDispatched, id, StatusRequested)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order no longer dispatchable", shared.ErrInvalidStatus)
	}
	return nil
}

func (r *repository) Reassign(ctx context.Context, id uuid.UUID, truckID, driverID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET truck_id = $1, driver_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, truckID, driverID, id, StatusDispatched)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order is not dispatched", shared.ErrInvalidStatus)
	}
	return nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status = $1, cancellation_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status NOT IN ($4, $5)
	`, StatusCancelled, reason, id, StatusDelivered, StatusCancelled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order is already final", shared.ErrInvalidStatus)
	}
	return nil
}

func (r *repository) StatusCounts(ctx context.Context) (PipelineCounts, error) {
	rows, err := r.pool.Query(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return PipelineCounts{}, err
	}
	defer rows.Close()

	var counts PipelineCounts
	for rows.Next() {
		var status OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return PipelineCounts{}, err
		}
		switch status {
		case StatusRequested:
			counts.Requested = n
		case StatusDispatched:
			counts.Dispatched = n
		case StatusDelivered:
			counts.Delivered = n
		case StatusCancelled:
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}

// CallReconciliation invokes the atomic server-side procedure. The procedure is the
// sole arbiter of OTP match and quantity-sum correctness; it applies order status,
// shortage record, driver deduction and credit note as one transaction.
func (r *repository) CallReconciliation(ctx context.Context, p ReconciliationParams) (ReconcileResult, error) {
	var reason pgtype.Text
	if p.Reason != nil {
		reason = pgtype.Text{String: *p.Reason, Valid: true}
	}

	var res ReconcileResult
	err := r.pool.QueryRow(ctx, `
		SELECT success, message
		FROM process_delivery_reconciliation($1, $2, $3, $4, $5, $6)
	`, p.OrderID, p.OTP, p.QtyGood, p.QtyMissing, p.QtyDamaged, reason).Scan(&res.Success, &res.Message)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("call reconciliation procedure: %w", err)
	}
	return res, nil
}

func (r *repository) ListShortages(ctx context.Context, orderID *uuid.UUID, limit, offset int) ([]Shortage, int, error) {
	where := "TRUE"
	var args []interface{}
	argPos := 1
	if orderID != nil {
		where = fmt.Sprintf("order_id = $%d", argPos)
		args = append(args, *orderID)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM shortages WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, order_id, qty_missing, qty_damaged, reason, deducted_amount, created_at
		FROM shortages WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Shortage
	for rows.Next() {
		var s Shortage
		var reason pgtype.Text
		var deducted pgtype.Numeric
		if err := rows.Scan(&s.ID, &s.OrderID, &s.QtyMissing, &s.QtyDamaged, &reason, &deducted, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		if reason.Valid {
			s.Reason = &reason.String
		}
		s.DeductedAmt = numericToDecimal(deducted)
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// GenerateWaybill issues the next waybill number from the waybill_seq
// sequence, so concurrent dispatches can never collide. The sequence is
// global; the WB-{YY}{MM} prefix only records the issue month.
func (r *repository) GenerateWaybill(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, "SELECT nextval('waybill_seq')").Scan(&seq); err != nil {
		return "", err
	}
	return formatWaybill(seq, date), nil
}

func formatWaybill(seq int64, date time.Time) string {
	return fmt.Sprintf("WB-%s-%04d", date.Format("0601"), seq)
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var truckID, driverID pgtype.UUID
	var otp, waybill pgtype.Text
	var dispatchedAt, deliveredAt pgtype.Timestamptz
	var totalAmount pgtype.Numeric

	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CementType, &o.Quantity, &o.Unit, &o.Status, &o.PaymentStatus,
		&truckID, &driverID, &otp, &totalAmount, &waybill,
		&dispatchedAt, &deliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	applyNullableOrderFields(&o, truckID, driverID, otp, waybill, dispatchedAt, deliveredAt, totalAmount)
	return &o, nil
}

func applyNullableOrderFields(o *Order, truckID, driverID pgtype.UUID, otp, waybill pgtype.Text, dispatchedAt, deliveredAt pgtype.Timestamptz, totalAmount pgtype.Numeric) {
	if truckID.Valid {
		val := uuid.UUID(truckID.Bytes)
		o.TruckID = &val
	}
	if driverID.Valid {
		val := uuid.UUID(driverID.Bytes)
		o.DriverID = &val
	}
	if otp.Valid {
		o.DeliveryOTP = &otp.String
	}
	if waybill.Valid {
		o.WaybillNumber = &waybill.String
	}
	if dispatchedAt.Valid {
		val := dispatchedAt.Time
		o.DispatchedAt = &val
	}
	if deliveredAt.Valid {
		val := deliveredAt.Time
		o.DeliveredAt = &val
	}
	o.TotalAmount = numericToDecimal(totalAmount)
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
