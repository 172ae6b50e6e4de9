package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/haulage-erp/haulage-erp/internal/platform/db"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// Repository provides data access for payments, expenses and supplier wallets.
type Repository interface {
	InsertPayment(ctx context.Context, p Payment) (uuid.UUID, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, customerID *uuid.UUID, limit, offset int) ([]Payment, int, error)

	InsertExpense(ctx context.Context, e Expense) (uuid.UUID, error)
	ListExpenses(ctx context.Context, category string, limit, offset int) ([]Expense, int, error)

	InsertHaulagePayment(ctx context.Context, p HaulagePayment) (uuid.UUID, error)
	ListHaulagePayments(ctx context.Context, orderID *uuid.UUID) ([]HaulagePayment, error)

	InsertCementPayment(ctx context.Context, p CementPayment) (uuid.UUID, error)
	DeleteCementPayment(ctx context.Context, id uuid.UUID) error
	ListCementPayments(ctx context.Context, supplier string) ([]CementPayment, error)

	FindWallet(ctx context.Context, supplier, cementType string) (*Wallet, error)
	GetWallet(ctx context.Context, id uuid.UUID) (*Wallet, error)
	CreateWallet(ctx context.Context, w Wallet) (uuid.UUID, error)
	Deposit(ctx context.Context, walletID uuid.UUID, qty decimal.Decimal, paymentID *uuid.UUID) (*WalletTransaction, error)
	ListWallets(ctx context.Context) ([]Wallet, error)
	ListWalletTransactions(ctx context.Context, walletID uuid.UUID) ([]WalletTransaction, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed finance repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) InsertPayment(ctx context.Context, p Payment) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO payments (customer_id, order_id, amount, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.CustomerID, p.OrderID, decimalToNumeric(p.Amount), p.Method, p.Reference, p.PaidAt).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, order_id, amount, method, reference, paid_at, created_at
		FROM payments WHERE id = $1
	`, id)

	var p Payment
	var orderID pgtype.UUID
	var reference pgtype.Text
	var amount pgtype.Numeric
	err := row.Scan(&p.ID, &p.CustomerID, &orderID, &amount, &p.Method, &reference, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	p.Amount = numericToDecimal(amount)
	if orderID.Valid {
		val := uuid.UUID(orderID.Bytes)
		p.OrderID = &val
	}
	if reference.Valid {
		p.Reference = &reference.String
	}
	return &p, nil
}

func (r *repository) ListPayments(ctx context.Context, customerID *uuid.UUID, limit, offset int) ([]Payment, int, error) {
	where := ""
	countArgs := []interface{}{}
	if customerID != nil {
		where = " WHERE customer_id = $1"
		countArgs = append(countArgs, *customerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments"+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	args := append(countArgs, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, customer_id, order_id, amount, method, reference, paid_at, created_at
		FROM payments%s ORDER BY paid_at DESC LIMIT $%d OFFSET $%d
	`, where, len(countArgs)+1, len(countArgs)+2)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var orderID pgtype.UUID
		var reference pgtype.Text
		var amount pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.CustomerID, &orderID, &amount, &p.Method, &reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		p.Amount = numericToDecimal(amount)
		if orderID.Valid {
			val := uuid.UUID(orderID.Bytes)
			p.OrderID = &val
		}
		if reference.Valid {
			p.Reference = &reference.String
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) InsertExpense(ctx context.Context, e Expense) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (category, amount, order_id, note, incurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, e.Category, decimalToNumeric(e.Amount), e.OrderID, e.Note, e.IncurredAt).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) ListExpenses(ctx context.Context, category string, limit, offset int) ([]Expense, int, error) {
	where := ""
	countArgs := []interface{}{}
	if category != "" {
		where = " WHERE category = $1"
		countArgs = append(countArgs, category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM expenses"+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	args := append(countArgs, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, category, amount, order_id, note, incurred_at, created_at
		FROM expenses%s ORDER BY incurred_at DESC LIMIT $%d OFFSET $%d
	`, where, len(countArgs)+1, len(countArgs)+2)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		var orderID pgtype.UUID
		var note pgtype.Text
		var amount pgtype.Numeric
		if err := rows.Scan(&e.ID, &e.Category, &amount, &orderID, &note, &e.IncurredAt, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Amount = numericToDecimal(amount)
		if orderID.Valid {
			val := uuid.UUID(orderID.Bytes)
			e.OrderID = &val
		}
		if note.Valid {
			e.Note = &note.String
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *repository) InsertHaulagePayment(ctx context.Context, p HaulagePayment) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO haulage_payments (order_id, amount, reference, paid_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, p.OrderID, decimalToNumeric(p.Amount), p.Reference, p.PaidAt).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) ListHaulagePayments(ctx context.Context, orderID *uuid.UUID) ([]HaulagePayment, error) {
	query := `
		SELECT id, order_id, amount, reference, paid_at, created_at
		FROM haulage_payments`
	var args []interface{}
	if orderID != nil {
		query += " WHERE order_id = $1"
		args = append(args, *orderID)
	}
	query += " ORDER BY paid_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HaulagePayment
	for rows.Next() {
		var p HaulagePayment
		var reference pgtype.Text
		var amount pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.OrderID, &amount, &reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		if reference.Valid {
			p.Reference = &reference.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) InsertCementPayment(ctx context.Context, p CementPayment) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cement_payments_to_dangote (supplier, cement_type, amount, quantity, unit, prepayment, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.Supplier, p.CementType, decimalToNumeric(p.Amount), decimalToNumeric(p.Quantity),
		p.Unit, p.Prepayment, p.PaidAt).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) DeleteCementPayment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM cement_payments_to_dangote WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListCementPayments(ctx context.Context, supplier string) ([]CementPayment, error) {
	query := `
		SELECT id, supplier, cement_type, amount, quantity, unit, prepayment, paid_at, created_at
		FROM cement_payments_to_dangote`
	var args []interface{}
	if supplier != "" {
		query += " WHERE supplier = $1"
		args = append(args, supplier)
	}
	query += " ORDER BY paid_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CementPayment
	for rows.Next() {
		var p CementPayment
		var amount, quantity pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.Supplier, &p.CementType, &amount, &quantity,
			&p.Unit, &p.Prepayment, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		p.Quantity = numericToDecimal(quantity)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) FindWallet(ctx context.Context, supplier, cementType string) (*Wallet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, supplier, cement_type, balance, unit, created_at, updated_at
		FROM manufacturer_wallets
		WHERE supplier = $1 AND cement_type = $2
	`, supplier, cementType)
	return scanWallet(row)
}

func (r *repository) GetWallet(ctx context.Context, id uuid.UUID) (*Wallet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, supplier, cement_type, balance, unit, created_at, updated_at
		FROM manufacturer_wallets WHERE id = $1
	`, id)
	return scanWallet(row)
}

func (r *repository) CreateWallet(ctx context.Context, w Wallet) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO manufacturer_wallets (supplier, cement_type, balance, unit)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, w.Supplier, w.CementType, decimalToNumeric(w.Balance), w.Unit).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Deposit inserts the wallet transaction and bumps the balance in one
// transaction so the ledger and the balance never disagree.
func (r *repository) Deposit(ctx context.Context, walletID uuid.UUID, qty decimal.Decimal, paymentID *uuid.UUID) (*WalletTransaction, error) {
	var out WalletTransaction
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO wallet_transactions (wallet_id, type, quantity, payment_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, wallet_id, type, quantity, payment_id, created_at
		`, walletID, WalletDeposit, decimalToNumeric(qty), paymentID).
			Scan(&out.ID, &out.WalletID, &out.Type, &out.Quantity, &out.PaymentID, &out.CreatedAt)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE manufacturer_wallets SET balance = balance + $2, updated_at = NOW()
			WHERE id = $1
		`, walletID, decimalToNumeric(qty))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *repository) ListWallets(ctx context.Context) ([]Wallet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, supplier, cement_type, balance, unit, created_at, updated_at
		FROM manufacturer_wallets ORDER BY supplier, cement_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *repository) ListWalletTransactions(ctx context.Context, walletID uuid.UUID) ([]WalletTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, wallet_id, type, quantity, payment_id, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
	`, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WalletTransaction
	for rows.Next() {
		var t WalletTransaction
		var quantity pgtype.Numeric
		var paymentID pgtype.UUID
		if err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &quantity, &paymentID, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Quantity = numericToDecimal(quantity)
		if paymentID.Valid {
			val := uuid.UUID(paymentID.Bytes)
			t.PaymentID = &val
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanWallet(row pgx.Row) (*Wallet, error) {
	var w Wallet
	var balance pgtype.Numeric
	err := row.Scan(&w.ID, &w.Supplier, &w.CementType, &balance, &w.Unit, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	w.Balance = numericToDecimal(balance)
	return &w, nil
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
