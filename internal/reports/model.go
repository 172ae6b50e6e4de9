package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TripProfitability is one row of the trip_profitability view (and its v2
// variant, which adds haulage revenue to the margin).
type TripProfitability struct {
	OrderID       uuid.UUID       `json:"order_id" db:"order_id"`
	WaybillNumber string          `json:"waybill_number" db:"waybill_number"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	Revenue       decimal.Decimal `json:"revenue" db:"revenue"`
	Expenses      decimal.Decimal `json:"expenses" db:"expenses"`
	Profit        decimal.Decimal `json:"profit" db:"profit"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty" db:"delivered_at"`
}

// MonthlyProfitLoss is one row of the monthly_profit_loss view.
type MonthlyProfitLoss struct {
	Month    time.Time       `json:"month" db:"month"`
	Revenue  decimal.Decimal `json:"revenue" db:"revenue"`
	Expenses decimal.Decimal `json:"expenses" db:"expenses"`
	Profit   decimal.Decimal `json:"profit" db:"profit"`
}

// ReceivablesAging is one row of the receivables_aging view.
type ReceivablesAging struct {
	CustomerID   uuid.UUID       `json:"customer_id" db:"customer_id"`
	CustomerName string          `json:"customer_name" db:"customer_name"`
	Current      decimal.Decimal `json:"current" db:"current"`
	Days30       decimal.Decimal `json:"days_30" db:"days_30"`
	Days60       decimal.Decimal `json:"days_60" db:"days_60"`
	Days90Plus   decimal.Decimal `json:"days_90_plus" db:"days_90_plus"`
	Total        decimal.Decimal `json:"total" db:"total"`
}

// CustomerAging is one row of the customer_aging view, the per-invoice
// breakdown behind receivables_aging.
type CustomerAging struct {
	CustomerID  uuid.UUID       `json:"customer_id" db:"customer_id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Outstanding decimal.Decimal `json:"outstanding" db:"outstanding"`
	AgeDays     int             `json:"age_days" db:"age_days"`
}

// FleetAvailability is one row of the fleet_availability view.
type FleetAvailability struct {
	TruckID     uuid.UUID `json:"truck_id" db:"truck_id"`
	PlateNumber string    `json:"plate_number" db:"plate_number"`
	Status      string    `json:"status" db:"status"`
	DriverName  *string   `json:"driver_name,omitempty" db:"driver_name"`
}

// ExpiringDocument is one row of the expiring_documents view.
type ExpiringDocument struct {
	DocumentID uuid.UUID `json:"document_id" db:"document_id"`
	Type       string    `json:"type" db:"type"`
	Reference  string    `json:"reference" db:"reference"`
	Owner      string    `json:"owner" db:"owner"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	DaysLeft   int       `json:"days_left" db:"days_left"`
}

// DualStreamProfitability is one row of the dual_stream_profitability view,
// splitting margin between cement trading and haulage.
type DualStreamProfitability struct {
	Month          time.Time       `json:"month" db:"month"`
	TradingRevenue decimal.Decimal `json:"trading_revenue" db:"trading_revenue"`
	TradingProfit  decimal.Decimal `json:"trading_profit" db:"trading_profit"`
	HaulageRevenue decimal.Decimal `json:"haulage_revenue" db:"haulage_revenue"`
	HaulageProfit  decimal.Decimal `json:"haulage_profit" db:"haulage_profit"`
}
