package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Depot is a physical storage location for cement stock.
type Depot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockRow holds the on-hand quantity of one cement type at one depot.
type StockRow struct {
	ID         uuid.UUID `json:"id"`
	DepotID    uuid.UUID `json:"depot_id"`
	CementType string    `json:"cement_type"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	UpdatedAt  time.Time `json:"updated_at"`
	DepotName  string    `json:"depot_name,omitempty"`
}

// Adjustment directions for stock movements.
const (
	AdjustReceive = "receive"
	AdjustIssue   = "issue"
)
