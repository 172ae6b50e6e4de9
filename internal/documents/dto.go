package documents

import (
	"time"

	"github.com/google/uuid"
)

// CreateDocumentRequest records a compliance document. Exactly one of truck_id
// or driver_id must be set.
type CreateDocumentRequest struct {
	Type      DocumentType `json:"type" validate:"required"`
	TruckID   *uuid.UUID   `json:"truck_id,omitempty"`
	DriverID  *uuid.UUID   `json:"driver_id,omitempty"`
	Reference string       `json:"reference" validate:"required,max=100"`
	IssuedAt  time.Time    `json:"issued_at" validate:"required"`
	ExpiresAt time.Time    `json:"expires_at" validate:"required,gtfield=IssuedAt"`
}

// RenewDocumentRequest replaces a document's validity window after renewal.
type RenewDocumentRequest struct {
	Reference string    `json:"reference" validate:"required,max=100"`
	IssuedAt  time.Time `json:"issued_at" validate:"required"`
	ExpiresAt time.Time `json:"expires_at" validate:"required,gtfield=IssuedAt"`
}

// ListDocumentsResponse wraps a graded document listing.
type ListDocumentsResponse struct {
	Documents []WithStatus `json:"documents"`
}
