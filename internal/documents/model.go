package documents

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies what a compliance document certifies.
type DocumentType string

const (
	DocVehicleLicense DocumentType = "vehicle_license"
	DocRoadWorthiness DocumentType = "road_worthiness"
	DocInsurance      DocumentType = "insurance"
	DocDriverLicense  DocumentType = "driver_license"
	DocHackneyPermit  DocumentType = "hackney_permit"
)

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocVehicleLicense, DocRoadWorthiness, DocInsurance, DocDriverLicense, DocHackneyPermit:
		return true
	}
	return false
}

// ExpiryStatus grades how close a document is to its expiry date.
type ExpiryStatus string

const (
	StatusExpired  ExpiryStatus = "expired"
	StatusCritical ExpiryStatus = "critical"
	StatusWarning  ExpiryStatus = "warning"
	StatusSafe     ExpiryStatus = "safe"
)

const (
	criticalWindow = 14 * 24 * time.Hour
	warningWindow  = 30 * 24 * time.Hour
)

// Classify grades an expiry date relative to now. Past dates are expired,
// under two weeks out is critical, under a month is warning.
func Classify(expiry, now time.Time) ExpiryStatus {
	until := expiry.Sub(now)
	switch {
	case until < 0:
		return StatusExpired
	case until < criticalWindow:
		return StatusCritical
	case until < warningWindow:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// Document is a vehicle or driver compliance record with an expiry date.
type Document struct {
	ID        uuid.UUID    `json:"id"`
	Type      DocumentType `json:"type"`
	TruckID   *uuid.UUID   `json:"truck_id,omitempty"`
	DriverID  *uuid.UUID   `json:"driver_id,omitempty"`
	Reference string       `json:"reference"`
	IssuedAt  time.Time    `json:"issued_at"`
	ExpiresAt time.Time    `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// WithStatus decorates a document with its computed expiry grade.
type WithStatus struct {
	Document
	Status ExpiryStatus `json:"status"`
}
