package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   ExpiryStatus
	}{
		{"five days out is critical", now.AddDate(0, 0, 5), StatusCritical},
		{"twenty days out is warning", now.AddDate(0, 0, 20), StatusWarning},
		{"forty five days out is safe", now.AddDate(0, 0, 45), StatusSafe},
		{"yesterday is expired", now.AddDate(0, 0, -1), StatusExpired},
		{"thirteen days out is critical", now.AddDate(0, 0, 13), StatusCritical},
		{"twenty nine days out is warning", now.AddDate(0, 0, 29), StatusWarning},
		{"thirty days out is safe", now.AddDate(0, 0, 30), StatusSafe},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.expiry, now))
		})
	}
}

func TestDocumentTypeIsValid(t *testing.T) {
	assert.True(t, DocInsurance.IsValid())
	assert.True(t, DocDriverLicense.IsValid())
	assert.False(t, DocumentType("parking_ticket").IsValid())
}
