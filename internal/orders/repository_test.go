package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatWaybillPrefixesIssueMonth(t *testing.T) {
	date := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "WB-2608-0005", formatWaybill(5, date))
	assert.Equal(t, "WB-2608-12345", formatWaybill(12345, date))
	assert.Equal(t, "WB-2701-0001", formatWaybill(1, time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC)))
}

func TestFormatWaybillDistinctForDistinctSequences(t *testing.T) {
	date := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	first := formatWaybill(4, date)
	second := formatWaybill(5, date)
	assert.NotEqual(t, first, second, "concurrent dispatches must never share a waybill number")
}
