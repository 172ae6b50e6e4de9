package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "₦1,250,000.00", FormatNaira(decimal.NewFromInt(1250000)))
	assert.Equal(t, "₦999.50", FormatNaira(decimal.NewFromFloat(999.5)))
	assert.Equal(t, "₦0.00", FormatNaira(decimal.Zero))
}

func TestUserSafeMessageMasksInternalErrors(t *testing.T) {
	assert.Equal(t, "The requested record was not found", UserSafeMessage(ErrNotFound))
	assert.Equal(t, "Something went wrong, please try again", UserSafeMessage(assert.AnError))
	assert.Equal(t, "", UserSafeMessage(nil))
}
