package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverSuccessRate(t *testing.T) {
	noDeliveries := Driver{TotalDeliveries: 0, SuccessfulDeliveries: 0}
	assert.Nil(t, noDeliveries.SuccessRate(), "rate is undefined without deliveries")

	nineOfTen := Driver{TotalDeliveries: 10, SuccessfulDeliveries: 9}
	rate := nineOfTen.SuccessRate()
	require.NotNil(t, rate)
	assert.InDelta(t, 90.0, *rate, 0.001)

	perfect := Driver{TotalDeliveries: 4, SuccessfulDeliveries: 4}
	rate = perfect.SuccessRate()
	require.NotNil(t, rate)
	assert.InDelta(t, 100.0, *rate, 0.001)
}

func TestTransactionTypeValidation(t *testing.T) {
	for _, tt := range []TransactionType{TxShortageDeduction, TxAllowance, TxSalaryPayment, TxBonus, TxDeposit} {
		assert.True(t, tt.IsValid())
	}
	assert.False(t, TransactionType("loan").IsValid())
	assert.True(t, TxShortageDeduction.IsDeduction())
	assert.False(t, TxBonus.IsDeduction())
}
