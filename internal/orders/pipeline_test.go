package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestAuthorizeTable(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		action  Action
		want    OrderStatus
		wantErr error
	}{
		{
			name:   "confirm payment while pending",
			order:  Order{Status: StatusRequested, PaymentStatus: PaymentPending},
			action: ActionConfirmPayment,
			want:   StatusRequested,
		},
		{
			name:    "confirm payment twice",
			order:   Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed},
			action:  ActionConfirmPayment,
			wantErr: ErrGuardFailed,
		},
		{
			name:   "edit while requested",
			order:  Order{Status: StatusRequested},
			action: ActionEdit,
			want:   StatusRequested,
		},
		{
			name:    "edit after dispatch",
			order:   Order{Status: StatusDispatched},
			action:  ActionEdit,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "delete after dispatch",
			order:   Order{Status: StatusDispatched},
			action:  ActionDelete,
			wantErr: ErrInvalidTransition,
		},
		{
			name:   "dispatch with confirmed payment",
			order:  Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed},
			action: ActionDispatch,
			want:   StatusDispatched,
		},
		{
			name:    "dispatch with pending payment",
			order:   Order{Status: StatusRequested, PaymentStatus: PaymentPending},
			action:  ActionDispatch,
			wantErr: ErrGuardFailed,
		},
		{
			name:   "reassign while dispatched",
			order:  Order{Status: StatusDispatched},
			action: ActionReassign,
			want:   StatusDispatched,
		},
		{
			name:    "reassign while requested",
			order:   Order{Status: StatusRequested},
			action:  ActionReassign,
			wantErr: ErrInvalidTransition,
		},
		{
			name:   "reconcile dispatched order with otp",
			order:  Order{Status: StatusDispatched, DeliveryOTP: strptr("123456")},
			action: ActionReconcile,
			want:   StatusDelivered,
		},
		{
			name:    "reconcile dispatched order without otp",
			order:   Order{Status: StatusDispatched},
			action:  ActionReconcile,
			wantErr: ErrGuardFailed,
		},
		{
			name:    "reconcile requested order",
			order:   Order{Status: StatusRequested},
			action:  ActionReconcile,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "reconcile delivered order",
			order:   Order{Status: StatusDelivered, DeliveryOTP: strptr("123456")},
			action:  ActionReconcile,
			wantErr: ErrInvalidTransition,
		},
		{
			name:   "cancel requested order",
			order:  Order{Status: StatusRequested},
			action: ActionCancel,
			want:   StatusCancelled,
		},
		{
			name:   "cancel dispatched order",
			order:  Order{Status: StatusDispatched},
			action: ActionCancel,
			want:   StatusCancelled,
		},
		{
			name:    "cancel delivered order",
			order:   Order{Status: StatusDelivered},
			action:  ActionCancel,
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "cancel cancelled order",
			order:   Order{Status: StatusCancelled},
			action:  ActionCancel,
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Authorize(&tt.order, tt.action)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	actions := []Action{
		ActionConfirmPayment, ActionEdit, ActionDelete,
		ActionDispatch, ActionReassign, ActionReconcile, ActionCancel,
	}
	for _, status := range []OrderStatus{StatusDelivered, StatusCancelled} {
		for _, action := range actions {
			_, err := Authorize(&Order{Status: status, DeliveryOTP: strptr("123456")}, action)
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s in %s must be rejected", action, status)
		}
	}
}

func TestAllowedReflectsGuards(t *testing.T) {
	pendingOrder := &Order{Status: StatusRequested, PaymentStatus: PaymentPending}
	allowed := Allowed(pendingOrder)
	assert.Contains(t, allowed, ActionConfirmPayment)
	assert.Contains(t, allowed, ActionEdit)
	assert.Contains(t, allowed, ActionCancel)
	assert.NotContains(t, allowed, ActionDispatch, "dispatch is gated on payment confirmation")

	confirmedOrder := &Order{Status: StatusRequested, PaymentStatus: PaymentConfirmed}
	assert.Contains(t, Allowed(confirmedOrder), ActionDispatch)

	assert.Empty(t, Allowed(&Order{Status: StatusDelivered}))
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusRequested.IsValid())
	assert.False(t, OrderStatus("shipped").IsValid())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDispatched.IsTerminal())
}
