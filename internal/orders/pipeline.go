package orders

import (
	"errors"
	"fmt"
)

// Action is an intent issued against an order.
type Action string

const (
	ActionConfirmPayment Action = "confirm_payment"
	ActionEdit           Action = "edit"
	ActionDelete         Action = "delete"
	ActionDispatch       Action = "dispatch"
	ActionReassign       Action = "reassign"
	ActionReconcile      Action = "reconcile"
	ActionCancel         Action = "cancel"
)

var (
	// ErrInvalidTransition rejects an action not allowed in the order's current status.
	ErrInvalidTransition = errors.New("action not allowed in current order status")
	// ErrGuardFailed rejects an action whose precondition does not hold.
	ErrGuardFailed = errors.New("order action precondition failed")
)

type transition struct {
	next  OrderStatus
	guard func(o *Order) error
}

// pipeline is the single source of truth for the order lifecycle. Every mutating
// operation authorizes against this table before touching the database, so status
// gates live in one place instead of scattered per call site.
var pipeline = map[OrderStatus]map[Action]transition{
	StatusRequested: {
		ActionConfirmPayment: {next: StatusRequested, guard: paymentPending},
		ActionEdit:           {next: StatusRequested},
		ActionDelete:         {next: StatusRequested},
		ActionDispatch:       {next: StatusDispatched, guard: paymentConfirmed},
		ActionCancel:         {next: StatusCancelled},
	},
	StatusDispatched: {
		ActionReassign:  {next: StatusDispatched},
		ActionReconcile: {next: StatusDelivered, guard: otpIssued},
		ActionCancel:    {next: StatusCancelled},
	},
}

func paymentPending(o *Order) error {
	if o.PaymentStatus != PaymentPending {
		return fmt.Errorf("%w: payment already %s", ErrGuardFailed, o.PaymentStatus)
	}
	return nil
}

func paymentConfirmed(o *Order) error {
	if o.PaymentStatus != PaymentConfirmed {
		return fmt.Errorf("%w: payment must be confirmed before dispatch", ErrGuardFailed)
	}
	return nil
}

func otpIssued(o *Order) error {
	if o.DeliveryOTP == nil || *o.DeliveryOTP == "" {
		return fmt.Errorf("%w: order has no delivery OTP", ErrGuardFailed)
	}
	return nil
}

// Authorize validates an action against the pipeline table and returns the
// status the order moves to when the action succeeds.
func Authorize(o *Order, action Action) (OrderStatus, error) {
	actions, ok := pipeline[o.Status]
	if !ok {
		return "", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, o.Status)
	}
	t, ok := actions[action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, o.Status)
	}
	if t.guard != nil {
		if err := t.guard(o); err != nil {
			return "", err
		}
	}
	return t.next, nil
}

// Allowed lists the actions currently permitted for an order, guards included.
func Allowed(o *Order) []Action {
	actions, ok := pipeline[o.Status]
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(actions))
	for action := range actions {
		if _, err := Authorize(o, action); err == nil {
			out = append(out, action)
		}
	}
	return out
}
