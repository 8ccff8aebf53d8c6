package order

import (
	"errors"
	"fmt"

	"snapeats/internal/pkg/errs"
)

// ErrPaymentNotConfirmed gates every transition: no kitchen or rider work
// may be signaled for an order whose payment is not confirmed.
var ErrPaymentNotConfirmed = errors.New("payment not confirmed")

// PaymentStatus is the state of the opaque payment confirmation signal.
// The payment-provider protocol itself is an external collaborator.
type PaymentStatus int

const (
	// PaymentUnknown represents an invalid or undefined payment status.
	PaymentUnknown PaymentStatus = iota

	// PaymentPending means the confirmation signal has not arrived yet.
	PaymentPending

	// PaymentPaid means the payment was confirmed.
	PaymentPaid

	// PaymentFailed means the payment definitively failed.
	PaymentFailed
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentPending: "pending",
		PaymentPaid:    "paid",
		PaymentFailed:  "failed",
	}
}

// ParsePaymentStatus converts a wire string into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, str := range getPaymentStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause("payment status",
		fmt.Errorf("%q is not a valid payment status", s))
}

// Validate checks that the value is one of the defined payment statuses.
func (p PaymentStatus) Validate() error {
	if _, ok := getPaymentStatusStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payment status",
			fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}

// String returns the wire name of the payment status.
func (p PaymentStatus) String() string {
	if s, ok := getPaymentStatusStrings()[p]; ok {
		return s
	}
	return "unknown"
}

// PaymentMethod identifies the payment provider chosen at checkout.
type PaymentMethod int

const (
	// MethodUnknown represents an invalid or undefined payment method.
	MethodUnknown PaymentMethod = iota

	// MethodRazorpay is the Razorpay provider.
	MethodRazorpay

	// MethodStripe is the Stripe provider.
	MethodStripe
)

func getPaymentMethodStrings() map[PaymentMethod]string {
	return map[PaymentMethod]string{
		MethodRazorpay: "razorpay",
		MethodStripe:   "stripe",
	}
}

// ParsePaymentMethod converts a wire string into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for method, str := range getPaymentMethodStrings() {
		if str == s {
			return method, nil
		}
	}
	return MethodUnknown, errs.NewValueIsInvalidErrorWithCause("payment method",
		fmt.Errorf("%q is not a valid payment method", s))
}

// Validate checks that the value is one of the defined payment methods.
func (m PaymentMethod) Validate() error {
	if _, ok := getPaymentMethodStrings()[m]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payment method",
			fmt.Errorf("%d is not a valid payment method", m))
	}
	return nil
}

// String returns the wire name of the payment method.
func (m PaymentMethod) String() string {
	if s, ok := getPaymentMethodStrings()[m]; ok {
		return s
	}
	return "unknown"
}
