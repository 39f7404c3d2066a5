// Package payment abstracts the checkout gateway behind a Provider
// interface so the paid-enrollment path is statically distinguishable
// from the development bypass: production wires Razorpay, development
// wires the sandbox, and nothing branches on a runtime-mode string.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrBadSignature is returned when a verification triple does not match
// the order it claims to complete.
var ErrBadSignature = errors.New("payment signature mismatch")

// Provider is the checkout gateway used for nonzero-price enrollments.
type Provider interface {
	// Name identifies the provider in logs and responses.
	Name() string

	// KeyID is the public key the hosted widget is initialized with.
	KeyID() string

	// CreateOrder registers an order with the gateway and returns the
	// gateway's order ID. Amount is in rupees.
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error)

	// VerifySignature checks the payment/order/signature triple returned
	// by the widget's completion callback. Returns ErrBadSignature when
	// the triple does not validate.
	VerifySignature(orderID, paymentID, signature string) error

	// AllowsDirectEnrollment reports whether nonzero-price enrollments
	// may skip checkout entirely. Only the sandbox says yes.
	AllowsDirectEnrollment() bool
}

// Sandbox is the development provider: orders are fabricated locally,
// every signature verifies, and paid courses may be enrolled directly.
type Sandbox struct{}

// NewSandbox returns the development checkout provider.
func NewSandbox() *Sandbox {
	return &Sandbox{}
}

func (s *Sandbox) Name() string  { return "sandbox" }
func (s *Sandbox) KeyID() string { return "sandbox_key" }

func (s *Sandbox) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("order amount must be positive, got %.2f", amount)
	}
	return "order_sandbox_" + uuid.NewString(), nil
}

func (s *Sandbox) VerifySignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" {
		return ErrBadSignature
	}
	return nil
}

func (s *Sandbox) AllowsDirectEnrollment() bool { return true }
