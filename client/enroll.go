package client

import (
	"context"
	"errors"
	"fmt"
)

// ErrCheckoutDismissed is returned by a Checkout implementation when
// the buyer closes the payment widget without paying. The enrollment
// flow treats it as a clean cancellation: no order is verified and no
// enrollment is created.
var ErrCheckoutDismissed = errors.New("checkout dismissed")

// ErrBusy is returned when Enroll is called while a previous Enroll on
// the same flow is still in flight.
var ErrBusy = errors.New("enrollment already in progress")

// CheckoutOptions carries everything a payment widget needs to open.
type CheckoutOptions struct {
	KeyID       string
	OrderID     string
	Amount      float64
	Currency    string
	CourseTitle string
	Email       string
	Name        string
}

// CheckoutCompletion is what the widget hands back after a successful
// payment.
type CheckoutCompletion struct {
	PaymentID string
	Signature string
}

// Checkout opens a payment widget for an order and blocks until the
// buyer completes or dismisses it. Implementations range from a real
// hosted widget to a headless auto-completer for tests.
type Checkout interface {
	Open(ctx context.Context, opts CheckoutOptions) (*CheckoutCompletion, error)
}

// Enrollment mirrors the enrollment object returned by the API.
type Enrollment struct {
	ID         int64   `json:"id"`
	CourseID   int64   `json:"course_id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	CouponCode string  `json:"coupon_code"`
	AmountPaid float64 `json:"amount_paid"`
	Source     string  `json:"source"`
	PaymentID  string  `json:"payment_id"`
}

// CouponQuote is the server's answer to a coupon validation.
type CouponQuote struct {
	Code        string  `json:"code"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"final_amount"`
}

// EnrollmentFlow drives one buyer's path from a course page to an
// enrollment: applying a coupon, showing the price, and running the
// free or paid path. It is not safe for concurrent use; one flow
// serves one buyer.
type EnrollmentFlow struct {
	session  *Session
	checkout Checkout

	Course *Course
	Email  string
	Name   string

	coupon *CouponQuote
	busy   bool
}

// NewEnrollmentFlow creates a flow for one course and buyer. checkout
// may be nil when the server's provider allows direct enrollment, as
// the sandbox does.
func NewEnrollmentFlow(session *Session, checkout Checkout, course *Course, email, name string) *EnrollmentFlow {
	return &EnrollmentFlow{
		session:  session,
		checkout: checkout,
		Course:   course,
		Email:    email,
		Name:     name,
	}
}

// Coupon returns the currently applied coupon quote, nil if none.
func (f *EnrollmentFlow) Coupon() *CouponQuote {
	return f.coupon
}

// ApplyCoupon validates a code against the course price. A rejected
// code clears any previously applied coupon, so the shown price never
// reflects a coupon the server just refused.
func (f *EnrollmentFlow) ApplyCoupon(ctx context.Context, code string) error {
	f.coupon = nil

	var result CouponQuote
	err := f.session.do(ctx, "POST", "/api/v1/coupons/validate", map[string]interface{}{
		"code":   code,
		"amount": f.Course.EffectivePrice(),
	}, &result)
	if err != nil {
		return err
	}

	f.coupon = &result
	return nil
}

// ClearCoupon removes the applied coupon.
func (f *EnrollmentFlow) ClearCoupon() {
	f.coupon = nil
}

// FinalPrice is the amount the buyer will pay: the effective price
// less the applied coupon's discount, never below zero.
func (f *EnrollmentFlow) FinalPrice() float64 {
	price := f.Course.EffectivePrice()
	if f.coupon != nil {
		price -= f.coupon.Discount
	}
	if price < 0 {
		return 0
	}
	return price
}

// ButtonLabel is the enroll button text for the current price.
func (f *EnrollmentFlow) ButtonLabel() string {
	price := f.FinalPrice()
	if price == 0 {
		return "Enroll for Free"
	}
	return fmt.Sprintf("Pay ₹%.2f", price)
}

// Enroll runs the enrollment. Zero-price enrollments (free courses and
// coupon-zeroed prices) go straight to the server. Paid enrollments
// without a checkout are attempted directly, which the server accepts
// only when its provider bypasses the gateway. Otherwise the flow runs
// the full handshake: create order, open the widget, verify.
func (f *EnrollmentFlow) Enroll(ctx context.Context) (*Enrollment, error) {
	if f.busy {
		return nil, ErrBusy
	}
	f.busy = true
	defer func() { f.busy = false }()

	if f.FinalPrice() == 0 || f.checkout == nil {
		return f.enrollDirect(ctx)
	}
	return f.enrollPaid(ctx)
}

func (f *EnrollmentFlow) enrollDirect(ctx context.Context) (*Enrollment, error) {
	var result struct {
		Success    bool        `json:"success"`
		Enrollment *Enrollment `json:"enrollment"`
	}
	err := f.session.do(ctx, "POST", "/api/v1/enrollments", map[string]interface{}{
		"course_id":   f.Course.ID,
		"email":       f.Email,
		"name":        f.Name,
		"coupon_code": f.couponCode(),
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Enrollment, nil
}

func (f *EnrollmentFlow) enrollPaid(ctx context.Context) (*Enrollment, error) {
	var order struct {
		Success  bool    `json:"success"`
		OrderID  string  `json:"order_id"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		KeyID    string  `json:"key_id"`
	}
	err := f.session.do(ctx, "POST", "/api/v1/payments/create-order", map[string]interface{}{
		"course_id":   f.Course.ID,
		"email":       f.Email,
		"coupon_code": f.couponCode(),
	}, &order)
	if err != nil {
		return nil, err
	}

	completion, err := f.checkout.Open(ctx, CheckoutOptions{
		KeyID:       order.KeyID,
		OrderID:     order.OrderID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		CourseTitle: f.Course.Title,
		Email:       f.Email,
		Name:        f.Name,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Success    bool        `json:"success"`
		Enrollment *Enrollment `json:"enrollment"`
	}
	err = f.session.do(ctx, "POST", "/api/v1/payments/verify", map[string]interface{}{
		"order_id":   order.OrderID,
		"payment_id": completion.PaymentID,
		"signature":  completion.Signature,
		"email":      f.Email,
		"name":       f.Name,
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Enrollment, nil
}

func (f *EnrollmentFlow) couponCode() string {
	if f.coupon == nil {
		return ""
	}
	return f.coupon.Code
}
