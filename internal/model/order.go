package model

import "time"

// Order states, following the gateway's lifecycle.
const (
	OrderCreated = "created"
	OrderPaid    = "paid"
	OrderFailed  = "failed"
)

// Order is a payment order created at the gateway ahead of checkout.
// ProviderOrderID is the gateway's identifier, echoed back in the
// verification triple.
type Order struct {
	ID              int64     `json:"id" db:"id"`
	ProviderOrderID string    `json:"provider_order_id" db:"provider_order_id"`
	CourseID        int64     `json:"course_id" db:"course_id"`
	Email           string    `json:"email" db:"email"`
	Amount          float64   `json:"amount" db:"amount"`
	Currency        string    `json:"currency" db:"currency"`
	Receipt         string    `json:"receipt" db:"receipt"`
	CouponCode      string    `json:"coupon_code,omitempty" db:"coupon_code"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
