package model

import "time"

// Enrollment sources record which path created the record: a genuinely
// free course, a coupon that zeroed the price, a verified payment, or
// the development bypass.
const (
	SourceFree      = "free"
	SourceCoupon    = "coupon"
	SourcePayment   = "payment"
	SourceDevBypass = "dev_bypass"
)

// Enrollment ties a learner (by email) to a course. One enrollment per
// (course, email) pair.
type Enrollment struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"course_id" db:"course_id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name" db:"name"`
	CouponCode string    `json:"coupon_code,omitempty" db:"coupon_code"`
	AmountPaid float64   `json:"amount_paid" db:"amount_paid"`
	Source     string    `json:"source" db:"source"`
	PaymentID  string    `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
