package model

import "time"

// Coupon discount kinds.
const (
	CouponPercent = "percent"
	CouponFlat    = "flat"
)

// Coupon is a redeemable discount code, validated server-side against
// the amount being charged. MaxUses of zero means unlimited.
type Coupon struct {
	ID        int64      `json:"id" db:"id"`
	Code      string     `json:"code" db:"code"`
	Kind      string     `json:"kind" db:"kind"`
	Value     float64    `json:"value" db:"value"`
	MinAmount float64    `json:"min_amount" db:"min_amount"`
	MaxUses   int        `json:"max_uses" db:"max_uses"`
	UsedCount int        `json:"used_count" db:"used_count"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// CouponQuote is the server-computed result of validating a coupon
// against an amount.
type CouponQuote struct {
	Code        string  `json:"code"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"final_amount"`
}
