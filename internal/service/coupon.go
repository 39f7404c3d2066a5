package service

import (
	"context"
	"errors"
	"time"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/store"
)

// Coupon rejection reasons. The messages are user-facing: handlers
// return them verbatim in the response envelope.
var (
	ErrCouponInvalid   = errors.New("invalid coupon code")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrCouponMinimum   = errors.New("order amount is below the coupon minimum")
)

// CouponService validates coupon codes against charge amounts and
// computes the resulting discount.
type CouponService struct {
	store *store.Store
}

// NewCouponService creates a CouponService.
func NewCouponService(st *store.Store) *CouponService {
	return &CouponService{store: st}
}

// Validate checks a coupon code against the amount being charged and
// returns the server-computed discount and final amount. The final
// amount is clamped at zero: a coupon can make a course free but never
// produce a negative charge.
func (s *CouponService) Validate(ctx context.Context, code string, amount float64) (*model.CouponQuote, error) {
	coupon, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCouponInvalid
		}
		return nil, err
	}

	if !coupon.IsActive {
		return nil, ErrCouponInvalid
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return nil, ErrCouponExpired
	}
	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return nil, ErrCouponExhausted
	}
	if amount < coupon.MinAmount {
		return nil, ErrCouponMinimum
	}

	var discount float64
	switch coupon.Kind {
	case model.CouponPercent:
		discount = amount * coupon.Value / 100
	case model.CouponFlat:
		discount = coupon.Value
	default:
		return nil, ErrCouponInvalid
	}
	if discount > amount {
		discount = amount
	}

	return &model.CouponQuote{
		Code:        coupon.Code,
		Discount:    discount,
		FinalAmount: amount - discount,
	}, nil
}
