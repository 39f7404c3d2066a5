package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coursedesk/coursedesk/internal/model"
)

// CreateCoupon inserts a new coupon. Codes are stored uppercased so
// lookups are case-insensitive.
func (s *Store) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	now := time.Now().UTC()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))

	const q = `INSERT INTO coupons
		(code, kind, value, min_amount, max_uses, used_count, is_active, expires_at, created_at, updated_at)
		VALUES
		(:code, :kind, :value, :min_amount, :max_uses, :used_count, :is_active, :expires_at, :created_at, :updated_at)`

	id, err := s.insert(ctx, q, coupon)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	coupon.ID = id
	return nil
}

// GetCouponByCode returns a coupon by its (case-insensitive) code.
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	q := s.rebind("SELECT * FROM coupons WHERE code = ?")
	if err := s.db.GetContext(ctx, &coupon, q, strings.ToUpper(strings.TrimSpace(code))); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &coupon, nil
}

// ListCoupons returns all coupons ordered by code.
func (s *Store) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := s.db.SelectContext(ctx, &coupons, "SELECT * FROM coupons ORDER BY code"); err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// IncrementCouponUse bumps the redemption counter after a successful
// enrollment that carried the coupon.
func (s *Store) IncrementCouponUse(ctx context.Context, code string) error {
	q := s.rebind("UPDATE coupons SET used_count = used_count + 1, updated_at = ? WHERE code = ?")
	result, err := s.db.ExecContext(ctx, q, time.Now().UTC(), strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return fmt.Errorf("increment coupon use: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
