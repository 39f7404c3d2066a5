package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coursedesk/coursedesk/internal/model"
)

// CreateOrder persists a payment order created at the gateway.
func (s *Store) CreateOrder(ctx context.Context, order *model.Order) error {
	order.CreatedAt = time.Now().UTC()
	if order.Status == "" {
		order.Status = model.OrderCreated
	}
	if order.Currency == "" {
		order.Currency = "INR"
	}

	const q = `INSERT INTO orders
		(provider_order_id, course_id, email, amount, currency, receipt, coupon_code, status, created_at)
		VALUES
		(:provider_order_id, :course_id, :email, :amount, :currency, :receipt, :coupon_code, :status, :created_at)`

	id, err := s.insert(ctx, q, order)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	order.ID = id
	return nil
}

// GetOrderByProviderID returns the order matching the gateway's order ID.
func (s *Store) GetOrderByProviderID(ctx context.Context, providerOrderID string) (*model.Order, error) {
	var order model.Order
	q := s.rebind("SELECT * FROM orders WHERE provider_order_id = ?")
	if err := s.db.GetContext(ctx, &order, q, providerOrderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// SetOrderStatus moves an order through its lifecycle (created → paid/failed).
func (s *Store) SetOrderStatus(ctx context.Context, providerOrderID, status string) error {
	q := s.rebind("UPDATE orders SET status = ? WHERE provider_order_id = ?")
	result, err := s.db.ExecContext(ctx, q, status, providerOrderID)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
