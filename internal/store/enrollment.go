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

// CreateEnrollment inserts a new enrollment. A second enrollment for the
// same (course, email) pair returns ErrDuplicate.
func (s *Store) CreateEnrollment(ctx context.Context, enr *model.Enrollment) error {
	enr.CreatedAt = time.Now().UTC()
	enr.Email = strings.ToLower(strings.TrimSpace(enr.Email))

	const q = `INSERT INTO enrollments
		(course_id, email, name, coupon_code, amount_paid, source, payment_id, created_at)
		VALUES
		(:course_id, :email, :name, :coupon_code, :amount_paid, :source, :payment_id, :created_at)`

	id, err := s.insert(ctx, q, enr)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	enr.ID = id
	return nil
}

// GetEnrollment returns the enrollment for a (course, email) pair.
func (s *Store) GetEnrollment(ctx context.Context, courseID int64, email string) (*model.Enrollment, error) {
	var enr model.Enrollment
	q := s.rebind("SELECT * FROM enrollments WHERE course_id = ? AND email = ?")
	if err := s.db.GetContext(ctx, &enr, q, courseID, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &enr, nil
}

// ListEnrollments returns enrollments, optionally filtered by course.
// Pass 0 to list across all courses.
func (s *Store) ListEnrollments(ctx context.Context, courseID int64) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	var err error
	if courseID > 0 {
		q := s.rebind("SELECT * FROM enrollments WHERE course_id = ? ORDER BY created_at DESC")
		err = s.db.SelectContext(ctx, &enrollments, q, courseID)
	} else {
		err = s.db.SelectContext(ctx, &enrollments, "SELECT * FROM enrollments ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
