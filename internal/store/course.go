package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/coursedesk/coursedesk/internal/model"
)

// CreateCourse inserts a new course. ID and timestamps are populated on
// success.
func (s *Store) CreateCourse(ctx context.Context, course *model.Course) error {
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = model.CourseInactive
	}

	const q = `INSERT INTO courses
		(title, description, category, level, thumbnail_url, price, discounted_price, lesson_count, status, created_at, updated_at)
		VALUES
		(:title, :description, :category, :level, :thumbnail_url, :price, :discounted_price, :lesson_count, :status, :created_at, :updated_at)`

	id, err := s.insert(ctx, q, course)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	course.ID = id
	return nil
}

// GetCourse returns a course by ID.
func (s *Store) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	var course model.Course
	q := s.rebind("SELECT * FROM courses WHERE id = ?")
	if err := s.db.GetContext(ctx, &course, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

// ListCourses returns courses ordered by title. When activeOnly is set,
// inactive courses are filtered out (the public catalog view).
func (s *Store) ListCourses(ctx context.Context, activeOnly bool) ([]model.Course, error) {
	query := "SELECT * FROM courses ORDER BY title"
	if activeOnly {
		query = s.rebind("SELECT * FROM courses WHERE status = ? ORDER BY title")
	}

	var courses []model.Course
	var err error
	if activeOnly {
		err = s.db.SelectContext(ctx, &courses, query, model.CourseActive)
	} else {
		err = s.db.SelectContext(ctx, &courses, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// UpdateCourse persists changes to an existing course.
func (s *Store) UpdateCourse(ctx context.Context, course *model.Course) error {
	course.UpdatedAt = time.Now().UTC()

	const q = `UPDATE courses SET
		title = :title, description = :description, category = :category,
		level = :level, thumbnail_url = :thumbnail_url, price = :price,
		discounted_price = :discounted_price, lesson_count = :lesson_count,
		status = :status, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCourse removes a course and its details row.
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM courses WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, _ = s.db.ExecContext(ctx, s.rebind("DELETE FROM course_details WHERE course_id = ?"), id)
	return nil
}

// GetCourseDetails returns the details row for a course, if one exists.
func (s *Store) GetCourseDetails(ctx context.Context, courseID int64) (*model.CourseDetails, error) {
	var details model.CourseDetails
	q := s.rebind("SELECT * FROM course_details WHERE course_id = ?")
	if err := s.db.GetContext(ctx, &details, q, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course details: %w", err)
	}
	return &details, nil
}

// UpsertCourseDetails creates or replaces the details row for a course.
// The course reference is unique, so a second write updates in place.
func (s *Store) UpsertCourseDetails(ctx context.Context, details *model.CourseDetails) error {
	now := time.Now().UTC()
	details.UpdatedAt = now
	if details.Deliverables == nil {
		details.Deliverables = model.StringList{}
	}

	existing, err := s.GetCourseDetails(ctx, details.CourseID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if existing != nil {
		details.ID = existing.ID
		details.CreatedAt = existing.CreatedAt
		const q = `UPDATE course_details SET
			objectives = :objectives, target_audience = :target_audience,
			prerequisites = :prerequisites, structure = :structure,
			supplementary_info = :supplementary_info, deliverables = :deliverables,
			is_active = :is_active, updated_at = :updated_at
			WHERE course_id = :course_id`
		if _, err := s.db.NamedExecContext(ctx, q, details); err != nil {
			return fmt.Errorf("update course details: %w", err)
		}
		return nil
	}

	details.CreatedAt = now
	const q = `INSERT INTO course_details
		(course_id, objectives, target_audience, prerequisites, structure, supplementary_info, deliverables, is_active, created_at, updated_at)
		VALUES
		(:course_id, :objectives, :target_audience, :prerequisites, :structure, :supplementary_info, :deliverables, :is_active, :created_at, :updated_at)`
	id, err := s.insert(ctx, q, details)
	if err != nil {
		return fmt.Errorf("insert course details: %w", err)
	}
	details.ID = id
	return nil
}
