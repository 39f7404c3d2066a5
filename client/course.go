package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Course mirrors the course object served by the API.
type Course struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Level           string  `json:"level"`
	ThumbnailURL    string  `json:"thumbnail_url"`
	Price           float64 `json:"price"`
	DiscountedPrice float64 `json:"discounted_price"`
	LessonCount     int     `json:"lesson_count"`
	Status          string  `json:"status"`
}

// EffectivePrice is the price a buyer actually pays: the discounted
// price when one is set, the base price otherwise.
func (c *Course) EffectivePrice() float64 {
	if c.DiscountedPrice > 0 {
		return c.DiscountedPrice
	}
	return c.Price
}

// CourseDetails mirrors the descriptive extension of a course.
type CourseDetails struct {
	ID                int64    `json:"id"`
	CourseID          int64    `json:"course_id"`
	Objectives        string   `json:"objectives"`
	TargetAudience    string   `json:"target_audience"`
	Prerequisites     string   `json:"prerequisites"`
	Structure         string   `json:"structure"`
	SupplementaryInfo string   `json:"supplementary_info"`
	Deliverables      []string `json:"deliverables"`
	IsActive          bool     `json:"is_active"`
}

type courseListResponse struct {
	Success  bool     `json:"success"`
	Resource []Course `json:"resource"`
}

type courseResponse struct {
	Success bool           `json:"success"`
	Course  *Course        `json:"course"`
	Details *CourseDetails `json:"details"`
}

// ListCourses returns the active courses on the storefront.
func (s *Session) ListCourses(ctx context.Context) ([]Course, error) {
	var result courseListResponse
	if err := s.do(ctx, "GET", "/api/v1/courses", nil, &result); err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// GetCourse returns one active course with its details.
func (s *Session) GetCourse(ctx context.Context, id int64) (*Course, *CourseDetails, error) {
	var result courseResponse
	if err := s.do(ctx, "GET", fmt.Sprintf("/api/v1/courses/%d", id), nil, &result); err != nil {
		return nil, nil, err
	}
	return result.Course, result.Details, nil
}

// ListAllCourses returns every course, inactive included. Requires an
// authenticated session.
func (s *Session) ListAllCourses(ctx context.Context) ([]Course, error) {
	var result courseListResponse
	if err := s.do(ctx, "GET", "/api/v1/admin/courses", nil, &result); err != nil {
		return nil, err
	}
	return result.Resource, nil
}

// DeleteCourse removes a course. Requires an authenticated session.
func (s *Session) DeleteCourse(ctx context.Context, id int64) error {
	return s.do(ctx, "DELETE", fmt.Sprintf("/api/v1/admin/courses/%d", id), nil, nil)
}

// CourseForm holds the admin course editor's draft state. Numeric
// fields are strings, as they arrive from form inputs, and are coerced
// on submit. A zero ID means Submit creates; a set ID means it updates.
type CourseForm struct {
	ID              int64
	Title           string
	Description     string
	Category        string
	Level           string
	ThumbnailURL    string
	Price           string
	DiscountedPrice string
	LessonCount     string
}

// NewCourseForm returns a form pre-filled from an existing course, or
// an empty form when course is nil.
func NewCourseForm(course *Course) *CourseForm {
	if course == nil {
		return &CourseForm{}
	}
	return &CourseForm{
		ID:              course.ID,
		Title:           course.Title,
		Description:     course.Description,
		Category:        course.Category,
		Level:           course.Level,
		ThumbnailURL:    course.ThumbnailURL,
		Price:           strconv.FormatFloat(course.Price, 'f', -1, 64),
		DiscountedPrice: strconv.FormatFloat(course.DiscountedPrice, 'f', -1, 64),
		LessonCount:     strconv.Itoa(course.LessonCount),
	}
}

// Submit coerces the draft and sends it to the server. Submitted
// courses are always active: publishing is the point of saving the
// form. Returns the saved course as the server recorded it.
func (f *CourseForm) Submit(ctx context.Context, s *Session) (*Course, error) {
	course, err := f.toCourse()
	if err != nil {
		return nil, err
	}

	var result courseResponse
	if f.ID == 0 {
		err = s.do(ctx, "POST", "/api/v1/admin/courses", course, &result)
	} else {
		err = s.do(ctx, "PUT", fmt.Sprintf("/api/v1/admin/courses/%d", f.ID), course, &result)
	}
	if err != nil {
		return nil, err
	}
	return result.Course, nil
}

func (f *CourseForm) toCourse() (*Course, error) {
	if strings.TrimSpace(f.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	price, err := parseAmount(f.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %q", f.Price)
	}
	discounted, err := parseAmount(f.DiscountedPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid discounted price: %q", f.DiscountedPrice)
	}
	lessons := 0
	if strings.TrimSpace(f.LessonCount) != "" {
		lessons, err = strconv.Atoi(strings.TrimSpace(f.LessonCount))
		if err != nil || lessons < 0 {
			return nil, fmt.Errorf("invalid lesson count: %q", f.LessonCount)
		}
	}

	return &Course{
		ID:              f.ID,
		Title:           strings.TrimSpace(f.Title),
		Description:     f.Description,
		Category:        f.Category,
		Level:           f.Level,
		ThumbnailURL:    f.ThumbnailURL,
		Price:           price,
		DiscountedPrice: discounted,
		LessonCount:     lessons,
		Status:          "active",
	}, nil
}

// parseAmount converts a form amount field to a float. Empty means
// zero, which is how a course becomes free.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	return v, nil
}
