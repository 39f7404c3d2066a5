package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coursedesk/coursedesk/internal/model"
)

// SeedFile is the YAML catalog import format consumed by `coursedesk db seed`.
// Environment variables referenced as ${VAR_NAME} in the file are expanded
// before parsing.
type SeedFile struct {
	Courses []SeedCourse `yaml:"courses"`
	Coupons []SeedCoupon `yaml:"coupons"`
}

// SeedCourse defines a course (and optional details) in the seed file.
type SeedCourse struct {
	Title           string       `yaml:"title"`
	Description     string       `yaml:"description"`
	Category        string       `yaml:"category"`
	Level           string       `yaml:"level"`
	ThumbnailURL    string       `yaml:"thumbnail_url"`
	Price           float64      `yaml:"price"`
	DiscountedPrice float64      `yaml:"discounted_price"`
	LessonCount     int          `yaml:"lesson_count"`
	Status          string       `yaml:"status"`
	Details         *SeedDetails `yaml:"details,omitempty"`
}

// SeedDetails defines the descriptive extension of a seeded course.
type SeedDetails struct {
	Objectives        string   `yaml:"objectives"`
	TargetAudience    string   `yaml:"target_audience"`
	Prerequisites     string   `yaml:"prerequisites"`
	Structure         string   `yaml:"structure"`
	SupplementaryInfo string   `yaml:"supplementary_info"`
	Deliverables      []string `yaml:"deliverables"`
}

// SeedCoupon defines a coupon in the seed file. ExpiresAt is a date in
// YYYY-MM-DD form; empty means no expiry.
type SeedCoupon struct {
	Code      string  `yaml:"code"`
	Kind      string  `yaml:"kind"`
	Value     float64 `yaml:"value"`
	MinAmount float64 `yaml:"min_amount"`
	MaxUses   int     `yaml:"max_uses"`
	ExpiresAt string  `yaml:"expires_at"`
}

// LoadSeedFile reads and parses a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	var seed SeedFile
	if err := yaml.Unmarshal([]byte(content), &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// ImportSeed applies a seed file to the store. Coupons whose code
// already exists are skipped, so re-running a seed is safe.
func (s *Store) ImportSeed(ctx context.Context, seed *SeedFile) (coursesAdded, couponsAdded int, err error) {
	for i := range seed.Courses {
		sc := &seed.Courses[i]
		course := &model.Course{
			Title:           sc.Title,
			Description:     sc.Description,
			Category:        sc.Category,
			Level:           sc.Level,
			ThumbnailURL:    sc.ThumbnailURL,
			Price:           sc.Price,
			DiscountedPrice: sc.DiscountedPrice,
			LessonCount:     sc.LessonCount,
			Status:          sc.Status,
		}
		if course.Status == "" {
			course.Status = model.CourseActive
		}
		if err := s.CreateCourse(ctx, course); err != nil {
			return coursesAdded, couponsAdded, fmt.Errorf("seed course %q: %w", sc.Title, err)
		}
		coursesAdded++

		if sc.Details != nil {
			details := &model.CourseDetails{
				CourseID:          course.ID,
				Objectives:        sc.Details.Objectives,
				TargetAudience:    sc.Details.TargetAudience,
				Prerequisites:     sc.Details.Prerequisites,
				Structure:         sc.Details.Structure,
				SupplementaryInfo: sc.Details.SupplementaryInfo,
				Deliverables:      model.StringList(sc.Details.Deliverables),
				IsActive:          true,
			}
			if err := s.UpsertCourseDetails(ctx, details); err != nil {
				return coursesAdded, couponsAdded, fmt.Errorf("seed details for %q: %w", sc.Title, err)
			}
		}
	}

	for _, sc := range seed.Coupons {
		coupon := &model.Coupon{
			Code:      sc.Code,
			Kind:      sc.Kind,
			Value:     sc.Value,
			MinAmount: sc.MinAmount,
			MaxUses:   sc.MaxUses,
			IsActive:  true,
		}
		if sc.ExpiresAt != "" {
			t, err := time.Parse("2006-01-02", sc.ExpiresAt)
			if err != nil {
				return coursesAdded, couponsAdded, fmt.Errorf("seed coupon %q: bad expires_at: %w", sc.Code, err)
			}
			coupon.ExpiresAt = &t
		}
		if err := s.CreateCoupon(ctx, coupon); err != nil {
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			return coursesAdded, couponsAdded, fmt.Errorf("seed coupon %q: %w", sc.Code, err)
		}
		couponsAdded++
	}

	return coursesAdded, couponsAdded, nil
}
