package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Course publication states.
const (
	CourseActive   = "active"
	CourseInactive = "inactive"
)

// Course is a sellable course in the catalog. Amounts are rupees; a
// DiscountedPrice of zero means no discount is configured.
type Course struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Category        string    `json:"category" db:"category"`
	Level           string    `json:"level" db:"level"`
	ThumbnailURL    string    `json:"thumbnail_url" db:"thumbnail_url"`
	Price           float64   `json:"price" db:"price"`
	DiscountedPrice float64   `json:"discounted_price" db:"discounted_price"`
	LessonCount     int       `json:"lesson_count" db:"lesson_count"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// EffectivePrice is the price enrollment and checkout are computed
// against: the discounted price when one is set, the base price otherwise.
func (c *Course) EffectivePrice() float64 {
	if c.DiscountedPrice > 0 {
		return c.DiscountedPrice
	}
	return c.Price
}

// StringList is a list of strings stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer for sqlx writes.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for sqlx reads.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("stringlist: unsupported scan type %T", src)
	}
}

// CourseDetails is the one-to-one descriptive extension of a Course:
// what the course covers, who it is for, and what the learner gets.
type CourseDetails struct {
	ID                int64      `json:"id" db:"id"`
	CourseID          int64      `json:"course_id" db:"course_id"`
	Objectives        string     `json:"objectives" db:"objectives"`
	TargetAudience    string     `json:"target_audience" db:"target_audience"`
	Prerequisites     string     `json:"prerequisites" db:"prerequisites"`
	Structure         string     `json:"structure" db:"structure"`
	SupplementaryInfo string     `json:"supplementary_info" db:"supplementary_info"`
	Deliverables      StringList `json:"deliverables" db:"deliverables"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
