package store

import (
	"fmt"
	"strings"
)

// dialect holds the column fragments that differ between the supported
// databases. Everything else in the DDL is shared.
type dialect struct {
	pk       string // auto-incrementing primary key
	real     string // double-precision float
	boolCol  string // boolean with default true
	boolOff  string // boolean with default false
	datetime string // nullable timestamp
}

func (s *Store) dialect() dialect {
	switch s.driver {
	case DriverPostgres:
		return dialect{
			pk:       "BIGSERIAL PRIMARY KEY",
			real:     "DOUBLE PRECISION",
			boolCol:  "BOOLEAN NOT NULL DEFAULT TRUE",
			boolOff:  "BOOLEAN NOT NULL DEFAULT FALSE",
			datetime: "TIMESTAMPTZ",
		}
	case DriverMySQL:
		return dialect{
			pk:       "BIGINT PRIMARY KEY AUTO_INCREMENT",
			real:     "DOUBLE",
			boolCol:  "TINYINT(1) NOT NULL DEFAULT 1",
			boolOff:  "TINYINT(1) NOT NULL DEFAULT 0",
			datetime: "DATETIME",
		}
	default:
		return dialect{
			pk:       "INTEGER PRIMARY KEY AUTOINCREMENT",
			real:     "REAL",
			boolCol:  "INTEGER NOT NULL DEFAULT 1",
			boolOff:  "INTEGER NOT NULL DEFAULT 0",
			datetime: "DATETIME",
		}
	}
}

func (s *Store) migrate() error {
	d := s.dialect()

	// MySQL's TEXT cannot take a DEFAULT; use VARCHAR for keyed/short text.
	text := "TEXT"
	str := "VARCHAR(255)"
	if s.driver == DriverSQLite || s.driver == "" {
		str = "TEXT"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS admins (
			id %s,
			username %s UNIQUE NOT NULL,
			email %s UNIQUE NOT NULL,
			password_hash %s NOT NULL,
			role %s NOT NULL DEFAULT 'admin',
			permissions %s NOT NULL,
			is_active %s,
			last_login_at %s,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, d.pk, str, str, str, str, text, d.boolCol, d.datetime, d.datetime, d.datetime),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS courses (
			id %s,
			title %s NOT NULL,
			description %s NOT NULL,
			category %s NOT NULL DEFAULT '',
			level %s NOT NULL DEFAULT '',
			thumbnail_url %s NOT NULL DEFAULT '',
			price %s NOT NULL DEFAULT 0,
			discounted_price %s NOT NULL DEFAULT 0,
			lesson_count INTEGER NOT NULL DEFAULT 0,
			status %s NOT NULL DEFAULT 'inactive',
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, d.pk, str, text, str, str, str, d.real, d.real, str, d.datetime, d.datetime),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS course_details (
			id %s,
			course_id BIGINT UNIQUE NOT NULL,
			objectives %s NOT NULL,
			target_audience %s NOT NULL,
			prerequisites %s NOT NULL,
			structure %s NOT NULL,
			supplementary_info %s NOT NULL,
			deliverables %s NOT NULL,
			is_active %s,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, d.pk, text, text, text, text, text, text, d.boolCol, d.datetime, d.datetime),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS coupons (
			id %s,
			code %s UNIQUE NOT NULL,
			kind %s NOT NULL,
			value %s NOT NULL,
			min_amount %s NOT NULL DEFAULT 0,
			max_uses INTEGER NOT NULL DEFAULT 0,
			used_count INTEGER NOT NULL DEFAULT 0,
			is_active %s,
			expires_at %s,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, d.pk, str, str, d.real, d.real, d.boolCol, d.datetime, d.datetime, d.datetime),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS enrollments (
			id %s,
			course_id BIGINT NOT NULL,
			email %s NOT NULL,
			name %s NOT NULL DEFAULT '',
			coupon_code %s NOT NULL DEFAULT '',
			amount_paid %s NOT NULL DEFAULT 0,
			source %s NOT NULL,
			payment_id %s NOT NULL DEFAULT '',
			created_at %s NOT NULL,
			UNIQUE (course_id, email)
		)`, d.pk, str, str, str, d.real, str, str, d.datetime),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS orders (
			id %s,
			provider_order_id %s UNIQUE NOT NULL,
			course_id BIGINT NOT NULL,
			email %s NOT NULL,
			amount %s NOT NULL,
			currency %s NOT NULL DEFAULT 'INR',
			receipt %s NOT NULL,
			coupon_code %s NOT NULL DEFAULT '',
			status %s NOT NULL DEFAULT 'created',
			created_at %s NOT NULL
		)`, d.pk, str, str, d.real, str, str, str, str, d.datetime),

		`CREATE INDEX IF NOT EXISTS idx_enrollments_email ON enrollments(email)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_course ON orders(course_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// MySQL predates IF NOT EXISTS for indexes; treat re-creation
			// as a no-op so migrations stay idempotent.
			if strings.Contains(strings.ToLower(err.Error()), "duplicate key name") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
