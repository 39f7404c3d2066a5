package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Admin roles. Superadmins bypass per-section permission checks.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Permission sections an admin can be granted access to.
const (
	PermUsers       = "users"
	PermCourses     = "courses"
	PermEnrollments = "enrollments"
	PermNewsletter  = "newsletter"
	PermSettings    = "settings"
)

// AllPermissions returns the full permission set, granted to the
// bootstrap superadmin.
func AllPermissions() Permissions {
	return Permissions{PermUsers, PermCourses, PermEnrollments, PermNewsletter, PermSettings}
}

// Permissions is a set of permission section names, stored as a JSON
// array in a single text column.
type Permissions []string

// Has reports whether the set contains the given permission.
func (p Permissions) Has(perm string) bool {
	for _, v := range p {
		if v == perm {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for sqlx writes.
func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		p = Permissions{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for sqlx reads.
func (p *Permissions) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = Permissions{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("permissions: unsupported scan type %T", src)
	}
}

// Admin represents an administrative user who manages the platform
// through the admin API. Passwords are stored as bcrypt hashes.
type Admin struct {
	ID           int64       `json:"id" db:"id"`
	Username     string      `json:"username" db:"username"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"` // bcrypt hash, never expose
	Role         string      `json:"role" db:"role"`
	Permissions  Permissions `json:"permissions" db:"permissions"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}
