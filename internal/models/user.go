package models

import "time"

// Staff roles. Admin sees customer PII and the CRM id; regular staff use the
// in-person view which hides both.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// User is a staff account. Customers never have accounts; they reach their
// quote through its short id plus a credential check.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `json:"name"`
	Role      string    `gorm:"size:12;not null;default:staff" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
