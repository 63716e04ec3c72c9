package models

import "time"

// Setting is a process-wide tunable, upserted by admins and read at use time.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Counter backs monotonic sequence allocation (quote numbering). Increments
// happen inside the owning transaction so a rollback never burns a value.
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}
