package models

import "time"

// Student represents a marketplace learner. Account lifecycle is managed by
// the auth service; this row anchors survey profiles, enrollments and the
// stored learning path.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
