package models

import (
	"time"
)

// User is keyed by the opaque identity issued by the external auth provider,
// not a database-generated id. Rows are created on first contact and are
// immutable afterwards except for name backfill.
type User struct {
	UserID    string    `gorm:"type:text;primaryKey" json:"user_id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"size:255" json:"first_name,omitempty"`
	LastName  string    `gorm:"size:255" json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Resumes  []Resume           `gorm:"foreignKey:UserID" json:"resumes,omitempty"`
	Sessions []InterviewSession `gorm:"foreignKey:UserID" json:"sessions,omitempty"`
}

func (User) TableName() string {
	return "users"
}
