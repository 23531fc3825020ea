package models

import (
	"time"
)

// Resume holds the raw extracted text of one uploaded document plus the AI
// analysis columns. A row is never mutated after analysis completes; a new
// upload always creates a new row, and the most recent upload for a user is
// the one used to seed new interview sessions.
type Resume struct {
	ResumeID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resume_id"`
	UserID         string    `gorm:"type:text;not null;index" json:"user_id"`
	UploadDate     time.Time `gorm:"not null" json:"upload_date"`
	JobRole        string    `gorm:"type:text" json:"job_role,omitempty"`
	RawText        string    `gorm:"type:text;not null" json:"raw_text"`
	JobDescription string    `gorm:"type:text" json:"job_description,omitempty"`

	// Analysis columns, filled exactly once after upload. All nullable.
	StructuredData   *ResumeProfile      `gorm:"serializer:json;type:jsonb" json:"structured_data,omitempty"`
	InitialQuestions []TechnicalQuestion `gorm:"serializer:json;type:jsonb" json:"initial_questions,omitempty"`
	ATSReport        *ATSReport          `gorm:"serializer:json;type:jsonb" json:"ats_report,omitempty"`
	Embedding        []float32           `gorm:"serializer:json;type:jsonb" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Resume) TableName() string {
	return "resumes"
}
