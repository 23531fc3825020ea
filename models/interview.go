package models

import (
	"time"
)

// Session lifecycle states. There is no pending state; a session is active
// from the moment it is created.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

// Interview tracks.
const (
	SessionTypeTechnical = "technical"
	SessionTypeHR        = "hr"
)

// Message roles within a session.
const (
	RoleAI   = "ai"
	RoleUser = "user"
)

// InterviewSession records one interview attempt. EndTime, FinalScore and
// FinalReport are set together, exactly once, when the session transitions
// to completed; a completed session is immutable.
type InterviewSession struct {
	SessionID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	UserID        string     `gorm:"type:text;not null;index" json:"user_id"`
	ResumeID      *string    `gorm:"type:uuid;index" json:"resume_id,omitempty"`
	SessionType   string     `gorm:"type:varchar(20);not null;default:'technical';check:session_type IN ('technical', 'hr')" json:"session_type"`
	Difficulty    string     `gorm:"type:varchar(20)" json:"difficulty,omitempty"`
	TopicsCovered []string   `gorm:"serializer:json;type:jsonb" json:"topics_covered,omitempty"`
	Status        string     `gorm:"not null;default:'active';check:status IN ('active', 'completed')" json:"status"`
	FinalScore    *int       `json:"final_score,omitempty"`
	FinalReport   *string    `gorm:"type:text" json:"final_report,omitempty"`
	StartTime     time.Time  `gorm:"not null" json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`

	// Relationships
	User     User               `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Messages []InterviewMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// InterviewMessage is one entry in a session's append-only message log,
// ordered by timestamp. Question/answer pairing is reconstructed at report
// time; strict alternation is not enforced at the storage layer.
type InterviewMessage struct {
	MessageID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SessionID       string    `gorm:"type:uuid;not null;index" json:"session_id"`
	Role            string    `gorm:"type:varchar(10);not null;check:role IN ('ai', 'user')" json:"role"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Timestamp       time.Time `gorm:"not null" json:"timestamp"`
	ConfidenceScore *int      `json:"confidence_score,omitempty"`
	FacialEmotion   string    `gorm:"type:varchar(50)" json:"facial_emotion,omitempty"`
	ProctoringFlag  string    `gorm:"type:varchar(50)" json:"proctoring_flag,omitempty"`

	// Relationships
	Session *InterviewSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

func (InterviewMessage) TableName() string {
	return "interview_messages"
}
