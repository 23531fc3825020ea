package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hirepath/backend/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// DB exposes the underlying handle for health checks.
func (r *GORMRepository) DB() *gorm.DB {
	return r.db
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Resume{},
		&models.InterviewSession{},
		&models.InterviewMessage{},
	)
}

// User operations

// EnsureUser creates the user row on first contact and backfills name fields
// on later contacts. Everything else about an existing row is left untouched.
func (r *GORMRepository) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	var existing models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", user.UserID).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{}
		if existing.FirstName == "" && user.FirstName != "" {
			updates["first_name"] = user.FirstName
		}
		if existing.LastName == "" && user.LastName != "" {
			updates["last_name"] = user.LastName
		}
		if len(updates) > 0 {
			if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
				slog.Error("Failed to backfill user names", "error", err, "user_id", user.UserID)
				return nil, err
			}
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("Failed to look up user", "error", err, "user_id", user.UserID)
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err, "user_id", user.UserID)
		return nil, err
	}
	slog.Info("User created", "user_id", user.UserID, "email", user.Email)
	return user, nil
}

// Resume operations

func (r *GORMRepository) CreateResume(ctx context.Context, resume *models.Resume) error {
	if err := r.db.WithContext(ctx).Create(resume).Error; err != nil {
		slog.Error("Failed to create resume", "error", err, "user_id", resume.UserID)
		return err
	}
	slog.Info("Resume created", "resume_id", resume.ResumeID, "user_id", resume.UserID)
	return nil
}

func (r *GORMRepository) GetResume(ctx context.Context, resumeID string) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("resume_id = ?", resumeID).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get resume", "error", err, "resume_id", resumeID)
		return nil, err
	}
	return &resume, nil
}

// LatestResumeForUser returns the most recent upload, which is the one used
// to seed new interview sessions.
func (r *GORMRepository) LatestResumeForUser(ctx context.Context, userID string) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_date DESC").
		First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get latest resume", "error", err, "user_id", userID)
		return nil, err
	}
	return &resume, nil
}

func (r *GORMRepository) ListResumesForUser(ctx context.Context, userID string) ([]models.Resume, error) {
	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_date DESC").
		Find(&resumes).Error
	if err != nil {
		slog.Error("Failed to list resumes", "error", err, "user_id", userID)
		return nil, err
	}
	return resumes, nil
}

// SetResumeAnalysis fills the analysis columns of a freshly uploaded resume.
// Rows are write-once after analysis; this is the only resume update path.
func (r *GORMRepository) SetResumeAnalysis(ctx context.Context, resumeID string, profile *models.ResumeProfile, ats *models.ATSReport, questions []models.TechnicalQuestion, embedding []float32) error {
	updates := map[string]interface{}{}
	if profile != nil {
		updates["structured_data"] = profile
	}
	if len(questions) > 0 {
		updates["initial_questions"] = questions
	}
	if ats != nil {
		updates["ats_report"] = ats
	}
	if embedding != nil {
		updates["embedding"] = embedding
	}
	if len(updates) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("resume_id = ?", resumeID).
		Updates(updates).Error
	if err != nil {
		slog.Error("Failed to set resume analysis", "error", err, "resume_id", resumeID)
		return err
	}
	slog.Info("Resume analysis stored", "resume_id", resumeID)
	return nil
}

// Session operations

func (r *GORMRepository) CreateSession(ctx context.Context, session *models.InterviewSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create interview session", "error", err, "user_id", session.UserID)
		return err
	}
	slog.Info("Interview session created", "session_id", session.SessionID, "user_id", session.UserID)
	return nil
}

// GetSessionForUser loads a session scoped to its owner. Another user's
// session is indistinguishable from a missing one.
func (r *GORMRepository) GetSessionForUser(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get interview session", "error", err, "session_id", sessionID, "user_id", userID)
		return nil, err
	}
	return &session, nil
}

func (r *GORMRepository) ListSessionsForUser(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to list interview sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

// CompleteSession performs the terminal state transition. Status, end time,
// final score and final report are written in one transaction, guarded on the
// session still being active, so they are never partially set. Returns the
// number of rows transitioned: zero means the session was already completed.
func (r *GORMRepository) CompleteSession(ctx context.Context, sessionID string, endTime time.Time, finalScore int, finalReport string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InterviewSession{}).
			Where("session_id = ? AND status = ?", sessionID, models.SessionStatusActive).
			Updates(map[string]interface{}{
				"status":       models.SessionStatusCompleted,
				"end_time":     endTime,
				"final_score":  finalScore,
				"final_report": finalReport,
			})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		slog.Error("Failed to complete interview session", "error", err, "session_id", sessionID)
		return 0, err
	}
	slog.Info("Interview session completed", "session_id", sessionID, "final_score", finalScore, "rows", affected)
	return affected, nil
}
