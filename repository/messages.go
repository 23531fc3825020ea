package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hirepath/backend/models"
)

// AppendMessage adds one entry to a session's message log. The log is
// append-only; rows are never updated or deleted while a session lives.
func (r *GORMRepository) AppendMessage(ctx context.Context, message *models.InterviewMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("Failed to append interview message", "error", err, "session_id", message.SessionID, "role", message.Role)
		return fmt.Errorf("failed to append message: %w", err)
	}
	slog.Info("Interview message appended", "message_id", message.MessageID, "session_id", message.SessionID, "role", message.Role)
	return nil
}

// GetSessionMessages returns the full message log in timestamp order, the
// order the pairing algorithm walks at report time.
func (r *GORMRepository) GetSessionMessages(ctx context.Context, sessionID string) ([]models.InterviewMessage, error) {
	var messages []models.InterviewMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		slog.Error("Failed to get session messages", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get session messages: %w", err)
	}
	return messages, nil
}
