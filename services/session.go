package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hirepath/backend/models"
)

// SessionStore is the persistence surface the state machine drives. It is
// satisfied by repository.GORMRepository; tests substitute an in-memory
// implementation.
type SessionStore interface {
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)
	GetResume(ctx context.Context, resumeID string) (*models.Resume, error)
	LatestResumeForUser(ctx context.Context, userID string) (*models.Resume, error)
	CreateSession(ctx context.Context, session *models.InterviewSession) error
	GetSessionForUser(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error)
	ListSessionsForUser(ctx context.Context, userID string) ([]models.InterviewSession, error)
	AppendMessage(ctx context.Context, message *models.InterviewMessage) error
	GetSessionMessages(ctx context.Context, sessionID string) ([]models.InterviewMessage, error)
	CompleteSession(ctx context.Context, sessionID string, endTime time.Time, finalScore int, finalReport string) (int64, error)
}

// Topic seeds per track, in display order.
var (
	technicalTopics = []string{"Technical", "Problem Solving", "Experience", "Best Practices"}
	hrTopics        = []string{"HR", "Behavioral", "Career Goals", "Company Culture"}
)

// SessionService is the interview session state machine. Sessions move from
// active to completed and nowhere else; this service is the only writer of
// status, final_score and final_report.
type SessionService struct {
	store     SessionStore
	questions *QuestionService
	reports   *ReportSynthesizer
}

func NewSessionService(store SessionStore, questions *QuestionService, reports *ReportSynthesizer) *SessionService {
	return &SessionService{
		store:     store,
		questions: questions,
		reports:   reports,
	}
}

// NextQuestionResult carries the generated question for either track along
// with its logged message id.
type NextQuestionResult struct {
	MessageID           string                    `json:"message_id"`
	Technical           *models.TechnicalQuestion `json:"question,omitempty"`
	HR                  *models.HRQuestion        `json:"hr_question,omitempty"`
	TotalQuestionsAsked int                       `json:"total_questions_asked"`
}

// CompletionResult is the outcome of the terminal transition.
type CompletionResult struct {
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	FinalScore  int        `json:"final_score"`
	FinalReport string     `json:"final_report"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// SessionDetail is a session plus its ordered message log.
type SessionDetail struct {
	Session  *models.InterviewSession  `json:"session"`
	Messages []models.InterviewMessage `json:"messages"`
}

// Create starts a new session. The user row is ensured first (idempotent),
// then the seeding resume is resolved: an explicit resume id must exist and
// belong to the user, otherwise the user's most recent upload is used.
// Fails with ErrNotFound when no usable resume exists.
func (s *SessionService) Create(ctx context.Context, identity Identity, resumeID, sessionType, difficulty string) (*models.InterviewSession, error) {
	if sessionType != models.SessionTypeTechnical && sessionType != models.SessionTypeHR {
		return nil, fmt.Errorf("unknown session type %q: %w", sessionType, ErrInvalidState)
	}
	if difficulty == "" {
		difficulty = "medium"
	}

	user, err := s.store.EnsureUser(ctx, &models.User{
		UserID:    identity.UserID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user: %v: %w", err, ErrStorageFailure)
	}

	resume, err := s.resolveResume(ctx, user.UserID, resumeID)
	if err != nil {
		return nil, err
	}

	session := &models.InterviewSession{
		SessionID:   uuid.New().String(),
		UserID:      user.UserID,
		SessionType: sessionType,
		Difficulty:  difficulty,
		Status:      models.SessionStatusActive,
		StartTime:   time.Now(),
	}
	if sessionType == models.SessionTypeHR {
		// The HR flow takes the resume per request; the session does not
		// hold a stored reference.
		session.TopicsCovered = hrTopics
	} else {
		session.ResumeID = &resume.ResumeID
		session.TopicsCovered = technicalTopics
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %v: %w", err, ErrStorageFailure)
	}

	slog.Info("Interview session created", "session_id", session.SessionID, "user_id", user.UserID, "type", sessionType)
	return session, nil
}

// NextQuestion generates and logs the next question for an active session.
// The question source is AI-backed with a deterministic template fallback,
// so this transition never fails for lack of a question.
func (s *SessionService) NextQuestion(ctx context.Context, userID, sessionID, resumeID string) (*NextQuestionResult, error) {
	session, err := s.activeSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	resume, err := s.resolveSessionResume(ctx, session, resumeID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %v: %w", err, ErrStorageFailure)
	}
	previous := questionTexts(messages)

	result := &NextQuestionResult{TotalQuestionsAsked: len(previous) + 1}
	var content string
	if session.SessionType == models.SessionTypeHR {
		question := s.questions.NextHRQuestion(ctx, resume, previous)
		result.HR = &question
		content = question.Question
	} else {
		question := s.questions.NextTechnicalQuestion(ctx, resume, session.Difficulty, previous)
		result.Technical = &question
		content = question.Question
	}

	message := &models.InterviewMessage{
		MessageID: uuid.New().String(),
		SessionID: session.SessionID,
		Role:      models.RoleAI,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.store.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("log question: %v: %w", err, ErrStorageFailure)
	}
	result.MessageID = message.MessageID

	return result, nil
}

// SubmitAnswer logs an answer against an active session. Per-answer scoring
// is the fixed heuristic evaluation; keeping submits off the AI path is a
// latency decision, not a missing feature.
func (s *SessionService) SubmitAnswer(ctx context.Context, userID, sessionID, answer string, confidence *int, emotion string) (*models.AnswerEvaluation, error) {
	if answer == "" {
		return nil, fmt.Errorf("empty answer: %w", ErrInvalidState)
	}

	session, err := s.activeSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	message := &models.InterviewMessage{
		MessageID:       uuid.New().String(),
		SessionID:       session.SessionID,
		Role:            models.RoleUser,
		Content:         answer,
		Timestamp:       time.Now(),
		ConfidenceScore: confidence,
		FacialEmotion:   emotion,
	}
	if err := s.store.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("log answer: %v: %w", err, ErrStorageFailure)
	}

	evaluation := StubAnswerEvaluation()
	return &evaluation, nil
}

// Complete performs the terminal transition: it requires at least one
// answer, synthesizes the report, and persists end time, score and report in
// one transaction. Completing an already-completed session returns the
// stored report unchanged rather than failing.
func (s *SessionService) Complete(ctx context.Context, userID, sessionID string) (*CompletionResult, error) {
	session, err := s.store.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %v: %w", err, ErrStorageFailure)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if session.Status == models.SessionStatusCompleted {
		return completionFromSession(session), nil
	}

	messages, err := s.store.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %v: %w", err, ErrStorageFailure)
	}
	if !hasAnswer(messages) {
		return nil, fmt.Errorf("session has no answers: %w", ErrInvalidState)
	}

	finalScore, finalReport, err := s.reports.Synthesize(ctx, session, messages)
	if err != nil {
		return nil, err
	}

	endTime := time.Now()
	affected, err := s.store.CompleteSession(ctx, sessionID, endTime, finalScore, finalReport)
	if err != nil {
		return nil, fmt.Errorf("persist completion: %v: %w", err, ErrStorageFailure)
	}
	if affected == 0 {
		// Lost a race with a concurrent complete; the stored report wins.
		stored, err := s.store.GetSessionForUser(ctx, sessionID, userID)
		if err != nil || stored == nil {
			return nil, fmt.Errorf("reload completed session: %v: %w", err, ErrStorageFailure)
		}
		return completionFromSession(stored), nil
	}

	slog.Info("Interview session completed", "session_id", sessionID, "final_score", finalScore)
	return &CompletionResult{
		SessionID:   sessionID,
		Status:      models.SessionStatusCompleted,
		FinalScore:  finalScore,
		FinalReport: finalReport,
		EndTime:     &endTime,
	}, nil
}

// Detail returns a session with its ordered message log.
func (s *SessionService) Detail(ctx context.Context, userID, sessionID string) (*SessionDetail, error) {
	session, err := s.store.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %v: %w", err, ErrStorageFailure)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	messages, err := s.store.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %v: %w", err, ErrStorageFailure)
	}

	return &SessionDetail{Session: session, Messages: messages}, nil
}

// List returns the user's sessions, newest first.
func (s *SessionService) List(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	sessions, err := s.store.ListSessionsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %v: %w", err, ErrStorageFailure)
	}
	return sessions, nil
}

func (s *SessionService) activeSession(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error) {
	session, err := s.store.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %v: %w", err, ErrStorageFailure)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if session.Status != models.SessionStatusActive {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, session.Status, ErrInvalidState)
	}
	return session, nil
}

func (s *SessionService) resolveResume(ctx context.Context, userID, resumeID string) (*models.Resume, error) {
	if resumeID != "" {
		resume, err := s.store.GetResume(ctx, resumeID)
		if err != nil {
			return nil, fmt.Errorf("load resume: %v: %w", err, ErrStorageFailure)
		}
		if resume == nil || resume.UserID != userID {
			return nil, fmt.Errorf("resume %s: %w", resumeID, ErrNotFound)
		}
		return resume, nil
	}

	resume, err := s.store.LatestResumeForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest resume: %v: %w", err, ErrStorageFailure)
	}
	if resume == nil {
		return nil, fmt.Errorf("no resume on file: %w", ErrNotFound)
	}
	return resume, nil
}

// resolveSessionResume picks the resume feeding question generation: the
// session's stored reference for the technical track, the per-request (or
// latest) resume for the HR track. The HR fallback bank needs no resume, so
// a missing one is only fatal on the technical track.
func (s *SessionService) resolveSessionResume(ctx context.Context, session *models.InterviewSession, resumeID string) (*models.Resume, error) {
	if session.ResumeID != nil && resumeID == "" {
		resumeID = *session.ResumeID
	}
	resume, err := s.resolveResume(ctx, session.UserID, resumeID)
	if err != nil {
		if session.SessionType == models.SessionTypeHR && errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resume, nil
}

func questionTexts(messages []models.InterviewMessage) []string {
	var questions []string
	for _, msg := range messages {
		if msg.Role == models.RoleAI {
			questions = append(questions, msg.Content)
		}
	}
	return questions
}

func hasAnswer(messages []models.InterviewMessage) bool {
	for _, msg := range messages {
		if msg.Role == models.RoleUser {
			return true
		}
	}
	return false
}

func completionFromSession(session *models.InterviewSession) *CompletionResult {
	result := &CompletionResult{
		SessionID: session.SessionID,
		Status:    session.Status,
		EndTime:   session.EndTime,
	}
	if session.FinalScore != nil {
		result.FinalScore = *session.FinalScore
	}
	if session.FinalReport != nil {
		result.FinalReport = *session.FinalReport
	}
	return result
}
