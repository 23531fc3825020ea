package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hirepath/backend/models"
)

// memoryStore is an in-memory SessionStore for state machine tests.
type memoryStore struct {
	users    map[string]*models.User
	resumes  map[string]*models.Resume
	sessions map[string]*models.InterviewSession
	messages map[string][]models.InterviewMessage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    map[string]*models.User{},
		resumes:  map[string]*models.Resume{},
		sessions: map[string]*models.InterviewSession{},
		messages: map[string][]models.InterviewMessage{},
	}
}

func (m *memoryStore) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	if existing, ok := m.users[user.UserID]; ok {
		return existing, nil
	}
	copied := *user
	m.users[user.UserID] = &copied
	return &copied, nil
}

func (m *memoryStore) GetResume(ctx context.Context, resumeID string) (*models.Resume, error) {
	return m.resumes[resumeID], nil
}

func (m *memoryStore) LatestResumeForUser(ctx context.Context, userID string) (*models.Resume, error) {
	var latest *models.Resume
	for _, resume := range m.resumes {
		if resume.UserID != userID {
			continue
		}
		if latest == nil || resume.UploadDate.After(latest.UploadDate) {
			latest = resume
		}
	}
	return latest, nil
}

func (m *memoryStore) CreateSession(ctx context.Context, session *models.InterviewSession) error {
	copied := *session
	m.sessions[session.SessionID] = &copied
	return nil
}

func (m *memoryStore) GetSessionForUser(ctx context.Context, sessionID, userID string) (*models.InterviewSession, error) {
	session, ok := m.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (m *memoryStore) ListSessionsForUser(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
	return sessions, nil
}

func (m *memoryStore) AppendMessage(ctx context.Context, message *models.InterviewMessage) error {
	m.messages[message.SessionID] = append(m.messages[message.SessionID], *message)
	return nil
}

func (m *memoryStore) GetSessionMessages(ctx context.Context, sessionID string) ([]models.InterviewMessage, error) {
	messages := append([]models.InterviewMessage(nil), m.messages[sessionID]...)
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (m *memoryStore) CompleteSession(ctx context.Context, sessionID string, endTime time.Time, finalScore int, finalReport string) (int64, error) {
	session, ok := m.sessions[sessionID]
	if !ok || session.Status != models.SessionStatusActive {
		return 0, nil
	}
	session.Status = models.SessionStatusCompleted
	session.EndTime = &endTime
	session.FinalScore = &finalScore
	session.FinalReport = &finalReport
	return 1, nil
}

func testSessionService(store *memoryStore) *SessionService {
	gateway := &stubGateway{available: false}
	return NewSessionService(store, NewQuestionService(gateway), NewReportSynthesizer(gateway))
}

func seedResume(store *memoryStore, userID string) *models.Resume {
	resume := &models.Resume{
		ResumeID:   "resume-1",
		UserID:     userID,
		UploadDate: time.Now(),
		RawText:    "Backend engineer with five years of Go.",
	}
	store.resumes[resume.ResumeID] = resume
	return resume
}

var testIdentity = Identity{UserID: "user-1", Email: "user@example.com", FirstName: "Sam"}

func TestCreateSessionRequiresResume(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)

	_, err := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("technical session without any resume: err = %v, want ErrNotFound", err)
	}

	_, err = svc.Create(context.Background(), testIdentity, "missing-id", models.SessionTypeTechnical, "medium")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("explicit missing resume: err = %v, want ErrNotFound", err)
	}
}

func TestCreateSessionRejectsForeignResume(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)

	resume := seedResume(store, "someone-else")
	_, err := svc.Create(context.Background(), testIdentity, resume.ResumeID, models.SessionTypeTechnical, "medium")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign resume: err = %v, want ErrNotFound", err)
	}
}

func TestCreateSessionDefaults(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	resume := seedResume(store, testIdentity.UserID)

	session, err := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.Status != models.SessionStatusActive {
		t.Errorf("status = %q, want active", session.Status)
	}
	if session.Difficulty != "medium" {
		t.Errorf("difficulty = %q, want the medium default", session.Difficulty)
	}
	if session.ResumeID == nil || *session.ResumeID != resume.ResumeID {
		t.Errorf("session not seeded with the latest resume")
	}
	if _, ok := store.users[testIdentity.UserID]; !ok {
		t.Error("user row not provisioned on first contact")
	}
}

func TestCreateHRSessionHasNoStoredResume(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, err := svc.Create(context.Background(), testIdentity, "", models.SessionTypeHR, "medium")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.ResumeID != nil {
		t.Errorf("hr session stored resume reference %q", *session.ResumeID)
	}
}

func TestCreateSessionRejectsUnknownType(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	_, err := svc.Create(context.Background(), testIdentity, "", "panel", "medium")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("unknown session type: err = %v, want ErrInvalidState", err)
	}
}

func TestQuestionAnswerFlow(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, err := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	result, err := svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, "")
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}
	if result.Technical == nil || result.Technical.Question == "" {
		t.Fatal("no technical question produced")
	}
	if result.TotalQuestionsAsked != 1 {
		t.Errorf("total_questions_asked = %d, want 1", result.TotalQuestionsAsked)
	}

	evaluation, err := svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "My answer.", nil, "")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if evaluation.RelevanceScore != 75 || evaluation.CommunicationScore != 70 {
		t.Errorf("evaluation = %+v, want the fixed heuristic scores", evaluation)
	}

	messages := store.messages[session.SessionID]
	if len(messages) != 2 {
		t.Fatalf("message log has %d entries, want 2", len(messages))
	}
	if messages[0].Role != models.RoleAI || messages[1].Role != models.RoleUser {
		t.Errorf("log roles = [%s, %s], want [ai, user]", messages[0].Role, messages[1].Role)
	}
}

func TestSubmitAnswerRejectsEmpty(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	_, err := svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "", nil, "")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("empty answer: err = %v, want ErrInvalidState", err)
	}
}

func TestCompleteRequiresAnswer(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	if _, err := svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, ""); err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}

	_, err := svc.Complete(context.Background(), testIdentity.UserID, session.SessionID)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("complete with no answers: err = %v, want ErrInvalidState", err)
	}

	stored := store.sessions[session.SessionID]
	if stored.Status != models.SessionStatusActive {
		t.Errorf("failed completion changed status to %q", stored.Status)
	}
}

func TestCompleteSetsAllFieldsTogether(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, "")
	time.Sleep(2 * time.Millisecond)
	svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "An answer.", nil, "")

	result, err := svc.Complete(context.Background(), testIdentity.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if result.Status != models.SessionStatusCompleted {
		t.Errorf("status = %q, want completed", result.Status)
	}
	if result.FinalScore != 65 {
		t.Errorf("final_score = %d, want the one-answer fallback 65", result.FinalScore)
	}
	if result.FinalReport == "" {
		t.Error("final_report is empty")
	}

	stored := store.sessions[session.SessionID]
	if stored.Status != models.SessionStatusCompleted ||
		stored.EndTime == nil || stored.FinalScore == nil || stored.FinalReport == nil {
		t.Error("completed session must have status, end_time, final_score and final_report set together")
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, "")
	time.Sleep(2 * time.Millisecond)
	svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "An answer.", nil, "")

	first, err := svc.Complete(context.Background(), testIdentity.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("first Complete failed: %v", err)
	}

	// Log another answer attempt after completion; it must not change the
	// stored report.
	second, err := svc.Complete(context.Background(), testIdentity.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("second Complete failed: %v", err)
	}
	if second.FinalScore != first.FinalScore || second.FinalReport != first.FinalReport {
		t.Error("second Complete altered the stored report")
	}
	if second.EndTime == nil || !second.EndTime.Equal(*first.EndTime) {
		t.Error("second Complete altered the stored end time")
	}
}

func TestCompletedSessionRejectsNewActivity(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")
	svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, "")
	time.Sleep(2 * time.Millisecond)
	svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "An answer.", nil, "")
	if _, err := svc.Complete(context.Background(), testIdentity.UserID, session.SessionID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if _, err := svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("question on completed session: err = %v, want ErrInvalidState", err)
	}
	if _, err := svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "late answer", nil, ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("answer on completed session: err = %v, want ErrInvalidState", err)
	}
}

func TestReportRoundTrip(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeHR, "medium")
	svc.NextQuestion(context.Background(), testIdentity.UserID, session.SessionID, "")
	time.Sleep(2 * time.Millisecond)
	svc.SubmitAnswer(context.Background(), testIdentity.UserID, session.SessionID, "An answer.", nil, "")

	result, err := svc.Complete(context.Background(), testIdentity.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	detail, err := svc.Detail(context.Background(), testIdentity.UserID, session.SessionID)
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if detail.Session.FinalReport == nil || *detail.Session.FinalReport != result.FinalReport {
		t.Error("re-fetched report differs from the one returned at completion")
	}
}

func TestDetailNotFound(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)

	if _, err := svc.Detail(context.Background(), testIdentity.UserID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing session: err = %v, want ErrNotFound", err)
	}
}

func TestDetailScopedToOwner(t *testing.T) {
	store := newMemoryStore()
	svc := testSessionService(store)
	seedResume(store, testIdentity.UserID)

	session, _ := svc.Create(context.Background(), testIdentity, "", models.SessionTypeTechnical, "medium")

	if _, err := svc.Detail(context.Background(), "intruder", session.SessionID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign user's detail: err = %v, want ErrNotFound", err)
	}
}
