package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hirepath/backend/models"
)

// SessionEndpoints exposes the interview session lifecycle over HTTP. All
// state decisions live in SessionService; handlers only decode, dispatch and
// map errors to statuses.
type SessionEndpoints struct {
	sessions *SessionService
}

func NewSessionEndpoints(sessions *SessionService) *SessionEndpoints {
	return &SessionEndpoints{sessions: sessions}
}

type CreateSessionRequest struct {
	ResumeID    string `json:"resume_id"`
	SessionType string `json:"session_type"`
	Difficulty  string `json:"difficulty"`
}

type CreateSessionResponse struct {
	Session models.InterviewSession `json:"session"`
	Message string                  `json:"message"`
}

type NextQuestionRequest struct {
	ResumeID string `json:"resume_id"`
}

type SubmitAnswerRequest struct {
	Answer          string `json:"answer"`
	ConfidenceScore *int   `json:"confidence_score"`
	FacialEmotion   string `json:"facial_emotion"`
}

type ListSessionsResponse struct {
	Sessions []models.InterviewSession `json:"sessions"`
	Count    int                       `json:"count"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", e.CreateHandler)
		r.Get("/", e.ListHandler)
		r.Get("/{id}", e.GetHandler)
		r.Post("/{id}/question", e.NextQuestionHandler)
		r.Post("/{id}/answer", e.SubmitAnswerHandler)
		r.Post("/{id}/complete", e.CompleteHandler)
	})
}

func (e *SessionEndpoints) CreateHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionType == "" {
		req.SessionType = models.SessionTypeTechnical
	}

	session, err := e.sessions.Create(r.Context(), identity, req.ResumeID, req.SessionType, req.Difficulty)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		Session: *session,
		Message: "Session created successfully",
	})
}

func (e *SessionEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return
	}

	sessions, err := e.sessions.List(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListSessionsResponse{Sessions: sessions, Count: len(sessions)})
}

func (e *SessionEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	identity, sessionID, ok := requestScope(w, r)
	if !ok {
		return
	}

	detail, err := e.sessions.Detail(r.Context(), identity.UserID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (e *SessionEndpoints) NextQuestionHandler(w http.ResponseWriter, r *http.Request) {
	identity, sessionID, ok := requestScope(w, r)
	if !ok {
		return
	}

	// Body is optional; the HR track may pass a resume per request.
	var req NextQuestionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := e.sessions.NextQuestion(r.Context(), identity.UserID, sessionID, req.ResumeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (e *SessionEndpoints) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	identity, sessionID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	evaluation, err := e.sessions.SubmitAnswer(r.Context(), identity.UserID, sessionID, req.Answer, req.ConfidenceScore, req.FacialEmotion)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"evaluation": evaluation})
}

func (e *SessionEndpoints) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	identity, sessionID, ok := requestScope(w, r)
	if !ok {
		return
	}

	result, err := e.sessions.Complete(r.Context(), identity.UserID, sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
	slog.Info("Session completion served", "session_id", sessionID, "final_score", result.FinalScore)
}

// requestScope pulls the caller identity and path session id, writing the
// error response itself on failure.
func requestScope(w http.ResponseWriter, r *http.Request) (Identity, string, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return Identity{}, "", false
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session ID is required")
		return Identity{}, "", false
	}

	return identity, sessionID, true
}
