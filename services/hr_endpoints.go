package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hirepath/backend/models"
	"github.com/hirepath/backend/repository"
)

// HREndpoints serves the HR preparation surface: personalized question
// batches and standalone answer evaluation outside a live session. The
// session lifecycle itself runs through SessionEndpoints with session_type
// "hr".
type HREndpoints struct {
	sessions  *SessionService
	questions *QuestionService
	repo      *repository.GORMRepository
}

func NewHREndpoints(sessions *SessionService, questions *QuestionService, repo *repository.GORMRepository) *HREndpoints {
	return &HREndpoints{
		sessions:  sessions,
		questions: questions,
		repo:      repo,
	}
}

type HRQuestionsRequest struct {
	ResumeID string `json:"resume_id"`
}

type EvaluateAnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type EvaluateAnswerResponse struct {
	Evaluation     models.AnswerEvaluation `json:"evaluation"`
	ExpectedAnswer string                  `json:"expected_answer"`
}

func (e *HREndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/hr", func(r chi.Router) {
		r.Post("/questions", e.QuestionsHandler)
		r.Post("/evaluate", e.EvaluateHandler)
	})
}

// QuestionsHandler generates the personalized HR question batch for a
// resume. Without a usable resume the fixed bank is returned; the batch is
// never empty.
func (e *HREndpoints) QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return
	}

	var req HRQuestionsRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var resumeText, jobDescription string
	if req.ResumeID != "" {
		resume, err := e.repo.GetResume(r.Context(), req.ResumeID)
		if err != nil {
			slog.Error("Failed to get resume for HR questions", "error", err, "resume_id", req.ResumeID)
			writeError(w, http.StatusInternalServerError, "failed to load resume")
			return
		}
		if resume == nil || resume.UserID != identity.UserID {
			writeError(w, http.StatusNotFound, "resume not found")
			return
		}
		resumeText = resume.RawText
		jobDescription = resume.JobDescription
	} else if resume, err := e.repo.LatestResumeForUser(r.Context(), identity.UserID); err == nil && resume != nil {
		resumeText = resume.RawText
		jobDescription = resume.JobDescription
	}

	set := e.questions.GenerateHRQuestionSet(r.Context(), resumeText, jobDescription)
	writeJSON(w, http.StatusOK, set)
}

// EvaluateHandler scores a single practice answer. Scoring is the fixed
// heuristic; the expected answer comes from keyword rubric matching against
// the question text.
func (e *HREndpoints) EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req EvaluateAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Answer == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	writeJSON(w, http.StatusOK, EvaluateAnswerResponse{
		Evaluation:     StubAnswerEvaluation(),
		ExpectedAnswer: RubricFor(req.Question),
	})
}
