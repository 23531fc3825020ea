package services

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hirepath/backend/models"
	"github.com/hirepath/backend/repository"
)

// ResumeEndpoints handles resume upload and analysis retrieval.
type ResumeEndpoints struct {
	repo        *repository.GORMRepository
	extractor   TextExtractor
	ats         *ATSAnalyzer
	questions   *QuestionService
	gateway     AIGateway
	maxFileSize int64
}

func NewResumeEndpoints(repo *repository.GORMRepository, extractor TextExtractor, ats *ATSAnalyzer, questions *QuestionService, gateway AIGateway, maxFileSize int64) *ResumeEndpoints {
	return &ResumeEndpoints{
		repo:        repo,
		extractor:   extractor,
		ats:         ats,
		questions:   questions,
		gateway:     gateway,
		maxFileSize: maxFileSize,
	}
}

type UploadResumeResponse struct {
	Resume  models.Resume `json:"resume"`
	Message string        `json:"message"`
}

type ListResumesResponse struct {
	Resumes []models.Resume `json:"resumes"`
	Count   int             `json:"count"`
}

func (e *ResumeEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/resumes", func(r chi.Router) {
		r.Post("/", e.UploadHandler)
		r.Get("/", e.ListHandler)
		r.Get("/{id}", e.GetHandler)
		r.Get("/{id}/ats", e.ATSHandler)
	})
}

// UploadHandler accepts a multipart PDF or DOCX upload, extracts its text
// and stores a new resume row. Unsupported file types and files that yield
// no text are rejected with 400 before anything is persisted, so a broken
// upload can never become the user's latest resume.
func (e *ResumeEndpoints) UploadHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return
	}

	if err := r.ParseMultipartForm(e.maxFileSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > e.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload size limit")
		return
	}

	if !SupportedResumeFile(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type, only PDF and DOCX are accepted")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, e.maxFileSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > e.maxFileSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload size limit")
		return
	}

	text := CleanText(e.extractor.Extract(data, header.Filename))
	if IsExtractionError(text) {
		slog.Warn("Resume upload rejected", "filename", header.Filename, "reason", text)
		writeError(w, http.StatusBadRequest, text)
		return
	}

	user, err := e.repo.EnsureUser(r.Context(), &models.User{
		UserID:    identity.UserID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	})
	if err != nil {
		slog.Error("Failed to ensure user", "error", err, "user_id", identity.UserID)
		writeError(w, http.StatusInternalServerError, "failed to store resume")
		return
	}

	resume := models.Resume{
		UserID:         user.UserID,
		UploadDate:     time.Now(),
		JobRole:        r.FormValue("job_role"),
		JobDescription: r.FormValue("job_description"),
		RawText:        text,
	}
	if err := e.repo.CreateResume(r.Context(), &resume); err != nil {
		slog.Error("Failed to create resume", "error", err, "user_id", user.UserID)
		writeError(w, http.StatusInternalServerError, "failed to store resume")
		return
	}

	e.analyzeResume(r, &resume)

	writeJSON(w, http.StatusCreated, UploadResumeResponse{
		Resume:  resume,
		Message: "Resume uploaded successfully",
	})
	slog.Info("Resume uploaded", "resume_id", resume.ResumeID, "user_id", user.UserID, "filename", header.Filename)
}

// analyzeResume runs the upload-time analysis pipeline: ATS report, profile
// extraction, the initial question batch and the embedding. Each step
// degrades independently; partial analysis is stored as-is.
func (e *ResumeEndpoints) analyzeResume(r *http.Request, resume *models.Resume) {
	ctx := r.Context()

	report := e.ats.Analyze(ctx, resume.RawText, resume.JobDescription)
	profile := e.ats.Profile(ctx, resume.RawText)
	questions := e.questions.InitialTechnicalQuestions(ctx, resume.RawText, resume.JobRole)

	var embedding []float32
	if e.gateway != nil && e.gateway.Available() {
		vector, err := e.gateway.GenerateEmbedding(ctx, resume.RawText)
		if err != nil {
			slog.Warn("Resume embedding failed", "error", err, "resume_id", resume.ResumeID)
		} else {
			embedding = vector
		}
	}

	if err := e.repo.SetResumeAnalysis(ctx, resume.ResumeID, profile, report, questions, embedding); err != nil {
		slog.Error("Failed to store resume analysis", "error", err, "resume_id", resume.ResumeID)
		return
	}

	resume.ATSReport = report
	resume.StructuredData = profile
	resume.InitialQuestions = questions
	resume.Embedding = embedding
}

func (e *ResumeEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return
	}

	resumes, err := e.repo.ListResumesForUser(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("Failed to list resumes", "error", err, "user_id", identity.UserID)
		writeError(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}

	writeJSON(w, http.StatusOK, ListResumesResponse{Resumes: resumes, Count: len(resumes)})
}

func (e *ResumeEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	resume, ok := e.ownedResume(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resume": resume})
}

// ATSHandler returns the stored keyword match report for a resume.
func (e *ResumeEndpoints) ATSHandler(w http.ResponseWriter, r *http.Request) {
	resume, ok := e.ownedResume(w, r)
	if !ok {
		return
	}

	if resume.ATSReport == nil {
		writeError(w, http.StatusNotFound, "no analysis available for this resume")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resume_id":  resume.ResumeID,
		"ats_report": resume.ATSReport,
	})
}

// ownedResume loads the path resume and enforces ownership. Writes the error
// response itself when the lookup fails.
func (e *ResumeEndpoints) ownedResume(w http.ResponseWriter, r *http.Request) (*models.Resume, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "identity not found in context")
		return nil, false
	}

	resumeID := chi.URLParam(r, "id")
	if resumeID == "" {
		writeError(w, http.StatusBadRequest, "resume ID is required")
		return nil, false
	}

	resume, err := e.repo.GetResume(r.Context(), resumeID)
	if err != nil {
		slog.Error("Failed to get resume", "error", err, "resume_id", resumeID)
		writeError(w, http.StatusInternalServerError, "failed to load resume")
		return nil, false
	}
	if resume == nil || resume.UserID != identity.UserID {
		writeError(w, http.StatusNotFound, "resume not found")
		return nil, false
	}
	return resume, true
}
