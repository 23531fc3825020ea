package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hirepath/backend/models"
)

// recentQuestionWindow bounds how many previous questions are fed back into
// generation. Bounding the context is a deliberate anti-repetition and
// anti-overflow measure.
const recentQuestionWindow = 3

// QuestionService produces interview questions, AI-generated when the
// gateway is up and template-pool driven when it is not. It never returns an
// empty question and never returns an error to its callers.
type QuestionService struct {
	gateway AIGateway
}

func NewQuestionService(gateway AIGateway) *QuestionService {
	return &QuestionService{gateway: gateway}
}

// NextTechnicalQuestion generates the next question for a technical session.
func (s *QuestionService) NextTechnicalQuestion(ctx context.Context, resume *models.Resume, difficulty string, previousQuestions []string) models.TechnicalQuestion {
	if s.gateway != nil && s.gateway.Available() {
		question, err := s.generateTechnicalQuestion(ctx, resume, difficulty, previousQuestions)
		if err == nil {
			return question
		}
		slog.Warn("Technical question generation failed, using fallback pool", "error", err)
	}

	return FallbackTechnicalQuestion(previousQuestions)
}

func (s *QuestionService) generateTechnicalQuestion(ctx context.Context, resume *models.Resume, difficulty string, previousQuestions []string) (models.TechnicalQuestion, error) {
	recent := lastN(previousQuestions, recentQuestionWindow)

	var prompt strings.Builder
	prompt.WriteString("You are a technical interviewer. Generate the next interview question for this candidate.\n\n")
	prompt.WriteString("RESUME:\n")
	prompt.WriteString(Truncate(resume.RawText, PromptCeiling))
	prompt.WriteString("\n\n")
	if resume.JobDescription != "" {
		prompt.WriteString("JOB DESCRIPTION:\n")
		prompt.WriteString(Truncate(resume.JobDescription, PromptCeiling))
		prompt.WriteString("\n\n")
	}
	fmt.Fprintf(&prompt, "DIFFICULTY: %s\n\n", difficulty)
	if len(recent) > 0 {
		prompt.WriteString("Do NOT repeat any of these previously asked questions:\n")
		for _, q := range recent {
			fmt.Fprintf(&prompt, "- %s\n", q)
		}
		prompt.WriteString("\n")
	}
	prompt.WriteString(`Return ONLY a JSON object with this exact structure:
{"question": "...", "category": "...", "difficulty": "easy|medium|hard", "expected_answer_points": ["...", "..."]}`)

	var question models.TechnicalQuestion
	if err := s.gateway.GenerateStructured(ctx, prompt.String(), &question); err != nil {
		return models.TechnicalQuestion{}, err
	}
	if question.Question == "" {
		return models.TechnicalQuestion{}, fmt.Errorf("generated question was empty: %w", ErrUpstreamUnavailable)
	}
	return question, nil
}

// FallbackTechnicalQuestion selects deterministically from the fixed pool:
// templates asked within the last three questions are skipped, and the index
// cycles by answered-count modulo pool size so a question is produced on
// every call, even after pool exhaustion.
func FallbackTechnicalQuestion(previousQuestions []string) models.TechnicalQuestion {
	recent := lastN(previousQuestions, recentQuestionWindow)

	candidates := make([]models.TechnicalQuestion, 0, len(technicalQuestionPool))
	for _, q := range technicalQuestionPool {
		if !containsString(recent, q.Question) {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		candidates = technicalQuestionPool
	}

	return candidates[len(previousQuestions)%len(candidates)]
}

// initialQuestionCount is the size of the question batch generated at upload
// time and stored on the resume row.
const initialQuestionCount = 5

// InitialTechnicalQuestions generates the question batch stored alongside a
// freshly uploaded resume. The batch gives the first session a head start;
// later questions are generated per turn.
func (s *QuestionService) InitialTechnicalQuestions(ctx context.Context, resumeText, jobRole string) []models.TechnicalQuestion {
	if s.gateway != nil && s.gateway.Available() {
		prompt := fmt.Sprintf(`You are a technical interviewer preparing for an interview with this candidate.

RESUME:
---
%s
---
TARGET ROLE: %s

Generate %d technical interview questions tailored to the candidate's background.
Return ONLY a JSON array with this exact structure:
[{"question": "...", "category": "...", "difficulty": "easy|medium|hard", "expected_answer_points": ["...", "..."]}]`,
			Truncate(resumeText, PromptCeiling), jobRole, initialQuestionCount)

		var questions []models.TechnicalQuestion
		if err := s.gateway.GenerateStructured(ctx, prompt, &questions); err == nil && len(questions) > 0 {
			if len(questions) > initialQuestionCount {
				questions = questions[:initialQuestionCount]
			}
			return questions
		} else if err != nil {
			slog.Warn("Initial question generation failed, using fallback pool", "error", err)
		}
	}

	return technicalQuestionPool[:initialQuestionCount]
}

// GenerateHRQuestionSet produces a resume-personalized HR question batch, or
// the fixed bank when the gateway is down.
func (s *QuestionService) GenerateHRQuestionSet(ctx context.Context, resumeText, jobDescription string) models.HRQuestionSet {
	if s.gateway == nil || !s.gateway.Available() {
		return fallbackHRQuestions
	}

	if jobDescription == "" {
		jobDescription = "General professional role"
	}

	prompt := fmt.Sprintf(`Analyze this resume and generate 8 personalized HR interview questions focusing on:
1. Self-introduction and background
2. Company knowledge and motivation
3. Career goals and aspirations
4. Behavioral and situational questions
5. Questions based on extracurricular activities, achievements, and positions of responsibility mentioned in resume

RESUME TEXT:
%s

JOB DESCRIPTION:
%s

Return ONLY a JSON object with this exact structure:
{
  "hr_questions": [
    {
      "question": "the question text",
      "category": "introduction|company_knowledge|career_goals|behavioral|achievements|extracurricular",
      "purpose": "brief explanation of what this question assesses",
      "difficulty": "easy|medium|hard",
      "hints": ["hint1", "hint2", "hint3", "hint4", "hint5"]
    }
  ],
  "focus_areas": ["area1", "area2", "area3"]
}

Make questions personalized based on the resume content. For example:
- If resume mentions leadership positions, ask about leadership experiences
- If resume shows achievements, ask about the journey to those achievements
- If resume has extracurricular activities, ask about transferable skills`,
		Truncate(resumeText, PromptCeiling), jobDescription)

	var set models.HRQuestionSet
	if err := s.gateway.GenerateStructured(ctx, prompt, &set); err != nil {
		slog.Warn("HR question generation failed, using fallback bank", "error", err)
		return fallbackHRQuestions
	}
	if len(set.HRQuestions) == 0 {
		slog.Warn("HR question generation returned an empty batch, using fallback bank")
		return fallbackHRQuestions
	}
	return set
}

// NextHRQuestion selects the next HR question: previously asked questions
// are filtered out, the always-relevant common bank takes over once the
// personalized batch is exhausted, and the index cycles modulo the remaining
// candidates.
func (s *QuestionService) NextHRQuestion(ctx context.Context, resume *models.Resume, previousQuestions []string) models.HRQuestion {
	var rawText, jobDescription string
	if resume != nil {
		rawText = resume.RawText
		jobDescription = resume.JobDescription
	}
	set := s.GenerateHRQuestionSet(ctx, rawText, jobDescription)

	available := make([]models.HRQuestion, 0, len(set.HRQuestions))
	for _, q := range set.HRQuestions {
		if !containsString(previousQuestions, q.Question) {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		available = commonHRQuestions
	}

	return available[len(previousQuestions)%len(available)]
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
