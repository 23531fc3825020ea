package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hirepath/backend/models"
)

// Fixed per-category offsets applied to the fallback overall score, in
// category-list order.
var categoryOffsets = [4]int{-5, 0, -10, 5}

// Fixed category lists per interview track.
var (
	technicalCategories = [4]string{"Technical Knowledge", "Problem Solving", "Communication", "Best Practices"}
	hrCategories        = [4]string{"Communication", "Confidence", "Behavioral Fit", "Career Clarity"}
)

// QAPair is one reconstructed question/answer correspondence.
type QAPair struct {
	Question models.InterviewMessage
	Answer   models.InterviewMessage
}

// PairMessages reconstructs question/answer pairs from the append-only log.
// Messages are walked in timestamp order; each ai message is paired with the
// next not-yet-consumed user message carrying a strictly later timestamp. An
// answer consumes at most one question and vice versa, so a surplus answer
// logged without an intervening question is skipped. Trailing unanswered
// questions are dropped from the report, not scored as zero.
func PairMessages(messages []models.InterviewMessage) []QAPair {
	consumed := make([]bool, len(messages))
	var pairs []QAPair

	for i, msg := range messages {
		if msg.Role != models.RoleAI {
			continue
		}
		for j := i + 1; j < len(messages); j++ {
			candidate := messages[j]
			if consumed[j] || candidate.Role != models.RoleUser {
				continue
			}
			if !candidate.Timestamp.After(msg.Timestamp) {
				continue
			}
			consumed[j] = true
			pairs = append(pairs, QAPair{Question: msg, Answer: candidate})
			break
		}
	}

	return pairs
}

// ReportSynthesizer turns a completed session's message log into the final
// report. It never writes to storage; the state machine persists its output.
type ReportSynthesizer struct {
	gateway AIGateway
}

func NewReportSynthesizer(gateway AIGateway) *ReportSynthesizer {
	return &ReportSynthesizer{gateway: gateway}
}

// Synthesize produces the final score and the serialized report for a
// session. Fails with ErrInvalidState when no question has been answered;
// AI gateway failure is absorbed into the deterministic fallback report.
func (r *ReportSynthesizer) Synthesize(ctx context.Context, session *models.InterviewSession, messages []models.InterviewMessage) (int, string, error) {
	pairs := PairMessages(messages)
	if len(pairs) == 0 {
		return 0, "", fmt.Errorf("no answers to report on: %w", ErrInvalidState)
	}

	if session.SessionType == models.SessionTypeHR {
		report := r.synthesizeHR(ctx, session, pairs)
		raw, err := json.Marshal(report)
		if err != nil {
			return 0, "", fmt.Errorf("failed to serialize report: %w", err)
		}
		return report.OverallScore, string(raw), nil
	}

	report := r.synthesizeTechnical(ctx, session, pairs)
	raw, err := json.Marshal(report)
	if err != nil {
		return 0, "", fmt.Errorf("failed to serialize report: %w", err)
	}
	return report.OverallScore, string(raw), nil
}

func (r *ReportSynthesizer) synthesizeTechnical(ctx context.Context, session *models.InterviewSession, pairs []QAPair) *models.TechnicalReport {
	if r.gateway != nil && r.gateway.Available() {
		prompt := r.buildTechnicalPrompt(session, pairs)
		var report models.TechnicalReport
		if err := r.gateway.GenerateStructured(ctx, prompt, &report); err == nil {
			normalizeTechnicalReport(&report)
			return &report
		} else {
			slog.Warn("Technical report generation failed, using fallback scoring", "error", err, "session_id", session.SessionID)
		}
	}

	return fallbackTechnicalReport(pairs)
}

func (r *ReportSynthesizer) synthesizeHR(ctx context.Context, session *models.InterviewSession, pairs []QAPair) *models.HRReport {
	if r.gateway != nil && r.gateway.Available() {
		prompt := r.buildHRPrompt(session, pairs)
		var report models.HRReport
		if err := r.gateway.GenerateStructured(ctx, prompt, &report); err == nil {
			normalizeHRReport(&report, pairs)
			return &report
		} else {
			slog.Warn("HR report generation failed, using fallback scoring", "error", err, "session_id", session.SessionID)
		}
	}

	return fallbackHRReport(pairs)
}

func (r *ReportSynthesizer) buildTechnicalPrompt(session *models.InterviewSession, pairs []QAPair) string {
	var prompt strings.Builder
	prompt.WriteString("You are an expert technical interviewer. Evaluate this interview transcript and produce a report.\n\n")
	fmt.Fprintf(&prompt, "DIFFICULTY: %s\n\nTRANSCRIPT:\n%s\n", session.Difficulty, buildTranscript(pairs))
	fmt.Fprintf(&prompt, `Return ONLY a JSON object with this exact structure:
{
  "overall_score": <integer 0-100>,
  "category_scores": [
    {"category": "%s", "score": <0-100>},
    {"category": "%s", "score": <0-100>},
    {"category": "%s", "score": <0-100>},
    {"category": "%s", "score": <0-100>}
  ],
  "strengths": ["..."],
  "improvements": ["..."],
  "summary": "a personalized narrative summary of the candidate's performance"
}`,
		technicalCategories[0], technicalCategories[1], technicalCategories[2], technicalCategories[3])
	return prompt.String()
}

func (r *ReportSynthesizer) buildHRPrompt(session *models.InterviewSession, pairs []QAPair) string {
	var prompt strings.Builder
	prompt.WriteString("You are a senior HR interviewer. Evaluate this HR interview transcript and produce a detailed report.\n\n")
	fmt.Fprintf(&prompt, "TRANSCRIPT:\n%s\n", buildTranscript(pairs))
	fmt.Fprintf(&prompt, `Return ONLY a JSON object with this exact structure:
{
  "overall_score": <integer 0-100>,
  "category_scores": [
    {"category": "%s", "score": <0-100>},
    {"category": "%s", "score": <0-100>},
    {"category": "%s", "score": <0-100>},
    {"category": "%s", "score": <0-100>}
  ],
  "strengths": ["..."],
  "weaknesses": ["..."],
  "improvements": ["..."],
  "personalized_feedback": "direct feedback addressed to the candidate",
  "recommendations": ["..."],
  "summary": "a narrative summary of the interview",
  "question_by_question_feedback": [
    {
      "question_number": <1-based index>,
      "question": "the question asked",
      "user_answer": "the answer given",
      "expected_answer": "what an ideal answer covers",
      "score": <0-100>,
      "what_went_well": "...",
      "areas_to_improve": "...",
      "better_answer_approach": "..."
    }
  ]
}`,
		hrCategories[0], hrCategories[1], hrCategories[2], hrCategories[3])
	return prompt.String()
}

func buildTranscript(pairs []QAPair) string {
	var transcript strings.Builder
	for i, pair := range pairs {
		fmt.Fprintf(&transcript, "Q%d: %s\nA%d: %s\n\n", i+1, pair.Question.Content, i+1, pair.Answer.Content)
	}
	return transcript.String()
}

// fallbackOverallScore is the deterministic score used when no semantic
// grading is available: monotonically increasing in answered questions,
// capped at 85, rewarding completion over correctness.
func fallbackOverallScore(answeredQuestions int) int {
	score := 60 + 5*answeredQuestions
	if score > 85 {
		score = 85
	}
	return score
}

// deriveCategoryScores applies the fixed offsets to an overall score.
func deriveCategoryScores(overall int, categories [4]string) []models.CategoryScore {
	scores := make([]models.CategoryScore, len(categories))
	for i, category := range categories {
		scores[i] = models.CategoryScore{
			Category: category,
			Score:    clamp(overall+categoryOffsets[i], 0, 100),
		}
	}
	return scores
}

func fallbackTechnicalReport(pairs []QAPair) *models.TechnicalReport {
	overall := fallbackOverallScore(len(pairs))
	return &models.TechnicalReport{
		OverallScore:   overall,
		CategoryScores: deriveCategoryScores(overall, technicalCategories),
		Strengths: []string{
			"Completed the interview and answered every question asked",
			"Stayed engaged through the full session",
		},
		Improvements: []string{
			"Practice explaining technical decisions out loud",
			"Prepare concrete examples with measurable outcomes",
		},
		Summary: fmt.Sprintf(
			"You answered %d question(s) in this session. Detailed semantic grading was unavailable, so this report rewards completion: keep practicing and request a fresh report when analysis is back online.",
			len(pairs)),
	}
}

func fallbackHRReport(pairs []QAPair) *models.HRReport {
	overall := fallbackOverallScore(len(pairs))

	feedback := make([]models.QuestionFeedback, len(pairs))
	for i, pair := range pairs {
		template := genericFeedbackTemplates[i%len(genericFeedbackTemplates)]
		feedback[i] = models.QuestionFeedback{
			QuestionNumber:       i + 1,
			Question:             pair.Question.Content,
			UserAnswer:           pair.Answer.Content,
			ExpectedAnswer:       RubricFor(pair.Question.Content),
			Score:                overall,
			WhatWentWell:         template.WhatWentWell,
			AreasToImprove:       template.AreasToImprove,
			BetterAnswerApproach: template.BetterAnswerApproach,
		}
	}

	report := &models.HRReport{
		OverallScore:   overall,
		CategoryScores: deriveCategoryScores(overall, hrCategories),
		Strengths: []string{
			"Completed the interview and answered every question asked",
			"Maintained engagement throughout the session",
		},
		Weaknesses: []string{
			"Unable to assess answer depth without semantic grading",
		},
		Improvements: []string{
			"Structure answers with the STAR method",
			"Prepare two or three reusable stories with measurable results",
		},
		PersonalizedFeedback: fmt.Sprintf(
			"You completed %d question(s). This score reflects participation; redo the session when AI grading is available for feedback on answer content.",
			len(pairs)),
		Recommendations: []string{
			"Record yourself answering common questions and review the recordings",
			"Research the company before the real interview",
		},
		Summary: fmt.Sprintf("Session completed with %d answered question(s).", len(pairs)),
		QuestionByQuestionFeedback: feedback,
	}
	normalizeHRReport(report, pairs)
	return report
}

func normalizeTechnicalReport(report *models.TechnicalReport) {
	report.OverallScore = clamp(report.OverallScore, 0, 100)
	if len(report.CategoryScores) == 0 {
		report.CategoryScores = deriveCategoryScores(report.OverallScore, technicalCategories)
		return
	}
	for i := range report.CategoryScores {
		report.CategoryScores[i].Score = clamp(report.CategoryScores[i].Score, 0, 100)
	}
}

// normalizeHRReport clamps scores and applies the fixed positive-reinforcement
// phrase to near-perfect answers on both the AI and fallback paths.
func normalizeHRReport(report *models.HRReport, pairs []QAPair) {
	report.OverallScore = clamp(report.OverallScore, 0, 100)
	if len(report.CategoryScores) == 0 {
		report.CategoryScores = deriveCategoryScores(report.OverallScore, hrCategories)
	} else {
		for i := range report.CategoryScores {
			report.CategoryScores[i].Score = clamp(report.CategoryScores[i].Score, 0, 100)
		}
	}

	for i := range report.QuestionByQuestionFeedback {
		fb := &report.QuestionByQuestionFeedback[i]
		fb.Score = clamp(fb.Score, 0, 100)
		if fb.Score >= 85 {
			fb.AreasToImprove = NoImprovementNeeded
		}
	}
}
