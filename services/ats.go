package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hirepath/backend/models"
)

// NoJobDescriptionSuggestion is the fixed suggestion stored when a resume is
// uploaded without a job description and the keyword scan is skipped.
const NoJobDescriptionSuggestion = "No job description was provided. Upload one to receive a keyword match analysis."

// ATSAnalyzer scores a resume against a job description. Every path returns
// a well-formed report; gateway failures degrade to a deterministic report
// of the same shape.
type ATSAnalyzer struct {
	gateway AIGateway
}

func NewATSAnalyzer(gateway AIGateway) *ATSAnalyzer {
	return &ATSAnalyzer{gateway: gateway}
}

// Analyze produces the ATS report. With no job description the scan is
// skipped entirely, not attempted: match_score stays null.
func (a *ATSAnalyzer) Analyze(ctx context.Context, resumeText, jobDescription string) *models.ATSReport {
	if jobDescription == "" {
		return &models.ATSReport{
			MatchScore:      nil,
			MissingKeywords: []string{},
			Suggestions:     []string{NoJobDescriptionSuggestion},
		}
	}

	if a.gateway == nil || !a.gateway.Available() {
		return unavailableATSReport()
	}

	prompt := fmt.Sprintf(`You are an expert ATS (Applicant Tracking System) and Career Coach.
Analyze the provided RESUME against the JOB DESCRIPTION.

RESUME:
---
%s
---

JOB DESCRIPTION:
---
%s
---

Provide a concise ATS report as a JSON object with this exact structure:
{"match_score": <integer 0-100>, "missing_keywords": ["..."], "suggestions": ["..."]}
1. 'match_score' is an integer (0-100) representing the match percentage.
2. 'missing_keywords' is a list of up to 5 critical keywords/skills from the job description missing or underrepresented in the resume.
3. 'suggestions' is a list of up to 5 actionable suggestions to improve the resume for this specific job, focusing on gaps and quantification.`,
		Truncate(resumeText, PromptCeiling), Truncate(jobDescription, PromptCeiling))

	var report models.ATSReport
	if err := a.gateway.GenerateStructured(ctx, prompt, &report); err != nil {
		slog.Warn("ATS analysis failed, returning unavailable report", "error", err)
		return unavailableATSReport()
	}

	if report.MatchScore != nil {
		clamped := clamp(*report.MatchScore, 0, 100)
		report.MatchScore = &clamped
	}
	if len(report.MissingKeywords) > 5 {
		report.MissingKeywords = report.MissingKeywords[:5]
	}
	if len(report.Suggestions) > 5 {
		report.Suggestions = report.Suggestions[:5]
	}
	return &report
}

// Profile extracts the structured skill/experience summary stored alongside
// the raw text. Returns nil on gateway failure; the column is optional.
func (a *ATSAnalyzer) Profile(ctx context.Context, resumeText string) *models.ResumeProfile {
	if a.gateway == nil || !a.gateway.Available() {
		return nil
	}

	prompt := fmt.Sprintf(`Extract a structured professional profile from this resume.

RESUME:
---
%s
---

Return ONLY a JSON object with this exact structure:
{"skills": ["..."], "experience_years": <integer>, "summary": "two-sentence professional summary"}`,
		Truncate(resumeText, PromptCeiling))

	var profile models.ResumeProfile
	if err := a.gateway.GenerateStructured(ctx, prompt, &profile); err != nil {
		slog.Warn("Resume profile extraction failed", "error", err)
		return nil
	}
	return &profile
}

func unavailableATSReport() *models.ATSReport {
	zero := 0
	return &models.ATSReport{
		MatchScore:      &zero,
		MissingKeywords: []string{"AI Service Unavailable"},
		Suggestions:     []string{"The analysis service is temporarily unavailable. Your resume was stored; request the report again later."},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
