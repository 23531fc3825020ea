package services

import (
	"context"
	"errors"
	"testing"
)

func TestAnalyzeWithoutJobDescription(t *testing.T) {
	// With no job description the scan is skipped, not attempted: no
	// gateway call, null match score, the fixed suggestion.
	gateway := &stubGateway{available: true}
	analyzer := NewATSAnalyzer(gateway)

	report := analyzer.Analyze(context.Background(), "resume text", "")

	if report.MatchScore != nil {
		t.Errorf("match_score = %d, want null", *report.MatchScore)
	}
	if len(report.MissingKeywords) != 0 {
		t.Errorf("missing_keywords = %v, want empty", report.MissingKeywords)
	}
	if len(report.Suggestions) != 1 || report.Suggestions[0] != NoJobDescriptionSuggestion {
		t.Errorf("suggestions = %v, want the fixed no-JD suggestion", report.Suggestions)
	}
	if len(gateway.prompts) != 0 {
		t.Errorf("gateway called %d times for a skipped scan", len(gateway.prompts))
	}
}

func TestAnalyzeGatewayDown(t *testing.T) {
	analyzer := NewATSAnalyzer(&stubGateway{available: false})

	report := analyzer.Analyze(context.Background(), "resume text", "job description")

	if report.MatchScore == nil || *report.MatchScore != 0 {
		t.Errorf("unavailable report match_score = %v, want 0", report.MatchScore)
	}
	if len(report.MissingKeywords) == 0 {
		t.Error("unavailable report should carry the service-unavailable marker")
	}
	if len(report.Suggestions) == 0 {
		t.Error("unavailable report should carry a retry suggestion")
	}
}

func TestAnalyzeGatewayFailure(t *testing.T) {
	analyzer := NewATSAnalyzer(&stubGateway{
		available: true,
		err:       errors.New("model overloaded"),
	})

	report := analyzer.Analyze(context.Background(), "resume text", "job description")
	if report.MatchScore == nil || *report.MatchScore != 0 {
		t.Errorf("failed scan match_score = %v, want the unavailable report", report.MatchScore)
	}
}

func TestAnalyzeClampsAndCaps(t *testing.T) {
	analyzer := NewATSAnalyzer(&stubGateway{
		available: true,
		response: `{
			"match_score": 140,
			"missing_keywords": ["k1","k2","k3","k4","k5","k6","k7"],
			"suggestions": ["s1","s2","s3","s4","s5","s6"]
		}`,
	})

	report := analyzer.Analyze(context.Background(), "resume text", "job description")

	if report.MatchScore == nil || *report.MatchScore != 100 {
		t.Errorf("match_score = %v, want clamped to 100", report.MatchScore)
	}
	if len(report.MissingKeywords) != 5 {
		t.Errorf("missing_keywords length = %d, want capped at 5", len(report.MissingKeywords))
	}
	if len(report.Suggestions) != 5 {
		t.Errorf("suggestions length = %d, want capped at 5", len(report.Suggestions))
	}
}

func TestProfileGatewayDown(t *testing.T) {
	analyzer := NewATSAnalyzer(&stubGateway{available: false})
	if profile := analyzer.Profile(context.Background(), "resume text"); profile != nil {
		t.Errorf("profile = %+v, want nil when the gateway is down", profile)
	}
}

func TestProfileParsesResponse(t *testing.T) {
	analyzer := NewATSAnalyzer(&stubGateway{
		available: true,
		response:  `{"skills": ["Go", "Postgres"], "experience_years": 5, "summary": "Seasoned backend engineer."}`,
	})

	profile := analyzer.Profile(context.Background(), "resume text")
	if profile == nil {
		t.Fatal("expected a profile")
	}
	if len(profile.Skills) != 2 || profile.ExperienceYears != 5 {
		t.Errorf("profile = %+v, want parsed skills and years", profile)
	}
}
