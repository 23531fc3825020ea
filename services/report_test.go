package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hirepath/backend/models"
)

func message(role, content string, at time.Time) models.InterviewMessage {
	return models.InterviewMessage{
		MessageID: content,
		SessionID: "session-1",
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

func TestPairMessages(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(s int) time.Time { return base.Add(time.Duration(s) * time.Second) }

	tests := []struct {
		name     string
		messages []models.InterviewMessage
		want     [][2]string // question content, answer content
	}{
		{
			name: "simple alternation",
			messages: []models.InterviewMessage{
				message(models.RoleAI, "q1", at(0)),
				message(models.RoleUser, "a1", at(1)),
				message(models.RoleAI, "q2", at(2)),
				message(models.RoleUser, "a2", at(3)),
			},
			want: [][2]string{{"q1", "a1"}, {"q2", "a2"}},
		},
		{
			name: "trailing unanswered question dropped",
			messages: []models.InterviewMessage{
				message(models.RoleAI, "q1", at(0)),
				message(models.RoleUser, "a1", at(1)),
				message(models.RoleAI, "q2", at(2)),
			},
			want: [][2]string{{"q1", "a1"}},
		},
		{
			name: "surplus answer consumed by earlier question only",
			messages: []models.InterviewMessage{
				message(models.RoleAI, "q1", at(0)),
				message(models.RoleUser, "a1", at(1)),
				message(models.RoleUser, "a2", at(2)),
				message(models.RoleAI, "q2", at(3)),
				message(models.RoleUser, "a3", at(4)),
			},
			want: [][2]string{{"q1", "a1"}, {"q2", "a3"}},
		},
		{
			name: "equal timestamps never pair",
			messages: []models.InterviewMessage{
				message(models.RoleAI, "q1", at(0)),
				message(models.RoleUser, "a1", at(0)),
			},
			want: nil,
		},
		{
			name:     "no messages",
			messages: nil,
			want:     nil,
		},
		{
			name: "answers only",
			messages: []models.InterviewMessage{
				message(models.RoleUser, "a1", at(0)),
				message(models.RoleUser, "a2", at(1)),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := PairMessages(tt.messages)
			if len(pairs) != len(tt.want) {
				t.Fatalf("got %d pairs, want %d", len(pairs), len(tt.want))
			}
			for i, want := range tt.want {
				if pairs[i].Question.Content != want[0] || pairs[i].Answer.Content != want[1] {
					t.Errorf("pair %d = (%s, %s), want (%s, %s)",
						i, pairs[i].Question.Content, pairs[i].Answer.Content, want[0], want[1])
				}
			}
		})
	}
}

func TestFallbackOverallScore(t *testing.T) {
	tests := []struct {
		answered int
		want     int
	}{
		{1, 65},
		{2, 70},
		{4, 80},
		{5, 85},
		{6, 85},
		{20, 85},
	}

	for _, tt := range tests {
		if got := fallbackOverallScore(tt.answered); got != tt.want {
			t.Errorf("fallbackOverallScore(%d) = %d, want %d", tt.answered, got, tt.want)
		}
	}
}

func TestDeriveCategoryScores(t *testing.T) {
	scores := deriveCategoryScores(70, technicalCategories)
	want := []int{65, 70, 60, 75}
	for i, s := range scores {
		if s.Score != want[i] {
			t.Errorf("category %q score = %d, want %d", s.Category, s.Score, want[i])
		}
		if s.Category != technicalCategories[i] {
			t.Errorf("category %d = %q, want %q", i, s.Category, technicalCategories[i])
		}
	}

	// Offsets must never push a score out of range.
	high := deriveCategoryScores(98, hrCategories)
	for _, s := range high {
		if s.Score < 0 || s.Score > 100 {
			t.Errorf("category %q score %d out of range", s.Category, s.Score)
		}
	}
}

func TestSynthesizeRequiresAnswers(t *testing.T) {
	synth := NewReportSynthesizer(&stubGateway{})
	session := &models.InterviewSession{SessionID: "s1", SessionType: models.SessionTypeTechnical}

	base := time.Now()
	messages := []models.InterviewMessage{
		message(models.RoleAI, "q1", base),
		message(models.RoleAI, "q2", base.Add(time.Second)),
	}

	_, _, err := synth.Synthesize(context.Background(), session, messages)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Synthesize with no answered questions: err = %v, want ErrInvalidState", err)
	}
}

func TestSynthesizeTechnicalFallback(t *testing.T) {
	synth := NewReportSynthesizer(&stubGateway{available: false})
	session := &models.InterviewSession{SessionID: "s1", SessionType: models.SessionTypeTechnical}

	base := time.Now()
	messages := []models.InterviewMessage{
		message(models.RoleAI, "q1", base),
		message(models.RoleUser, "a1", base.Add(time.Second)),
		message(models.RoleAI, "q2", base.Add(2*time.Second)),
		message(models.RoleUser, "a2", base.Add(3*time.Second)),
	}

	score, raw, err := synth.Synthesize(context.Background(), session, messages)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if score != 70 {
		t.Errorf("two answered questions: score = %d, want 70", score)
	}

	var report models.TechnicalReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.OverallScore != 70 {
		t.Errorf("report overall_score = %d, want 70", report.OverallScore)
	}
	if len(report.CategoryScores) != 4 {
		t.Fatalf("got %d category scores, want 4", len(report.CategoryScores))
	}
	wantScores := []int{65, 70, 60, 75}
	for i, cs := range report.CategoryScores {
		if cs.Score != wantScores[i] {
			t.Errorf("category %q score = %d, want %d", cs.Category, cs.Score, wantScores[i])
		}
	}
	if report.Summary == "" {
		t.Error("fallback report missing summary")
	}
}

func TestSynthesizeHRFallbackFeedback(t *testing.T) {
	synth := NewReportSynthesizer(&stubGateway{available: false})
	session := &models.InterviewSession{SessionID: "s1", SessionType: models.SessionTypeHR}

	base := time.Now()
	messages := []models.InterviewMessage{
		message(models.RoleAI, "Tell me about a conflict with a coworker.", base),
		message(models.RoleUser, "a1", base.Add(time.Second)),
		message(models.RoleAI, "What are your strengths and weaknesses?", base.Add(2*time.Second)),
		message(models.RoleUser, "a2", base.Add(3*time.Second)),
	}

	score, raw, err := synth.Synthesize(context.Background(), session, messages)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if score != 70 {
		t.Errorf("score = %d, want 70", score)
	}

	var report models.HRReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(report.QuestionByQuestionFeedback) != 2 {
		t.Fatalf("got %d feedback entries, want 2", len(report.QuestionByQuestionFeedback))
	}

	first := report.QuestionByQuestionFeedback[0]
	if first.QuestionNumber != 1 {
		t.Errorf("question_number = %d, want 1", first.QuestionNumber)
	}
	if first.ExpectedAnswer == "" || first.ExpectedAnswer == genericRubric {
		t.Errorf("conflict question should match the conflict rubric, got %q", first.ExpectedAnswer)
	}
	if first.Score != 70 {
		t.Errorf("feedback score = %d, want overall 70", first.Score)
	}
}

func TestSynthesizeUsesAIReportWhenAvailable(t *testing.T) {
	aiReport := models.TechnicalReport{
		OverallScore: 92,
		CategoryScores: []models.CategoryScore{
			{Category: "Technical Knowledge", Score: 95},
			{Category: "Problem Solving", Score: 90},
			{Category: "Communication", Score: 88},
			{Category: "Best Practices", Score: 93},
		},
		Strengths:    []string{"Deep systems knowledge"},
		Improvements: []string{"Quantify outcomes"},
		Summary:      "Excellent performance.",
	}
	rawReport, _ := json.Marshal(aiReport)

	synth := NewReportSynthesizer(&stubGateway{available: true, response: string(rawReport)})
	session := &models.InterviewSession{SessionID: "s1", SessionType: models.SessionTypeTechnical}

	base := time.Now()
	messages := []models.InterviewMessage{
		message(models.RoleAI, "q1", base),
		message(models.RoleUser, "a1", base.Add(time.Second)),
	}

	score, raw, err := synth.Synthesize(context.Background(), session, messages)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if score != 92 {
		t.Errorf("score = %d, want the AI-graded 92", score)
	}

	var got models.TechnicalReport
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if got.Summary != "Excellent performance." {
		t.Errorf("summary = %q, want AI summary", got.Summary)
	}
}

func TestNormalizeHRReportCannedPhrase(t *testing.T) {
	report := &models.HRReport{
		OverallScore: 90,
		QuestionByQuestionFeedback: []models.QuestionFeedback{
			{QuestionNumber: 1, Score: 90, AreasToImprove: "model suggestion"},
			{QuestionNumber: 2, Score: 84, AreasToImprove: "tighten the story"},
			{QuestionNumber: 3, Score: 120, AreasToImprove: "anything"},
		},
	}

	normalizeHRReport(report, nil)

	if got := report.QuestionByQuestionFeedback[0].AreasToImprove; got != NoImprovementNeeded {
		t.Errorf("score 90 feedback = %q, want the fixed phrase", got)
	}
	if got := report.QuestionByQuestionFeedback[1].AreasToImprove; got != "tighten the story" {
		t.Errorf("score 84 feedback overwritten: %q", got)
	}
	if report.QuestionByQuestionFeedback[2].Score != 100 {
		t.Errorf("score not clamped: %d", report.QuestionByQuestionFeedback[2].Score)
	}
	if got := report.QuestionByQuestionFeedback[2].AreasToImprove; got != NoImprovementNeeded {
		t.Errorf("clamped score 100 feedback = %q, want the fixed phrase", got)
	}
}
