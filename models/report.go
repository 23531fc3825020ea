package models

// ATSReport is the keyword-match analysis of a resume against a job
// description. MatchScore is null when no job description was provided and
// the scan was skipped.
type ATSReport struct {
	MatchScore      *int     `json:"match_score"`
	MissingKeywords []string `json:"missing_keywords"`
	Suggestions     []string `json:"suggestions"`
}

// ResumeProfile is the structured skill/experience summary extracted from a
// resume at upload time.
type ResumeProfile struct {
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	Summary         string   `json:"summary"`
}

// TechnicalQuestion is a single generated interview question with its
// grading guidance.
type TechnicalQuestion struct {
	Question             string   `json:"question"`
	Category             string   `json:"category"`
	Difficulty           string   `json:"difficulty"`
	ExpectedAnswerPoints []string `json:"expected_answer_points"`
}

// HRQuestion is one entry of an HR question batch.
type HRQuestion struct {
	Question   string   `json:"question"`
	Category   string   `json:"category"`
	Purpose    string   `json:"purpose"`
	Difficulty string   `json:"difficulty"`
	Hints      []string `json:"hints,omitempty"`
}

// HRQuestionSet is the batch response shape for HR question generation.
type HRQuestionSet struct {
	HRQuestions []HRQuestion `json:"hr_questions"`
	FocusAreas  []string     `json:"focus_areas"`
}

// CategoryScore is one per-category sub-score of an interview report.
type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// TechnicalReport is the end-of-session report for the technical track.
type TechnicalReport struct {
	OverallScore   int             `json:"overall_score"`
	CategoryScores []CategoryScore `json:"category_scores"`
	Strengths      []string        `json:"strengths"`
	Improvements   []string        `json:"improvements"`
	Summary        string          `json:"summary"`
}

// QuestionFeedback is the per-question breakdown of an HR report.
type QuestionFeedback struct {
	QuestionNumber       int    `json:"question_number"`
	Question             string `json:"question"`
	UserAnswer           string `json:"user_answer"`
	ExpectedAnswer       string `json:"expected_answer"`
	Score                int    `json:"score"`
	WhatWentWell         string `json:"what_went_well"`
	AreasToImprove       string `json:"areas_to_improve"`
	BetterAnswerApproach string `json:"better_answer_approach"`
}

// HRReport is the end-of-session report for the HR track. It extends the
// technical shape with a per-question feedback breakdown.
type HRReport struct {
	OverallScore               int                `json:"overall_score"`
	CategoryScores             []CategoryScore    `json:"category_scores"`
	Strengths                  []string           `json:"strengths"`
	Weaknesses                 []string           `json:"weaknesses"`
	Improvements               []string           `json:"improvements"`
	PersonalizedFeedback       string             `json:"personalized_feedback"`
	Recommendations            []string           `json:"recommendations"`
	Summary                    string             `json:"summary"`
	QuestionByQuestionFeedback []QuestionFeedback `json:"question_by_question_feedback"`
}

// AnswerEvaluation is the fixed heuristic evaluation returned when an answer
// is submitted. No AI call is made on the submit path; semantic grading
// happens once at report time.
type AnswerEvaluation struct {
	RelevanceScore     int      `json:"relevance_score"`
	CommunicationScore int      `json:"communication_score"`
	KeyStrengths       []string `json:"key_strengths"`
	ImprovementAreas   []string `json:"improvement_areas"`
	OverallFeedback    string   `json:"overall_feedback"`
}
