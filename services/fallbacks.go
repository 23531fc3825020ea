package services

import (
	"strings"

	"github.com/hirepath/backend/models"
)

// Static fallback content used whenever the AI gateway is unavailable. These
// are versioned lookup tables: extend the data, not the dispatch logic.

// NoImprovementNeeded is the fixed phrase used as areas_to_improve for any
// per-question score of 85 or above. Near-perfect answers get positive
// reinforcement, not manufactured criticism.
const NoImprovementNeeded = "No improvement needed - this was an excellent answer!"

// technicalQuestionPool is the deterministic question source for the
// technical track. Selection cycles by answered-count modulo pool size, so a
// question is always available even after pool exhaustion.
var technicalQuestionPool = []models.TechnicalQuestion{
	{
		Question:   "Can you walk me through a recent project you worked on and the technical decisions you made?",
		Category:   "experience",
		Difficulty: "medium",
		ExpectedAnswerPoints: []string{
			"Clear description of the project goal",
			"Specific technical choices and their trade-offs",
			"Candidate's own contribution",
		},
	},
	{
		Question:   "How do you approach debugging a problem you have never seen before?",
		Category:   "problem_solving",
		Difficulty: "medium",
		ExpectedAnswerPoints: []string{
			"Systematic narrowing of the search space",
			"Use of logs, debuggers or bisection",
			"Knowing when to ask for help",
		},
	},
	{
		Question:   "Explain the difference between a process and a thread.",
		Category:   "fundamentals",
		Difficulty: "easy",
		ExpectedAnswerPoints: []string{
			"Separate address space vs shared memory",
			"Cost of context switching",
			"When to prefer one over the other",
		},
	},
	{
		Question:   "How would you design a system that needs to handle a sudden ten-fold increase in traffic?",
		Category:   "system_design",
		Difficulty: "hard",
		ExpectedAnswerPoints: []string{
			"Identifying the bottleneck first",
			"Horizontal scaling and statelessness",
			"Caching and load shedding",
		},
	},
	{
		Question:   "What trade-offs do you consider when choosing between a relational and a document database?",
		Category:   "data",
		Difficulty: "medium",
		ExpectedAnswerPoints: []string{
			"Schema flexibility vs integrity guarantees",
			"Query patterns and joins",
			"Consistency and transaction needs",
		},
	},
	{
		Question:   "Describe how you ensure the quality of code you ship.",
		Category:   "best_practices",
		Difficulty: "easy",
		ExpectedAnswerPoints: []string{
			"Testing strategy",
			"Code review habits",
			"Monitoring after release",
		},
	},
	{
		Question:   "Tell me about a time a technical decision you made turned out to be wrong. What did you do?",
		Category:   "experience",
		Difficulty: "hard",
		ExpectedAnswerPoints: []string{
			"Honest account of the mistake",
			"How it was detected and corrected",
			"What changed in their process afterwards",
		},
	},
	{
		Question:   "How do you keep your technical skills current?",
		Category:   "growth",
		Difficulty: "easy",
		ExpectedAnswerPoints: []string{
			"Concrete learning habits",
			"Recent example of something learned",
			"Applying new knowledge at work",
		},
	},
}

// fallbackHRQuestions is the HR question bank used when personalized
// generation is unavailable.
var fallbackHRQuestions = models.HRQuestionSet{
	HRQuestions: []models.HRQuestion{
		{
			Question:   "Can you walk me through your resume and highlight key experiences that make you a good fit for this role?",
			Category:   "introduction",
			Purpose:    "Assess communication skills and self-awareness",
			Difficulty: "medium",
			Hints: []string{
				"Start with your most recent experience",
				"Connect each experience to the role",
				"Keep it under three minutes",
				"Highlight measurable outcomes",
				"End with why this role is the logical next step",
			},
		},
		{
			Question:   "What do you know about our company and why do you want to work here?",
			Category:   "company_knowledge",
			Purpose:    "Evaluate research skills and genuine interest",
			Difficulty: "medium",
			Hints: []string{
				"Mention the company's product or mission",
				"Reference something recent about the company",
				"Tie your values to the company's",
				"Avoid generic praise",
				"Explain what you would contribute",
			},
		},
		{
			Question:   "Where do you see yourself in the next 5 years?",
			Category:   "career_goals",
			Purpose:    "Understand long-term career aspirations",
			Difficulty: "easy",
			Hints: []string{
				"Show ambition grounded in this role",
				"Mention skills you want to develop",
				"Avoid naming a specific job title",
				"Connect growth to the company's growth",
				"Be honest about what motivates you",
			},
		},
		{
			Question:   "Tell me about a time you faced a significant challenge and how you overcame it.",
			Category:   "behavioral",
			Purpose:    "Assess problem-solving and resilience",
			Difficulty: "medium",
			Hints: []string{
				"Use the STAR structure",
				"Pick a genuinely difficult situation",
				"Focus on your own actions",
				"Quantify the result",
				"Mention what you learned",
			},
		},
		{
			Question:   "What achievement are you most proud of and why?",
			Category:   "achievements",
			Purpose:    "Understand values and motivation drivers",
			Difficulty: "medium",
			Hints: []string{
				"Pick something with visible impact",
				"Explain the obstacles involved",
				"Credit the team where due",
				"Explain why it matters to you",
				"Keep the story concise",
			},
		},
		{
			Question:   "How do your extracurricular activities contribute to your professional development?",
			Category:   "extracurricular",
			Purpose:    "Assess transferable skills and work-life balance",
			Difficulty: "medium",
			Hints: []string{
				"Name specific transferable skills",
				"Give a concrete example",
				"Connect the activity to teamwork or discipline",
				"Avoid listing activities without reflection",
				"Show sustained commitment",
			},
		},
		{
			Question:   "Describe a situation where you had to take leadership responsibility. What did you learn?",
			Category:   "behavioral",
			Purpose:    "Evaluate leadership potential and learning ability",
			Difficulty: "hard",
			Hints: []string{
				"Leadership does not require a title",
				"Describe how you motivated others",
				"Mention a difficult decision you made",
				"Be honest about what went wrong",
				"State the lesson explicitly",
			},
		},
		{
			Question:   "What motivates you to perform at your best?",
			Category:   "behavioral",
			Purpose:    "Understand intrinsic motivation factors",
			Difficulty: "easy",
			Hints: []string{
				"Be specific, not generic",
				"Link motivation to past performance",
				"Mention both intrinsic and extrinsic factors",
				"Relate it to the role on offer",
				"Give a short example",
			},
		},
	},
	FocusAreas: []string{"Communication", "Motivation", "Career Goals", "Leadership", "Achievements"},
}

// commonHRQuestions are always-relevant questions used once the personalized
// bank is exhausted.
var commonHRQuestions = []models.HRQuestion{
	{
		Question:   "Tell me about yourself.",
		Category:   "introduction",
		Purpose:    "Ice breaker and overview of candidate",
		Difficulty: "easy",
	},
	{
		Question:   "Why should we hire you?",
		Category:   "self_promotion",
		Purpose:    "Assess self-awareness and value proposition",
		Difficulty: "medium",
	},
	{
		Question:   "What are your strengths and weaknesses?",
		Category:   "self_awareness",
		Purpose:    "Evaluate self-assessment and honesty",
		Difficulty: "medium",
	},
	{
		Question:   "How do you handle pressure and tight deadlines?",
		Category:   "behavioral",
		Purpose:    "Assess stress management skills",
		Difficulty: "medium",
	},
	{
		Question:   "What are your salary expectations?",
		Category:   "compensation",
		Purpose:    "Understand compensation alignment",
		Difficulty: "hard",
	},
}

// genericFeedbackTemplates feed the fallback report's per-question feedback
// by round-robin selection, so adjacent questions don't repeat verbatim.
var genericFeedbackTemplates = []struct {
	WhatWentWell         string
	AreasToImprove       string
	BetterAnswerApproach string
}{
	{
		WhatWentWell:         "You engaged with the question and gave a complete answer.",
		AreasToImprove:       "Add more structure so each part of the answer builds on the last.",
		BetterAnswerApproach: "Structure the answer with the STAR method (Situation, Task, Action, Result) and finish with the outcome.",
	},
	{
		WhatWentWell:         "You stayed on topic and communicated clearly.",
		AreasToImprove:       "Back up claims with one specific, verifiable example.",
		BetterAnswerApproach: "Add one concrete example with numbers or measurable results to make the answer memorable.",
	},
	{
		WhatWentWell:         "You showed self-awareness in your response.",
		AreasToImprove:       "Trim the build-up; interviewers remember the first thirty seconds.",
		BetterAnswerApproach: "Open with your main point first, then support it, rather than building up to it.",
	},
	{
		WhatWentWell:         "You gave an honest, grounded answer.",
		AreasToImprove:       "Tie the experience back to the role so its relevance is explicit.",
		BetterAnswerApproach: "Close the answer by connecting your experience back to the role you are interviewing for.",
	},
}

// answerRubric maps a category-indicating keyword set to a reconstructed
// ideal-answer rubric. The list is priority-ordered; the first set with any
// keyword present in the question text wins.
type answerRubric struct {
	Keywords       []string
	ExpectedAnswer string
}

var answerRubrics = []answerRubric{
	{
		Keywords: []string{"conflict", "disagree"},
		ExpectedAnswer: "A strong answer describes a real disagreement, shows you listened to the other side, " +
			"explains how you found common ground, and ends with the working relationship intact or improved.",
	},
	{
		Keywords: []string{"strength", "weakness"},
		ExpectedAnswer: "A strong answer names genuine strengths backed by evidence, admits a real (non-fatal) weakness, " +
			"and shows concrete steps you are taking to improve it.",
	},
	{
		Keywords: []string{"leadership", "lead", "responsibility"},
		ExpectedAnswer: "A strong answer shows initiative taken without being asked, how you brought others along, " +
			"a difficult call you owned, and what the experience taught you about leading people.",
	},
	{
		Keywords: []string{"challenge", "overcame", "difficult"},
		ExpectedAnswer: "A strong answer picks a genuinely hard situation, walks through your reasoning under pressure, " +
			"names the concrete actions you took, and quantifies the result.",
	},
}

// genericRubric is the default when no keyword set matches.
const genericRubric = "A strong answer is specific rather than abstract: one real situation, the actions you " +
	"personally took, and the measurable result, told in under two minutes."

// RubricFor returns the reconstructed ideal-answer rubric for a question by
// keyword dispatch. First match wins.
func RubricFor(question string) string {
	lower := strings.ToLower(question)
	for _, rubric := range answerRubrics {
		for _, kw := range rubric.Keywords {
			if strings.Contains(lower, kw) {
				return rubric.ExpectedAnswer
			}
		}
	}
	return genericRubric
}

// StubAnswerEvaluation is the fixed heuristic returned on answer submission.
// No AI call happens on this path; the scores are intentionally fixed-ish to
// keep submits low-latency.
func StubAnswerEvaluation() models.AnswerEvaluation {
	return models.AnswerEvaluation{
		RelevanceScore:     75,
		CommunicationScore: 70,
		KeyStrengths:       []string{"Answer provided", "Relevant to question"},
		ImprovementAreas:   []string{"Could be more detailed", "Add specific examples"},
		OverallFeedback:    "Good attempt. Try to provide more specific examples using the STAR method (Situation, Task, Action, Result).",
	}
}
