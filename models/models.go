package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User from user.go
// - Resume from resume.go
// - InterviewSession, InterviewMessage from interview.go
// - ATSReport, TechnicalReport, HRReport and related shapes from report.go

// Database schema overview:
// 1. users - Keyed by the opaque identity issued by the external auth provider
// 2. resumes - One row per upload; raw text plus AI analysis columns filled once
// 3. interview_sessions - One interview attempt (technical or HR track)
// 4. interview_messages - Append-only, timestamp-ordered question/answer log
