package ai

import (
	"context"
	"errors"
)

// ErrInvocation marks a failed or malformed language model invocation.
// Callers abort the pipeline without a write-back when they see it.
var ErrInvocation = errors.New("agent invocation failed")

// JobPosting is the job side of a grading request.
type JobPosting struct {
	Name        string
	Description string
}

// CandidateProfile is the applicant side of a grading request.
type CandidateProfile struct {
	Name       string
	ResumeText string
}

// Assessment is the structured result of a single grading call. Subscores are
// on a 1-100 scale; Score is their average unless the model supplied an
// explicit overall score.
type Assessment struct {
	Score               float64
	TechnicalExpertise  float64
	PracticalExperience float64
	JobAlignment        float64
	Summary             string
	Tags                []string
	Raw                 string
}

// Grader produces an assessment of a candidate against a job posting with a
// single model call. Implementations must be safe for concurrent use.
type Grader interface {
	Grade(ctx context.Context, job *JobPosting, candidate *CandidateProfile) (*Assessment, error)
}
