// Package pipeline runs the straight-line analysis for a single application:
// fetch detail from Ashby, extract the resume text, grade the candidate and
// write the grade back into the custom field.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/senank/ashby-screener/internal/ai"
	"github.com/senank/ashby-screener/internal/ashby"
	"github.com/senank/ashby-screener/internal/extract"
	"go.uber.org/zap"
)

// ATS is the slice of the Ashby client the pipeline needs.
type ATS interface {
	GetApplication(ctx context.Context, applicationID string) (*ashby.Application, error)
	GetCandidate(ctx context.Context, candidateID string) (*ashby.Candidate, error)
	GetJob(ctx context.Context, jobID string) (*ashby.Job, error)
	DownloadResume(ctx context.Context, handle *ashby.FileHandle) (*ashby.ResumeFile, error)
	SetApplicationField(ctx context.Context, applicationID, fieldID string, value any) error
}

// ProfileValidator gates technical candidates on their public GitHub
// footprint before spending a model call on them.
type ProfileValidator interface {
	Validate(ctx context.Context, username string) (bool, string, error)
}

// Result summarizes a completed run, including the value written back.
type Result struct {
	ApplicationID string
	CandidateName string
	JobTitle      string
	Assessment    *ai.Assessment
	FieldValue    string
}

type Runner struct {
	ats       ATS
	grader    ai.Grader
	validator ProfileValidator
	fieldID   string
	logger    *zap.Logger
}

// New creates a pipeline runner. The validator is optional; passing nil
// disables the GitHub gate.
func New(ats ATS, grader ai.Grader, validator ProfileValidator, fieldID string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		ats:       ats,
		grader:    grader,
		validator: validator,
		fieldID:   fieldID,
		logger:    logger,
	}
}

// Process runs the full pipeline for one application. Exactly one custom
// field write happens on success; any earlier failure aborts with no write.
// Re-running with the same application overwrites the same field.
func (r *Runner) Process(ctx context.Context, applicationID string) (*Result, error) {
	logger := r.logger.With(zap.String("application_id", applicationID))

	app, err := r.ats.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("fetch application: %w", err)
	}

	if app.Candidate == nil || strings.TrimSpace(app.Candidate.ID) == "" {
		return nil, fmt.Errorf("application %s has no candidate", applicationID)
	}
	if app.Job == nil || strings.TrimSpace(app.Job.ID) == "" {
		return nil, fmt.Errorf("application %s has no job", applicationID)
	}

	candidate, err := r.ats.GetCandidate(ctx, app.Candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate: %w", err)
	}

	job, err := r.ats.GetJob(ctx, app.Job.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch job: %w", err)
	}

	logger.Info("processing application",
		zap.String("candidate", candidate.Name),
		zap.String("job", job.Title),
	)

	if assessment := r.gateOnProfile(ctx, logger, candidate); assessment != nil {
		return r.writeBack(ctx, logger, app, candidate, job, assessment)
	}

	resume, err := r.ats.DownloadResume(ctx, candidate.ResumeFileHandle)
	if err != nil {
		return nil, fmt.Errorf("download resume: %w", err)
	}

	text, err := extract.Text(resume.Data, resume.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract resume text: %w", err)
	}

	assessment, err := r.grader.Grade(ctx,
		&ai.JobPosting{Name: job.Title, Description: job.Description},
		&ai.CandidateProfile{Name: candidate.Name, ResumeText: text},
	)
	if err != nil {
		return nil, fmt.Errorf("grade candidate: %w", err)
	}

	return r.writeBack(ctx, logger, app, candidate, job, assessment)
}

// gateOnProfile returns a zero assessment when the candidate claims a GitHub
// profile that fails validation. A validator outage only disables the gate
// for this run; it never fails the pipeline.
func (r *Runner) gateOnProfile(ctx context.Context, logger *zap.Logger, candidate *ashby.Candidate) *ai.Assessment {
	if r.validator == nil {
		return nil
	}

	username := candidate.GitHubUsername()
	if username == "" {
		return nil
	}

	ok, reason, err := r.validator.Validate(ctx, username)
	if err != nil {
		logger.Warn("skipping github validation", zap.Error(err))
		return nil
	}

	if ok {
		return nil
	}

	logger.Info("candidate failed github validation",
		zap.String("github_username", username),
		zap.String("reason", reason),
	)

	return &ai.Assessment{
		Score:   0,
		Summary: fmt.Sprintf("Not graded: %s", reason),
	}
}

func (r *Runner) writeBack(ctx context.Context, logger *zap.Logger, app *ashby.Application, candidate *ashby.Candidate, job *ashby.Job, assessment *ai.Assessment) (*Result, error) {
	value := FormatFieldValue(assessment)

	if err := r.ats.SetApplicationField(ctx, app.ID, r.fieldID, value); err != nil {
		return nil, fmt.Errorf("write assessment back: %w", err)
	}

	logger.Info("assessment written back",
		zap.Float64("score", assessment.Score),
		zap.String("field_value", value),
	)

	return &Result{
		ApplicationID: app.ID,
		CandidateName: candidate.Name,
		JobTitle:      job.Title,
		Assessment:    assessment,
		FieldValue:    value,
	}, nil
}
