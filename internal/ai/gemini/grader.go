package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/senank/ashby-screener/internal/ai"
	"github.com/senank/ashby-screener/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Grader evaluates a candidate against a job posting with a single Gemini
// call and parses the structured grade out of the model response.
type Grader struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const systemInstruction = "You are a strict technical recruiter. " +
	"You grade job applications against the provided job description and respond only with the requested JSON object."

const defaultMaxLogLength = 200

func NewGrader(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Grader {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Grader{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (g *Grader) Grade(ctx context.Context, job *ai.JobPosting, candidate *ai.CandidateProfile) (*ai.Assessment, error) {
	if job == nil {
		return nil, fmt.Errorf("job posting is required")
	}
	if candidate == nil || strings.TrimSpace(candidate.ResumeText) == "" {
		return nil, fmt.Errorf("candidate resume text is required")
	}

	prompt := buildPrompt(job, candidate)

	g.logger.Debug("gemini grade request",
		zap.String("job_name", job.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvocation, err)
	}

	g.logger.Debug("gemini grade response",
		zap.String("job_name", job.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrInvocation, err)
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(job *ai.JobPosting, candidate *ai.CandidateProfile) string {
	resume := candidate.ResumeText
	if name := strings.TrimSpace(candidate.Name); name != "" {
		resume = fmt.Sprintf("Name: %s\n\n%s", name, resume)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_NAME}}", job.Name)
	prompt = strings.ReplaceAll(prompt, "{{JOB_INFO}}", job.Description)
	prompt = strings.ReplaceAll(prompt, "{{RESUME}}", resume)
	return prompt
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	assessment := &ai.Assessment{
		TechnicalExpertise:  coerceFloat(data["technical_expertise"]),
		PracticalExperience: coerceFloat(data["practical_experience"]),
		JobAlignment:        coerceFloat(data["job_alignment"]),
		Summary:             coerceString(data["summary"]),
		Tags:                coerceStrings(data["tags"]),
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = averageSubscores(assessment)
	}
	if math.IsNaN(score) {
		return nil, fmt.Errorf("gemini response has no usable scores: %s", utils.TruncateForLog(cleaned, defaultMaxLogLength))
	}

	assessment.Score = clampScore(score)
	assessment.TechnicalExpertise = clampScore(assessment.TechnicalExpertise)
	assessment.PracticalExperience = clampScore(assessment.PracticalExperience)
	assessment.JobAlignment = clampScore(assessment.JobAlignment)

	return assessment, nil
}

func averageSubscores(a *ai.Assessment) float64 {
	sum := 0.0
	count := 0
	for _, score := range []float64{a.TechnicalExpertise, a.PracticalExperience, a.JobAlignment} {
		if math.IsNaN(score) {
			continue
		}
		sum += score
		count++
	}

	if count == 0 {
		return math.NaN()
	}

	return sum / float64(count)
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s := coerceString(item); s != "" {
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}
