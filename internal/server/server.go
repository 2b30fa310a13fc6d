// Package server exposes the webhook surface of the screener. The production
// endpoint acknowledges deliveries immediately and runs the analysis in the
// background; the test endpoint runs it inline so the caller sees the result.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/senank/ashby-screener/internal/ai"
	"github.com/senank/ashby-screener/internal/ashby"
	"github.com/senank/ashby-screener/internal/extract"
	"github.com/senank/ashby-screener/internal/logger"
	"github.com/senank/ashby-screener/internal/metrics"
	"github.com/senank/ashby-screener/internal/pipeline"
)

const defaultPipelineTimeout = 5 * time.Minute

// Processor runs the analysis pipeline for one application.
type Processor interface {
	Process(ctx context.Context, applicationID string) (*pipeline.Result, error)
}

type Server struct {
	echo    *echo.Echo
	runner  Processor
	secret  string
	timeout time.Duration
	logger  *zap.Logger

	// tracks in-flight background runs so Shutdown can drain them
	runs sync.WaitGroup
}

// New builds the HTTP server around a pipeline runner. The secret signs
// every webhook delivery; requests that fail verification are rejected
// before any payload parsing.
func New(runner Processor, secret string, timeout time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultPipelineTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	s := &Server{
		echo:    e,
		runner:  runner,
		secret:  secret,
		timeout: timeout,
		logger:  log,
	}

	e.GET("/", s.handleHealth)
	e.POST("/resume_analysis", s.handleWebhook)
	e.POST("/test_ashby_webhook", s.handleTestWebhook)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for background analysis runs
// still in flight, up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	return err
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "working!")
}

// handleWebhook is the production endpoint. It verifies and parses the
// delivery, then acknowledges with 200 before the analysis runs; outcomes
// are visible through logs and the pipeline metrics only.
func (s *Server) handleWebhook(c echo.Context) error {
	event, status, err := s.decodeDelivery(c)
	if err != nil {
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	metrics.WebhooksReceived.WithLabelValues(event.Action).Inc()

	if event.Action != ashby.ActionApplicationSubmit {
		s.logger.Debug("ignoring webhook", zap.String("action", event.Action))
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	app, err := event.Application()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	runID := uuid.NewString()

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		s.runPipeline(runID, app.ID)
	}()

	return c.JSON(http.StatusOK, map[string]string{
		"status": "accepted",
		"run_id": runID,
	})
}

// handleTestWebhook runs the pipeline inline and reports the outcome in the
// response, so a manually signed delivery can be verified end to end.
func (s *Server) handleTestWebhook(c echo.Context) error {
	event, status, err := s.decodeDelivery(c)
	if err != nil {
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	if event.Action != ashby.ActionApplicationSubmit {
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	app, err := event.Application()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := s.runner.Process(c.Request().Context(), app.ID)
	if err != nil {
		return c.JSON(statusForError(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"application_id": result.ApplicationID,
		"candidate":      result.CandidateName,
		"job":            result.JobTitle,
		"score":          result.Assessment.Score,
		"field_value":    result.FieldValue,
	})
}

// decodeDelivery reads the raw body, checks the signature over it and parses
// the event. It returns the HTTP status to answer with when it fails.
func (s *Server) decodeDelivery(c echo.Context) (*ashby.WebhookEvent, int, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	if !verifySignature(s.secret, body, c.Request().Header.Get(signatureHeader)) {
		metrics.SignatureFailures.Inc()
		s.logger.Warn("rejected webhook with bad signature",
			zap.String("remote", c.RealIP()),
		)
		return nil, http.StatusUnauthorized, errors.New("invalid webhook signature")
	}

	event, err := ashby.ParseWebhookEvent(body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	return event, http.StatusOK, nil
}

func (s *Server) runPipeline(runID, applicationID string) {
	log := logger.WithRunFields(s.logger, runID, applicationID)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Process(ctx, applicationID)
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PipelineRuns.WithLabelValues(metrics.StatusFailed).Inc()
		log.Error("analysis pipeline failed", zap.Error(err))
		return
	}

	metrics.PipelineRuns.WithLabelValues(metrics.StatusOK).Inc()
	log.Info("analysis pipeline finished",
		zap.String("candidate", result.CandidateName),
		zap.Float64("score", result.Assessment.Score),
	)
}

// statusForError maps pipeline failures to the synchronous endpoint's
// response codes. Upstream API and model failures surface as bad gateway,
// unreadable resumes as unprocessable content.
func statusForError(err error) int {
	var apiErr *ashby.APIError

	switch {
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ai.ErrInvocation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
