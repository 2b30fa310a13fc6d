// Package github implements the pre-grading sanity check for technical
// candidates: the claimed GitHub profile must exist and show a minimum amount
// of authored commits.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL            = "https://api.github.com"
	defaultMinCommits = 3
)

type Validator struct {
	logger     *zap.Logger
	minCommits int
	HTTPClient *http.Client
	APIURL     string
}

func NewValidator(logger *zap.Logger, minCommits int) *Validator {
	if minCommits <= 0 {
		minCommits = defaultMinCommits
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Validator{
		logger:     logger,
		minCommits: minCommits,
		APIURL:     apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Validate reports whether the username belongs to an existing GitHub user
// with enough authored commits. The returned reason is human-readable and is
// written into the assessment when validation fails.
func (v *Validator) Validate(ctx context.Context, username string) (bool, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, "no github username", nil
	}

	exists, err := v.userExists(ctx, username)
	if err != nil {
		return false, "", err
	}
	if !exists {
		return false, fmt.Sprintf("github user %s does not exist", username), nil
	}

	commits, err := v.commitCount(ctx, username)
	if err != nil {
		return false, "", err
	}

	v.logger.Debug("github commit count",
		zap.String("github_username", username),
		zap.Int("commits", commits),
	)

	if commits < v.minCommits {
		return false, fmt.Sprintf("github user %s has only %d authored commits", username, commits), nil
	}

	return true, "", nil
}

func (v *Validator) userExists(ctx context.Context, username string) (bool, error) {
	status, _, err := v.get(ctx, fmt.Sprintf("%s/users/%s", v.APIURL, url.PathEscape(username)))
	if err != nil {
		return false, err
	}

	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("github user lookup: unexpected status %d", status)
	}
}

func (v *Validator) commitCount(ctx context.Context, username string) (int, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("author:%s", username))

	status, body, err := v.get(ctx, fmt.Sprintf("%s/search/commits?%s", v.APIURL, query.Encode()))
	if err != nil {
		return 0, err
	}

	if status != http.StatusOK {
		return 0, fmt.Errorf("github commit search: unexpected status %d", status)
	}

	var result struct {
		TotalCount int `json:"total_count"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode commit search response: %w", err)
	}

	return result.TotalCount, nil
}

func (v *Validator) get(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call github: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read github response: %w", err)
	}

	return resp.StatusCode, body, nil
}
