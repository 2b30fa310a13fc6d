package ashby

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of an Ashby response is read. Resume
// downloads go through getFile which uses the same cap.
const maxResponseBytes = 20 << 20

// APIError reports a failed Ashby call, carrying the HTTP status and the raw
// response body for the caller to log or surface.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ashby %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// envelope is the common Ashby response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Errors  []string        `json:"errors"`
	Results json.RawMessage `json:"results"`
}

// postJSON calls an Ashby RPC endpoint and decodes the results field of the
// response envelope into target. A non-2xx status or success=false yields an
// *APIError.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.APIURL, endpoint), bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("make request", zap.String("endpoint", endpoint))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	if !env.Success {
		msg := strings.Join(env.Errors, "; ")
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: msg}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(env.Results, target); err != nil {
		return fmt.Errorf("decode %s results: %w", endpoint, err)
	}

	return nil
}

// getFile fetches raw bytes from a signed URL returned by file.info. The URL
// is pre-authenticated, so no Ashby credentials are attached.
func (c *Client) getFile(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read file body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &APIError{Endpoint: "file download", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return data, resp.Header.Get("Content-Type"), nil
}
