package ashby

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL = "https://api.ashbyhq.com"
	// All Ashby endpoints are versioned through the Accept header.
	acceptHeader = "application/json; version=1"
)

// Client wraps authenticated calls to the Ashby API. Every endpoint is an
// RPC-style POST authenticated with the API key as the basic auth username.
type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func New(logger *zap.Logger, apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		logger: logger,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}
