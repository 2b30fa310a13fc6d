package ashby

import (
	"context"
	"fmt"
	"strings"
)

// WebhookTypeApplicationSubmit is the Ashby webhook type fired when a
// candidate submits an application.
const WebhookTypeApplicationSubmit = "applicationSubmit"

// Webhook is a registered webhook subscription.
type Webhook struct {
	ID          string `json:"id"`
	Enabled     bool   `json:"enabled"`
	RequestURL  string `json:"requestUrl"`
	WebhookType string `json:"webhookType"`
}

type webhookCreateResults struct {
	Webhook *Webhook `json:"webhook"`
}

// CreateWebhook registers a webhook subscription with the given delivery URL
// and shared secret.
func (c *Client) CreateWebhook(ctx context.Context, webhookType, requestURL, secret string) (*Webhook, error) {
	if strings.TrimSpace(requestURL) == "" {
		return nil, fmt.Errorf("webhook request url is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("webhook secret is required")
	}

	if strings.TrimSpace(webhookType) == "" {
		webhookType = WebhookTypeApplicationSubmit
	}

	payload := map[string]string{
		"webhookType": webhookType,
		"requestUrl":  requestURL,
		"secretToken": secret,
	}

	var results webhookCreateResults
	if err := c.postJSON(ctx, "webhook.create", payload, &results); err != nil {
		return nil, err
	}

	if results.Webhook == nil {
		return nil, fmt.Errorf("webhook.create returned no webhook")
	}

	return results.Webhook, nil
}

func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	if strings.TrimSpace(webhookID) == "" {
		return fmt.Errorf("webhook id is required")
	}

	payload := map[string]string{"webhookId": webhookID}

	return c.postJSON(ctx, "webhook.delete", payload, nil)
}
