package ashby

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ActionApplicationSubmit is the action field Ashby sends for submission events.
const ActionApplicationSubmit = "applicationSubmit"

// WebhookEvent is the payload delivered to the webhook endpoint. Data stays a
// loose map because its shape depends on the action.
type WebhookEvent struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// EventApplication is the application reference carried by an
// applicationSubmit event.
type EventApplication struct {
	ID        string `mapstructure:"id"`
	Candidate *struct {
		ID   string `mapstructure:"id"`
		Name string `mapstructure:"name"`
	} `mapstructure:"candidate"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	if strings.TrimSpace(event.Action) == "" {
		return nil, fmt.Errorf("webhook payload has no action")
	}

	return &event, nil
}

// Application decodes the application reference from the event data.
func (e *WebhookEvent) Application() (*EventApplication, error) {
	raw, ok := e.Data["application"]
	if !ok {
		return nil, fmt.Errorf("%s event has no application data", e.Action)
	}

	var app EventApplication
	if err := mapstructure.Decode(raw, &app); err != nil {
		return nil, fmt.Errorf("decode application data: %w", err)
	}

	if strings.TrimSpace(app.ID) == "" {
		return nil, fmt.Errorf("%s event has no application id", e.Action)
	}

	return &app, nil
}
