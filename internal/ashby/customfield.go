package ashby

import (
	"context"
	"fmt"
	"strings"
)

const objectTypeApplication = "Application"

// SetApplicationField writes a custom field value on an application.
// Setting the same field twice simply overwrites the stored value.
func (c *Client) SetApplicationField(ctx context.Context, applicationID, fieldID string, value any) error {
	if strings.TrimSpace(applicationID) == "" {
		return fmt.Errorf("application id is required")
	}
	if strings.TrimSpace(fieldID) == "" {
		return fmt.Errorf("custom field id is required")
	}

	payload := map[string]any{
		"objectId":   applicationID,
		"objectType": objectTypeApplication,
		"fieldId":    fieldID,
		"fieldValue": value,
	}

	return c.postJSON(ctx, "customField.setValue", payload, nil)
}

// CustomField describes a custom field definition to create.
type CustomField struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	FieldType   string `json:"fieldType"`
	ObjectType  string `json:"objectType"`
	Description string `json:"description"`
}

// CreateApplicationField registers a new custom field on the Application
// object and returns its definition.
func (c *Client) CreateApplicationField(ctx context.Context, title, fieldType, description string) (*CustomField, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("field title is required")
	}

	payload := map[string]any{
		"fieldType":              fieldType,
		"objectType":             objectTypeApplication,
		"isExposableToCandidate": false,
		"title":                  title,
		"description":            description,
	}

	var field CustomField
	if err := c.postJSON(ctx, "customField.create", payload, &field); err != nil {
		return nil, err
	}

	return &field, nil
}
