package ashby

import (
	"context"
	"fmt"
	"strings"
)

// Application is the subset of application.info this service reads.
type Application struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Candidate *Candidate `json:"candidate"`
	Job       *JobRef    `json:"job"`
}

type JobRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Candidate is the subset of candidate.info this service reads.
type Candidate struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	PrimaryEmail     *EmailRecord `json:"primaryEmailAddress"`
	SocialLinks      []SocialLink `json:"socialLinks"`
	ResumeFileHandle *FileHandle  `json:"resumeFileHandle"`
}

type EmailRecord struct {
	Value string `json:"value"`
}

type SocialLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type FileHandle struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

func (c *Client) GetApplication(ctx context.Context, applicationID string) (*Application, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("application id is required")
	}

	var app Application
	payload := map[string]string{"applicationId": applicationID}
	if err := c.postJSON(ctx, "application.info", payload, &app); err != nil {
		return nil, err
	}

	return &app, nil
}

func (c *Client) GetCandidate(ctx context.Context, candidateID string) (*Candidate, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, fmt.Errorf("candidate id is required")
	}

	var candidate Candidate
	payload := map[string]string{"id": candidateID}
	if err := c.postJSON(ctx, "candidate.info", payload, &candidate); err != nil {
		return nil, err
	}

	return &candidate, nil
}

// GitHubUsername extracts a GitHub username from the candidate social links.
// Returns an empty string when none is present.
func (c *Candidate) GitHubUsername() string {
	if c == nil {
		return ""
	}

	for _, link := range c.SocialLinks {
		if !strings.EqualFold(strings.TrimSpace(link.Type), "GitHub") {
			continue
		}

		trimmed := strings.TrimRight(strings.TrimSpace(link.URL), "/")
		if trimmed == "" {
			continue
		}

		parts := strings.Split(trimmed, "/")
		username := parts[len(parts)-1]
		if username != "" {
			return username
		}
	}

	return ""
}
