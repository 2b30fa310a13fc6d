package ashby

import (
	"context"
	"fmt"
	"strings"
)

// Job holds the title and the posting description used to grade applicants.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Description string `json:"-"`
}

// jobInfoResults mirrors the job.info results shape. The description lives on
// the latest opening version rather than the job itself.
type jobInfoResults struct {
	Job      *Job `json:"job"`
	Openings *struct {
		LatestVersion *struct {
			Description string `json:"description"`
		} `json:"latestVersion"`
	} `json:"openings"`
}

func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("job id is required")
	}

	var results jobInfoResults
	payload := map[string]string{"id": jobID}
	if err := c.postJSON(ctx, "job.info", payload, &results); err != nil {
		return nil, err
	}

	if results.Job == nil {
		return nil, fmt.Errorf("job.info returned no job for id %s", jobID)
	}

	job := results.Job
	if results.Openings != nil && results.Openings.LatestVersion != nil {
		job.Description = results.Openings.LatestVersion.Description
	}

	return job, nil
}
