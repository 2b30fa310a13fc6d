package ashby

import (
	"context"
	"fmt"
	"strings"
)

// ResumeFile is a downloaded resume document together with the content type
// declared by the file host.
type ResumeFile struct {
	Data        []byte
	ContentType string
	Name        string
}

// DownloadResume resolves the file handle to a signed URL via file.info and
// fetches the document bytes.
func (c *Client) DownloadResume(ctx context.Context, handle *FileHandle) (*ResumeFile, error) {
	if handle == nil || strings.TrimSpace(handle.Handle) == "" {
		return nil, fmt.Errorf("resume file handle is required")
	}

	var results struct {
		URL string `json:"url"`
	}
	payload := map[string]string{"fileHandle": handle.Handle}
	if err := c.postJSON(ctx, "file.info", payload, &results); err != nil {
		return nil, err
	}

	if strings.TrimSpace(results.URL) == "" {
		return nil, fmt.Errorf("file.info returned empty url for %s", handle.Name)
	}

	data, contentType, err := c.getFile(ctx, results.URL)
	if err != nil {
		return nil, err
	}

	return &ResumeFile{
		Data:        data,
		ContentType: contentType,
		Name:        handle.Name,
	}, nil
}
