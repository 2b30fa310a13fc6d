package pipeline

import (
	"fmt"
	"strings"

	"github.com/senank/ashby-screener/internal/ai"
)

// FormatFieldValue renders the assessment into the custom field value stored
// on the application. The format is stable so re-running the pipeline for
// the same application produces the same stored value.
func FormatFieldValue(a *ai.Assessment) string {
	value := fmt.Sprintf("%.0f/100", a.Score)

	if summary := strings.TrimSpace(a.Summary); summary != "" {
		value = fmt.Sprintf("%s - %s", value, summary)
	}

	if len(a.Tags) > 0 {
		value = fmt.Sprintf("%s [%s]", value, strings.Join(a.Tags, ", "))
	}

	return value
}
