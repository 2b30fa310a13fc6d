// Package extract converts resume documents into plain text. Extraction is a
// pure function of the input bytes: no temp files, no external processes.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned when the document cannot be converted to
// plain text.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

const (
	typePDF  = "application/pdf"
	typeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Text extracts plain text from the document. The declared content type is
// consulted first; when it is missing or generic the format is sniffed from
// the leading bytes.
func Text(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("document is empty")
	}

	switch detectFormat(data, contentType) {
	case typePDF:
		text, err := pdfText(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf text: %w", err)
		}
		return normalize(text), nil
	case typeDocx:
		text, err := docxText(data)
		if err != nil {
			return "", fmt.Errorf("extract docx text: %w", err)
		}
		return normalize(text), nil
	case "text/plain":
		return normalize(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, describeFormat(data, contentType))
	}
}

func detectFormat(data []byte, contentType string) string {
	declared := ""
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		declared = strings.ToLower(mediaType)
	}

	switch declared {
	case typePDF:
		return typePDF
	case typeDocx:
		return typeDocx
	}

	if strings.HasPrefix(declared, "text/") {
		return "text/plain"
	}

	// Fall back to sniffing for absent or generic declarations like
	// application/octet-stream.
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return typePDF
	case bytes.HasPrefix(data, zipMagic):
		return typeDocx
	case declared == "" && utf8.Valid(data):
		return "text/plain"
	}

	return ""
}

func describeFormat(data []byte, contentType string) string {
	if strings.TrimSpace(contentType) != "" {
		return contentType
	}
	if len(data) > 8 {
		data = data[:8]
	}
	return fmt.Sprintf("unknown content (leading bytes %q)", data)
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// normalize trims the text and collapses runs of blank lines so the prompt
// stays compact.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
