package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// docxText pulls the visible text out of word/document.xml. Paragraph and tab
// elements are mapped to newlines and tabs so the layout survives roughly.
func docxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var document io.ReadCloser
	for _, file := range archive.File {
		if file.Name == docxDocumentPath {
			document, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("open %s: %w", docxDocumentPath, err)
			}
			break
		}
	}

	if document == nil {
		return "", fmt.Errorf("%s not found in archive", docxDocumentPath)
	}
	defer document.Close()

	var builder strings.Builder
	decoder := xml.NewDecoder(document)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxDocumentPath, err)
		}

		switch t := token.(type) {
		case xml.CharData:
			builder.Write(t)
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				builder.WriteString("\n")
			case "tab":
				builder.WriteString("\t")
			case "br":
				builder.WriteString("\n")
			}
		}
	}

	if strings.TrimSpace(builder.String()) == "" {
		return "", fmt.Errorf("docx contains no extractable text")
	}

	return builder.String(), nil
}
