package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	entry, err := writer.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := entry.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing document.xml: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	return buf.Bytes()
}

func TestTextPlain(t *testing.T) {
	got, err := Text([]byte("Ada Lovelace\n\n\n\nMathematician  \n"), "text/plain; charset=utf-8")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "Ada Lovelace\n\nMathematician"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTextDocx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>
    <w:p><w:r><w:t>Analytical Engine</w:t><w:tab/><w:t>Programmer</w:t></w:r></w:p>
  </w:body>
</w:document>`

	data := buildDocx(t, doc)

	got, err := Text(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(got, "Ada Lovelace") {
		t.Fatalf("expected name in extracted text, got %q", got)
	}
	if !strings.Contains(got, "Analytical Engine\tProgrammer") {
		t.Fatalf("expected tab-separated run, got %q", got)
	}
}

func TestTextDocxSniffedFromZipMagic(t *testing.T) {
	doc := `<w:document xmlns:w="ns"><w:body><w:p><w:t>sniffed</w:t></w:p></w:body></w:document>`
	data := buildDocx(t, doc)

	got, err := Text(data, "application/octet-stream")
	if err != nil {
		t.Fatalf("expected docx sniffing to work, got %v", err)
	}
	if got != "sniffed" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextUnsupportedFormat(t *testing.T) {
	_, err := Text([]byte{0xd0, 0xcf, 0x11, 0xe0, 0x00}, "application/msword")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestTextEmptyDocument(t *testing.T) {
	if _, err := Text(nil, "application/pdf"); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestTextMalformedPDF(t *testing.T) {
	if _, err := Text([]byte("%PDF-1.7 not really a pdf"), "application/pdf"); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestTextDocxWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("other.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := entry.Write([]byte("<x/>")); err != nil {
		t.Fatalf("writing entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	if _, err := Text(buf.Bytes(), ""); err == nil {
		t.Fatal("expected error for archive without document.xml")
	}
}
