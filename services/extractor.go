package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor converts an uploaded document into plain text. Unsupported
// extensions and extraction failures are reported as an "Error:"-prefixed
// sentinel string rather than an error value; callers detect the sentinel
// with IsExtractionError before treating the output as text.
type TextExtractor interface {
	Extract(data []byte, filename string) string
}

// IsExtractionError reports whether extracted output is the error sentinel.
func IsExtractionError(text string) bool {
	return strings.HasPrefix(text, "Error:")
}

// SupportedResumeFile reports whether the filename carries an extension the
// extractor can process.
func SupportedResumeFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

type documentExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &documentExtractor{}
}

func (e *documentExtractor) Extract(data []byte, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return fmt.Sprintf("Error: Could not process file - unsupported file type: %s. Only PDF and DOCX are supported.", ext)
	}
	if err != nil {
		return fmt.Sprintf("Error: Could not process file - %v", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "Error: Could not process file - no text content found"
	}
	return text
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX walks word/document.xml of the OOXML archive and collects run
// text, one line per paragraph.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %w", err)
	}

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("missing word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read word/document.xml: %w", err)
	}
	defer rc.Close()

	var textBuilder strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var run string
				if err := decoder.DecodeElement(&run, &t); err != nil {
					return "", fmt.Errorf("malformed text run: %w", err)
				}
				textBuilder.WriteString(run)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				textBuilder.WriteString("\n")
			}
		}
	}

	return textBuilder.String(), nil
}

// CleanText normalizes extracted text: trims lines and drops empty ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
