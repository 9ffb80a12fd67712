// Package resume turns uploaded resume files into plain text for analysis.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nguyenthenguyen/docx"
)

// ErrUnsupportedFormat is returned for files other than txt, md, pdf and docx.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

// Supported lists the accepted file extensions.
var Supported = []string{".txt", ".md", ".pdf", ".docx"}

var (
	xmlText    = bluemonday.StrictPolicy()
	paragraph  = regexp.MustCompile(`</w:p>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// ExtractText picks a decoder from the file extension.
func ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		text string
		err  error
	)
	switch ext {
	case ".txt", ".md":
		text = string(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDocx(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}
	return normalize(text), nil
}

// IsSupported reports whether ExtractText accepts filename.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range Supported {
		if s == ext {
			return true
		}
	}
	return false
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	// GetContent returns document.xml; keep paragraph breaks and drop the markup.
	raw := paragraph.ReplaceAllString(doc.Editable().GetContent(), "\n")
	return html.UnescapeString(xmlText.Sanitize(raw)), nil
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
