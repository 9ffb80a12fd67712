package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/report.html
var reportFS embed.FS

var reportTemplate = template.Must(template.ParseFS(reportFS, "templates/report.html"))

// Report renders the printable dashboard for a session.
func (s *analysisService) Report(ctx context.Context, id string) ([]byte, error) {
	dashboard, err := s.Dashboard(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, dashboard); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
