package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Document formats
const (
	FormatText = "text"
	FormatHTML = "html"
)

var htmlDocument = template.Must(template.New("roadmap").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<p><em>Difficulty: {{.Difficulty}}{{if .EstimatedTime}} · Estimated time: {{.EstimatedTime}}{{end}}</em></p>
<h2>Learning Steps</h2>
<ol>
{{range .Steps}}<li><strong>{{.Title}}</strong>{{if .Description}} — {{.Description}}{{end}}
{{if .Resources}}<ul>{{range .Resources}}<li>{{.}}</li>{{end}}</ul>{{end}}</li>
{{end}}</ol>
</body>
</html>
`))

// StepsDocument synthesizes a downloadable walkthrough of the roadmap's
// linear steps from already-fetched data; no network call is involved.
// Returns the document bytes and its content type.
func StepsDocument(r *models.Roadmap, format string) ([]byte, string, error) {
	switch format {
	case FormatHTML:
		var buf bytes.Buffer
		if err := htmlDocument.Execute(&buf, r); err != nil {
			return nil, "", fmt.Errorf("export: render document: %w", err)
		}
		return buf.Bytes(), "text/html; charset=utf-8", nil

	case FormatText, "":
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n%s\n\n", r.Title, strings.Repeat("=", len(r.Title)))
		if r.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", r.Description)
		}
		fmt.Fprintf(&b, "Difficulty: %s\n", r.Difficulty)
		if r.EstimatedTime != "" {
			fmt.Fprintf(&b, "Estimated time: %s\n", r.EstimatedTime)
		}
		b.WriteString("\nLearning Steps\n--------------\n")
		for i, step := range r.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step.Title)
			if step.Description != "" {
				fmt.Fprintf(&b, "   %s\n", step.Description)
			}
			for _, res := range step.Resources {
				fmt.Fprintf(&b, "   - %s\n", res)
			}
		}
		return []byte(b.String()), "text/plain; charset=utf-8", nil

	default:
		return nil, "", fmt.Errorf("export: unsupported document format: %s", format)
	}
}
