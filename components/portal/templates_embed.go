package portal

import (
	"embed"
	"fmt"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// dashboardTemplates is rooted at templates/ so names resolve as
// "dashboard.html" and "partials/kpi_card.html" without touching the disk.
func dashboardTemplates() (fs.FS, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("portal: embedded templates: %w", err)
	}
	return sub, nil
}

// NewTemplateRenderer renders the embedded dashboard page and its KPI card
// partials with go-template (pongo2 syntax).
func NewTemplateRenderer() (Renderer, error) {
	templates, err := dashboardTemplates()
	if err != nil {
		return nil, err
	}
	return template.NewRenderer(
		template.WithFS(templates),
		template.WithExtension(".html"),
	)
}
