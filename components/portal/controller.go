package portal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const defaultDashboardTemplate = "dashboard.html"

var (
	errMissingRenderer = errors.New("portal: renderer not configured")
	errMissingSource   = errors.New("portal: dashboard source not configured")
)

// Renderer executes a named template. go-template's renderer satisfies it.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// PayloadSource produces the dashboard payload for a viewer.
type PayloadSource interface {
	Retrieve(ctx context.Context, viewer ViewerContext) (Payload, error)
}

// ChartRenderer renders a chart config to markup.
type ChartRenderer interface {
	Render(cfg ChartConfig) (string, string, error)
}

// CompanyResolver returns the company branding the viewer's pages.
type CompanyResolver func(ctx context.Context, viewer ViewerContext) *Company

// ControllerOptions wires the collaborators of a Controller.
type ControllerOptions struct {
	Service   PayloadSource
	Renderer  Renderer
	Charts    ChartRenderer
	Companies CompanyResolver
	Template  string
	Title     string
	Logger    *zap.Logger
}

// Controller renders a dashboard endpoint as HTML or JSON.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultDashboardTemplate
	}
	if opts.Title == "" {
		opts.Title = "Tableau de bord"
	}
	if opts.Charts == nil {
		opts.Charts = NewEChartsEngine(WithChartCache(sharedChartCache))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{opts: opts}
}

// Payload returns the raw retrieve_dashboard payload for viewer.
func (c *Controller) Payload(ctx context.Context, viewer ViewerContext) (Payload, error) {
	if c.opts.Service == nil {
		return nil, errMissingSource
	}
	return c.opts.Service.Retrieve(ctx, viewer)
}

// RenderTemplate writes the dashboard page for viewer to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errMissingRenderer
	}
	data, err := c.TemplateData(ctx, viewer)
	if err != nil {
		return err
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, data, out); err != nil {
		return fmt.Errorf("portal: render %s: %w", c.opts.Template, err)
	}
	return nil
}

// TemplateData builds the template context: sections with their cards and
// pre-rendered chart markup. Charts that fail to render are skipped.
func (c *Controller) TemplateData(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	payload, err := c.Payload(ctx, viewer)
	if err != nil {
		return nil, err
	}
	view := DecodeView(payload)
	scheme := ColorScheme(viewer.ColorScheme)
	endpoint := ""
	if svc, ok := c.opts.Service.(*DashboardService); ok {
		endpoint = svc.Endpoint()
	}

	sections := make([]map[string]any, 0, len(view.Sections))
	for _, section := range view.Sections {
		cards := make([]map[string]any, 0, len(section.KPIs))
		for _, desc := range section.KPIs {
			card := NewKPICard(desc)
			d := card.Descriptor()
			cards = append(cards, map[string]any{
				"label":       d.Label,
				"value":       d.Value,
				"icon":        d.Icon,
				"color_class": card.ColorClass(),
				"action":      d.Action,
			})
		}
		sections = append(sections, map[string]any{
			"title": section.Title,
			"icon":  section.Icon,
			"kpis":  cards,
		})
	}

	charts := make([]map[string]any, 0, len(view.Charts))
	for i, spec := range view.Charts {
		html, id, err := c.opts.Charts.Render(ChartConfig{
			ElementID: chartElementID(endpoint, i),
			Title:     spec.Title,
			Type:      spec.Type,
			Data:      spec.Data,
			Theme:     ThemeForScheme(scheme),
		})
		if err != nil {
			c.opts.Logger.Warn("skipping chart", zap.String("title", spec.Title), zap.Error(err))
			continue
		}
		charts = append(charts, map[string]any{
			"title":      spec.Title,
			"element_id": id,
			"html":       html,
		})
	}

	var company *Company
	if c.opts.Companies != nil {
		company = c.opts.Companies(ctx, viewer)
	}
	return map[string]any{
		"title":            c.opts.Title,
		"endpoint":         endpoint,
		"user_name":        view.UserName,
		"annee_academique": view.AcademicYear,
		"color_scheme":     scheme,
		"background_url":   CompanyBackgroundImageURL(company, scheme),
		"sections":         sections,
		"charts":           charts,
	}, nil
}
