package portal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	lastTemplate string
	lastData     map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastData = payload
	}
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func newTestController(renderer Renderer) *Controller {
	return NewController(ControllerOptions{
		Service:  newTestService(seededRecords()),
		Renderer: renderer,
		Charts:   NewEChartsEngine(),
		Companies: func(context.Context, ViewerContext) *Company {
			return &Company{ID: 1, HasBackgroundImageDark: true}
		},
	})
}

func TestControllerRenderTemplate(t *testing.T) {
	renderer := &stubRenderer{}
	controller := newTestController(renderer)

	var buf bytes.Buffer
	viewer := ViewerContext{UserID: "7", Name: "Admin", Groups: []string{GroupDirection}, ColorScheme: "dark"}
	require.NoError(t, controller.RenderTemplate(context.Background(), viewer, &buf))
	assert.Equal(t, "dashboard.html", renderer.lastTemplate)
	assert.Equal(t, "<html></html>", buf.String())

	data := renderer.lastData
	assert.Equal(t, "Admin", data["user_name"])
	assert.Equal(t, "2025-2026", data["annee_academique"])
	assert.Equal(t, ColorSchemeDark, data["color_scheme"])
	assert.Equal(t, "/web/image?model=res.company&field=background_image_dark&id=1", data["background_url"])

	sections := data["sections"].([]map[string]any)
	require.Len(t, sections, 3)
	cards := sections[0]["kpis"].([]map[string]any)
	assert.Equal(t, "isic-kpi-card--primary", cards[0]["color_class"])

	charts := data["charts"].([]map[string]any)
	require.Len(t, charts, 2)
	assert.Equal(t, "isic_dashboard_chart_0", charts[0]["element_id"])
	assert.Contains(t, charts[1]["html"], "isic_dashboard_chart_1")
}

func TestControllerLightSchemeHasNoBackground(t *testing.T) {
	controller := newTestController(&stubRenderer{})
	data, err := controller.TemplateData(context.Background(), ViewerContext{UserID: "8"})
	require.NoError(t, err)
	assert.Equal(t, "", data["background_url"])
	assert.Equal(t, ColorSchemeLight, data["color_scheme"])
}

func TestControllerPropagatesErrors(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("template missing")}
	controller := newTestController(renderer)
	err := controller.RenderTemplate(context.Background(), ViewerContext{}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template missing")

	err = NewController(ControllerOptions{Service: newTestService(seededRecords())}).RenderTemplate(context.Background(), ViewerContext{}, io.Discard)
	assert.ErrorIs(t, err, errMissingRenderer)

	_, err = NewController(ControllerOptions{}).Payload(context.Background(), ViewerContext{})
	assert.ErrorIs(t, err, errMissingSource)
}

func TestControllerSkipsUnrenderableCharts(t *testing.T) {
	service := NewDashboardService(ServiceOptions{
		Endpoint: EndpointDashboard,
		Counter:  seededRecords(),
		Charts: map[string]ChartBuilder{
			"approbation": func(context.Context, SectionRequest) ([]ChartSpec, error) {
				return []ChartSpec{{Title: "Radar", Type: "radar"}}, nil
			},
		},
		Now: func() time.Time { return fixedNow },
	})
	controller := NewController(ControllerOptions{Service: service, Renderer: &stubRenderer{}})
	data, err := controller.TemplateData(context.Background(), ViewerContext{UserID: "7"})
	require.NoError(t, err)
	assert.Empty(t, data["charts"])
}
