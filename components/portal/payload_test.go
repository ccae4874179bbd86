package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeViewFullPayload(t *testing.T) {
	view := DecodeView(samplePayload("Admin"))
	assert.Equal(t, "Admin", view.UserName)
	assert.Equal(t, "2025-2026", view.AcademicYear)
	require.Len(t, view.Sections, 1)
	section := view.Sections[0]
	assert.Equal(t, "Direction", section.Title)
	require.Len(t, section.KPIs, 2)
	assert.Equal(t, 12, section.KPIs[0].Value)
	assert.Equal(t, "info", section.KPIs[0].Color)
	assert.Equal(t, "fa-bar-chart", section.KPIs[1].Icon, "defaults applied")
	assert.Equal(t, "primary", section.KPIs[1].Color)
	require.Len(t, view.Charts, 1)
	assert.Equal(t, ChartDoughnut, view.Charts[0].Type)
	assert.Equal(t, []float64{1, 2}, view.Charts[0].Data.Datasets[0].Data)
}

func TestDecodeViewMissingKeys(t *testing.T) {
	assert.Equal(t, DashboardView{}, DecodeView(nil))
	view := DecodeView(Payload{KeyUserName: "Solo"})
	assert.Equal(t, "Solo", view.UserName)
	assert.Empty(t, view.Sections)
	assert.Empty(t, view.Charts)
}

func TestDecodeViewSkipsMalformedEntries(t *testing.T) {
	view := DecodeView(Payload{
		KeySections: []any{
			"not a section",
			map[string]any{"icon": "fa-x"},
			map[string]any{"title": "GED", "kpis": []any{}},
			map[string]any{"title": "Bad", "kpis": "nope"},
		},
		KeyCharts: []any{
			map[string]any{"title": "untyped"},
			map[string]any{"title": "ok", "type": "bar", "data": map[string]any{"labels": []any{"a"}, "datasets": []any{}}},
		},
	})
	require.Len(t, view.Sections, 1)
	assert.Equal(t, "GED", view.Sections[0].Title)
	require.Len(t, view.Charts, 1)
	assert.Equal(t, "ok", view.Charts[0].Title)
}

func TestDecodeViewTypedEntries(t *testing.T) {
	view := DecodeView(Payload{
		KeySections: []Section{{Title: "Scolarité", KPIs: []CardDescriptor{{Label: "Étudiants", Value: 5}}}},
		KeyCharts:   []ChartSpec{{Title: "Évolution", Type: ChartLine}},
	})
	require.Len(t, view.Sections, 1)
	assert.Equal(t, "primary", view.Sections[0].KPIs[0].Color)
	require.Len(t, view.Charts, 1)
}

func TestChartDataEqual(t *testing.T) {
	a := ChartData{Labels: []string{"x"}, Datasets: []Dataset{{Label: "s", Data: []float64{1}}}}
	b := ChartData{Labels: []string{"x"}, Datasets: []Dataset{{Label: "s", Data: []float64{1}}}}
	assert.True(t, a.Equal(b))
	b.Datasets[0].Data[0] = 2
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(ChartData{}))
}
