package portal

import "strings"

// Chart types understood by the dashboard.
const (
	ChartPie      = "pie"
	ChartDoughnut = "doughnut"
	ChartBar      = "bar"
	ChartLine     = "line"
)

const legendBottom = "bottom"

// ChartOptions is the rendering policy derived from a chart type.
type ChartOptions struct {
	Responsive          bool                   `json:"responsive"`
	MaintainAspectRatio bool                   `json:"maintainAspectRatio"`
	Legend              LegendOptions          `json:"legend"`
	Scales              map[string]AxisOptions `json:"scales"`
}

// LegendOptions controls the chart legend.
type LegendOptions struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

// AxisOptions controls a value axis.
type AxisOptions struct {
	BeginAtZero bool `json:"beginAtZero"`
	Precision   int  `json:"precision"`
}

// IsPieLike reports whether chartType is drawn without axes.
func IsPieLike(chartType string) bool {
	switch strings.ToLower(chartType) {
	case ChartPie, ChartDoughnut:
		return true
	default:
		return false
	}
}

// SupportedChartType reports whether chartType belongs to the closed set of
// dashboard chart types.
func SupportedChartType(chartType string) bool {
	switch strings.ToLower(chartType) {
	case ChartPie, ChartDoughnut, ChartBar, ChartLine:
		return true
	default:
		return false
	}
}

// OptionsFor derives chart options from the chart type. Pie-like charts get
// a bottom legend and no scales; others hide the legend and start the y axis
// at zero with integer ticks.
func OptionsFor(chartType string) ChartOptions {
	opts := ChartOptions{
		Responsive:          true,
		MaintainAspectRatio: false,
		Scales:              map[string]AxisOptions{},
	}
	if IsPieLike(chartType) {
		opts.Legend = LegendOptions{Display: true, Position: legendBottom}
		return opts
	}
	opts.Legend = LegendOptions{Display: false, Position: legendBottom}
	opts.Scales["y"] = AxisOptions{BeginAtZero: true, Precision: 0}
	return opts
}
