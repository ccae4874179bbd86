package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/google/uuid"
)

const (
	defaultChartHeight = "320px"
	// envEChartsCDN overrides the host the ECharts runtime is loaded from.
	envEChartsCDN = "GO_PORTAL_ECHARTS_CDN"
)

// ErrUnsupportedChart is returned for chart types outside pie, doughnut, bar and line.
var ErrUnsupportedChart = errors.New("portal: unsupported chart type")

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartInstance is a live chart owned by exactly one DashboardChart.
type ChartInstance interface {
	ID() string
	Destroy() error
}

// ChartConfig is everything an engine needs to draw one chart.
type ChartConfig struct {
	ElementID string       `json:"element_id,omitempty"`
	Title     string       `json:"title"`
	Type      string       `json:"type"`
	Data      ChartData    `json:"data"`
	Options   ChartOptions `json:"options"`
	Theme     string       `json:"theme,omitempty"`
}

// ChartEngine creates chart instances.
type ChartEngine interface {
	NewChart(ctx context.Context, cfg ChartConfig) (ChartInstance, error)
}

// EChartsEngine renders charts to self-contained HTML with go-echarts and
// tracks the instances it has handed out.
type EChartsEngine struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string

	mu   sync.Mutex
	live map[string]struct{}
}

// EChartsOption customizes engine behavior.
type EChartsOption func(*EChartsEngine)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(e *EChartsEngine) {
		e.cache = cache
	}
}

// WithChartTheme sets the theme used when a chart does not carry one.
func WithChartTheme(theme string) EChartsOption {
	return func(e *EChartsEngine) {
		e.theme = theme
	}
}

// WithChartAssetsHost rewrites the host the ECharts runtime loads from.
func WithChartAssetsHost(host string) EChartsOption {
	return func(e *EChartsEngine) {
		e.assetsHost = host
	}
}

// WithChartHeight sets the canvas height.
func WithChartHeight(height string) EChartsOption {
	return func(e *EChartsEngine) {
		if height != "" {
			e.height = height
		}
	}
}

// NewEChartsEngine builds an engine with the shared render cache and the
// assets host from GO_PORTAL_ECHARTS_CDN.
func NewEChartsEngine(options ...EChartsOption) *EChartsEngine {
	e := &EChartsEngine{
		cache:      sharedChartCache,
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
		height:     defaultChartHeight,
		live:       make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// DefaultEChartsAssetsHost returns GO_PORTAL_ECHARTS_CDN when set. Empty means
// the go-echarts default host.
func DefaultEChartsAssetsHost() string {
	host := strings.TrimSpace(os.Getenv(envEChartsCDN))
	if host == "" || strings.HasSuffix(host, "/") {
		return host
	}
	return host + "/"
}

// NewChart renders cfg and registers a live instance.
func (e *EChartsEngine) NewChart(ctx context.Context, cfg ChartConfig) (ChartInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, elementID, err := e.Render(cfg)
	if err != nil {
		return nil, err
	}
	inst := &EChartsInstance{
		id:        uuid.NewString(),
		elementID: elementID,
		chartType: strings.ToLower(cfg.Type),
		html:      html,
		release:   e.release,
	}
	e.mu.Lock()
	e.live[inst.id] = struct{}{}
	e.mu.Unlock()
	return inst, nil
}

// Render produces the chart markup without registering an instance. It
// returns the HTML and the DOM id of the chart container.
func (e *EChartsEngine) Render(cfg ChartConfig) (string, string, error) {
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if !SupportedChartType(cfg.Type) {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedChart, cfg.Type)
	}
	if cfg.Options.Scales == nil {
		cfg.Options = OptionsFor(cfg.Type)
	}
	if cfg.Theme == "" {
		cfg.Theme = e.theme
	}
	key := configHash(struct {
		Config ChartConfig
		Assets string
		Height string
	}{cfg, e.assetsHost, e.height})
	if cfg.ElementID == "" {
		cfg.ElementID = "isic_chart_" + key[:12]
	}

	renderFn := func() (string, error) {
		return e.render(cfg)
	}
	var (
		html string
		err  error
	)
	if e.cache != nil {
		html, err = e.cache.GetOrRender(key+":"+cfg.ElementID, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return "", "", err
	}
	return html, cfg.ElementID, nil
}

// Live returns the number of instances not yet destroyed.
func (e *EChartsEngine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

func (e *EChartsEngine) release(id string) {
	e.mu.Lock()
	delete(e.live, id)
	e.mu.Unlock()
}

func (e *EChartsEngine) render(cfg ChartConfig) (string, error) {
	switch cfg.Type {
	case ChartPie, ChartDoughnut:
		return e.renderPie(cfg)
	case ChartBar:
		return e.renderBar(cfg)
	case ChartLine:
		return e.renderLine(cfg)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChart, cfg.Type)
	}
}

func (e *EChartsEngine) renderPie(cfg ChartConfig) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(e.globalOptions(cfg)...)
	var radius any = "70%"
	if cfg.Type == ChartDoughnut {
		radius = []string{"40%", "70%"}
	}
	for _, ds := range cfg.Data.Datasets {
		pie.AddSeries(ds.Label, toPieData(cfg.Data.Labels, ds.Data),
			charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	}
	return renderChart(pie)
}

func (e *EChartsEngine) renderBar(cfg ChartConfig) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(e.globalOptions(cfg), e.axisOptions(cfg)...)...)
	bar.SetXAxis(cfg.Data.Labels)
	for _, ds := range cfg.Data.Datasets {
		bar.AddSeries(ds.Label, toBarData(cfg.Data.Labels, ds.Data))
	}
	return renderChart(bar)
}

func (e *EChartsEngine) renderLine(cfg ChartConfig) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(append(e.globalOptions(cfg), e.axisOptions(cfg)...)...)
	line.SetXAxis(cfg.Data.Labels)
	for _, ds := range cfg.Data.Datasets {
		line.AddSeries(ds.Label, toLineData(cfg.Data.Labels, ds.Data))
	}
	return renderChart(line)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *EChartsEngine) globalOptions(cfg ChartConfig) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		ChartID:   cfg.ElementID,
		Theme:     cfg.Theme,
		Height:    e.height,
		PageTitle: cfg.Title,
	}
	if cfg.Options.Responsive {
		initOpts.Width = "100%"
	}
	if e.assetsHost != "" {
		initOpts.AssetsHost = e.assetsHost
	}
	legend := opts.Legend{Show: opts.Bool(cfg.Options.Legend.Display)}
	if cfg.Options.Legend.Display && cfg.Options.Legend.Position != "" {
		legend.Top = cfg.Options.Legend.Position
	}
	trigger := "axis"
	if IsPieLike(cfg.Type) {
		trigger = "item"
	}
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: cfg.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(legend),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
	}
	if colors := datasetColors(cfg.Data); len(colors) > 0 {
		global = append(global, charts.WithColorsOpts(opts.Colors(colors)))
	}
	return global
}

func (e *EChartsEngine) axisOptions(cfg ChartConfig) []charts.GlobalOpts {
	y := opts.YAxis{Type: "value"}
	if scale, ok := cfg.Options.Scales["y"]; ok {
		if scale.BeginAtZero {
			y.Min = 0
		}
		if scale.Precision == 0 {
			y.MinInterval = 1
		}
	}
	return []charts.GlobalOpts{charts.WithYAxisOpts(y)}
}

// datasetColors flattens the background colors of the first dataset that
// declares any. Pie-like charts color slices, others color series.
func datasetColors(data ChartData) []string {
	for _, ds := range data.Datasets {
		switch val := ds.BackgroundColor.(type) {
		case string:
			if val != "" {
				return []string{val}
			}
		case []string:
			if len(val) > 0 {
				return append([]string(nil), val...)
			}
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func labelAt(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("Item %d", i+1)
}

func toPieData(labels []string, values []float64) []opts.PieData {
	data := make([]opts.PieData, len(values))
	for i, v := range values {
		data[i] = opts.PieData{Name: labelAt(labels, i), Value: v}
	}
	return data
}

func toBarData(labels []string, values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Name: labelAt(labels, i), Value: v}
	}
	return data
}

func toLineData(labels []string, values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Name: labelAt(labels, i), Value: v}
	}
	return data
}

// EChartsInstance is a rendered chart handed out by EChartsEngine.
type EChartsInstance struct {
	id        string
	elementID string
	chartType string
	html      string
	release   func(string)

	once      sync.Once
	mu        sync.Mutex
	destroyed bool
}

// ID is the unique instance identifier.
func (i *EChartsInstance) ID() string { return i.id }

// ElementID is the DOM id of the chart container.
func (i *EChartsInstance) ElementID() string { return i.elementID }

// Type is the chart type the instance was drawn as.
func (i *EChartsInstance) Type() string { return i.chartType }

// HTML returns the rendered markup, empty once destroyed.
func (i *EChartsInstance) HTML() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return ""
	}
	return i.html
}

// Destroyed reports whether Destroy has run.
func (i *EChartsInstance) Destroyed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.destroyed
}

// Destroy releases the instance. Repeated calls are no-ops.
func (i *EChartsInstance) Destroy() error {
	i.once.Do(func() {
		i.mu.Lock()
		i.destroyed = true
		i.mu.Unlock()
		if i.release != nil {
			i.release(i.id)
		}
	})
	return nil
}
