package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errMissingEngine = errors.New("portal: chart engine is required")

// ChartProps are the inputs of a DashboardChart.
type ChartProps struct {
	Title string
	Type  string
	Data  ChartData
	Theme string
	// ElementID pins the DOM id of the chart container.
	ElementID string
}

// DashboardChart owns at most one live chart instance. Every data change
// destroys the current instance before creating its replacement.
type DashboardChart struct {
	engine  ChartEngine
	bundles *BundleLoader

	mu       sync.Mutex
	props    ChartProps
	instance ChartInstance
	mounted  bool
}

// ChartOption customizes a DashboardChart.
type ChartOption func(*DashboardChart)

// WithChartBundles makes Mount wait for the chart bundle.
func WithChartBundles(loader *BundleLoader) ChartOption {
	return func(c *DashboardChart) {
		c.bundles = loader
	}
}

// NewDashboardChart binds props to engine. Nothing is drawn until Mount.
func NewDashboardChart(engine ChartEngine, props ChartProps, options ...ChartOption) *DashboardChart {
	c := &DashboardChart{engine: engine, props: props}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Mount draws the chart.
func (c *DashboardChart) Mount(ctx context.Context) error {
	if c.engine == nil {
		return errMissingEngine
	}
	if c.bundles != nil {
		if err := c.bundles.Load(ctx, ChartBundle); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = true
	return c.redrawLocked(ctx)
}

// SetData replaces the chart data. Equal data is a no-op; otherwise a
// mounted chart is redrawn.
func (c *DashboardChart) SetData(ctx context.Context, data ChartData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.props.Data.Equal(data) && (c.instance != nil || !c.mounted) {
		return nil
	}
	c.props.Data = data
	if !c.mounted {
		return nil
	}
	return c.redrawLocked(ctx)
}

// Unmount destroys the live instance. Safe to call more than once.
func (c *DashboardChart) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	return c.destroyLocked()
}

// Instance returns the live chart instance, nil when none.
func (c *DashboardChart) Instance() ChartInstance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instance
}

// Props returns the current props.
func (c *DashboardChart) Props() ChartProps {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props
}

func (c *DashboardChart) redrawLocked(ctx context.Context) error {
	if err := c.destroyLocked(); err != nil {
		return err
	}
	inst, err := c.engine.NewChart(ctx, ChartConfig{
		ElementID: c.props.ElementID,
		Title:     c.props.Title,
		Type:      c.props.Type,
		Data:      c.props.Data,
		Options:   OptionsFor(c.props.Type),
		Theme:     c.props.Theme,
	})
	if err != nil {
		return fmt.Errorf("portal: draw chart %q: %w", c.props.Title, err)
	}
	c.instance = inst
	return nil
}

func (c *DashboardChart) destroyLocked() error {
	if c.instance == nil {
		return nil
	}
	inst := c.instance
	c.instance = nil
	if err := inst.Destroy(); err != nil {
		return fmt.Errorf("portal: destroy chart %s: %w", inst.ID(), err)
	}
	return nil
}
