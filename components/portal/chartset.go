package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ChartSet keeps one DashboardChart per chart entry of a widget payload.
type ChartSet struct {
	widget *DashboardWidget
	engine ChartEngine
	theme  string
	cancel func()

	mu     sync.Mutex
	charts []*DashboardChart
	closed bool
}

// ChartSetOption customizes a ChartSet.
type ChartSetOption func(*ChartSet)

// WithChartSetTheme sets the chart theme, usually from ThemeForScheme.
func WithChartSetTheme(theme string) ChartSetOption {
	return func(s *ChartSet) {
		s.theme = theme
	}
}

// BindCharts mounts the charts of the current payload and keeps them in sync
// with every later payload until Close.
func (w *DashboardWidget) BindCharts(ctx context.Context, engine ChartEngine, options ...ChartSetOption) (*ChartSet, error) {
	if engine == nil {
		return nil, errMissingEngine
	}
	set := &ChartSet{widget: w, engine: engine}
	for _, opt := range options {
		opt(set)
	}
	set.cancel = w.Subscribe(func(ctx context.Context, payload Payload) {
		if err := set.sync(ctx, payload); err != nil {
			w.opts.Logger.Error("sync dashboard charts", zap.String("endpoint", w.opts.Endpoint), zap.Error(err))
		}
	})
	return set, set.sync(ctx, w.State().Data)
}

// Charts returns the bound charts in payload order.
func (s *ChartSet) Charts() []*DashboardChart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*DashboardChart(nil), s.charts...)
}

// Close stops syncing and unmounts every chart.
func (s *ChartSet) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	var errs []error
	for _, chart := range s.charts {
		if err := chart.Unmount(); err != nil {
			errs = append(errs, err)
		}
	}
	s.charts = nil
	return errors.Join(errs...)
}

func (s *ChartSet) sync(ctx context.Context, payload Payload) error {
	specs := DecodeView(payload).Charts
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	var errs []error
	next := make([]*DashboardChart, 0, len(specs))
	for i, spec := range specs {
		if i < len(s.charts) {
			current := s.charts[i]
			props := current.Props()
			if strings.EqualFold(props.Type, spec.Type) && props.Title == spec.Title {
				if err := current.SetData(ctx, spec.Data); err != nil {
					errs = append(errs, err)
				}
				next = append(next, current)
				continue
			}
			if err := current.Unmount(); err != nil {
				errs = append(errs, err)
			}
		}
		chart := NewDashboardChart(s.engine, ChartProps{
			Title:     spec.Title,
			Type:      spec.Type,
			Data:      spec.Data,
			Theme:     s.theme,
			ElementID: s.elementID(i),
		})
		if err := chart.Mount(ctx); err != nil {
			errs = append(errs, err)
		}
		next = append(next, chart)
	}
	for i := len(specs); i < len(s.charts); i++ {
		if err := s.charts[i].Unmount(); err != nil {
			errs = append(errs, err)
		}
	}
	s.charts = next
	return errors.Join(errs...)
}

func (s *ChartSet) elementID(index int) string {
	return chartElementID(s.widget.Endpoint(), index)
}

// chartElementID derives the DOM id of the index-th chart of endpoint.
// go-echarts uses the id in JS identifiers.
func chartElementID(endpoint string, index int) string {
	endpoint = strings.NewReplacer(".", "_", "-", "_").Replace(endpoint)
	return fmt.Sprintf("%s_chart_%d", endpoint, index)
}
