package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	errMissingCaller   = errors.New("portal: remote caller not configured")
	errMissingEndpoint = errors.New("portal: dashboard endpoint is required")
)

// WidgetState is the observable state of a DashboardWidget.
type WidgetState struct {
	Loading bool
	Data    Payload
	Err     error
	// Seq is the sequence token of the request that produced Data.
	Seq uint64
}

// PayloadObserver is called after each committed payload.
type PayloadObserver func(ctx context.Context, payload Payload)

// WidgetOptions configures a DashboardWidget.
type WidgetOptions struct {
	Endpoint    string
	Caller      RemoteCaller
	Actions     ActionExecutor
	Bundles     *BundleLoader
	Logger      *zap.Logger
	Telemetry   Telemetry
	RefreshHook RefreshHook
}

// DashboardWidget fetches the aggregate of one dashboard endpoint and routes
// card clicks to navigation actions. When refreshes overlap, only the most
// recently issued request may commit its result or clear the loading flag.
type DashboardWidget struct {
	opts WidgetOptions

	mu        sync.Mutex
	state     WidgetState
	issued    uint64
	observers map[int]PayloadObserver
	nextObs   int

	notifyMu sync.Mutex
}

// NewDashboardWidget builds a widget with safe defaults. The widget starts in
// the loading state.
func NewDashboardWidget(opts WidgetOptions) *DashboardWidget {
	if opts.Bundles == nil {
		opts.Bundles = DefaultBundleLoader()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &DashboardWidget{
		opts:      opts,
		state:     WidgetState{Loading: true},
		observers: make(map[int]PayloadObserver),
	}
}

// Endpoint returns the remote entity the widget reads from.
func (w *DashboardWidget) Endpoint() string { return w.opts.Endpoint }

// Start loads the chart bundle and then the dashboard data. It must complete
// before the widget is first rendered.
func (w *DashboardWidget) Start(ctx context.Context) error {
	if err := w.opts.Bundles.Load(ctx, ChartBundle); err != nil {
		return err
	}
	return w.LoadDashboard(ctx)
}

// LoadDashboard fetches the payload. A response superseded by a newer request
// is dropped and reported as success.
func (w *DashboardWidget) LoadDashboard(ctx context.Context) error {
	if err := w.validate(); err != nil {
		w.mu.Lock()
		w.state.Loading = false
		w.state.Err = err
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.issued++
	seq := w.issued
	w.state.Loading = true
	w.mu.Unlock()

	payload, err := w.opts.Caller.Call(ctx, w.opts.Endpoint, MethodRetrieveDashboard, []any{})

	w.mu.Lock()
	if seq != w.issued {
		w.mu.Unlock()
		w.opts.Logger.Debug("dropping superseded dashboard response",
			zap.String("endpoint", w.opts.Endpoint),
			zap.Uint64("seq", seq),
		)
		return nil
	}
	if err != nil {
		w.state.Loading = false
		w.state.Err = err
		w.mu.Unlock()
		w.opts.Logger.Error("retrieve dashboard failed",
			zap.String("endpoint", w.opts.Endpoint),
			zap.Error(err),
		)
		w.opts.Telemetry.Record(ctx, "portal.dashboard.error", map[string]any{
			"endpoint": w.opts.Endpoint,
			"error":    err.Error(),
		})
		return fmt.Errorf("portal: retrieve dashboard %s: %w", w.opts.Endpoint, err)
	}
	w.state = WidgetState{Loading: false, Data: payload, Seq: seq}
	w.mu.Unlock()

	w.notify(ctx, seq, payload)
	if err := w.opts.RefreshHook.DashboardUpdated(ctx, DashboardEvent{
		Endpoint: w.opts.Endpoint,
		Reason:   "load",
		Seq:      seq,
		Payload:  payload,
	}); err != nil {
		w.opts.Logger.Warn("refresh hook failed", zap.String("endpoint", w.opts.Endpoint), zap.Error(err))
	}
	w.opts.Telemetry.Record(ctx, "portal.dashboard.load", map[string]any{
		"endpoint": w.opts.Endpoint,
		"seq":      seq,
	})
	return nil
}

func (w *DashboardWidget) validate() error {
	if w.opts.Endpoint == "" {
		return errMissingEndpoint
	}
	if w.opts.Caller == nil {
		return errMissingCaller
	}
	return nil
}

// OnRefresh reloads the dashboard.
func (w *DashboardWidget) OnRefresh(ctx context.Context) error {
	return w.LoadDashboard(ctx)
}

// OnCardClick forwards action verbatim to the action executor. Failures are
// logged, not returned.
func (w *DashboardWidget) OnCardClick(ctx context.Context, action string) {
	if action == "" {
		return
	}
	if w.opts.Actions == nil {
		w.opts.Logger.Warn("card click without action executor", zap.String("action", action))
		return
	}
	w.opts.Telemetry.Record(ctx, "portal.card.click", map[string]any{
		"endpoint": w.opts.Endpoint,
		"action":   action,
	})
	if err := w.opts.Actions.DoAction(ctx, action); err != nil {
		w.opts.Logger.Error("card action failed", zap.String("action", action), zap.Error(err))
	}
}

// ClickHandler adapts OnCardClick for KPICard.Click.
func (w *DashboardWidget) ClickHandler(ctx context.Context) CardClickHandler {
	return func(action string) {
		w.OnCardClick(ctx, action)
	}
}

// State returns a snapshot of the widget state.
func (w *DashboardWidget) State() WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Loading reports whether the latest request is still in flight.
func (w *DashboardWidget) Loading() bool {
	return w.State().Loading
}

// View decodes the current payload.
func (w *DashboardWidget) View() DashboardView {
	return DecodeView(w.State().Data)
}

// Cards returns the KPI cards of every section in payload order.
func (w *DashboardWidget) Cards() []KPICard {
	var cards []KPICard
	for _, section := range w.View().Sections {
		for _, kpi := range section.KPIs {
			cards = append(cards, NewKPICard(kpi))
		}
	}
	return cards
}

// Subscribe registers fn for payload changes and returns its cancel func.
// Observers run in subscription order. An observer may reload the widget with
// the context it receives; the nested notification runs inline.
func (w *DashboardWidget) Subscribe(fn PayloadObserver) func() {
	if fn == nil {
		return func() {}
	}
	w.mu.Lock()
	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.observers, id)
		w.mu.Unlock()
	}
}

// notifyingKey marks contexts handed to observers of one widget.
type notifyingKey struct{ w *DashboardWidget }

func (w *DashboardWidget) notify(ctx context.Context, seq uint64, payload Payload) {
	if ctx.Value(notifyingKey{w}) == nil {
		w.notifyMu.Lock()
		defer w.notifyMu.Unlock()
		ctx = context.WithValue(ctx, notifyingKey{w}, true)
	}
	w.mu.Lock()
	if w.state.Seq != seq {
		w.mu.Unlock()
		return
	}
	observers := make([]PayloadObserver, 0, len(w.observers))
	for id := 0; id < w.nextObs; id++ {
		if fn, ok := w.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	w.mu.Unlock()
	for _, fn := range observers {
		fn(ctx, payload)
	}
}
