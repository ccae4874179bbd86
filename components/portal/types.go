package portal

import (
	"context"
)

// MethodRetrieveDashboard is the remote method every dashboard endpoint exposes.
const MethodRetrieveDashboard = "retrieve_dashboard"

// Endpoint identifiers for the two dashboards shipped with the portal.
const (
	EndpointPortalDashboard = "isic.portal.dashboard"
	EndpointDashboard       = "isic.dashboard"
)

// RemoteCaller invokes a named server-side procedure and returns its JSON result.
type RemoteCaller interface {
	Call(ctx context.Context, model, method string, args []any) (Payload, error)
}

// ActionExecutor resolves a navigation/action identifier (usually an xmlid).
type ActionExecutor interface {
	DoAction(ctx context.Context, action string) error
}

// ActionExecutorFunc adapts a function into an ActionExecutor.
type ActionExecutorFunc func(ctx context.Context, action string) error

// DoAction implements ActionExecutor.
func (f ActionExecutorFunc) DoAction(ctx context.Context, action string) error {
	return f(ctx, action)
}

// Payload is the opaque aggregate returned by retrieve_dashboard.
type Payload map[string]any

// ViewerContext captures the active user information needed to build dashboards.
type ViewerContext struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Groups      []string `json:"groups"`
	Locale      string   `json:"locale"`
	ColorScheme string   `json:"color_scheme"`
}

// HasGroup reports whether the viewer belongs to the group xmlid.
func (v ViewerContext) HasGroup(group string) bool {
	for _, g := range v.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// CardDescriptor describes a single KPI card.
type CardDescriptor struct {
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Icon   string `json:"icon,omitempty"`
	Color  string `json:"color,omitempty"`
	Action string `json:"action,omitempty"`
}

// Section groups KPI cards under a title.
type Section struct {
	Title string           `json:"title"`
	Icon  string           `json:"icon,omitempty"`
	KPIs  []CardDescriptor `json:"kpis"`
}

// ChartSpec is a chart entry of the dashboard payload.
type ChartSpec struct {
	Title string    `json:"title"`
	Type  string    `json:"type"`
	Data  ChartData `json:"data"`
}

// ChartData mirrors the labels/datasets layout produced by the server.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a named series of values.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
}

// Equal reports whether two chart datasets hold the same values.
func (d ChartData) Equal(other ChartData) bool {
	if len(d.Labels) != len(other.Labels) || len(d.Datasets) != len(other.Datasets) {
		return false
	}
	for i := range d.Labels {
		if d.Labels[i] != other.Labels[i] {
			return false
		}
	}
	for i := range d.Datasets {
		a, b := d.Datasets[i], other.Datasets[i]
		if a.Label != b.Label || len(a.Data) != len(b.Data) {
			return false
		}
		for j := range a.Data {
			if a.Data[j] != b.Data[j] {
				return false
			}
		}
	}
	return true
}

// DashboardView is a typed, best-effort projection of a Payload.
type DashboardView struct {
	UserName     string
	AcademicYear string
	Sections     []Section
	Charts       []ChartSpec
}
