package portal

import "encoding/json"

// Payload keys produced by retrieve_dashboard.
const (
	KeyUserName     = "user_name"
	KeyAcademicYear = "annee_academique"
	KeySections     = "sections"
	KeyCharts       = "charts"
)

// DecodeView projects the opaque payload onto a DashboardView. Missing keys
// yield empty fields and malformed entries are skipped, so a partial payload
// renders as a partial dashboard.
func DecodeView(p Payload) DashboardView {
	var view DashboardView
	if p == nil {
		return view
	}
	view.UserName = stringValue(p[KeyUserName], "")
	view.AcademicYear = stringValue(p[KeyAcademicYear], "")
	for _, raw := range listValue(p[KeySections]) {
		var section Section
		if decodeEntry(raw, &section) && section.Title != "" {
			for i := range section.KPIs {
				section.KPIs[i] = section.KPIs[i].withDefaults()
			}
			view.Sections = append(view.Sections, section)
		}
	}
	for _, raw := range listValue(p[KeyCharts]) {
		var chart ChartSpec
		if decodeEntry(raw, &chart) && chart.Type != "" {
			view.Charts = append(view.Charts, chart)
		}
	}
	return view
}

func decodeEntry(raw any, target any) bool {
	data, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}

func listValue(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []map[string]any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out
	case []Section:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out
	case []ChartSpec:
		out := make([]any, len(val))
		for i := range val {
			out[i] = val[i]
		}
		return out
	default:
		return nil
	}
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
