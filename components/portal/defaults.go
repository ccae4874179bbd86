package portal

import (
	"context"
	"time"

	"github.com/goliatone/go-portal/pkg/search"
)

// Navigation actions opened from the default KPI cards.
const (
	ActionApproveRequests = "isic_approbation.isic_approbation_demande_action_approve"
	ActionAllRequests     = "isic_approbation.isic_approbation_demande_action"
	ActionMyRequests      = "isic_approbation.isic_approbation_demande_action_my"
)

// Approval request states, in display order.
const (
	StateDraft     = "draft"
	StateSubmitted = "submitted"
	StateApproved  = "approved"
	StateRejected  = "rejected"
	StateCancelled = "cancelled"
)

// Document validation states.
const (
	DocumentDraft     = "draft"
	DocumentValidated = "validated"
)

// requestStates lists the doughnut slices: state, label, color.
var requestStates = []struct {
	State string
	Label string
	Color string
}{
	{StateDraft, "Brouillon", "#adb5bd"},
	{StateSubmitted, "Soumise", "#ffc107"},
	{StateApproved, "Approuvée", "#28a745"},
	{StateRejected, "Refusée", "#dc3545"},
	{StateCancelled, "Annulée", "#6c757d"},
}

const trendMonths = 6

// DefaultSections returns the shipped section definitions.
func DefaultSections() []SectionDefinition {
	return []SectionDefinition{
		{Code: "direction", Name: "Vue d'ensemble", Icon: "fa-tachometer", Sequence: 10, Groups: []string{GroupDirection}, HasChart: true},
		{Code: "scolarite", Name: "Scolarité", Icon: "fa-graduation-cap", Sequence: 20, Groups: []string{GroupScolarite}},
		{Code: "ged", Name: "Documents", Icon: "fa-folder-open", Sequence: 30},
		{Code: "approbation", Name: "Approbations", Icon: "fa-check-circle-o", Sequence: 40, HasChart: true},
	}
}

// DefaultSectionCatalog builds a catalog holding DefaultSections.
func DefaultSectionCatalog() *SectionCatalog {
	catalog, err := NewSectionCatalog(DefaultSections()...)
	if err != nil {
		panic(err)
	}
	return catalog
}

// DefaultSectionBuilders maps the default section codes to their KPI builders.
func DefaultSectionBuilders() map[string]SectionBuilder {
	return map[string]SectionBuilder{
		"direction":   buildDirectionSection,
		"scolarite":   buildScolariteSection,
		"ged":         buildDocumentsSection,
		"approbation": buildApprovalSection,
	}
}

// DefaultChartBuilders maps the default section codes to their chart builders.
func DefaultChartBuilders() map[string]ChartBuilder {
	return map[string]ChartBuilder{
		"direction":   buildRequestTrendChart,
		"approbation": buildRequestStatesChart,
	}
}

// kpi describes one counted card.
type kpi struct {
	label  string
	model  string
	domain search.Domain
	icon   string
	color  string
	action string
	hidden func(count int) bool
}

func countKPIs(ctx context.Context, req SectionRequest, kpis []kpi) (Section, error) {
	section := Section{Title: req.Definition.Name, Icon: req.Definition.Icon, KPIs: []CardDescriptor{}}
	for _, k := range kpis {
		count, err := req.Counter.Count(ctx, k.model, k.domain)
		if err != nil {
			return Section{}, err
		}
		if k.hidden != nil && k.hidden(count) {
			continue
		}
		section.KPIs = append(section.KPIs, CardDescriptor{
			Label:  k.label,
			Value:  count,
			Icon:   k.icon,
			Color:  k.color,
			Action: k.action,
		})
	}
	return section, nil
}

func yearDomain(year *AcademicYear) search.Domain {
	if year == nil {
		return search.Domain{}
	}
	return search.Domain{search.Where("annee_academique_id", search.OpEqual, year.ID)}
}

func buildDirectionSection(ctx context.Context, req SectionRequest) ([]Section, error) {
	section, err := countKPIs(ctx, req, []kpi{
		{label: "Utilisateurs internes", model: ModelUsers, domain: search.Domain{search.Where("share", search.OpEqual, false)}, icon: "fa-users", color: "primary"},
		{label: "Total documents GED", model: ModelDMSFile, domain: search.Domain{}, icon: "fa-archive", color: "success"},
		{label: "Demandes en cours", model: ModelApprovalRequest, domain: search.Domain{search.Where("state", search.OpEqual, StateSubmitted)}, icon: "fa-hourglass-half", color: "warning", action: ActionApproveRequests},
		{label: "Total demandes", model: ModelApprovalRequest, domain: search.Domain{}, icon: "fa-check-circle", color: "info", action: ActionAllRequests},
	})
	if err != nil {
		return nil, err
	}
	return []Section{section}, nil
}

func buildScolariteSection(ctx context.Context, req SectionRequest) ([]Section, error) {
	toValidate := search.Domain{search.Where("ged_state", search.OpEqual, DocumentDraft)}.And(yearDomain(req.Year)...)
	validated := search.Domain{search.Where("ged_state", search.OpEqual, DocumentValidated)}.And(yearDomain(req.Year)...)
	section, err := countKPIs(ctx, req, []kpi{
		{label: "Documents à valider", model: ModelDMSFile, domain: toValidate, icon: "fa-file-text-o", color: "warning"},
		{label: "Documents validés", model: ModelDMSFile, domain: validated, icon: "fa-check-square-o", color: "success"},
		{label: "Demandes en attente", model: ModelApprovalRequest, domain: search.Domain{search.Where("state", search.OpEqual, StateSubmitted)}, icon: "fa-clock-o", color: "info", action: ActionApproveRequests},
	})
	if err != nil {
		return nil, err
	}
	return []Section{section}, nil
}

func buildDocumentsSection(ctx context.Context, req SectionRequest) ([]Section, error) {
	section, err := countKPIs(ctx, req, []kpi{
		{label: "Mes documents", model: ModelDMSFile, domain: search.Domain{search.Where("create_uid", search.OpEqual, req.Viewer.UserID)}, icon: "fa-file-o", color: "primary"},
		{label: "Documents cette année", model: ModelDMSFile, domain: yearDomain(req.Year), icon: "fa-calendar", color: "info"},
	})
	if err != nil {
		return nil, err
	}
	return []Section{section}, nil
}

func buildApprovalSection(ctx context.Context, req SectionRequest) ([]Section, error) {
	mine := search.Domain{search.Where("demandeur_id", search.OpEqual, req.Viewer.UserID)}
	section, err := countKPIs(ctx, req, []kpi{
		{label: "Mes demandes", model: ModelApprovalRequest, domain: mine, icon: "fa-list", color: "primary", action: ActionMyRequests},
		{label: "En attente", model: ModelApprovalRequest, domain: mine.And(search.Where("state", search.OpEqual, StateSubmitted)), icon: "fa-hourglass-half", color: "warning"},
		{label: "Approuvées", model: ModelApprovalRequest, domain: mine.And(search.Where("state", search.OpEqual, StateApproved)), icon: "fa-thumbs-up", color: "success"},
		{
			label:  "À approuver",
			model:  ModelApprovalRequest,
			domain: search.Domain{search.Where("reviewer_ids", search.OpIn, req.Viewer.UserID), search.Where("state", search.OpEqual, StateSubmitted)},
			icon:   "fa-gavel",
			color:  "danger",
			action: ActionApproveRequests,
			hidden: func(count int) bool { return count == 0 },
		},
	})
	if err != nil {
		return nil, err
	}
	return []Section{section}, nil
}

func buildRequestStatesChart(ctx context.Context, req SectionRequest) ([]ChartSpec, error) {
	labels := make([]string, 0, len(requestStates))
	values := make([]float64, 0, len(requestStates))
	colors := make([]string, 0, len(requestStates))
	for _, st := range requestStates {
		count, err := req.Counter.Count(ctx, ModelApprovalRequest, search.Domain{search.Where("state", search.OpEqual, st.State)})
		if err != nil {
			return nil, err
		}
		labels = append(labels, st.Label)
		values = append(values, float64(count))
		colors = append(colors, st.Color)
	}
	return []ChartSpec{{
		Title: "Demandes par état",
		Type:  ChartDoughnut,
		Data: ChartData{
			Labels:   labels,
			Datasets: []Dataset{{Label: "Demandes", Data: values, BackgroundColor: colors}},
		},
	}}, nil
}

// buildRequestTrendChart counts requests created in each of the last
// trendMonths calendar months, oldest first.
func buildRequestTrendChart(ctx context.Context, req SectionRequest) ([]ChartSpec, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	labels := make([]string, 0, trendMonths)
	values := make([]float64, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		count, err := req.Counter.Count(ctx, ModelApprovalRequest, search.Domain{
			search.Where("create_date", search.OpGTE, start.Format(time.DateOnly)),
			search.Where("create_date", search.OpLT, end.Format(time.DateOnly)),
		})
		if err != nil {
			return nil, err
		}
		labels = append(labels, start.Format("01/2006"))
		values = append(values, float64(count))
	}
	return []ChartSpec{{
		Title: "Évolution des demandes",
		Type:  ChartLine,
		Data: ChartData{
			Labels:   labels,
			Datasets: []Dataset{{Label: "Demandes créées", Data: values, BackgroundColor: "#007bff"}},
		},
	}}, nil
}
