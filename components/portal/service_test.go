package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-portal/pkg/search"
)

var fixedNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func seededRecords() *MemoryRecords {
	records := NewMemoryRecords()
	records.Add(ModelUsers,
		search.Record{"id": 1, "share": false},
		search.Record{"id": 2, "share": false},
		search.Record{"id": 3, "share": true},
	)
	records.Add(ModelDMSFile,
		search.Record{"create_uid": "7", "ged_state": "draft", "annee_academique_id": 3},
		search.Record{"create_uid": "7", "ged_state": "validated", "annee_academique_id": 3},
		search.Record{"create_uid": "8", "ged_state": "draft", "annee_academique_id": 2},
	)
	records.Add(ModelApprovalRequest,
		search.Record{"demandeur_id": "7", "state": "submitted", "reviewer_ids": []any{"1"}, "create_date": "2026-03-02"},
		search.Record{"demandeur_id": "7", "state": "approved", "reviewer_ids": []any{"1"}, "create_date": "2026-02-10"},
		search.Record{"demandeur_id": "8", "state": "submitted", "reviewer_ids": []any{"1", "7"}, "create_date": "2025-12-24"},
		search.Record{"demandeur_id": "8", "state": "draft", "create_date": "2025-06-01"},
	)
	return records
}

func newTestService(records RecordCounter) *DashboardService {
	return NewDashboardService(ServiceOptions{
		Endpoint: EndpointDashboard,
		Counter:  records,
		Years:    StaticAcademicYear{Year: &AcademicYear{ID: 3, Name: "2025-2026"}},
		Now:      func() time.Time { return fixedNow },
	})
}

func sectionTitles(view DashboardView) []string {
	out := make([]string, len(view.Sections))
	for i, s := range view.Sections {
		out[i] = s.Title
	}
	return out
}

func kpiByLabel(t *testing.T, section Section, label string) CardDescriptor {
	t.Helper()
	for _, k := range section.KPIs {
		if k.Label == label {
			return k
		}
	}
	t.Fatalf("kpi %q not found in %s", label, section.Title)
	return CardDescriptor{}
}

func TestRetrieveForDirectionUser(t *testing.T) {
	service := newTestService(seededRecords())
	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "7", Name: "Admin", Groups: []string{GroupDirection}})
	require.NoError(t, err)

	view := DecodeView(payload)
	assert.Equal(t, "Admin", view.UserName)
	assert.Equal(t, "2025-2026", view.AcademicYear)
	assert.Equal(t, []string{"Vue d'ensemble", "Documents", "Approbations"}, sectionTitles(view))

	overview := view.Sections[0]
	assert.Equal(t, 2, kpiByLabel(t, overview, "Utilisateurs internes").Value)
	assert.Equal(t, 3, kpiByLabel(t, overview, "Total documents GED").Value)
	pending := kpiByLabel(t, overview, "Demandes en cours")
	assert.Equal(t, 2, pending.Value)
	assert.Equal(t, ActionApproveRequests, pending.Action)

	require.Len(t, view.Charts, 2)
	assert.Equal(t, ChartLine, view.Charts[0].Type)
	assert.Equal(t, "Évolution des demandes", view.Charts[0].Title)
	assert.Equal(t, []string{"10/2025", "11/2025", "12/2025", "01/2026", "02/2026", "03/2026"}, view.Charts[0].Data.Labels)
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 1}, view.Charts[0].Data.Datasets[0].Data)

	doughnut := view.Charts[1]
	assert.Equal(t, ChartDoughnut, doughnut.Type)
	assert.Equal(t, []string{"Brouillon", "Soumise", "Approuvée", "Refusée", "Annulée"}, doughnut.Data.Labels)
	assert.Equal(t, []float64{1, 2, 1, 0, 0}, doughnut.Data.Datasets[0].Data)
}

func TestRetrieveWithoutDirectionHasNoLineChart(t *testing.T) {
	service := newTestService(seededRecords())
	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "8", Name: "Enseignant"})
	require.NoError(t, err)
	view := DecodeView(payload)
	assert.Equal(t, []string{"Documents", "Approbations"}, sectionTitles(view))
	require.Len(t, view.Charts, 1)
	assert.Equal(t, ChartDoughnut, view.Charts[0].Type)
}

func TestScolariteCountsCurrentYearDocuments(t *testing.T) {
	records := seededRecords()
	records.Add(ModelDMSFile, search.Record{"create_uid": "8", "ged_state": "validated", "annee_academique_id": 2})
	service := newTestService(records)
	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "7", Groups: []string{GroupScolarite}})
	require.NoError(t, err)
	view := DecodeView(payload)
	require.Equal(t, "Scolarité", view.Sections[0].Title)
	assert.Equal(t, 1, kpiByLabel(t, view.Sections[0], "Documents à valider").Value)
	assert.Equal(t, 1, kpiByLabel(t, view.Sections[0], "Documents validés").Value)
}

func TestApprovalSectionHidesEmptyReviewQueue(t *testing.T) {
	service := newTestService(seededRecords())

	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "7"})
	require.NoError(t, err)
	approvals := DecodeView(payload).Sections[1]
	assert.Equal(t, 1, kpiByLabel(t, approvals, "À approuver").Value)
	assert.Equal(t, 2, kpiByLabel(t, approvals, "Mes demandes").Value)
	assert.Equal(t, 1, kpiByLabel(t, approvals, "En attente").Value)
	assert.Equal(t, 1, kpiByLabel(t, approvals, "Approuvées").Value)

	payload, err = service.Retrieve(context.Background(), ViewerContext{UserID: "9"})
	require.NoError(t, err)
	approvals = DecodeView(payload).Sections[1]
	assert.Len(t, approvals.KPIs, 3)
}

func TestRetrieveWithoutYear(t *testing.T) {
	service := NewDashboardService(ServiceOptions{Counter: seededRecords(), Now: func() time.Time { return fixedNow }})
	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "7"})
	require.NoError(t, err)
	view := DecodeView(payload)
	assert.Equal(t, "", view.AcademicYear)
	assert.Equal(t, 3, kpiByLabel(t, view.Sections[0], "Documents cette année").Value)
}

func TestRetrieveSkipsInactiveAndUnknownSections(t *testing.T) {
	catalog := DefaultSectionCatalog()
	require.NoError(t, catalog.SetActive("ged", false))
	require.NoError(t, catalog.Add(SectionDefinition{Code: "custom", Name: "Custom", Sequence: 5}))
	service := NewDashboardService(ServiceOptions{Catalog: catalog, Counter: seededRecords()})
	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "7"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Approbations"}, sectionTitles(DecodeView(payload)))
}

func TestRetrievePropagatesCounterErrors(t *testing.T) {
	boom := errors.New("db down")
	service := NewDashboardService(ServiceOptions{Counter: RecordCounterFunc(func(context.Context, string, search.Domain) (int, error) {
		return 0, boom
	})})
	_, err := service.Retrieve(context.Background(), ViewerContext{})
	assert.ErrorIs(t, err, boom)

	_, err = NewDashboardService(ServiceOptions{}).Retrieve(context.Background(), ViewerContext{})
	assert.ErrorIs(t, err, errMissingCounter)
}

func TestKPIValuesAreIntegers(t *testing.T) {
	service := newTestService(seededRecords())
	payload, err := service.Retrieve(context.Background(), ViewerContext{UserID: "7", Groups: []string{GroupDirection}})
	require.NoError(t, err)
	sections, ok := payload[KeySections].([]Section)
	require.True(t, ok)
	for _, section := range sections {
		for _, k := range section.KPIs {
			assert.IsType(t, int(0), k.Value)
		}
	}
}
