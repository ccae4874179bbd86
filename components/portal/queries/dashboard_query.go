package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-portal/components/portal"
)

// RetrieveDashboardInput identifies the viewer requesting a dashboard.
type RetrieveDashboardInput struct {
	Viewer portal.ViewerContext
}

type dashboardService interface {
	Retrieve(ctx context.Context, viewer portal.ViewerContext) (portal.Payload, error)
}

// RetrieveDashboardQuery returns the dashboard payload of one endpoint.
type RetrieveDashboardQuery struct {
	service dashboardService
}

// NewRetrieveDashboardQuery builds the query.
func NewRetrieveDashboardQuery(service dashboardService) *RetrieveDashboardQuery {
	return &RetrieveDashboardQuery{service: service}
}

var _ gocommand.Querier[RetrieveDashboardInput, portal.Payload] = (*RetrieveDashboardQuery)(nil)

// Query builds the payload for the viewer.
func (q *RetrieveDashboardQuery) Query(ctx context.Context, input RetrieveDashboardInput) (portal.Payload, error) {
	if q.service == nil {
		return nil, errors.New("dashboard query requires service")
	}
	return q.service.Retrieve(ctx, input.Viewer)
}
