package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var errMissingCounter = errors.New("portal: record counter not configured")

// SectionRequest carries what section and chart builders need.
type SectionRequest struct {
	Definition SectionDefinition
	Viewer     ViewerContext
	Year       *AcademicYear
	Counter    RecordCounter
	Now        time.Time
}

// SectionBuilder produces the KPI sections of one section definition.
type SectionBuilder func(ctx context.Context, req SectionRequest) ([]Section, error)

// ChartBuilder produces the charts of one section definition.
type ChartBuilder func(ctx context.Context, req SectionRequest) ([]ChartSpec, error)

// ServiceOptions configures a DashboardService. Unset collaborators fall back
// to the default sections and builders.
type ServiceOptions struct {
	Endpoint  string
	Catalog   *SectionCatalog
	Counter   RecordCounter
	Years     AcademicYearSource
	Sections  map[string]SectionBuilder
	Charts    map[string]ChartBuilder
	Logger    *zap.Logger
	Telemetry Telemetry
	Now       func() time.Time
}

// DashboardService answers retrieve_dashboard for one endpoint.
type DashboardService struct {
	opts ServiceOptions
}

// NewDashboardService builds a service with safe defaults.
func NewDashboardService(opts ServiceOptions) *DashboardService {
	if opts.Catalog == nil {
		opts.Catalog = DefaultSectionCatalog()
	}
	if opts.Sections == nil {
		opts.Sections = DefaultSectionBuilders()
	}
	if opts.Charts == nil {
		opts.Charts = DefaultChartBuilders()
	}
	if opts.Years == nil {
		opts.Years = StaticAcademicYear{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &DashboardService{opts: opts}
}

// Endpoint returns the entity the service answers for.
func (s *DashboardService) Endpoint() string { return s.opts.Endpoint }

// Catalog exposes the section catalog.
func (s *DashboardService) Catalog() *SectionCatalog { return s.opts.Catalog }

// Retrieve builds the dashboard payload for viewer: the visible sections in
// display order, followed by the charts of sections that declare them.
func (s *DashboardService) Retrieve(ctx context.Context, viewer ViewerContext) (Payload, error) {
	if s.opts.Counter == nil {
		return nil, errMissingCounter
	}
	year, err := s.opts.Years.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("portal: resolve academic year: %w", err)
	}
	req := SectionRequest{
		Viewer:  viewer,
		Year:    year,
		Counter: s.opts.Counter,
		Now:     s.opts.Now(),
	}

	sections := []Section{}
	charts := []ChartSpec{}
	visible := s.opts.Catalog.Visible(viewer)
	for _, def := range visible {
		req.Definition = def
		build, ok := s.opts.Sections[def.Code]
		if !ok {
			s.opts.Logger.Debug("section has no builder", zap.String("code", def.Code))
			continue
		}
		built, err := build(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("portal: build section %s: %w", def.Code, err)
		}
		for i := range built {
			if built[i].Icon == "" {
				built[i].Icon = def.Icon
			}
		}
		sections = append(sections, built...)
		if !def.HasChart {
			continue
		}
		if chart, ok := s.opts.Charts[def.Code]; ok {
			specs, err := chart(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("portal: build charts %s: %w", def.Code, err)
			}
			charts = append(charts, specs...)
		}
	}

	yearName := ""
	if year != nil {
		yearName = year.Name
	}
	s.opts.Telemetry.Record(ctx, "portal.dashboard.retrieve", map[string]any{
		"endpoint": s.opts.Endpoint,
		"user_id":  viewer.UserID,
		"sections": len(sections),
		"charts":   len(charts),
	})
	return Payload{
		KeyUserName:     viewer.Name,
		KeyAcademicYear: yearName,
		KeySections:     sections,
		KeyCharts:       charts,
	}, nil
}
