package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/pkg/menu"
	"github.com/goliatone/go-portal/pkg/prefs"
)

// AppsMenuInput identifies the viewer whose home menu is listed.
type AppsMenuInput struct {
	Viewer portal.ViewerContext
}

// AppsMenuQuery lists the top-level apps in the viewer's preferred order.
type AppsMenuQuery struct {
	menus  menu.Provider
	scopes prefs.Scopes
}

// NewAppsMenuQuery builds the query. scopes may be nil, in which case apps
// keep the provider order.
func NewAppsMenuQuery(menus menu.Provider, scopes prefs.Scopes) *AppsMenuQuery {
	return &AppsMenuQuery{menus: menus, scopes: scopes}
}

var _ gocommand.Querier[AppsMenuInput, []menu.Node] = (*AppsMenuQuery)(nil)

// Query returns the reordered apps.
func (q *AppsMenuQuery) Query(ctx context.Context, input AppsMenuInput) ([]menu.Node, error) {
	if q.menus == nil {
		return nil, errors.New("apps query requires a menu provider")
	}
	var settings prefs.Store
	if q.scopes != nil && input.Viewer.UserID != "" {
		settings = q.scopes.ForUser(input.Viewer.UserID)
	}
	return menu.NewAppMenuService(q.menus, settings, nil).Apps(ctx)
}
