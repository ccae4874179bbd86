package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/pkg/menu"
	"github.com/goliatone/go-portal/pkg/prefs"
)

type stubService struct {
	viewer portal.ViewerContext
}

func (s *stubService) Retrieve(_ context.Context, viewer portal.ViewerContext) (portal.Payload, error) {
	s.viewer = viewer
	return portal.Payload{portal.KeyUserName: viewer.Name}, nil
}

type stubMenus struct {
	tree menu.Node
}

func (s stubMenus) MenuTree(context.Context) (menu.Node, error) { return s.tree, nil }
func (s stubMenus) SelectMenu(context.Context, menu.Node) error { return nil }

func TestRetrieveDashboardQuery(t *testing.T) {
	service := &stubService{}
	payload, err := NewRetrieveDashboardQuery(service).Query(context.Background(), RetrieveDashboardInput{
		Viewer: portal.ViewerContext{UserID: "7", Name: "Admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Admin", payload[portal.KeyUserName])
	assert.Equal(t, "7", service.viewer.UserID)

	_, err = NewRetrieveDashboardQuery(nil).Query(context.Background(), RetrieveDashboardInput{})
	assert.Error(t, err)
}

func TestAppsMenuQueryUsesViewerOrder(t *testing.T) {
	ctx := context.Background()
	scopes := prefs.NewMemoryScopes()
	require.NoError(t, scopes.ForUser("7").Set(ctx, menu.HomeMenuConfigKey, `["app.beta"]`))
	menus := stubMenus{tree: menu.Node{Children: []menu.Node{{XMLID: "app.alpha"}, {XMLID: "app.beta"}}}}
	query := NewAppsMenuQuery(menus, scopes)

	apps, err := query.Query(ctx, AppsMenuInput{Viewer: portal.ViewerContext{UserID: "7"}})
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "app.beta", apps[0].XMLID)

	apps, err = query.Query(ctx, AppsMenuInput{Viewer: portal.ViewerContext{UserID: "8"}})
	require.NoError(t, err)
	assert.Equal(t, "app.alpha", apps[0].XMLID)

	_, err = NewAppsMenuQuery(nil, scopes).Query(ctx, AppsMenuInput{})
	assert.Error(t, err)
}
