package menu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-portal/pkg/prefs"
)

type stubProvider struct {
	tree     Node
	selected []Node
}

func (s *stubProvider) MenuTree(context.Context) (Node, error) { return s.tree, nil }

func (s *stubProvider) SelectMenu(_ context.Context, app Node) error {
	s.selected = append(s.selected, app)
	return nil
}

func makeTree(apps ...Node) Node {
	return Node{Children: apps}
}

func xmlids(apps []Node) []string {
	out := make([]string, len(apps))
	for i, app := range apps {
		out[i] = app.XMLID
	}
	return out
}

func TestAppsReorderedByUserSettings(t *testing.T) {
	ctx := context.Background()
	settings := prefs.NewMemoryStore()
	require.NoError(t, settings.Set(ctx, HomeMenuConfigKey, `["app.gamma","app.alpha","app.beta"]`))
	provider := &stubProvider{tree: makeTree(
		Node{ID: 1, Name: "Alpha", XMLID: "app.alpha", ActionID: 11},
		Node{ID: 2, Name: "Beta", XMLID: "app.beta", ActionID: 12},
		Node{ID: 3, Name: "Gamma", XMLID: "app.gamma", ActionID: 13},
	)}
	service := NewAppMenuService(provider, settings, nil)
	apps, err := service.Apps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.gamma", "app.alpha", "app.beta"}, xmlids(apps))
	assert.Equal(t, "Gamma", apps[0].Name)
}

func TestAppsKeepOriginalOrderForUnknownEntries(t *testing.T) {
	apps := []Node{{XMLID: "a"}, {XMLID: "b"}, {XMLID: "c"}, {XMLID: "d"}}
	got := ReorderApps(apps, []string{"c", "missing", "a", "c"})
	assert.Equal(t, []string{"c", "a", "b", "d"}, xmlids(got))
}

func TestAppsIgnoreMalformedSettings(t *testing.T) {
	ctx := context.Background()
	settings := prefs.NewMemoryStore()
	require.NoError(t, settings.Set(ctx, HomeMenuConfigKey, `not-json`))
	provider := &stubProvider{tree: makeTree(Node{XMLID: "x"}, Node{XMLID: "y"})}
	apps, err := NewAppMenuService(provider, settings, nil).Apps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, xmlids(apps))
}

func TestSaveOrderRoundTripsThroughApps(t *testing.T) {
	ctx := context.Background()
	settings := prefs.NewMemoryStore()
	provider := &stubProvider{tree: makeTree(Node{XMLID: "x"}, Node{XMLID: "y"})}
	service := NewAppMenuService(provider, settings, nil)
	require.NoError(t, service.SaveOrder(ctx, []string{"y", "x"}))
	apps, err := service.Apps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, xmlids(apps))
}

func TestSelectAppDelegatesToProvider(t *testing.T) {
	provider := &stubProvider{tree: makeTree(Node{ID: 1, XMLID: "app.alpha"})}
	service := NewAppMenuService(provider, nil, nil)
	apps, err := service.Apps(context.Background())
	require.NoError(t, err)
	require.NoError(t, service.SelectApp(context.Background(), apps[0]))
	require.Len(t, provider.selected, 1)
	assert.Equal(t, "app.alpha", provider.selected[0].XMLID)
}

func TestHideReviewerMenu(t *testing.T) {
	systray := NewRegistry()
	require.NoError(t, systray.Add("mail.ActivityMenu", nil))
	require.NoError(t, systray.Add(ReviewerMenuEntry, nil))
	require.NoError(t, systray.Add("web.UserMenu", nil))

	assert.True(t, HideReviewerMenu(systray))
	assert.False(t, systray.Contains(ReviewerMenuEntry))
	assert.Equal(t, []string{"mail.ActivityMenu", "web.UserMenu"}, systray.Names())

	assert.False(t, HideReviewerMenu(systray))
	assert.False(t, HideReviewerMenu(nil))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("a", 1))
	assert.Error(t, reg.Add("a", 2))
	assert.Error(t, reg.Add("", 2))
	v, ok := reg.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
