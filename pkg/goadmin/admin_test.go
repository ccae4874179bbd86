package goadmin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboardpkg "github.com/goliatone/go-portal/pkg/dashboard"
	"github.com/goliatone/go-portal/pkg/goadmin"
	"github.com/goliatone/go-portal/pkg/menu"
)

type stubMenuBuilder struct {
	calls []goadmin.MenuItem
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, _ string, item goadmin.MenuItem) error {
	s.calls = append(s.calls, item)
	return s.err
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	systray := menu.NewRegistry()
	require.NoError(t, systray.Add(menu.ReviewerMenuEntry, nil))
	require.NoError(t, systray.Add("web.UserMenu", nil))

	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         dashboardpkg.NewService(dashboardpkg.Options{}),
		MenuBuilder:     builder,
		Systray:         systray,
	})
	require.NoError(t, err)
	require.NoError(t, admin.Bootstrap(context.Background()))

	require.Len(t, builder.calls, 1)
	assert.Equal(t, "portal.dashboard", builder.calls[0].Route)
	assert.Equal(t, "fa-tachometer", builder.calls[0].Icon)
	assert.NotNil(t, admin.Dashboard())
	assert.Equal(t, []string{"web.UserMenu"}, systray.Names())
}

func TestAdminDisabledSkipsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{MenuBuilder: builder})
	require.NoError(t, err)
	require.NoError(t, admin.Bootstrap(context.Background()))
	assert.Empty(t, builder.calls)
	assert.Nil(t, admin.Dashboard())
}

func TestAdminRequiresServiceWhenEnabled(t *testing.T) {
	_, err := goadmin.New(goadmin.Config{EnableDashboard: true})
	assert.Error(t, err)
}

func TestAdminBootstrapWrapsMenuErrors(t *testing.T) {
	builder := &stubMenuBuilder{err: errors.New("menu locked")}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         dashboardpkg.NewService(dashboardpkg.Options{}),
		MenuBuilder:     builder,
	})
	require.NoError(t, err)
	err = admin.Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu locked")
}
