package goadmin

import (
	"context"
	"errors"
	"fmt"

	dashboardpkg "github.com/goliatone/go-portal/pkg/dashboard"
	"github.com/goliatone/go-portal/pkg/menu"
)

// MenuBuilder ensures dashboard entries exist within the host navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the dashboard service and the host registries into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	DefaultMenuItem MenuItem
	// Systray is the host systray registry; the redundant reviewer entry is
	// removed from it during Bootstrap.
	Systray *menu.Registry
}

// Admin exposes helpers for admin style host applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "portal.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Tableau de bord"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "portal.dashboard"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "fa-tachometer"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap hides the reviewer systray entry and seeds the dashboard menu
// entry when dashboard support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	menu.HideReviewerMenu(a.cfg.Systray)
	if !a.cfg.EnableDashboard || a.cfg.MenuBuilder == nil {
		return nil
	}
	if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem); err != nil {
		return fmt.Errorf("goadmin: ensure menu item %s: %w", a.cfg.DefaultMenuItem.Route, err)
	}
	return nil
}
