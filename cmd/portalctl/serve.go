package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/components/portal/commands"
	"github.com/goliatone/go-portal/components/portal/gorouter"
	"github.com/goliatone/go-portal/components/portal/httpapi"
	"github.com/goliatone/go-portal/internal/sqlstore"
	"github.com/goliatone/go-portal/pkg/goadmin"
	"github.com/goliatone/go-portal/pkg/menu"
	"github.com/goliatone/go-portal/pkg/prefs"
)

// systemViewer drives server side refreshes pushed to WebSocket clients.
var systemViewer = portal.ViewerContext{UserID: "__system__", Name: "Portal"}

type serveCmd struct {
	Config  string `short:"c" type:"path" help:"YAML server configuration file."`
	EnvFile string `name:"env-file" default:".env" help:"Environment file loaded before reading the configuration."`
	Addr    string `help:"Listen address (overrides the configuration)."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := loadServerConfig(cmd.Config, cmd.EnvFile)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Addr = cmd.Addr
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	app, err := buildApp(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:         server.Router(),
		Controller:     app.controller,
		Procedures:     app.registry,
		API:            app.executor,
		Broadcast:      app.broadcast,
		ViewerResolver: gorouter.HeaderViewerResolver,
		BasePath:       cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("portalctl: register routes: %w", err)
	}

	if cfg.AutoRefresh > 0 {
		go app.autoRefresh(ctx, cfg, logger)
	}

	logger.Info("portal ready",
		zap.String("addr", cfg.Addr),
		zap.String("dashboard", cfg.BasePath+"/dashboard"),
		zap.Strings("procedures", app.registry.Procedures()),
	)
	return server.Serve(cfg.Addr)
}

type portalApp struct {
	registry   *portal.Registry
	controller *portal.Controller
	executor   *httpapi.CommandExecutor
	broadcast  *portal.BroadcastHook
	admin      *goadmin.Admin
	scopes     prefs.Scopes
}

func buildApp(ctx context.Context, cfg serverConfig, db *sqlstore.DB, logger *zap.Logger) (*portalApp, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := portal.DefaultSectionCatalog()
	if cfg.Manifest != "" {
		doc, err := catalog.LoadManifestFile(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		logger.Info("section manifest loaded", zap.String("source", doc.Source), zap.Int("sections", len(doc.Sections)))
	}

	years := db.Years()
	if cfg.AcademicYear != nil {
		if err := years.SetCurrent(ctx, *cfg.AcademicYear); err != nil {
			return nil, err
		}
	}

	telemetry := portal.NewZapTelemetry(logger)
	opts := portal.ServiceOptions{
		Catalog:   catalog,
		Counter:   db.Records(),
		Years:     years,
		Logger:    logger,
		Telemetry: telemetry,
	}
	registry, err := portal.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := portal.RegisterDefaultEndpoints(registry, opts); err != nil {
		return nil, err
	}

	renderer, err := portal.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	opts.Endpoint = portal.EndpointPortalDashboard
	service := portal.NewDashboardService(opts)
	controller := portal.NewController(portal.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Title:    cfg.Title,
		Logger:   logger,
	})

	broadcast := portal.NewBroadcastHook()
	scopes := db.Prefs()
	actions := portal.ActionExecutorFunc(func(_ context.Context, action string) error {
		logger.Info("portal action requested", zap.String("action", action))
		return nil
	})
	executor := &httpapi.CommandExecutor{
		RefreshCommander:       commands.NewRefreshDashboardCommand(service, broadcast, telemetry),
		ActionCommander:        commands.NewExecuteActionCommand(actions, telemetry),
		NotificationsCommander: commands.NewToggleNotificationsCommand(scopes, telemetry),
		AutoRefreshCommander:   commands.NewToggleAutoRefreshCommand(scopes, telemetry),
		MenuOrderCommander:     commands.NewSaveMenuOrderCommand(scopes, telemetry),
	}

	systray := menu.NewRegistry()
	for _, entry := range []string{"mail.ActivityMenu", menu.ReviewerMenuEntry, "web.UserMenu"} {
		if err := systray.Add(entry, nil); err != nil {
			return nil, err
		}
	}
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         service,
		MenuBuilder:     loggingMenuBuilder{logger: logger},
		DefaultMenuItem: goadmin.MenuItem{Route: cfg.BasePath + "/dashboard"},
		Systray:         systray,
	})
	if err != nil {
		return nil, err
	}
	if err := admin.Bootstrap(ctx); err != nil {
		return nil, err
	}
	logger.Debug("systray entries", zap.Strings("entries", systray.Names()))

	return &portalApp{
		registry:   registry,
		controller: controller,
		executor:   executor,
		broadcast:  broadcast,
		admin:      admin,
		scopes:     scopes,
	}, nil
}

type loggingMenuBuilder struct {
	logger *zap.Logger
}

func (b loggingMenuBuilder) EnsureMenuItem(_ context.Context, menuCode string, item goadmin.MenuItem) error {
	b.logger.Info("dashboard menu item ensured",
		zap.String("menu", menuCode),
		zap.String("label", item.Label),
		zap.String("route", item.Route),
	)
	return nil
}

func (a *portalApp) autoRefresh(ctx context.Context, cfg serverConfig, logger *zap.Logger) {
	widget := portal.NewDashboardWidget(portal.WidgetOptions{
		Endpoint:    portal.EndpointPortalDashboard,
		Caller:      portal.LocalCaller{Registry: a.registry},
		Logger:      logger,
		RefreshHook: a.broadcast,
	})
	toggle, err := a.autoRefreshToggle(ctx, logger)
	if err != nil {
		logger.Error("auto refresh disabled", zap.Error(err))
		return
	}
	refresher := portal.NewAutoRefresher(widget, toggle, cfg.AutoRefresh, logger)
	_ = refresher.Run(portal.ContextWithViewer(ctx, systemViewer))
}

// autoRefreshToggle binds the refresher to the system viewer's auto-refresh
// preference. An unset preference is stored as enabled so a configured
// interval runs until the preference is switched off.
func (a *portalApp) autoRefreshToggle(ctx context.Context, logger *zap.Logger) (*prefs.Toggle, error) {
	store := a.scopes.ForUser(systemViewer.UserID)
	toggle := prefs.NewAutoRefreshToggle(store, logger)
	if _, ok, err := store.Get(ctx, toggle.Key()); err != nil {
		return nil, fmt.Errorf("portalctl: read auto refresh preference: %w", err)
	} else if !ok {
		if err := toggle.Set(ctx, true); err != nil {
			return nil, fmt.Errorf("portalctl: seed auto refresh preference: %w", err)
		}
	}
	return toggle, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
