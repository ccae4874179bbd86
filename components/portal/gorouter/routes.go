package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/components/portal/commands"
	"github.com/goliatone/go-portal/components/portal/httpapi"
	"github.com/goliatone/go-portal/pkg/rpc"
)

// ViewerResolver converts a router.Context into a portal.ViewerContext.
type ViewerResolver func(router.Context) portal.ViewerContext

// Config wires go-router with the portal controller, procedures, and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *portal.Controller
	Procedures     httpapi.Dispatcher
	API            httpapi.Executor
	Broadcast      *portal.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for portal endpoints.
type RouteConfig struct {
	HTML          string
	Payload       string
	CallKw        string
	Refresh       string
	Action        string
	Notifications string
	AutoRefresh   string
	MenuOrder     string
	WebSocket     string
}

// Register mounts portal routes (HTML, JSON, JSON-RPC, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/portal"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Payload, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.Payload(ctx.Context(), viewerResolver(ctx))
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.Procedures != nil {
		registerCallKw(cfg.Router, cfg.Procedures, viewerResolver, routes.CallKw)
	}
	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerCallKw[T any](r router.Router[T], procedures httpapi.Dispatcher, resolver ViewerResolver, path string) {
	r.Post(path, router.WrapHandler(func(ctx router.Context) error {
		var req rpc.Request
		if err := json.Unmarshal(ctx.Body(), &req); err != nil {
			return ctx.JSON(http.StatusOK, rpcError(nil, rpc.CodeParseError, "Parse error", err))
		}
		if req.Params.Model == "" {
			req.Params.Model = ctx.Param("model")
		}
		if req.Params.Method == "" {
			req.Params.Method = ctx.Param("method")
		}
		viewer := resolver(ctx)
		callCtx := portal.ContextWithViewer(ctx.Context(), viewer)
		payload, err := procedures.Dispatch(callCtx, viewer, req.Params.Model, req.Params.Method, req.Params.Args)
		if err != nil {
			return ctx.JSON(http.StatusOK, rpcError(req.ID, rpc.CodeServerError, "Server Error", err))
		}
		result, err := json.Marshal(payload)
		if err != nil {
			return ctx.JSON(http.StatusOK, rpcError(req.ID, rpc.CodeServerError, "Server Error", err))
		}
		return ctx.JSON(http.StatusOK, rpc.Response{JSONRPC: rpc.Version, ID: req.ID, Result: result})
	}))
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshDashboardInput
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
		}
		payload.Viewer = resolver(ctx)
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Action, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ExecuteActionInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Action(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "done"})
	}))

	r.Post(routes.Notifications, router.WrapHandler(func(ctx router.Context) error {
		input := commands.TogglePreferenceInput{Viewer: resolver(ctx)}
		if err := api.ToggleNotifications(ctx.Context(), input); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
	}))

	r.Post(routes.AutoRefresh, router.WrapHandler(func(ctx router.Context) error {
		input := commands.TogglePreferenceInput{Viewer: resolver(ctx)}
		if err := api.ToggleAutoRefresh(ctx.Context(), input); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
	}))

	r.Post(routes.MenuOrder, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveMenuOrderInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		if err := api.SaveMenuOrder(ctx.Context(), payload); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *portal.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) portal.ViewerContext {
	var viewer portal.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if v, ok := ctx.Locals("user_name").(string); ok {
		viewer.Name = v
	}
	if groups, ok := ctx.Locals("groups").([]string); ok {
		viewer.Groups = groups
	}
	if scheme, ok := ctx.Locals("color_scheme").(string); ok {
		viewer.ColorScheme = scheme
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

// HeaderViewerResolver reads the viewer from X-Portal-* request headers set by
// an authenticating proxy, falling back to request locals.
func HeaderViewerResolver(ctx router.Context) portal.ViewerContext {
	viewer := defaultViewerResolver(ctx)
	if v := ctx.Header("X-Portal-User"); v != "" {
		viewer.UserID = v
	}
	if v := ctx.Header("X-Portal-User-Name"); v != "" {
		viewer.Name = v
	}
	if v := ctx.Header("X-Portal-Color-Scheme"); v != "" {
		viewer.ColorScheme = v
	}
	if v := ctx.Header("X-Portal-Groups"); v != "" {
		viewer.Groups = nil
		for _, group := range strings.Split(v, ",") {
			if group = strings.TrimSpace(group); group != "" {
				viewer.Groups = append(viewer.Groups, group)
			}
		}
	}
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("lang")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func rpcError(id any, code int, message string, err error) rpc.Response {
	return rpc.Response{
		JSONRPC: rpc.Version,
		ID:      id,
		Error:   &rpc.Error{Code: code, Message: message, Data: rpc.ErrorData{Name: "portal.error", Message: err.Error()}},
	}
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Payload == "" {
		routes.Payload = "/dashboard/_payload"
	}
	if routes.CallKw == "" {
		routes.CallKw = rpc.CallKwPath + "/:model/:method"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/refresh"
	}
	if routes.Action == "" {
		routes.Action = "/dashboard/action"
	}
	if routes.Notifications == "" {
		routes.Notifications = "/preferences/notifications"
	}
	if routes.AutoRefresh == "" {
		routes.AutoRefresh = "/preferences/auto-refresh"
	}
	if routes.MenuOrder == "" {
		routes.MenuOrder = "/menu/order"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
