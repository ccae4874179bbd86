package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/components/portal/commands"
	"github.com/goliatone/go-portal/pkg/rpc"
)

// ViewerResolver extracts the viewer of a request.
type ViewerResolver func(r *http.Request) portal.ViewerContext

// Dispatcher runs a registered procedure for a viewer.
type Dispatcher interface {
	Dispatch(ctx context.Context, viewer portal.ViewerContext, model, method string, args []any) (portal.Payload, error)
}

// Handlers exposes HTTP endpoints backed by shared commands and the
// procedure registry.
type Handlers struct {
	Procedures    Dispatcher
	Refresh       gocommand.Commander[commands.RefreshDashboardInput]
	Action        gocommand.Commander[commands.ExecuteActionInput]
	Notifications gocommand.Commander[commands.TogglePreferenceInput]
	AutoRefresh   gocommand.Commander[commands.TogglePreferenceInput]
	MenuOrder     gocommand.Commander[commands.SaveMenuOrderInput]
	Viewer        ViewerResolver
	Logger        *zap.Logger
}

// HandleCallKw serves JSON-RPC call_kw envelopes.
func (h *Handlers) HandleCallKw(w http.ResponseWriter, r *http.Request) {
	var req rpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, nil, rpc.CodeParseError, "Parse error", err)
		return
	}
	if req.Params.Model == "" || req.Params.Method == "" {
		writeRPCError(w, req.ID, rpc.CodeInvalid, "Invalid Request", errors.New("model and method are required"))
		return
	}
	if h.Procedures == nil {
		writeRPCError(w, req.ID, rpc.CodeServerError, "Server Error", errors.New("no procedures registered"))
		return
	}
	viewer := h.viewer(r)
	ctx := portal.ContextWithViewer(r.Context(), viewer)
	payload, err := h.Procedures.Dispatch(ctx, viewer, req.Params.Model, req.Params.Method, req.Params.Args)
	if err != nil {
		h.logger().Warn("call_kw failed",
			zap.String("model", req.Params.Model),
			zap.String("method", req.Params.Method),
			zap.Error(err),
		)
		writeRPCError(w, req.ID, rpc.CodeServerError, "Server Error", err)
		return
	}
	result, err := json.Marshal(payload)
	if err != nil {
		writeRPCError(w, req.ID, rpc.CodeServerError, "Server Error", err)
		return
	}
	writeJSON(w, http.StatusOK, rpc.Response{JSONRPC: rpc.Version, ID: req.ID, Result: result})
}

// HandleRefresh rebuilds the dashboard and pushes it to subscribers.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshDashboardInput
	if err := decodeOptional(r, &payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Refresh.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleAction runs the action of a clicked card.
func (h *Handlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	var payload commands.ExecuteActionInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Action.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleNotifications flips the viewer's notification preference.
func (h *Handlers) HandleToggleNotifications(w http.ResponseWriter, r *http.Request) {
	input := commands.TogglePreferenceInput{Viewer: h.viewer(r)}
	if err := h.Notifications.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleAutoRefresh flips the viewer's auto-refresh preference.
func (h *Handlers) HandleToggleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	input := commands.TogglePreferenceInput{Viewer: h.viewer(r)}
	if err := h.AutoRefresh.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSaveMenuOrder stores the viewer's home menu order.
func (h *Handlers) HandleSaveMenuOrder(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveMenuOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.MenuOrder.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Mux mounts the handlers on a ServeMux under the conventional paths.
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+rpc.CallKwPath+"/", h.HandleCallKw)
	if h.Refresh != nil {
		mux.HandleFunc("POST /portal/refresh", h.HandleRefresh)
	}
	if h.Action != nil {
		mux.HandleFunc("POST /portal/action", h.HandleAction)
	}
	if h.Notifications != nil {
		mux.HandleFunc("POST /portal/preferences/notifications", h.HandleToggleNotifications)
	}
	if h.AutoRefresh != nil {
		mux.HandleFunc("POST /portal/preferences/auto-refresh", h.HandleToggleAutoRefresh)
	}
	if h.MenuOrder != nil {
		mux.HandleFunc("POST /portal/menu/order", h.HandleSaveMenuOrder)
	}
	return mux
}

// HeaderViewer reads the viewer from X-Portal-* headers.
func HeaderViewer(r *http.Request) portal.ViewerContext {
	viewer := portal.ViewerContext{
		UserID:      r.Header.Get("X-Portal-User"),
		Name:        r.Header.Get("X-Portal-User-Name"),
		Locale:      r.Header.Get("Accept-Language"),
		ColorScheme: r.Header.Get("X-Portal-Color-Scheme"),
	}
	for _, group := range strings.Split(r.Header.Get("X-Portal-Groups"), ",") {
		if group = strings.TrimSpace(group); group != "" {
			viewer.Groups = append(viewer.Groups, group)
		}
	}
	return viewer
}

func (h *Handlers) viewer(r *http.Request) portal.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return HeaderViewer(r)
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func decodeOptional(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(target)
}

func writeRPCError(w http.ResponseWriter, id any, code int, message string, err error) {
	writeJSON(w, http.StatusOK, rpc.Response{
		JSONRPC: rpc.Version,
		ID:      id,
		Error: &rpc.Error{
			Code:    code,
			Message: message,
			Data:    rpc.ErrorData{Name: "portal.error", Message: err.Error()},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
