package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	errUnknownProcedure = errors.New("portal: procedure not registered")
	errNilProcedure     = errors.New("portal: procedure cannot be nil")
)

// Procedure serves one (model, method) pair for viewer.
type Procedure func(ctx context.Context, viewer ViewerContext, args []any) (Payload, error)

// EndpointHook lets packages register procedures during init().
type EndpointHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []EndpointHook
)

// RegisterEndpointHook registers a hook executed against new registries.
func RegisterEndpointHook(h EndpointHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry maps model/method pairs to procedures.
type Registry struct {
	mu         sync.RWMutex
	procedures map[string]Procedure
}

// NewRegistry builds an empty registry and applies global hooks.
func NewRegistry() (*Registry, error) {
	reg := &Registry{procedures: map[string]Procedure{}}
	if err := reg.ApplyHooks(); err != nil {
		return nil, err
	}
	return reg, nil
}

// ApplyHooks executes registered endpoint hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register binds proc to model.method, replacing any previous binding.
func (r *Registry) Register(model, method string, proc Procedure) error {
	if model == "" || method == "" {
		return fmt.Errorf("portal: model and method are required")
	}
	if proc == nil {
		return errNilProcedure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procedures[procedureKey(model, method)] = proc
	return nil
}

// RegisterService exposes service as retrieve_dashboard on its endpoint.
func (r *Registry) RegisterService(service *DashboardService) error {
	if service == nil || service.Endpoint() == "" {
		return fmt.Errorf("portal: dashboard service requires an endpoint")
	}
	return r.Register(service.Endpoint(), MethodRetrieveDashboard, func(ctx context.Context, viewer ViewerContext, _ []any) (Payload, error) {
		return service.Retrieve(ctx, viewer)
	})
}

// Procedure returns the procedure bound to model.method.
func (r *Registry) Procedure(model, method string) (Procedure, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	proc, ok := r.procedures[procedureKey(model, method)]
	return proc, ok
}

// Procedures lists the registered "model.method" keys, sorted.
func (r *Registry) Procedures() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.procedures))
	for key := range r.procedures {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Dispatch invokes the procedure bound to model.method.
func (r *Registry) Dispatch(ctx context.Context, viewer ViewerContext, model, method string, args []any) (Payload, error) {
	proc, ok := r.Procedure(model, method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownProcedure, procedureKey(model, method))
	}
	return proc(ctx, viewer, args)
}

func procedureKey(model, method string) string {
	return model + "/" + method
}

// RegisterDefaultEndpoints binds both shipped dashboard endpoints to services
// built from opts. The endpoint field of opts is ignored.
func RegisterDefaultEndpoints(reg *Registry, opts ServiceOptions) error {
	for _, endpoint := range []string{EndpointPortalDashboard, EndpointDashboard} {
		endpointOpts := opts
		endpointOpts.Endpoint = endpoint
		if err := reg.RegisterService(NewDashboardService(endpointOpts)); err != nil {
			return err
		}
	}
	return nil
}

// LocalCaller is an in-process RemoteCaller. The viewer is taken from the
// call context.
type LocalCaller struct {
	Registry *Registry
}

// Call implements RemoteCaller.
func (c LocalCaller) Call(ctx context.Context, model, method string, args []any) (Payload, error) {
	if c.Registry == nil {
		return nil, errUnknownProcedure
	}
	viewer, _ := ViewerFromContext(ctx)
	return c.Registry.Dispatch(ctx, viewer, model, method, args)
}
