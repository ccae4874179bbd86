package portal

import "context"

type viewerContextKey struct{}

// ContextWithViewer stores the active viewer on ctx.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, viewerContextKey{}, viewer)
}

// ViewerFromContext returns the viewer stored by ContextWithViewer.
func ViewerFromContext(ctx context.Context) (ViewerContext, bool) {
	if ctx == nil {
		return ViewerContext{}, false
	}
	viewer, ok := ctx.Value(viewerContextKey{}).(ViewerContext)
	return viewer, ok
}
