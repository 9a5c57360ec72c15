package viewsets

// Interceptor wraps the execution of a view-set action.
//
// Interceptors can inspect the request through ctx before calling next,
// short-circuit by returning an error without calling next, or act on the
// error returned by the rest of the chain:
//
//	func authRequired(ctx *viewsets.Context, next viewsets.HandlerFunc) error {
//	    if ctx.Request.Header.Get("Authorization") == "" {
//	        return viewsets.NewError(viewsets.CodeUnauthenticated, "login required")
//	    }
//	    return next(ctx)
//	}
//
// Execution order:
//  1. Router interceptors (added via WithInterceptor), in the order added
//  2. View-set interceptors (InterceptorsProvider), in the order returned
//  3. The action method
type Interceptor func(ctx *Context, next HandlerFunc) error

// chainInterceptors combines interceptors into a single handler around fn.
// The first interceptor in the slice is the outermost one (runs first).
func chainInterceptors(interceptors []Interceptor, fn HandlerFunc) HandlerFunc {
	if len(interceptors) == 0 {
		return fn
	}
	chain := fn
	for i := len(interceptors) - 1; i >= 0; i-- {
		current := interceptors[i]
		next := chain
		chain = func(ctx *Context) error {
			return current(ctx, next)
		}
	}
	return chain
}
