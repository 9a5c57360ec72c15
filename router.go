package viewsets

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Router turns registered view sets into a URL table and an http.Handler.
type Router interface {
	// Register adds a view set under the given URL prefix. Configuration
	// problems surface later, from URLs or Handler.
	Register(prefix string, viewset any, opts ...RegisterOption)

	// URLs returns the ordered URL pattern list for every registered view
	// set. The result is cached until the next Register call.
	URLs() ([]URLPattern, error)

	// Handler builds an http.Handler dispatching every URL pattern.
	Handler() (http.Handler, error)

	// URL resolves a route name back to a concrete path, filling URL
	// parameters positionally: URL("widget-detail", "42") -> "/widgets/42/".
	URL(name string, params ...string) (string, error)
}

// RegisterOption configures a single view-set registration.
type RegisterOption func(*registration)

// WithBasename overrides the route basename for this registration.
func WithBasename(basename string) RegisterOption {
	return func(r *registration) {
		r.basename = basename
	}
}

type registration struct {
	prefix   string
	viewset  any
	basename string
}

// SimpleRouter generates the conventional REST URL table for each registered
// view set. Use NewDefaultRouter for a variant that also serves an API root
// view listing every registered resource.
type SimpleRouter struct {
	mu       sync.Mutex
	registry []registration
	urls     []URLPattern // cached, nil when invalid

	trailingSlash      bool
	apiRoot            bool
	errorTransformer   ErrorTransformer
	maskInternalErrors bool
	interceptors       []Interceptor
	middlewares        []func(http.Handler) http.Handler
	logger             *slog.Logger
	renderer           Renderer
	maxRequestBody     int64
}

// NewSimpleRouter creates a router that generates URLs with trailing slashes.
func NewSimpleRouter() *SimpleRouter {
	return &SimpleRouter{
		trailingSlash:  true,
		maxRequestBody: 1 << 20, // 1MB default
	}
}

// NewDefaultRouter is NewSimpleRouter plus an API root view: GET / answers
// with a JSON map of each registered basename to its list URL.
func NewDefaultRouter() *SimpleRouter {
	r := NewSimpleRouter()
	r.apiRoot = true
	return r
}

// WithoutTrailingSlash makes generated URLs end without a slash.
// It returns the router for chaining.
func (r *SimpleRouter) WithoutTrailingSlash() *SimpleRouter {
	r.trailingSlash = false
	return r
}

// WithErrorTransformer adds a custom error transformer.
// It returns the router for chaining.
func (r *SimpleRouter) WithErrorTransformer(fn ErrorTransformer) *SimpleRouter {
	r.errorTransformer = fn
	return r
}

// WithMaskInternalErrors enables masking of internal error messages.
// This is useful in production to avoid leaking sensitive information.
// The original error is still logged.
func (r *SimpleRouter) WithMaskInternalErrors() *SimpleRouter {
	r.maskInternalErrors = true
	return r
}

// WithInterceptor adds a router-level interceptor. Router interceptors run
// before view-set interceptors, in the order they were added.
func (r *SimpleRouter) WithInterceptor(i Interceptor) *SimpleRouter {
	r.interceptors = append(r.interceptors, i)
	return r
}

// WithMiddleware adds an HTTP middleware wrapping the whole handler.
// Middleware is applied in the order added (first added is outermost).
func (r *SimpleRouter) WithMiddleware(mw func(http.Handler) http.Handler) *SimpleRouter {
	r.middlewares = append(r.middlewares, mw)
	return r
}

// WithLogger sets a custom logger. If not set, slog.Default() is used.
func (r *SimpleRouter) WithLogger(logger *slog.Logger) *SimpleRouter {
	r.logger = logger
	return r
}

// WithRenderer sets the template renderer used by Context.Render.
func (r *SimpleRouter) WithRenderer(renderer Renderer) *SimpleRouter {
	r.renderer = renderer
	return r
}

// WithMaxRequestBodySize sets the maximum request body size for BindJSON.
// A value of 0 means no limit. Default is 1MB (1 << 20).
func (r *SimpleRouter) WithMaxRequestBodySize(size int64) *SimpleRouter {
	r.maxRequestBody = size
	return r
}

// Register implements Router.
func (r *SimpleRouter) Register(prefix string, viewset any, opts ...RegisterOption) {
	reg := registration{
		prefix:  strings.Trim(prefix, "/"),
		viewset: viewset,
	}
	for _, opt := range opts {
		opt(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry = append(r.registry, reg)
	r.urls = nil // invalidate the URL cache
}

// URLs implements Router.
func (r *SimpleRouter) URLs() ([]URLPattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildURLs()
}

// buildURLs computes (or returns the cached) URL table. Caller holds r.mu.
func (r *SimpleRouter) buildURLs() ([]URLPattern, error) {
	if r.urls != nil {
		return r.urls, nil
	}

	var all []URLPattern
	listPaths := make(map[string]string) // basename -> list path, for the API root

	for _, reg := range r.registry {
		in, err := bindActions(reg.viewset)
		if err != nil {
			return nil, fmt.Errorf("register %q: %w", reg.prefix, err)
		}

		basename := reg.basename
		if basename == "" {
			basename = in.basename
		}
		if basename == "" {
			return nil, fmt.Errorf("%w: cannot derive a basename for prefix %q, use WithBasename", ErrImproperlyConfigured, reg.prefix)
		}

		var viewsetInterceptors []Interceptor
		if ip, ok := reg.viewset.(InterceptorsProvider); ok {
			viewsetInterceptors = ip.Interceptors()
		}

		patterns := expandRoutes(in, reg.prefix, basename, r.trailingSlash)
		for i := range patterns {
			patterns[i].basename = basename
			patterns[i].interceptors = viewsetInterceptors
			if patterns[i].Action == ActionList {
				listPaths[basename] = patterns[i].Path
			}
		}
		all = append(all, patterns...)
	}

	if r.apiRoot {
		all = append([]URLPattern{apiRootPattern(listPaths)}, all...)
	}

	r.urls = all
	return all, nil
}

// apiRootPattern builds the DefaultRouter index view.
func apiRootPattern(listPaths map[string]string) URLPattern {
	return URLPattern{
		Method: http.MethodGet,
		Path:   "/",
		Name:   "api-root",
		Action: "APIRoot",
		handler: func(ctx *Context) error {
			return ctx.JSON(http.StatusOK, listPaths)
		},
	}
}

// Handler implements Router.
func (r *SimpleRouter) Handler() (http.Handler, error) {
	urls, err := r.URLs()
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, NewError(CodeNotFound, "route not found"), r.logger)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, Errorf(CodeMethodNotAllowed, "method %s not allowed", req.Method), r.logger)
	})

	for _, pattern := range urls {
		pattern := pattern
		mux.MethodFunc(pattern.Method, pattern.Path, func(w http.ResponseWriter, req *http.Request) {
			r.dispatch(w, req, pattern)
		})
	}

	var h http.Handler = mux
	// Apply middleware in reverse order so first added is outermost
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h, nil
}

// dispatch runs one URL pattern's action with the full interceptor chain,
// panic recovery, and error transformation.
func (r *SimpleRouter) dispatch(w http.ResponseWriter, req *http.Request, pattern URLPattern) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			logger := r.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("PANIC recovered",
				slog.String("route", pattern.Name),
				slog.Any("panic", rec),
				slog.String("stack", string(stack)))
			writeError(w, NewError(CodeInternal, fmt.Sprintf("internal server error (panic): %v", rec)), r.logger)
		}
	}()

	ctx := newContext(w, req, pattern)
	ctx.basename = pattern.basename
	ctx.renderer = r.renderer
	ctx.logger = r.logger
	ctx.maxRequestBody = r.maxRequestBody

	interceptors := make([]Interceptor, 0, len(r.interceptors)+len(pattern.interceptors))
	interceptors = append(interceptors, r.interceptors...)
	interceptors = append(interceptors, pattern.interceptors...)

	if err := chainInterceptors(interceptors, pattern.handler)(ctx); err != nil {
		r.handleError(w, err)
	}
}

func (r *SimpleRouter) handleError(w http.ResponseWriter, err error) {
	var svcErr *Error
	if r.errorTransformer != nil {
		svcErr = r.errorTransformer(err)
	}
	if svcErr == nil {
		svcErr = DefaultErrorTransformer(err)
	}
	if r.maskInternalErrors && svcErr.Code == CodeInternal {
		logger := r.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("internal error", slog.Any("error", err))
		svcErr = NewError(CodeInternal, "internal server error")
	}
	writeError(w, svcErr, r.logger)
}

// URL implements Router.
func (r *SimpleRouter) URL(name string, params ...string) (string, error) {
	urls, err := r.URLs()
	if err != nil {
		return "", err
	}
	for _, pattern := range urls {
		if pattern.Name == name {
			return fillPath(pattern.Path, params)
		}
	}
	return "", fmt.Errorf("viewsets: no route named %q", name)
}

// fillPath substitutes positional params for each {param} segment in a chi
// pattern. Nested braces (regex quantifiers) are honored.
func fillPath(path string, params []string) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(path); i++ {
		if path[i] != '{' {
			b.WriteByte(path[i])
			continue
		}
		depth := 1
		j := i + 1
		for ; j < len(path) && depth > 0; j++ {
			switch path[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth != 0 {
			return "", fmt.Errorf("viewsets: malformed pattern %q", path)
		}
		if next >= len(params) {
			return "", fmt.Errorf("viewsets: not enough params for %q", path)
		}
		b.WriteString(params[next])
		next++
		i = j - 1
	}
	if next != len(params) {
		return "", fmt.Errorf("viewsets: too many params for %q", path)
	}
	return b.String(), nil
}
