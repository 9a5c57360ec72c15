package viewsets

import (
	"net/http"
	"strings"
)

// MethodMapping pairs one HTTP method with the view-set action it invokes.
type MethodMapping struct {
	HTTPMethod string
	Action     string
}

// Route is a URL template for a group of standard actions. The URL field may
// contain {prefix}, {lookup} and {trailing_slash} placeholders; the Name
// field may contain {basename}. Routes whose mapped actions are all absent
// from a view set produce no URL patterns.
type Route struct {
	URL     string
	Name    string
	Detail  bool
	Mapping []MethodMapping
}

// DynamicRoute is a URL template for extra actions. {url_path} and {url_name}
// are filled in per action.
type DynamicRoute struct {
	URL    string
	Name   string
	Detail bool
}

// DefaultRoutes is the route table used by SimpleRouter, in generation order:
// the list route, dynamic list routes, the detail route, dynamic detail
// routes.
var DefaultRoutes = []any{
	Route{
		URL:    "/{prefix}{trailing_slash}",
		Name:   "{basename}-list",
		Detail: false,
		Mapping: []MethodMapping{
			{http.MethodGet, ActionList},
			{http.MethodPost, ActionCreate},
		},
	},
	DynamicRoute{
		URL:    "/{prefix}/{url_path}{trailing_slash}",
		Name:   "{basename}-{url_name}",
		Detail: false,
	},
	Route{
		URL:    "/{prefix}/{lookup}{trailing_slash}",
		Name:   "{basename}-detail",
		Detail: true,
		Mapping: []MethodMapping{
			{http.MethodGet, ActionRetrieve},
			{http.MethodPut, ActionUpdate},
			{http.MethodPatch, ActionPartialUpdate},
			{http.MethodDelete, ActionDestroy},
		},
	},
	DynamicRoute{
		URL:    "/{prefix}/{lookup}/{url_path}{trailing_slash}",
		Name:   "{basename}-{url_name}",
		Detail: true,
	},
}

// URLPattern is one dispatchable route: a single HTTP method on a single
// path, bound to one view-set action. The ordered pattern list is what
// Router.URLs returns and what Handler mounts on chi.
type URLPattern struct {
	Method string // HTTP method
	Path   string // chi route pattern, e.g. "/widgets/{id:[^/.]+}/"
	Name   string // route name, e.g. "widget-detail"
	Action string // bound view-set method name
	Detail bool

	handler      HandlerFunc
	basename     string
	interceptors []Interceptor
}

// formatURL fills a route URL template into a chi pattern.
func formatURL(template, prefix, lookupSeg, urlPath, trailingSlash string) string {
	r := strings.NewReplacer(
		"{prefix}", prefix,
		"{lookup}", lookupSeg,
		"{url_path}", urlPath,
		"{trailing_slash}", trailingSlash,
	)
	path := r.Replace(template)
	// An empty prefix must not leave a double slash behind.
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}

func formatName(template, basename, urlName string) string {
	return strings.NewReplacer(
		"{basename}", basename,
		"{url_name}", urlName,
	).Replace(template)
}

// expandRoutes turns one registered view set into its ordered URL patterns.
func expandRoutes(in *introspection, prefix, basename string, trailingSlash bool) []URLPattern {
	ts := ""
	if trailingSlash {
		ts = "/"
	}
	lookupSeg := "{" + in.lookup.Param + ":" + in.lookup.Pattern + "}"

	var patterns []URLPattern
	for _, entry := range DefaultRoutes {
		switch route := entry.(type) {
		case Route:
			for _, mm := range route.Mapping {
				bound, ok := in.standard[mm.Action]
				if !ok {
					continue
				}
				patterns = append(patterns, URLPattern{
					Method:  mm.HTTPMethod,
					Path:    formatURL(route.URL, prefix, lookupSeg, "", ts),
					Name:    formatName(route.Name, basename, ""),
					Action:  bound.name,
					Detail:  route.Detail,
					handler: bound.fn,
				})
			}
		case DynamicRoute:
			for _, eb := range in.extra {
				if eb.action.IsDetail() != route.Detail {
					continue
				}
				for _, method := range eb.action.effectiveMethods() {
					patterns = append(patterns, URLPattern{
						Method:  method,
						Path:    formatURL(route.URL, prefix, lookupSeg, eb.action.effectivePath(), ts),
						Name:    formatName(route.Name, basename, eb.action.effectiveName()),
						Action:  eb.bound.name,
						Detail:  route.Detail,
						handler: eb.bound.fn,
					})
				}
			}
		}
	}
	return patterns
}
