package viewsets

import (
	"fmt"
	"reflect"

	"github.com/PaulWay/viewsets/internal/naming"
)

// A view set is any struct that groups the handlers for one resource.
// Instead of implementing the HTTP access methods directly, a view set
// implements actions: exported methods with the HandlerFunc signature.
// The standard names List, Create, Retrieve, Update, PartialUpdate and
// Destroy bind to the conventional REST routes; further methods become
// routable through ExtraActions. Anything else stays a plain helper.
//
// Typically, rather than serving view sets directly, you register them with
// a router and have the URL patterns generated automatically:
//
//	router := viewsets.NewDefaultRouter(db)
//	router.Register("widgets", &WidgetViewSet{})
//	h, err := router.Handler()

// BasenameProvider is implemented by view sets that choose their own route
// basename. When absent, the basename is derived from the type name
// ("WidgetViewSet" registers as "widget").
type BasenameProvider interface {
	Basename() string
}

// Lookup describes the single-object URL segment of a view set: the URL
// parameter name and the pattern the value must match. The default pattern
// stops at "/" and does not consume ".json"-style suffixes.
type Lookup struct {
	Param   string
	Pattern string
}

// LookupProvider is implemented by view sets that customize the object-lookup
// URL segment. Model view sets implement it via the embedded Model.
type LookupProvider interface {
	Lookup() Lookup
}

// InterceptorsProvider is implemented by view sets that wrap all of their
// actions with interceptors. These run after router-level interceptors.
type InterceptorsProvider interface {
	Interceptors() []Interceptor
}

func defaultLookup() Lookup {
	return Lookup{Param: "id", Pattern: "[^/.]+"}
}

// boundAction is one routable method resolved on a concrete view set.
type boundAction struct {
	name string // Go method name
	fn   HandlerFunc
}

// introspection is the result of reflecting over a view set once, at
// router-build time.
type introspection struct {
	standard map[string]boundAction // keyed by standard action name
	extra    []extraBinding
	lookup   Lookup
	basename string
}

type extraBinding struct {
	action Action
	bound  boundAction
}

var handlerFuncType = reflect.TypeOf(HandlerFunc(nil))

// bindActions reflects over the view set's method set and resolves every
// routable action. Configuration errors (an extra action naming a missing or
// mis-typed method, clashing with a standard action, or duplicating a URL
// path) are reported wrapped in ErrImproperlyConfigured.
func bindActions(viewset any) (*introspection, error) {
	v := reflect.ValueOf(viewset)
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return nil, fmt.Errorf("%w: nil view set", ErrImproperlyConfigured)
	}

	in := &introspection{standard: make(map[string]boundAction)}

	for name := range standardActions {
		if fn, ok := actionMethod(v, name); ok {
			in.standard[name] = boundAction{name: name, fn: fn}
		}
	}

	if ep, ok := viewset.(ExtraActionsProvider); ok {
		seen := make(map[string]bool) // path+scope uniqueness
		for _, action := range ep.ExtraActions() {
			name := action.MethodName()
			if name == "" {
				return nil, fmt.Errorf("%w: extra action with empty method name", ErrImproperlyConfigured)
			}
			if standardActions[name] {
				return nil, fmt.Errorf("%w: %s is an existing route and cannot be an extra action", ErrImproperlyConfigured, name)
			}
			fn, ok := actionMethod(v, name)
			if !ok {
				return nil, fmt.Errorf("%w: extra action %s: no method with signature func(*viewsets.Context) error", ErrImproperlyConfigured, name)
			}
			key := fmt.Sprintf("%v:%s", action.IsDetail(), action.effectivePath())
			if seen[key] {
				return nil, fmt.Errorf("%w: duplicate extra action path %q", ErrImproperlyConfigured, action.effectivePath())
			}
			seen[key] = true
			in.extra = append(in.extra, extraBinding{
				action: action,
				bound:  boundAction{name: name, fn: fn},
			})
		}
	}

	in.lookup = defaultLookup()
	if lp, ok := viewset.(LookupProvider); ok {
		l := lp.Lookup()
		if l.Param != "" {
			in.lookup.Param = l.Param
		}
		if l.Pattern != "" {
			in.lookup.Pattern = l.Pattern
		}
	}

	in.basename = deriveBasename(viewset)

	return in, nil
}

// actionMethod resolves a method by name and checks the handler signature.
func actionMethod(v reflect.Value, name string) (HandlerFunc, bool) {
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	if !m.Type().ConvertibleTo(handlerFuncType) {
		return nil, false
	}
	return m.Convert(handlerFuncType).Interface().(HandlerFunc), true
}

// deriveBasename picks the route basename for a view set: an explicit
// Basename method wins, otherwise the type name is kebab-cased with any
// "ViewSet" suffix dropped.
func deriveBasename(viewset any) string {
	if bp, ok := viewset.(BasenameProvider); ok {
		if name := bp.Basename(); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(viewset)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	return naming.Basename(t.Name())
}
