package viewsets

import (
	"net/http"

	"github.com/PaulWay/viewsets/internal/naming"
)

// HandlerFunc is the signature every routable view-set method must have.
// Methods with any other signature are ignored by introspection.
type HandlerFunc func(*Context) error

// Standard action method names bound by the default route table.
const (
	ActionList          = "List"
	ActionCreate        = "Create"
	ActionRetrieve      = "Retrieve"
	ActionUpdate        = "Update"
	ActionPartialUpdate = "PartialUpdate"
	ActionDestroy       = "Destroy"
)

var standardActions = map[string]bool{
	ActionList:          true,
	ActionCreate:        true,
	ActionRetrieve:      true,
	ActionUpdate:        true,
	ActionPartialUpdate: true,
	ActionDestroy:       true,
}

// Action declares an extra routable method on a view set, beyond the standard
// CRUD set. The zero value is not useful; construct with NewAction and the
// builder methods:
//
//	func (v *WidgetViewSet) ExtraActions() []viewsets.Action {
//	    return []viewsets.Action{
//	        viewsets.NewAction("Archive").Detail().Methods(http.MethodPost),
//	        viewsets.NewAction("RecentlyAdded"),
//	    }
//	}
//
// Archive becomes POST {prefix}/{lookup}/archive, RecentlyAdded becomes
// GET {prefix}/recently-added.
type Action struct {
	method      string // Go method name on the view set
	detail      bool
	httpMethods []string
	urlPath     string
	urlName     string
}

// NewAction declares the named view-set method as a routable extra action.
// By default the action is list-scoped, answers GET, and its URL path and
// route name are the kebab-cased method name.
func NewAction(method string) Action {
	return Action{method: method}
}

// Detail marks the action as operating on a single object. Its URL gains the
// object-lookup segment and the bound method may call GetObject.
func (a Action) Detail() Action {
	a.detail = true
	return a
}

// Methods sets the HTTP methods the action answers. Default is GET only.
func (a Action) Methods(methods ...string) Action {
	a.httpMethods = methods
	return a
}

// Path overrides the URL path fragment. Default is the kebab-cased method name.
func (a Action) Path(p string) Action {
	a.urlPath = p
	return a
}

// Name overrides the route-name fragment used in "{basename}-{name}".
// Default is the kebab-cased method name.
func (a Action) Name(n string) Action {
	a.urlName = n
	return a
}

// MethodName returns the Go method name this action binds.
func (a Action) MethodName() string { return a.method }

// IsDetail reports whether the action is detail-scoped.
func (a Action) IsDetail() bool { return a.detail }

func (a Action) effectivePath() string {
	if a.urlPath != "" {
		return a.urlPath
	}
	return naming.Kebab(a.method)
}

func (a Action) effectiveName() string {
	if a.urlName != "" {
		return a.urlName
	}
	return naming.Kebab(a.method)
}

func (a Action) effectiveMethods() []string {
	if len(a.httpMethods) > 0 {
		return a.httpMethods
	}
	return []string{http.MethodGet}
}

// ExtraActionsProvider is implemented by view sets that expose extra actions.
type ExtraActionsProvider interface {
	ExtraActions() []Action
}
