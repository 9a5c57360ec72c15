// Package viewsets groups the HTTP handlers for one resource under a single
// struct and generates the resource's URL table automatically.
//
// Instead of wiring each endpoint by hand, implement actions on a view set
// and register it with a router:
//
//	type WidgetViewSet struct {
//	    viewsets.Model[Widget]
//	}
//
//	func (v *WidgetViewSet) ExtraActions() []viewsets.Action {
//	    return []viewsets.Action{
//	        viewsets.NewAction("Archive").Detail().Methods(http.MethodPost),
//	    }
//	}
//
//	func (v *WidgetViewSet) Archive(ctx *viewsets.Context) error {
//	    obj, err := v.GetObject(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    // ...
//	    return ctx.NoContent()
//	}
//
//	router := viewsets.NewDefaultRouter()
//	router.Register("widgets", &WidgetViewSet{Model: viewsets.NewModel[Widget](db)})
//	h, err := router.Handler()
//
// The router derives one URL pattern per bound action: GET /widgets/ lists,
// POST /widgets/ creates, GET /widgets/{id}/ retrieves, PUT, PATCH and DELETE
// update and destroy, and POST /widgets/{id}/archive/ runs the extra action.
// This takes the place of declaring each route against the host chi router
// and keeping the handler set and the URL table in sync by hand.
package viewsets
