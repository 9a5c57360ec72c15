package viewsets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Context carries one request through a view-set action. It embeds the
// request context, so it can be passed anywhere a context.Context is
// expected (gorm, downstream clients).
type Context struct {
	context.Context

	Request *http.Request
	Writer  http.ResponseWriter

	action   string
	detail   bool
	basename string

	renderer       Renderer
	logger         *slog.Logger
	maxRequestBody int64
}

func newContext(w http.ResponseWriter, r *http.Request, pattern URLPattern) *Context {
	return &Context{
		Context: r.Context(),
		Request: r,
		Writer:  w,
		action:  pattern.Action,
		detail:  pattern.Detail,
	}
}

// Action returns the name of the view-set method being executed.
func (c *Context) Action() string { return c.action }

// Detail reports whether the current route is detail-scoped.
func (c *Context) Detail() bool { return c.detail }

// Basename returns the basename of the view set serving this request.
func (c *Context) Basename() string { return c.basename }

// Param returns the named URL parameter, or "" if absent.
func (c *Context) Param(name string) string {
	return chi.URLParam(c.Request, name)
}

// Logger returns the router's logger, or slog.Default when unset.
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

// BindJSON decodes the request body as JSON into v and validates it.
// The body is capped at the router's maximum request body size.
func (c *Context) BindJSON(v any) error {
	if err := c.decodeJSON(v); err != nil {
		return err
	}
	return c.validateStruct(v)
}

// decodeJSON decodes the body without struct validation. Partial updates use
// it directly, since a patch is not a complete representation.
func (c *Context) decodeJSON(v any) error {
	body := c.Request.Body
	if body == nil {
		return NewError(CodeInvalidArgument, "empty request body")
	}
	if c.maxRequestBody > 0 {
		body = http.MaxBytesReader(c.Writer, body, c.maxRequestBody)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Errorf(CodeInvalidArgument, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return Errorf(CodeInvalidArgument, "failed to decode body: %v", err)
	}
	return nil
}

// BindQuery decodes the URL query string into v and validates it.
// v must be a pointer to a struct with `schema` tags.
func (c *Context) BindQuery(v any) error {
	if err := schemaDecoder.Decode(v, c.Request.URL.Query()); err != nil {
		return Errorf(CodeInvalidArgument, "failed to decode query: %v", err)
	}
	return c.validateStruct(v)
}

// validateStruct runs validator on struct values; non-structs pass through.
func (c *Context) validateStruct(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(rv.Interface())
}

// JSON writes v as the JSON response body with the given status code.
func (c *Context) JSON(status int, v any) error {
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.WriteHeader(status)
	return json.NewEncoder(c.Writer).Encode(v)
}

// NoContent writes an empty 204 response.
func (c *Context) NoContent() error {
	c.Writer.WriteHeader(http.StatusNoContent)
	return nil
}

// Render renders the named template with data through the router's renderer.
// An empty name resolves to "<basename>/<action>.html", kebab-cased, so the
// Retrieve action of a "widget" view set renders "widget/retrieve.html".
// The template executes into a buffer first, so a template error surfaces as
// a regular error response instead of a truncated page.
func (c *Context) Render(status int, name string, data any) error {
	if c.renderer == nil {
		return NewError(CodeInternal, "no renderer configured on router")
	}
	if name == "" {
		name = defaultTemplateName(c.basename, c.action)
	}
	var buf bytes.Buffer
	if err := c.renderer.Render(&buf, name, data); err != nil {
		return err
	}
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	_, err := buf.WriteTo(c.Writer)
	return err
}
