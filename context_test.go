package viewsets

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type createArticle struct {
	Title string `json:"title" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

type articleFilter struct {
	Search string `schema:"search"`
	Limit  int    `schema:"limit" validate:"omitempty,gte=1"`
}

func newTestContext(method, target, body string) (*Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	ctx := newContext(w, req, URLPattern{Action: ActionList})
	ctx.maxRequestBody = 1 << 20
	return ctx, w
}

func TestContext_BindJSON(t *testing.T) {
	ctx, _ := newTestContext(http.MethodPost, "/articles/", `{"title":"hello"}`)

	var in createArticle
	if err := ctx.BindJSON(&in); err != nil {
		t.Fatalf("BindJSON: %v", err)
	}
	if in.Title != "hello" {
		t.Errorf("expected title hello, got %q", in.Title)
	}
}

func TestContext_BindJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"title":`},
		{"missing required", `{"email":"a@b.com"}`},
		{"bad email", `{"title":"x","email":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(http.MethodPost, "/articles/", tt.body)
			var in createArticle
			if err := ctx.BindJSON(&in); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestContext_BindJSON_BodyTooLarge(t *testing.T) {
	ctx, _ := newTestContext(http.MethodPost, "/articles/",
		`{"title":"`+strings.Repeat("x", 100)+`"}`)
	ctx.maxRequestBody = 16

	var in createArticle
	err := ctx.BindJSON(&in)
	if err == nil {
		t.Fatal("expected an error")
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != CodeInvalidArgument {
		t.Errorf("expected invalid_argument, got %v", err)
	}
}

func TestContext_BindQuery(t *testing.T) {
	ctx, _ := newTestContext(http.MethodGet, "/articles/?search=go&limit=5", "")

	var f articleFilter
	if err := ctx.BindQuery(&f); err != nil {
		t.Fatalf("BindQuery: %v", err)
	}
	if f.Search != "go" || f.Limit != 5 {
		t.Errorf("unexpected filter %+v", f)
	}
}

func TestContext_BindQuery_IgnoresUnknownKeys(t *testing.T) {
	ctx, _ := newTestContext(http.MethodGet, "/articles/?search=go&unknown=1", "")

	var f articleFilter
	if err := ctx.BindQuery(&f); err != nil {
		t.Fatalf("BindQuery: %v", err)
	}
}

func TestContext_BindQuery_Validates(t *testing.T) {
	ctx, _ := newTestContext(http.MethodGet, "/articles/?limit=0", "")

	var f articleFilter
	err := ctx.BindQuery(&f)
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		t.Errorf("expected validation errors, got %v", err)
	}
}

func TestContext_JSON(t *testing.T) {
	ctx, w := newTestContext(http.MethodGet, "/articles/", "")

	if err := ctx.JSON(http.StatusTeapot, map[string]int{"n": 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestContext_NoContent(t *testing.T) {
	ctx, w := newTestContext(http.MethodDelete, "/articles/1/", "")

	if err := ctx.NoContent(); err != nil {
		t.Fatalf("NoContent: %v", err)
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestContext_RenderWithoutRenderer(t *testing.T) {
	ctx, _ := newTestContext(http.MethodGet, "/articles/", "")

	err := ctx.Render(http.StatusOK, "", nil)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != CodeInternal {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestContext_Metadata(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/articles/1/", nil)
	w := httptest.NewRecorder()
	ctx := newContext(w, req, URLPattern{Action: ActionRetrieve, Detail: true})
	ctx.basename = "article"

	if ctx.Action() != ActionRetrieve {
		t.Errorf("unexpected action %q", ctx.Action())
	}
	if !ctx.Detail() {
		t.Error("expected detail context")
	}
	if ctx.Basename() != "article" {
		t.Errorf("unexpected basename %q", ctx.Basename())
	}
	if ctx.Param("id") != "" {
		t.Error("expected empty param outside a routed request")
	}
}
