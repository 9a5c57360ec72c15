// Package testutil provides testing helpers for exercising viewsets routers
// and plain HTTP handlers. It is import-cycle safe and can be used from any
// package.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

// RequestBuilder helps construct test HTTP requests with a fluent API.
type RequestBuilder struct {
	method      string
	path        string
	body        []byte
	headers     map[string]string
	queryParams url.Values
}

// NewRequest creates a new request builder.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method:      "GET",
		path:        "/",
		headers:     make(map[string]string),
		queryParams: make(url.Values),
	}
}

// GET sets the HTTP method to GET.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	b.method = http.MethodGet
	b.path = path
	return b
}

// POST sets the HTTP method to POST.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	b.method = http.MethodPost
	b.path = path
	return b
}

// PUT sets the HTTP method to PUT.
func (b *RequestBuilder) PUT(path string) *RequestBuilder {
	b.method = http.MethodPut
	b.path = path
	return b
}

// PATCH sets the HTTP method to PATCH.
func (b *RequestBuilder) PATCH(path string) *RequestBuilder {
	b.method = http.MethodPatch
	b.path = path
	return b
}

// DELETE sets the HTTP method to DELETE.
func (b *RequestBuilder) DELETE(path string) *RequestBuilder {
	b.method = http.MethodDelete
	b.path = path
	return b
}

// WithJSON sets the request body as JSON.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	data, _ := json.Marshal(v)
	b.body = data
	b.headers["Content-Type"] = "application/json"
	return b
}

// WithBody sets the raw request body.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.body = []byte(body)
	return b
}

// WithHeader adds a header to the request.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// WithQuery adds a query parameter.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.queryParams.Add(key, value)
	return b
}

// Build creates the HTTP request and ResponseRecorder.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	path := b.path
	if len(b.queryParams) > 0 {
		path += "?" + b.queryParams.Encode()
	}

	var req *http.Request
	if len(b.body) > 0 {
		req = httptest.NewRequest(b.method, path, bytes.NewReader(b.body))
	} else {
		req = httptest.NewRequest(b.method, path, nil)
	}

	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	return req, httptest.NewRecorder()
}

// Serve builds the request and serves it through the handler, typically a
// router's Handler(), returning the recorded response.
func (b *RequestBuilder) Serve(h http.Handler) *httptest.ResponseRecorder {
	req, w := b.Build()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) {
	t.Helper()
	if w.Code != expectedStatus {
		t.Errorf("expected status %d, got %d\nBody: %s", expectedStatus, w.Code, w.Body.String())
	}
}

// AssertJSONBody decodes the response body into a fresh value of expected's
// type and compares it with expected.
func AssertJSONBody(t *testing.T, w *httptest.ResponseRecorder, expected any) {
	t.Helper()

	contentType := w.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("expected Content-Type to contain application/json, got %s", contentType)
	}

	actual := reflect.New(reflect.TypeOf(expected)).Interface()
	if err := json.Unmarshal(w.Body.Bytes(), actual); err != nil {
		t.Fatalf("failed to decode response body: %v\nBody: %s", err, w.Body.String())
	}
	got := reflect.ValueOf(actual).Elem().Interface()
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("response mismatch\nexpected: %+v\ngot:      %+v", expected, got)
	}
}

// ErrorEnvelope mirrors the router's JSON error envelope for assertions.
type ErrorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// AssertJSONError checks that the response body is an error envelope with the
// expected code and returns it for further checks.
func AssertJSONError(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) *ErrorEnvelope {
	t.Helper()

	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error response: %v\nBody: %s", err, w.Body.String())
	}
	if envelope.Error.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)",
			expectedCode, envelope.Error.Code, envelope.Error.Message)
	}
	return &envelope
}
