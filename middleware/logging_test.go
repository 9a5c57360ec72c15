package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/PaulWay/viewsets"
	"github.com/PaulWay/viewsets/testutil"
)

type pingViewSet struct{}

func (v *pingViewSet) List(ctx *viewsets.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"ping": "pong"})
}

type failingViewSet struct{}

func (v *failingViewSet) List(ctx *viewsets.Context) error {
	return viewsets.NewError(viewsets.CodeNotFound, "gone")
}

func serveWith(t *testing.T, interceptor viewsets.Interceptor, viewset any) {
	t.Helper()
	router := viewsets.NewSimpleRouter().WithInterceptor(interceptor)
	router.Register("pings", viewset, viewsets.WithBasename("ping"))
	h, err := router.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	testutil.NewRequest().GET("/pings/").Serve(h)
}

func TestLoggingInterceptor_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	serveWith(t, LoggingInterceptor(logger), &pingViewSet{})

	logs := buf.String()
	if !strings.Contains(logs, "action started") {
		t.Errorf("expected start log, got %q", logs)
	}
	if !strings.Contains(logs, "action completed") {
		t.Errorf("expected completion log, got %q", logs)
	}
	if !strings.Contains(logs, "basename=ping") || !strings.Contains(logs, "action=List") {
		t.Errorf("expected action metadata in logs, got %q", logs)
	}
}

func TestLoggingInterceptor_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	serveWith(t, LoggingInterceptor(logger), &failingViewSet{})

	logs := buf.String()
	if !strings.Contains(logs, "action failed") {
		t.Errorf("expected failure log, got %q", logs)
	}
	if !strings.Contains(logs, "not_found") {
		t.Errorf("expected error in logs, got %q", logs)
	}
}

func TestLoggingInterceptor_NilLogger(t *testing.T) {
	// Must not panic; falls back to slog.Default.
	serveWith(t, LoggingInterceptor(nil), &pingViewSet{})
}
