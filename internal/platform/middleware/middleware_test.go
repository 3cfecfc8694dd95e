package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestIDGenerated(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		rid, _ := c.Get("request_id").(string)
		if rid == "" {
			t.Error("request id missing from context")
		}
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response missing generated request id header")
	}
}

func TestRequestIDHonoursIncoming(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("expected incoming id echoed back, got %q", got)
	}
}

func TestLoggerEmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID())
	e.Use(Logger(logger))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	line := buf.String()
	for _, want := range []string{`"method":"GET"`, `"path":"/ping"`, `"status":200`, `"request_id"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(Recovery(logger))
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "kaboom") {
		t.Errorf("panic value missing from log: %s", buf.String())
	}
}

func TestLoggerLevelsByStatusClass(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID())
	e.Use(Logger(logger))
	e.GET("/missing", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing?id=7", nil))

	line := buf.String()
	if !strings.Contains(line, `"level":"warn"`) {
		t.Errorf("expected warn level for a 4xx, got: %s", line)
	}
	if !strings.Contains(line, `"query":"id=7"`) {
		t.Errorf("expected query string in log line, got: %s", line)
	}
}

func TestRecoveryLogsRequestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID())
	e.Use(Recovery(logger))
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	line := buf.String()
	for _, want := range []string{`"path":"/boom"`, `"method":"GET"`, `"stack"`, `"request_id"`} {
		if !strings.Contains(line, want) {
			t.Errorf("panic log missing %s: %s", want, line)
		}
	}
}
