package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func newTestEngine(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware...)
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return engine
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRequestID(t *testing.T) {
	engine := newTestEngine(RequestID())

	tests := []struct {
		name   string
		header string
	}{
		{name: "generated", header: ""},
		{name: "propagated", header: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got == "" {
				t.Fatal("expected X-Request-ID response header")
			}
			if tt.header != "" && got != tt.header {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.header)
			}
			if rec.Body.String() != got {
				t.Errorf("context request id = %q, header = %q", rec.Body.String(), got)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	engine := newTestEngine(Recovery(quietLogger()), RequestID(), StructuredLogger(quietLogger()))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	engine := newTestEngine(RateLimiter(0.001, 2, quietLogger()))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}
