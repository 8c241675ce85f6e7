package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogServerError_HidesCause(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	el := NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/book/", nil)
	el.LogServerError(rec, req, "find books failed", errors.New("connection refused"), "La collecte de livres a échoué.")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "connection refused") {
		t.Error("cause leaked into response body")
	}
	if !strings.Contains(body, "La collecte de livres a échoué.") {
		t.Errorf("body = %s", body)
	}
	if logs.Len() != 1 || logs.All()[0].Message != "find books failed" {
		t.Errorf("unexpected logs: %+v", logs.All())
	}
}

func TestRecoverer(t *testing.T) {
	el := NewErrorLogger(zap.NewNop())
	h := el.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRouterHandlers(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
		want int
	}{
		{"not found", NotFound, http.StatusNotFound},
		{"method not allowed", MethodNotAllowed, http.StatusMethodNotAllowed},
		{"too many", RenderTooManyRequests, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.h(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if !strings.HasPrefix(rec.Body.String(), `{"message":`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}
