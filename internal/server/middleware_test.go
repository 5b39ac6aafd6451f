package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func TestAuthMiddleware(t *testing.T) {
	for _, tc := range []struct {
		name   string
		token  string
		method string
		path   string
		header string
		code   int
	}{
		{"Disabled", "", http.MethodGet, "/v1/content", "", 200},
		{"NoHeader", "secret", http.MethodGet, "/v1/content", "", 401},
		{"WrongToken", "secret", http.MethodGet, "/v1/content", "Bearer wrong", 401},
		{"InvalidScheme", "secret", http.MethodGet, "/v1/content", "Basic secret", 401},
		{"CorrectToken", "secret", http.MethodPut, "/v1/content/home", "Bearer secret", 200},
		{"HealthExempt", "secret", http.MethodGet, "/v1/health", "", 200},
		{"HealthOnlyForGet", "secret", http.MethodPost, "/v1/health", "", 401},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(tc.token, okHandler()).ServeHTTP(rec, req)
			requireStatus(t, rec, tc.code)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/content", nil))

	requireStatus(t, rec, http.StatusInternalServerError)
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if logs.FilterMessage("panic recovered in HTTP handler").Len() != 1 {
		t.Fatalf("expected one panic log entry, got %v", logs.All())
	}
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := LoggingMiddleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusBadGateway, "upstream")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/posts/blog", nil))

	requireStatus(t, rec, http.StatusBadGateway)
	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusBadGateway) {
		t.Fatalf("logged status = %v, want %d", got, http.StatusBadGateway)
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Fatalf("logged at %v, want error", entries[0].Level)
	}
}
