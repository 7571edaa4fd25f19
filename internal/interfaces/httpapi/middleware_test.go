package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestShouldTraceRequest(t *testing.T) {
	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", "/metrics", " /HEALTHZ "} {
		assert.False(t, shouldTraceRequest(path), path)
	}
	for _, path := range []string{"/v1/references", "/v1/managers/resolve", "/", "/docs"} {
		assert.True(t, shouldTraceRequest(path), path)
	}
}

func TestCORSPolicy_AllowOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
		ok      bool
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://a.example.com", want: "*", ok: true},
		{name: "listed", allowed: []string{" https://a.example.com ", ""}, origin: "https://a.example.com", want: "https://a.example.com", ok: true},
		{name: "unlisted", allowed: []string{"https://a.example.com"}, origin: "https://b.example.com"},
		{name: "empty list", origin: "https://a.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := newCORSPolicy(tt.allowed).allowOrigin(tt.origin)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCORS_Headers(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/references", nil)
		req.Header.Set("Origin", "https://creator-match.example.com")
		rec := httptest.NewRecorder()

		CORS([]string{"https://creator-match.example.com"}, next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://creator-match.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/internal/jobs/ingest", nil)
		req.Header.Set("Origin", "https://creator-match.example.com")
		rec := httptest.NewRecorder()

		CORS([]string{"*"}, next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), internalJobTokenHeader)
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/references", nil)
		req.Header.Set("Origin", "https://not-allowed.example.com")
		rec := httptest.NewRecorder()

		CORS([]string{"https://allowed.example.com"}, next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestLogging_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.FromZap(zap.New(core))

	statuses := map[string]int{"/ok": http.StatusOK, "/missing": http.StatusNotFound, "/boom": http.StatusBadGateway, "/healthz": http.StatusOK}
	handler := RequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statuses[r.URL.Path])
	}))
	for _, path := range []string{"/ok", "/missing", "/boom", "/healthz"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, zap.WarnLevel, entries[1].Level)
		assert.Equal(t, zap.ErrorLevel, entries[2].Level)
		assert.EqualValues(t, http.StatusBadGateway, entries[2].ContextMap()["status"])
	}
}
