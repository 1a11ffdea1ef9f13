package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	level  string
	fields port.Fields
}

type capturingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *capturingLogger) add(level string, fields port.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, fields: fields})
}

func (l *capturingLogger) Debug(_ string, f port.Fields)          { l.add("debug", f) }
func (l *capturingLogger) Info(_ string, f port.Fields)           { l.add("info", f) }
func (l *capturingLogger) Warn(_ string, f port.Fields)           { l.add("warn", f) }
func (l *capturingLogger) Error(_ string, _ error, f port.Fields) { l.add("error", f) }
func (l *capturingLogger) WithFields(port.Fields) port.LoggerPort { return l }

func TestLoggerMiddleware_TraceID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"no header", "", false},
		{"valid header is kept", "run-2024_03_01", true},
		{"header with spaces is replaced", "abc def", false},
		{"header with newline is replaced", "abc\nforged=1", false},
		{"too long header is replaced", strings.Repeat("a", maxTraceIDSize+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := LoggerMiddleware(nopLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = contextkeys.TraceIDFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/ads", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Trace-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get("X-Trace-ID"))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
				assert.True(t, validTraceID(seen))
			}
		})
	}
}

func TestLoggerMiddleware_LevelAndRoute(t *testing.T) {
	logger := &capturingLogger{}
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(logger))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/api/v1/cities/{city}/update", func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "city") {
		case "berlin":
			w.WriteHeader(http.StatusConflict)
		case "munich":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	cases := []struct {
		method, target, level, city string
	}{
		{http.MethodGet, "/health", "debug", ""},
		{http.MethodPost, "/api/v1/cities/frankfurt/update", "info", "frankfurt"},
		{http.MethodPost, "/api/v1/cities/berlin/update", "warn", "berlin"},
		{http.MethodPost, "/api/v1/cities/munich/update", "error", "munich"},
	}
	for _, c := range cases {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(c.method, c.target, nil))
	}

	require.Len(t, logger.entries, len(cases))
	for i, c := range cases {
		e := logger.entries[i]
		assert.Equal(t, c.level, e.level, c.target)
		if c.city != "" {
			assert.Equal(t, c.city, e.fields["city"])
			assert.Equal(t, "/api/v1/cities/{city}/update", e.fields["route"])
		}
	}
}
