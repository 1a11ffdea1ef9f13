package rest

import (
	"net/http"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	traceIDHeader  = "X-Trace-ID"
	maxTraceIDSize = 64
)

// validTraceID пропускает только то, что безопасно писать в логи и заголовки:
// буквы, цифры, '-', '_' и не длиннее maxTraceIDSize
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDSize {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// LoggerMiddleware кладет в контекст trace_id и логгер, который дальше используют
// use case'ы (в том числе запущенные вручную update/scrape), и логирует итог запроса
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if incoming := r.Header.Get(traceIDHeader); validTraceID(incoming) {
				ctx = contextkeys.ContextWithTraceID(ctx, incoming)
			}
			// тот же генератор, что у прогонов по расписанию
			ctx, traceID := contextkeys.EnsureTraceID(ctx)

			coreLogger := logger.WithFields(port.Fields{"trace_id": traceID})
			ctx = contextkeys.ContextWithLogger(ctx, coreLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set(traceIDHeader, traceID)
			started := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := port.Fields{
				"http_method":   r.Method,
				"http_path":     r.URL.Path,
				"remote_addr":   r.RemoteAddr,
				"status_code":   ww.Status(),
				"bytes_written": ww.BytesWritten(),
				"duration_ms":   time.Since(started).Milliseconds(),
			}
			// RouteContext заполняется роутером уже после этого middleware
			if rctx := chi.RouteContext(ctx); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields["route"] = pattern
				}
				if city := rctx.URLParam("city"); city != "" {
					fields["city"] = city
				}
			}
			logRequest(coreLogger, r.URL.Path, ww.Status(), fields)
		})
	}
}

// logRequest: 5xx - error, 4xx - warn, /health - debug (его опрашивает оркестратор)
func logRequest(logger port.LoggerPort, path string, status int, fields port.Fields) {
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed", nil, fields)
	case status >= http.StatusBadRequest:
		logger.Warn("Request rejected", fields)
	case path == "/health":
		logger.Debug("Request finished", fields)
	default:
		logger.Info("Request finished", fields)
	}
}
