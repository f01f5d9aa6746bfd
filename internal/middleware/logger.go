// Package middleware содержит HTTP middleware сервиса: логирование запросов и gzip.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RunIDHeader - заголовок ответа с идентификатором запуска
const RunIDHeader = "X-Run-ID"

// LoggerMiddleware создает middleware для логирования запросов и ответов
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Обертка над ResponseWriter отслеживает статус и размер
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Duration("latency", time.Since(start)),
				zap.Int("status", ww.Status()),
				zap.Int("size", ww.BytesWritten()),
			}
			if runID := ww.Header().Get(RunIDHeader); runID != "" {
				fields = append(fields, zap.String("run_id", runID))
			}
			logger.Info("Request processed", fields...)
		})
	}
}
