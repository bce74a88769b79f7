// logging.go — структурированное логирование HTTP-запросов PanelHub.
// Каждый запрос пишется одной записью после обработки: метод, путь,
// query string (админские endpoints адресуют конфигурации через ?type=),
// статус, длительность, размер ответа и адрес клиента.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// logResponseWriter перехватывает статус-код и размер ответа.
type logResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newLogResponseWriter(w http.ResponseWriter) *logResponseWriter {
	return &logResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *logResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *logResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить оригинальный ResponseWriter.
func (rw *logResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestLogLevel выбирает уровень записи по статус-коду:
// INFO (1xx-3xx), WARN (4xx), ERROR (5xx).
func requestLogLevel(statusCode int) slog.Level {
	switch {
	case statusCode >= 500:
		return slog.LevelError
	case statusCode >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger возвращает middleware логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "http"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newLogResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", r.URL.RawQuery))
			}

			logger.LogAttrs(r.Context(), requestLogLevel(wrapped.statusCode),
				"HTTP запрос", attrs...)
		})
	}
}
