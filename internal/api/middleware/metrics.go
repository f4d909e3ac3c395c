// metrics.go — Prometheus HTTP метрики сервиса.
// Регистрирует метрики: nv_http_requests_total, nv_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nv_http_requests_total",
			Help: "Общее количество HTTP-запросов к сервису верификации",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nv_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к сервису верификации в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id}/{code} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет динамические сегменты пути на {id}/{code}/{key}
// для предотвращения взрывного роста кардинальности метрик.
// /api/v1/verify/q42 → /api/v1/verify/{code}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/admin/auth/login",
		"/api/v1/admin/auth/logout",
		"/api/v1/admin/auth/me",
		"/api/v1/admin/qr-codes",
		"/api/v1/admin/qr-codes/generate",
		"/api/v1/admin/qr-codes/archive",
		"/api/v1/admin/qr-codes/stats",
		"/api/v1/admin/qr-codes/styles",
		"/api/v1/admin/products",
		"/api/v1/admin/categories",
		"/api/v1/admin/content-blocks":
		return path
	}

	// Динамические пути
	prefixes := []struct {
		prefix string
		result string
	}{
		{"/api/v1/verify/", "/api/v1/verify/{code}"},
		{"/api/v1/admin/qr-codes/", "/api/v1/admin/qr-codes/{id}"},
		{"/api/v1/admin/products/", "/api/v1/admin/products/{id}"},
		{"/api/v1/admin/categories/", "/api/v1/admin/categories/{id}"},
		{"/api/v1/admin/content-blocks/", "/api/v1/admin/content-blocks/{key}"},
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(path, p.prefix) || len(path) == len(p.prefix) {
			continue
		}
		rest := path[len(p.prefix):]
		// Суффиксы после идентификатора: /image, /png, /uploads/...
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return p.result + rest[idx:]
		}
		return p.result
	}

	return path
}
