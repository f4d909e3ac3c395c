// Пакет server — HTTP-сервер с маршрутизацией и graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на reverse proxy.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nadovalabs/verify-module/internal/api/handlers"
	"github.com/nadovalabs/verify-module/internal/api/middleware"
	"github.com/nadovalabs/verify-module/internal/auth"
	"github.com/nadovalabs/verify-module/internal/config"
)

// Handlers — набор обработчиков, монтируемых на роутер.
type Handlers struct {
	Health  *handlers.HealthHandler
	Public  *handlers.PublicHandler
	Auth    *handlers.AuthHandler
	QrCodes *handlers.QrCodeHandler
	Catalog *handlers.CatalogHandler
	Content *handlers.ContentHandler
}

// Server — HTTP-сервер сервиса верификации.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
// Публичная часть (verify, health, metrics, login) доступна без сессии;
// всё под /api/v1/admin, кроме login, требует валидный session cookie.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, sessions *auth.SessionManager) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Ops surface — проверяется Kubernetes напрямую
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	// Публичное API
	router.Get("/api/v1/verify/{code}", h.Public.Verify)

	// Вход — единственный админский endpoint без сессии
	router.Post("/api/v1/admin/auth/login", h.Auth.Login)

	// Админское API под session middleware
	router.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))

		r.Post("/auth/logout", h.Auth.Logout)
		r.Get("/auth/me", h.Auth.Me)

		r.Route("/qr-codes", func(r chi.Router) {
			r.Post("/generate", h.QrCodes.Generate)
			r.Post("/archive", h.QrCodes.Archive)
			r.Get("/stats", h.QrCodes.Stats)
			r.Get("/styles", h.QrCodes.Styles)
			r.Get("/", h.QrCodes.List)
			r.Get("/{id}", h.QrCodes.Get)
			r.Put("/{id}", h.QrCodes.Update)
			r.Get("/{id}/png", h.QrCodes.RenderPNG)
			r.Post("/{id}/uploads/image", h.QrCodes.UploadImage)
			r.Post("/{id}/uploads/coa", h.QrCodes.UploadCoa)
			// Удаление — только для роли admin
			r.With(middleware.RequireAdmin()).Delete("/{id}", h.QrCodes.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.Catalog.CreateCategory)
			r.Get("/", h.Catalog.ListCategories)
			r.Get("/{id}", h.Catalog.GetCategory)
			r.Put("/{id}", h.Catalog.UpdateCategory)
			r.With(middleware.RequireAdmin()).Delete("/{id}", h.Catalog.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.Catalog.CreateProduct)
			r.Get("/", h.Catalog.ListProducts)
			r.Get("/{id}", h.Catalog.GetProduct)
			r.Put("/{id}", h.Catalog.UpdateProduct)
			r.With(middleware.RequireAdmin()).Delete("/{id}", h.Catalog.DeleteProduct)
		})

		r.Route("/content-blocks", func(r chi.Router) {
			r.Post("/", h.Content.Create)
			r.Get("/", h.Content.List)
			r.Get("/{key}", h.Content.Get)
			r.Put("/{key}", h.Content.Update)
			r.With(middleware.RequireAdmin()).Delete("/{key}", h.Content.Delete)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
