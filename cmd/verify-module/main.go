// Точка входа сервиса верификации продуктов Nadova.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт S3-хранилище, сервисный слой и API handlers, запускает
// topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/nadovalabs/verify-module/internal/api/handlers"
	"github.com/nadovalabs/verify-module/internal/auth"
	"github.com/nadovalabs/verify-module/internal/config"
	"github.com/nadovalabs/verify-module/internal/database"
	"github.com/nadovalabs/verify-module/internal/repository"
	"github.com/nadovalabs/verify-module/internal/server"
	"github.com/nadovalabs/verify-module/internal/service"
	"github.com/nadovalabs/verify-module/internal/storage"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Сервис верификации запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("public_base_url", cfg.PublicBaseURL),
	)

	if os.Getenv("NV_DEPHEALTH_GROUP") == "" {
		logger.Warn("NV_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. S3-хранилище файлов (изображения продуктов, COA)
	files, err := storage.New(ctx, storage.Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PathStyle: cfg.S3PathStyle,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		logger.Error("Ошибка создания S3-хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("S3-хранилище инициализировано",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("endpoint", cfg.S3Endpoint),
	)

	// 6. Repositories
	qrRepo := repository.NewQrCodeRepository(pool)
	catRepo := repository.NewCategoryRepository(pool)
	prodRepo := repository.NewProductRepository(pool)
	contentRepo := repository.NewContentBlockRepository(pool)
	userRepo := repository.NewAdminUserRepository(pool)

	// 7. Services
	allocatorSvc := service.NewAllocatorService(qrRepo, logger)
	qrCodesSvc := service.NewQrCodeService(qrRepo, logger)
	resolveSvc := service.NewResolveService(qrRepo, logger)
	catalogSvc := service.NewCatalogService(catRepo, prodRepo, logger)
	contentSvc := service.NewContentService(contentRepo, logger)
	usersSvc := service.NewAdminUserService(userRepo, logger)

	// 8. Bootstrap первой учётной записи администратора (если таблица пуста)
	if err := usersSvc.Bootstrap(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		logger.Error("Ошибка bootstrap администратора", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Session Manager — шифрование сессий (AES-256-GCM)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookies(), cfg.SessionTTL)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("NV_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL + S3)
	var dephealthSvc *service.DephealthService
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"verify-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.S3Endpoint,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. Handlers
	h := server.Handlers{
		Health:  handlers.NewHealthHandler(database.NewReadinessChecker(pool)),
		Public:  handlers.NewPublicHandler(resolveSvc, logger),
		Auth:    handlers.NewAuthHandler(usersSvc, sessionMgr, logger),
		QrCodes: handlers.NewQrCodeHandler(allocatorSvc, qrCodesSvc, files, cfg.PublicBaseURL, logger),
		Catalog: handlers.NewCatalogHandler(catalogSvc, logger),
		Content: handlers.NewContentHandler(contentSvc, logger),
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, sessionMgr)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Сервис верификации остановлен")
}
