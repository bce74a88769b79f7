// Точка входа PanelHub — административный backend провижининга панелей.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт клиент внешнего API и notifier, собирает сервисный слой и
// API handlers, запускает мониторинг зависимостей (topologymetrics),
// HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/panelhub/internal/api/handlers"
	"github.com/bigkaa/panelhub/internal/api/middleware"
	"github.com/bigkaa/panelhub/internal/config"
	"github.com/bigkaa/panelhub/internal/database"
	"github.com/bigkaa/panelhub/internal/notify"
	"github.com/bigkaa/panelhub/internal/ptero"
	"github.com/bigkaa/panelhub/internal/repository"
	"github.com/bigkaa/panelhub/internal/server"
	"github.com/bigkaa/panelhub/internal/service"
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
	logger.Info("PanelHub запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if cfg.NotifyWebhookURL == "" {
		logger.Warn("PH_NOTIFY_WEBHOOK_URL не задана, уведомления выключены")
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

	// 5. Repositories
	userRepo := repository.NewUserRepository(pool)
	configRepo := repository.NewPanelConfigRepository(pool)
	panelRepo := repository.NewUserPanelRepository(pool)

	// 6. Клиент внешнего API провижининга и notifier
	pteroClient := ptero.New(cfg.PteroBaseURL, cfg.PteroTimeout, logger)
	notifier := notify.New(cfg.NotifyWebhookURL, cfg.NotifyTimeout, logger)
	defer notifier.Wait()

	// 7. Services
	authSvc := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.JWTTTL, logger)
	userSvc := service.NewUserService(userRepo, logger)
	configSvc := service.NewConfigService(configRepo, logger)
	panelSvc := service.NewPanelService(panelRepo, configRepo, pteroClient, notifier, logger)

	// 8. Мониторинг зависимостей (topologymetrics)
	dephealthSvc, err := service.NewDephealthService(
		"panelhub",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.PteroBaseURL,
		cfg.NotifyWebhookURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка инициализации мониторинга зависимостей", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := dephealthSvc.Start(ctx); err != nil {
		logger.Error("Ошибка запуска мониторинга зависимостей", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dephealthSvc.Stop()

	// 9. Health и API handlers
	healthHandler := handlers.NewHealthHandler(
		database.NewReadinessChecker(pool),
		ptero.NewReadinessChecker(cfg.PteroBaseURL, cfg.PteroTimeout),
	)
	apiHandler := handlers.NewAPIHandler(healthHandler, authSvc, userSvc, configSvc, panelSvc, logger)

	// 10. JWT middleware: служебные endpoints и аутентификация — без токена
	jwtAuth := middleware.NewJWTAuth([]byte(cfg.JWTSecret), cfg.JWTLeeway, logger)
	jwtWithExclusions := server.JWTAuthWithExclusions(
		jwtAuth.Middleware(),
		"/health/",
		"/metrics",
		"/api/v1/auth/",
	)

	// 11. HTTP-сервер: metrics → logging → JWT
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
		jwtWithExclusions,
	)

	// 12. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Сервер завершился с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("PanelHub остановлен")
}
