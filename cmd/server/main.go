package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/ruralfund-backend/internal/config"
	"github.com/ignatzorin/ruralfund-backend/internal/db"
	"github.com/ignatzorin/ruralfund-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/ruralfund-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/ruralfund-backend/internal/http/router"
	"github.com/ignatzorin/ruralfund-backend/internal/logger"
	"github.com/ignatzorin/ruralfund-backend/internal/repository"
	"github.com/ignatzorin/ruralfund-backend/internal/service"
	"github.com/ignatzorin/ruralfund-backend/internal/storage"
	"github.com/ignatzorin/ruralfund-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	documents, err := storage.NewDocumentStorage(cfg.UploadStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Кэш списков проектов: redis, если настроен и доступен, иначе память процесса.
	redisClient, cache := setupCache(ctx, cfg.RedisAddr)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws-hub", hub.Run)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	investorRepo := repository.NewInvestorRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	investmentRepo := repository.NewInvestmentRepository(dbConn)
	contactRepo := repository.NewContactRepository(dbConn)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService, err := service.NewAuthService(userRepo, investorRepo, tokenManager, service.AdminCredentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}
	projectService := service.NewProjectService(projectRepo, documents, cache, hub, cfg.ProjectCacheTTL)
	investmentService := service.NewInvestmentService(investmentRepo, projectRepo, cache, hub)
	exportService := service.NewExportService(investmentRepo)
	contactService := service.NewContactService(contactRepo)

	// HTTP хэндлеры.
	var redisPinger httpHandlers.RedisPinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	handlers := httpRouter.Handlers{
		Projects:    httpHandlers.NewProjectHandler(projectService),
		Investments: httpHandlers.NewInvestmentHandler(investmentService, projectService, exportService),
		Accounts:    httpHandlers.NewAccountHandler(authService),
		Contacts:    httpHandlers.NewContactHandler(contactService),
		WS:          httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:      httpHandlers.NewHealthHandler(dbConn, redisPinger),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

func setupCache(ctx context.Context, addr string) (*redis.Client, service.Cache) {
	client, err := service.NewRedisClient(ctx, addr)
	if err != nil {
		logger.Log.WithError(err).Warn("main: redis недоступен, кэш в памяти")
		return nil, service.NewMemoryCache(ctx)
	}
	if client == nil {
		return nil, service.NewMemoryCache(ctx)
	}
	return client, service.NewRedisCache(client)
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
