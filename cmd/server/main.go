package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kore-signet/blaseball-highlights-server/internal/config"
	"github.com/kore-signet/blaseball-highlights-server/internal/database"
	"github.com/kore-signet/blaseball-highlights-server/internal/handler"
	appLogger "github.com/kore-signet/blaseball-highlights-server/internal/logger"
	appMiddleware "github.com/kore-signet/blaseball-highlights-server/internal/middleware"
	"github.com/kore-signet/blaseball-highlights-server/internal/repository"
	"github.com/kore-signet/blaseball-highlights-server/internal/service"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Highlights Server...")

	// Загружаем конфиг ДО инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := appLogger.New(appLogger.Config{
		Level: cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// Подключение к PostgreSQL
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Успешное подключение к PostgreSQL")

	if err := database.ApplyMigrations(dbPool); err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}
	logger.Info("Миграции схемы применены")

	// Инициализация зависимостей
	// Передаем logger, он будет использован внутри через .Named()
	userRepo := repository.NewPgUserRepository(logger)
	storyRepo := repository.NewPgStoryRepository(logger)
	eventRepo := repository.NewPgEventRepository(logger)

	txManager := service.NewPgxTxManager(dbPool)
	identityService := service.NewIdentityService(userRepo, logger)
	highlightService := service.NewHighlightService(storyRepo, eventRepo, identityService, txManager, logger)
	highlightHandler := handler.NewHighlightHandler(highlightService, dbPool, logger)

	// Настройка Echo
	e := echo.New()
	e.Validator = handler.NewRequestValidator()
	e.Use(appMiddleware.EchoZapLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	highlightHandler.RegisterRoutes(e)

	log.Printf("Highlights сервер слушает на порту %s", cfg.Port)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("Ошибка запуска HTTP сервера: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Ошибка при graceful shutdown Echo: ", err)
	}

	log.Println("Highlights Server успешно остановлен")
}

// setupDatabase инициализирует и возвращает пул соединений с БД
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.GetDSN()
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return dbPool, nil
}
