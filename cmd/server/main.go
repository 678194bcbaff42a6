package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/app"
	"github.com/Studentcuchd/sweet-treats-manager/internal/config"
	"github.com/Studentcuchd/sweet-treats-manager/internal/lib/logger"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
	"github.com/Studentcuchd/sweet-treats-manager/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения: конфиг, БД, кэш каталога, публикатор событий
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	// реализация слоев по работе с БД по каждому направлению
	sweetRepo := storage.NewSweetRepository(application.DB)
	userRepo := storage.NewUserRepository(application.DB)
	profileRepo := storage.NewProfileRepository(application.DB)
	purchaseRepo := storage.NewPurchaseRepository(application.DB)

	authService := service.NewAuthService(
		application.Logger,
		application.DB,
		userRepo,
		profileRepo,
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.TokenTTL)*time.Minute,
		cfg.Inventory.AdminEmails,
	)
	catalogService := service.NewCatalogService(application.Logger, sweetRepo, application.Cache)
	inventoryService := service.NewInventoryService(
		application.Logger,
		application.DB,
		sweetRepo,
		purchaseRepo,
		catalogService,
		application.Publisher,
		cfg.Inventory.LowStockThreshold,
	)
	profileService := service.NewProfileService(application.Logger, profileRepo, purchaseRepo)

	router := app.NewRouter(application.Logger, cfg.JWT.Secret, app.Services{
		Auth:      authService,
		Catalog:   catalogService,
		Inventory: inventoryService,
		Profiles:  profileService,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
