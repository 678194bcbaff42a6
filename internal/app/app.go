package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/cache"
	"github.com/Studentcuchd/sweet-treats-manager/internal/config"
	"github.com/Studentcuchd/sweet-treats-manager/internal/events"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Cache     cache.Store
	Publisher events.Publisher

	redis *redis.Client
}

// NewApp создаёт новый экземпляр App: подключение к БД, кэш каталога и публикатор событий
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := openDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	if err := app.setupCache(ctx); err != nil {
		app.Close()
		return nil, err
	}
	app.setupPublisher()

	return app, nil
}

// DSN собирает строку подключения к postgres
func DSN(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Name,
	)
}

func openDB(ctx context.Context, dbCfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(dbCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(dbCfg.MaxOpenConns)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func (a *App) setupCache(ctx context.Context) error {
	cacheCfg := a.Config.Cache
	switch cacheCfg.Driver {
	case "", "memory":
		a.Cache = cache.NewMemory(cacheCfg.TTL)
	case "redis":
		client, err := cache.ConnectRedis(ctx, cache.RedisOptions{
			Address:  cacheCfg.Redis.Address,
			Password: cacheCfg.Redis.Password,
			DB:       cacheCfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = client
		a.Cache = cache.NewRedis(client, cacheCfg.TTL)
	default:
		return fmt.Errorf("%w: %q", cache.ErrUnknownDriver, cacheCfg.Driver)
	}
	a.Logger.Info("catalog cache configured", slog.String("driver", cacheCfg.Driver))
	return nil
}

func (a *App) setupPublisher() {
	eventsCfg := a.Config.Events
	if len(eventsCfg.Brokers) == 0 {
		a.Logger.Info("inventory events disabled: no kafka brokers configured")
		a.Publisher = events.Nop{}
		return
	}
	a.Publisher = events.NewKafka(a.Logger, eventsCfg.Brokers, eventsCfg.Topic)
	a.Logger.Info("publishing inventory events", slog.String("topic", eventsCfg.Topic))
}

// Close освобождает все соединения приложения
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Error("failed to close event publisher", slog.Any("error", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("failed to close database", slog.Any("error", err))
		}
	}
}
