package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jaekwang-park/todo-web/internal/config"
	"github.com/jaekwang-park/todo-web/internal/flash"
	todohttp "github.com/jaekwang-park/todo-web/internal/http"
	"github.com/jaekwang-park/todo-web/internal/http/view"
	"github.com/jaekwang-park/todo-web/internal/middleware"
	"github.com/jaekwang-park/todo-web/internal/repository"
	"github.com/jaekwang-park/todo-web/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(middleware.NewContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	})))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"log_level", cfg.LogLevel,
		"timezone", cfg.Timezone,
		"db_driver", cfg.DB.Driver,
		"flash_store", cfg.Flash.Store,
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Repository
	todoRepo, closeDB, err := openTodoRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// Flash notices
	flashes, closeFlash, err := openFlashStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFlash()

	// Services and views
	todoSvc := service.NewTodoService(todoRepo, loc)
	views, err := view.NewRenderer(loc)
	if err != nil {
		return err
	}

	// HTTP Server
	srv := todohttp.NewServer(cfg.ServerPort, logger, todohttp.NewRouter(todoSvc, flashes, views))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}

func openTodoRepository(cfg config.Config, logger *slog.Logger) (repository.TodoRepository, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		level := gormlogger.Warn
		if cfg.ParseLogLevel() == slog.LevelDebug {
			level = gormlogger.Info
		}
		db, err := repository.OpenSQLite(cfg.DB.SQLitePath, level)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		logger.Info("database connected", "driver", cfg.DB.Driver, "path", cfg.DB.SQLitePath)
		return repository.NewGormTodo(db), func() { sqlDB.Close() }, nil

	default:
		db, err := repository.NewDB(cfg.DB.DSN())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected", "driver", cfg.DB.Driver)

		if cfg.DB.Migrate {
			if err := repository.Migrate(db, logger); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return repository.NewPostgresTodo(db), func() { db.Close() }, nil
	}
}

func openFlashStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (flash.Store, func(), error) {
	opts := flash.Options{TTL: cfg.Flash.TTL, Secure: cfg.SecureCookies()}

	if cfg.Flash.Store != config.FlashRedis {
		store, err := flash.NewCookieStore(cfg.Flash.Secret, opts)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("redis connected", "addr", cfg.Redis.Addr)

	return flash.NewRedisStore(rdb, opts), closer(rdb, logger), nil
}

func closer(c io.Closer, logger *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close", "error", err)
		}
	}
}
