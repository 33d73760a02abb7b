package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/go-iot-telemetry/internal/config"
	"github.com/go-iot-telemetry/internal/infrastructure/awsinfra"
	"github.com/go-iot-telemetry/internal/infrastructure/coreiot"
	"github.com/go-iot-telemetry/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-iot-telemetry/internal/infrastructure/jwt"
	s3infra "github.com/go-iot-telemetry/internal/infrastructure/s3"
	"github.com/go-iot-telemetry/internal/infrastructure/sns"
	"github.com/go-iot-telemetry/internal/pkg/workerpool"
	transporthttp "github.com/go-iot-telemetry/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func setupLogger(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, cfg *config.Config) error {
	awsCfg, err := awsinfra.LoadConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}

	// Creates missing tables.
	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	s3Store := s3infra.NewStore(s3infra.NewClient(awsCfg, cfg), cfg.S3BucketName)
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("preparing model bucket: %w", err)
	}

	var publisher sns.AlarmPublisher
	if p, err := sns.NewPublisher(awsCfg, cfg); err == nil {
		publisher = p
	} else {
		slog.Warn("alarm push disabled", "error", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("loading jwt keys: %w", err)
	}

	pool := workerpool.New(cfg.Training.Workers)
	defer pool.Wait()

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		ReadingRepo:      dynamo.NewReadingRepo(dynamoClient, cfg.DynamoTables.Readings),
		AlarmRepo:        dynamo.NewAlarmRepo(dynamoClient, cfg.DynamoTables.Alarms),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		ModelStore:       s3infra.NewModelStore(s3Store),
		AlarmPublisher:   publisher,
		CoreIoT:          coreiot.NewClient(cfg.CoreIoT),
		JWTProvider:      jwtProvider,
		TrainingPool:     pool,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
