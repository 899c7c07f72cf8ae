package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/terraincognita07/mealsnap/internal/api"
	"github.com/terraincognita07/mealsnap/internal/blob"
	"github.com/terraincognita07/mealsnap/internal/cli"
	"github.com/terraincognita07/mealsnap/internal/config"
	"github.com/terraincognita07/mealsnap/internal/db"
	"github.com/terraincognita07/mealsnap/internal/estimation"
	"github.com/terraincognita07/mealsnap/internal/logging"
	"github.com/terraincognita07/mealsnap/internal/session"
)

const usage = `usage:
  mealsnap                         start the HTTP server
  mealsnap create-user <email>     create an account, prompting for the password
  mealsnap reset-password <email>  issue a temporary password for an account`

func main() {
	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1:], os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := serve(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func runCommand(args []string, in *os.File, out io.Writer) error {
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		return errors.New(usage)
	}

	dbPath := config.ResolveDBPath()
	switch args[0] {
	case "create-user":
		return cli.RunCreateUserCommand(dbPath, args[1], in, out)
	case "reset-password":
		return cli.RunResetPasswordCommand(dbPath, args[1], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	slog.SetDefault(log)

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()

	photos, err := newPhotoStore(lifecycleCtx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("photo store init failed: %w", err)
	}
	estimator, err := newEstimator(cfg.Estimator)
	if err != nil {
		return fmt.Errorf("estimator init failed: %w", err)
	}

	tracker := session.NewTracker()
	defer tracker.Close()
	unsubscribe := tracker.Subscribe(func(event session.Event) {
		log.Info("auth state changed", "event", string(event.Kind), "user_id", event.UserID)
	})
	defer unsubscribe()

	deps := api.NewDependencies(database, api.DependencyConfig{
		Photos:          photos,
		Estimator:       estimator,
		Tracker:         tracker,
		Location:        cfg.Location,
		MaxPhotoBytes:   cfg.MaxPhotoBytes,
		HistoryPageSize: cfg.HistoryPageSize,
		Logger:          log,
	})
	handler, err := api.NewHandler(deps, api.Options{
		SecretKey:    cfg.SecretKey,
		CookieSecure: cfg.CookieSecure,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newApp(handler, cfg.MaxPhotoBytes)

	sigCtx, stopSignals := signal.NotifyContext(lifecycleCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	}()

	log.Info("mealsnap listening",
		"addr", "0.0.0.0:"+cfg.Port,
		"db", cfg.DBPath,
		"tz", cfg.Location.String(),
		"blob_backend", cfg.Blob.Backend,
		"estimator", cfg.Estimator.Kind,
	)
	return app.Listen(":" + cfg.Port)
}

// newApp leaves a megabyte of headroom over the photo limit for the rest of
// the multipart body.
func newApp(handler *api.Handler, maxPhotoBytes int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "MealSnap",
		DisableStartupMessage: true,
		BodyLimit:             maxPhotoBytes + 1<<20,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func newPhotoStore(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case config.BlobBackendS3:
		return blob.NewS3Store(ctx, blob.S3Config{
			Bucket:     cfg.Bucket,
			Region:     cfg.Region,
			Endpoint:   cfg.Endpoint,
			AccessKey:  cfg.AccessKey,
			SecretKey:  cfg.SecretKey,
			PresignTTL: cfg.PresignTTL,
		})
	case config.BlobBackendLocal:
		return blob.NewLocalStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

func newEstimator(cfg config.EstimatorConfig) (estimation.Estimator, error) {
	switch cfg.Kind {
	case config.EstimatorVision:
		return estimation.NewVisionClient(estimation.VisionConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case config.EstimatorStub:
		return estimation.NewStubEstimator(cfg.Delay), nil
	default:
		return nil, fmt.Errorf("unknown estimator %q", cfg.Kind)
	}
}
