package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/school-board-api/internal/handler"
	"github.com/noah-isme/school-board-api/internal/repository"
	"github.com/noah-isme/school-board-api/internal/router"
	"github.com/noah-isme/school-board-api/internal/service"
	"github.com/noah-isme/school-board-api/pkg/cache"
	"github.com/noah-isme/school-board-api/pkg/config"
	"github.com/noah-isme/school-board-api/pkg/jobs"
	"github.com/noah-isme/school-board-api/pkg/logger"
	"github.com/noah-isme/school-board-api/pkg/middleware/ratelimit"
	"github.com/noah-isme/school-board-api/pkg/storage"
)

// Version is overridden at build time with -ldflags "-X ...commands.Version=...".
var Version = "dev"

// NewServeCommand starts the HTTP server.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the board API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// NewInitCommand writes the empty board document if the data file is missing.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the board data file if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			file, err := storage.NewFileStore(cfg.Board.DataFile)
			if err != nil {
				return err
			}
			repo := repository.NewBoardRepository(file, nil, nil, nil)
			created, err := repo.EnsureInitialized(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialise data file: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", file.Path())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", file.Path())
			return nil
		},
	}
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the board API version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "board-api %s\n", Version)
		},
	}
}

type application struct {
	engine *gin.Engine
	writer *jobs.Writer
	redis  *redis.Client
}

func (a *application) close() {
	a.writer.Stop()
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer app.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "data_file", cfg.Board.DataFile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func build(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	file, err := storage.NewFileStore(cfg.Board.DataFile)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}

	writer := jobs.NewWriter("board-writer", jobs.WriterConfig{BufferSize: cfg.Board.WriteQueueSize, Logger: logr})
	writer.Start(context.Background())

	repo := repository.NewBoardRepository(file, writer, metrics, logr)
	if _, err := repo.EnsureInitialized(ctx); err != nil {
		writer.Stop()
		return nil, fmt.Errorf("initialise data file: %w", err)
	}

	app := &application{writer: writer}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, board cache disabled", zap.Error(err))
		} else {
			app.redis = client
			cacheRepo = repository.NewCacheRepository(client)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	stamper := service.NewPostStamper(loadLocation(cfg.Board.Timezone, logr), nil)
	boardSvc := service.NewBoardService(repo, cacheSvc, metrics, stamper, validator.New(), logr)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		exportHandler = handler.NewExportHandler(service.NewExportService(boardSvc, logr))
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	app.engine = router.New(router.Dependencies{
		Config:  cfg,
		Logger:  logr,
		Board:   handler.NewBoardHandler(boardSvc),
		Static:  handler.NewStaticHandler(cfg.Board.StaticDir),
		Probes:  handler.NewMetricsHandler(metrics, repo.Exists),
		Export:  exportHandler,
		Metrics: metrics,
		Limiter: limiter,
	})
	return app, nil
}

func loadLocation(name string, logr *zap.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logr.Warn("unknown board timezone, using UTC", zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}
