package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godilite/labor-insights/internal/config"
	handler "github.com/godilite/labor-insights/internal/grpc"
	"github.com/godilite/labor-insights/internal/ingest"
	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/godilite/labor-insights/internal/repository"
	"github.com/godilite/labor-insights/internal/service"
	"github.com/godilite/labor-insights/pkg/cache"
	dbbuilder "github.com/godilite/labor-insights/pkg/database"
	grpcsrv "github.com/godilite/labor-insights/pkg/grpc/server"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger        *zap.Logger
	dbPool        *sql.DB
	cache         *cache.Cache
	grpcServer    *grpcsrv.Server
	metricsServer *grpcsrv.MetricsServer
}

// NewPipeline builds the pipeline with the comparator settings from cfg.
func NewPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	join, err := pipeline.ParseJoinMode(cfg.JoinMode)
	if err != nil {
		return nil, err
	}
	delta, err := pipeline.ParseDeltaFormula(cfg.DeltaFormula)
	if err != nil {
		return nil, err
	}
	c := pipeline.DefaultComparator()
	c.Join = join
	c.Delta = delta
	return pipeline.New(pipeline.WithComparator(c)), nil
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}

	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	repo := repository.NewObservationRepository(dbPool)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = dbPool.Close()
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	analytics := service.NewAnalyticsService(repo, p, logger)

	if cfg.DataPath != "" {
		if err := importFile(ctx, analytics, cfg, logger); err != nil {
			_ = dbPool.Close()
			return nil, err
		}
	}

	a := &App{logger: logger, dbPool: dbPool}

	var responseCache handler.Cacher
	if cfg.RedisAddr != "" {
		cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
		if err != nil {
			_ = dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
		a.cache = cacheClient
		responseCache = cacheClient
	} else {
		logger.Info("Response cache disabled")
	}

	grpcHandlers := handler.NewGRPCHandlers(analytics, responseCache, logger, cfg.CacheTTL)

	serverOpts := []grpcsrv.Option{
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	}
	if cfg.MetricsPort > 0 {
		reg := grpcsrv.NewRegistry()
		serverOpts = append(serverOpts, grpcsrv.WithMetrics(reg))
		a.metricsServer, err = grpcsrv.NewMetricsServer(cfg.MetricsPort, reg, logger)
		if err != nil {
			a.close()
			return nil, err
		}
	}

	a.grpcServer, err = grpcsrv.New(serverOpts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	a.grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s grpc.ServiceRegistrar) {
		handler.RegisterLaborInsightsServer(s, grpcHandlers)
	})

	return a, nil
}

func importFile(ctx context.Context, analytics *service.AnalyticsService, cfg *config.Config, logger *zap.Logger) error {
	rev, err := analytics.Revision(ctx)
	if err != nil {
		return err
	}
	if rev.Count > 0 && !cfg.ReimportOnStart {
		logger.Info("Observations already stored, skipping import",
			zap.Int64("rows", rev.Count),
			zap.String("path", cfg.DataPath))
		return nil
	}

	table, err := ingest.ReadFile(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.DataPath, err)
	}
	if _, err := analytics.Import(ctx, table.Header, table.Rows, cfg.ReimportOnStart); err != nil {
		return fmt.Errorf("import %s: %w", cfg.DataPath, err)
	}
	return nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()
	if a.metricsServer != nil {
		a.metricsServer.Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Warn("gRPC shutdown error", zap.Error(err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics shutdown error", zap.Error(err))
		}
	}
	a.close()

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return nil
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
