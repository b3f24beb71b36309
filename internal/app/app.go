package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/godilite/maturity-engine/internal/aiclient"
	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/config"
	handler "github.com/godilite/maturity-engine/internal/grpc"
	"github.com/godilite/maturity-engine/internal/metrics"
	"github.com/godilite/maturity-engine/internal/repository"
	"github.com/godilite/maturity-engine/internal/service"
	"github.com/godilite/maturity-engine/pkg/cache"
	dbbuilder "github.com/godilite/maturity-engine/pkg/database"
	grpcsrv "github.com/godilite/maturity-engine/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger        *zap.Logger
	dbPool        *sql.DB
	cache         *cache.Cache
	closeAI       func() error
	grpcServer    *grpcsrv.Server
	metricsServer *metrics.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithBootstrap(repository.Schema...),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	backend, closeAI, err := aiclient.New(ctx, cfg.AI(), logger)
	if err != nil {
		cacheClient.Close()
		dbPool.Close()
		return nil, fmt.Errorf("ai backend init failed: %w", err)
	}
	logger.Info("AI backend initialized", zap.String("provider", cfg.AIProvider))

	metricsManager := metrics.NewManager()

	engineOpts := []assessment.Option{
		assessment.WithLogger(logger),
		assessment.WithTimeout(cfg.AITimeout),
		assessment.WithObserver(metricsManager),
	}
	if backend != nil {
		engineOpts = append(engineOpts,
			assessment.WithAugmenter(backend),
			assessment.WithQuestionGenerator(backend),
		)
	}
	engine := assessment.NewEngine(engineOpts...)

	assessmentRepo := repository.NewAssessmentRepository(dbPool)
	assessmentService := service.NewAssessmentService(assessmentRepo, engine, logger,
		service.WithHistoryLimit(cfg.HistoryLimit),
		service.WithQuestionHistoryLimit(cfg.QuestionHistoryLimit),
		service.WithQuestionCount(cfg.QuestionCount),
	)

	grpcHandlers := handler.NewGRPCHandlers(assessmentService, cacheClient, logger, cfg.CacheTTL,
		handler.WithAITimeout(cfg.AITimeout))

	closeAll := func() {
		_ = closeAI()
		cacheClient.Close()
		dbPool.Close()
	}

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithMetrics(metricsManager),
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ServiceName, func(s *grpc.Server) {
		handler.RegisterAssessmentEngineServer(s, grpcHandlers)
	})

	metricsServer, err := metrics.NewServer(metricsManager, cfg.MetricsPort, logger)
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		closeAll()
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	return &App{
		logger:        logger,
		dbPool:        dbPool,
		cache:         cacheClient,
		closeAI:       closeAI,
		grpcServer:    grpcServer,
		metricsServer: metricsServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	serveErrs := a.grpcServer.Start()
	a.metricsServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		a.logger.Info("application shutting down", zap.String("signal", sig.String()))
	case err := <-serveErrs:
		runErr = fmt.Errorf("grpc server: %w", err)
		a.logger.Error("application shutting down after server failure", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.grpcServer.Shutdown(ctx); err != nil {
		a.logger.Warn("gRPC shutdown error", zap.Error(err))
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		a.logger.Warn("metrics shutdown error", zap.Error(err))
	}

	if err := a.closeAI(); err != nil {
		a.logger.Error("ai backend shutdown error", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return runErr
}
