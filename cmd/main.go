package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcAdapter "github.com/CesarOsorioP/StateView-sub000/internal/adapter/grpc"
	natsAdapter "github.com/CesarOsorioP/StateView-sub000/internal/adapter/messaging/nats"
	"github.com/CesarOsorioP/StateView-sub000/internal/adapter/repository/memory"
	mongoRepo "github.com/CesarOsorioP/StateView-sub000/internal/adapter/repository/mongodb"
	"github.com/CesarOsorioP/StateView-sub000/internal/adapter/rest"
	"github.com/CesarOsorioP/StateView-sub000/internal/config"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/metrics"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/tracer"
	"github.com/CesarOsorioP/StateView-sub000/internal/usecase"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Logger and configuration
	appLogger := logger.NewLogger()
	defer func() { _ = appLogger.Sync() }()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("storage_driver", cfg.StorageDriver))

	// 2. Tracing
	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 3. Storage
	repos, closeStorage := openStorage(cfg, appLogger)
	defer closeStorage()

	// 4. NATS publisher. Events are best effort, so the service runs without a broker.
	var publisher usecase.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Warn("NATS unavailable, domain events will not be published", zap.Error(err))
		} else {
			defer natsPublisher.Close()
			publisher = natsPublisher
		}
	}

	// 5. Metrics
	metricsManager := metrics.NewMetricsManager("stateview")

	// 6. Usecases
	retry := usecase.DefaultRetryPolicy
	if cfg.AggregateRetryMaxWait > 0 {
		retry.MaxElapsedTime = cfg.AggregateRetryMaxWait
	}
	handler := rest.NewHandler(rest.Usecases{
		Reviews:    usecase.NewReviewUsecase(repos, publisher, metricsManager, retry, appLogger),
		Comments:   usecase.NewCommentUsecase(repos, publisher, metricsManager, appLogger),
		Reports:    usecase.NewReportUsecase(repos, publisher, metricsManager, appLogger),
		Moderation: usecase.NewModerationUsecase(repos, publisher, metricsManager, appLogger),
		Catalog:    usecase.NewCatalogUsecase(repos, appLogger),
	}, appLogger)

	// 7. HTTP API
	httpSrv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: rest.NewRouter(handler, rest.RouterConfig{
			ServiceName:    cfg.ServiceName,
			JWTSecret:      cfg.JWTSecret,
			RequestTimeout: cfg.RequestTimeout,
			Metrics:        metricsManager,
			Logger:         appLogger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 8. gRPC health and reflection
	grpcSrv := grpcAdapter.NewServer(cfg.ServiceName, appLogger)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		appLogger.Fatal("Failed to listen for gRPC", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	go func() {
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("gRPC server Serve error", zap.Error(err))
		}
	}()

	// 9. Prometheus metrics
	var metricsSrv *http.Server
	if cfg.PrometheusMetricsPort != "" {
		metricsSrv = metrics.NewMetricsServer(cfg.PrometheusMetricsPort, metricsManager.Registry)
		go func() {
			appLogger.Info("Starting Prometheus metrics server", zap.String("port", cfg.PrometheusMetricsPort))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	}

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	grpcSrv.SetServing(false)
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	grpcSrv.Stop()
	appLogger.Info("Application shutting down...")
}

// openStorage returns the repositories selected by STORAGE_DRIVER and a cleanup func.
func openStorage(cfg *config.Config, appLogger *logger.Logger) (usecase.Repositories, func()) {
	if cfg.StorageDriver == config.StorageMemory {
		appLogger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return usecase.Repositories{
			Catalog:  store.Catalog,
			Reviews:  store.Reviews,
			Comments: store.Comments,
			Reports:  store.Reports,
			People:   store.People,
		}, func() {}
	}

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := mongoClient.Ping(ctxPing, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Successfully connected and pinged MongoDB.", zap.String("database", cfg.MongoDatabase))

	store, err := mongoRepo.NewStore(mongoClient.Database(cfg.MongoDatabase), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize MongoDB repositories", zap.Error(err))
	}
	return usecase.Repositories{
			Catalog:  store.Catalog,
			Reviews:  store.Reviews,
			Comments: store.Comments,
			Reports:  store.Reports,
			People:   store.People,
		}, func() {
			appLogger.Info("Disconnecting from MongoDB...")
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
			}
		}
}
