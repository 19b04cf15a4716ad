package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-service/config"
	"pos-service/internal/api"
	"pos-service/internal/broker"
	"pos-service/internal/i18n"
	"pos-service/internal/models"
	"pos-service/internal/receipt"
	"pos-service/internal/redisclient"
	"pos-service/internal/service"
	"pos-service/internal/storage"
	"pos-service/internal/store"
	"pos-service/internal/util"
	"pos-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting POS service", zap.String("storage", cfg.Storage.Backend))

	if err := i18n.Validate(); err != nil {
		logger.Fatal("Translation tables are incomplete", zap.Error(err))
	}

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	var (
		kv        storage.KeyValue
		processed worker.ProcessedEventStore
	)

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
		kv, processed = redisClient, redisClient

	case config.BackendSQL:
		db, err := store.NewStore(cfg.Storage.DatabaseDriver, cfg.Storage.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Database connected", zap.String("driver", cfg.Storage.DatabaseDriver))
		kv, processed = db, db

	default:
		memory := storage.NewMemoryKV()
		logger.Warn("Using in-memory storage, state is lost on restart")
		kv, processed = memory, storage.NewProcessedEvents(memory)
	}

	repo := storage.NewRepository(kv, storage.Keys{
		Products: cfg.Storage.KeyProducts,
		Sales:    cfg.Storage.KeySales,
		Locale:   cfg.Storage.KeyLocale,
	})

	spool, closeSpool, err := openSpool(cfg.Business.PrintSpoolPath)
	if err != nil {
		logger.Fatal("Failed to open print spool", zap.Error(err))
	}
	defer closeSpool()

	var (
		events      service.EventPublisher
		printer     receipt.Printer = receipt.NewLogPrinter(logger)
		printWorker *worker.PrintWorker
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))

		publisher := broker.NewEventPublisher(producer)
		events = publisher
		printer = broker.NewQueuePrinter(publisher)

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		printWorker = worker.NewPrintWorker(consumer, processed, receipt.NewWriterPrinter(spool))
		go func() {
			if err := printWorker.Start(workerCtx); err != nil {
				logger.Error("Print worker error", zap.Error(err))
			}
		}()
	} else if cfg.Business.PrintSpoolPath != "" {
		printer = receipt.NewWriterPrinter(spool)
	}

	posService := service.NewPOSService(repo, events, receipt.NewRenderer(cfg.Business.ShopName), printer, service.Options{
		StockPolicy:       models.StockPolicy(cfg.Business.StockPolicy),
		LowStockThreshold: cfg.Business.LowStockThreshold,
		BestSellerLimit:   cfg.Business.BestSellerLimit,
		DefaultLocale:     defaultLocale(cfg.Business.DefaultLocale, logger),
	})
	posService.Load(context.Background())

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(posService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if printWorker != nil {
		if err := printWorker.Stop(); err != nil {
			logger.Error("Failed to stop print worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// openSpool opens the receipt spool file, or stdout when no path is set
func openSpool(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func defaultLocale(code string, logger *zap.Logger) i18n.Locale {
	loc, err := i18n.ParseLocale(code)
	if err != nil {
		logger.Warn("Falling back to Lao locale", zap.String("locale", code), zap.Error(err))
		return i18n.LocaleLao
	}
	return loc
}
