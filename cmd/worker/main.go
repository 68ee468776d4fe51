package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paperhulp/internal/config"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/extract/llm"
	"paperhulp/internal/extract/text"
	aiAdapters "paperhulp/internal/infra/adapters/ai"
	pg "paperhulp/internal/infra/db/postgres"
	"paperhulp/internal/infra/i18n"
	"paperhulp/internal/infra/logging"
	"paperhulp/internal/infra/metrics"
	"paperhulp/internal/infra/notify"
	red "paperhulp/internal/infra/redis"
	"paperhulp/internal/infra/storage"
	"paperhulp/internal/infra/worker"
	"paperhulp/internal/usecase"
)

// Standalone processing worker. Runs the same pipeline as cmd/app without the
// document API, for deployments that scale ingestion and processing apart.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.Runtime.Dev {
		if err := cfg.Validate(); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	var docRepo repository.DocumentRepository = pg.NewDocumentRepo(pool)
	jobRepo := pg.NewJobRepo(pool)
	itemRepo := pg.NewActionItemRepo(pool)

	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		docRepo = pg.NewDocumentRepoCacheDecorator(docRepo, redisClient, cfg.Redis.TTL)
	}

	files, err := storage.NewLocal(cfg.Storage.RootDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	chat, err := aiAdapters.NewFromConfig(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("ai adapter: %v", err)
	}
	logger.Info().Str("model", chat.Name()).Msg("extraction model configured")
	extractor := llm.NewClient(chat, cfg.AI, logger)
	ocr := text.NewExtractor(cfg.OCR, logger)

	bundle, err := i18n.NewBundle(i18n.LocalesFS, "nl", "ar", "en")
	if err != nil {
		log.Fatalf("locales: %v", err)
	}
	var notifier adapter.Notifier
	if cfg.Notify.TelegramToken != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.Notify, bundle, logger)
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
	} else {
		notifier = notify.NewNoopNotifier(logger)
	}

	processUC := usecase.NewProcessUseCase(jobRepo, docRepo, itemRepo, tm, files, ocr, extractor, notifier, bundle, logger)

	wp := worker.NewPool(cfg.Worker.Workers, logger)
	wp.Start(ctx)
	poller := worker.NewJobPoller(jobRepo, processUC, cfg.Worker, logger)
	go poller.Start(ctx, wp)

	// health and metrics only; the document API lives in cmd/app
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("worker metrics listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	wp.Stop()
	_ = server.Close()
}
