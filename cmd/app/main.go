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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"paperhulp/internal/config"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/domain/ports/repository"
	"paperhulp/internal/extract/llm"
	"paperhulp/internal/extract/text"
	aiAdapters "paperhulp/internal/infra/adapters/ai"
	"paperhulp/internal/infra/api"
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

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed checks)")
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

	// ---- Postgres ----
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)

	// ---- Repositories ----
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

	// ---- File storage ----
	files, err := storage.NewLocal(cfg.Storage.RootDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// ---- Extraction ----
	chat, err := aiAdapters.NewFromConfig(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("ai adapter: %v", err)
	}
	logger.Info().Str("model", chat.Name()).Msg("extraction model configured")
	extractor := llm.NewClient(chat, cfg.AI, logger)
	ocr := text.NewExtractor(cfg.OCR, logger)

	// ---- i18n + notifications ----
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

	// ---- Use cases ----
	processUC := usecase.NewProcessUseCase(jobRepo, docRepo, itemRepo, tm, files, ocr, extractor, notifier, bundle, logger)
	docUC := usecase.NewDocumentUseCase(docRepo, jobRepo, itemRepo, tm, files, processUC, logger)
	retryUC := usecase.NewRetryUseCase(jobRepo, docRepo, itemRepo, tm, processUC, logger)

	// ---- Background workers ----
	pool2 := worker.NewPool(cfg.Worker.Workers, logger)
	pool2.Start(ctx)
	poller := worker.NewJobPoller(jobRepo, processUC, cfg.Worker, logger)
	go poller.Start(ctx, pool2)

	// ---- HTTP ----
	router := chi.NewRouter()
	api.NewServer(docUC, retryUC, cfg.Auth, logger).RegisterRoutes(router)
	server := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
	pool2.Stop()
}
