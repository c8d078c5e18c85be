package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"clipvault/internal/adapter/repo"
	"clipvault/internal/fetch"
	"clipvault/internal/http/handlers"
	"clipvault/internal/http/httpapi"
	"clipvault/internal/infra"
	"clipvault/internal/infra/geoip"
	"clipvault/internal/resolve"
	"clipvault/internal/service"
	"clipvault/internal/storage"
	"clipvault/internal/transcode"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	videos := repo.NewVideoRepository(dbpool)
	if err := videos.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	var blobs storage.BlobStore
	var staticDir string
	switch cfg.StorageBackend {
	case "s3":
		blobs, err = storage.NewS3Store(ctx, cfg.S3Bucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init s3 store")
		}
	default:
		fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init file store")
		}
		blobs = fileStore
		staticDir = fileStore.BasePath()
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver disabled")
	}

	resolver := resolve.NewClient(resolve.Options{
		BaseURL: cfg.ResolverBaseURL,
		APIKey:  cfg.ResolverAPIKey,
	})
	fetcher := fetch.NewFetcher(nil)
	transcoder := transcode.New(cfg.FFmpegPath, transcode.Options{
		MaxHeight:        cfg.MaxResolutionHeight,
		VideoBitrateKbps: cfg.VideoBitrateKbps,
		CRF:              cfg.CRF,
		AudioBitrateKbps: cfg.AudioBitrateKbps,
	}, logger)

	orchestrator := service.NewOrchestrator(resolver, fetcher, transcoder, blobs, videos, logger, service.Config{
		CompressionEnabled: cfg.CompressionEnabled,
		AcquireTimeout:     cfg.AcquireTimeout,
	})

	queueCtx, stopQueue := context.WithCancel(ctx)
	defer stopQueue()
	queue := service.NewQueue(orchestrator, logger, cfg.QueueCapacity)
	go queue.Run(queueCtx)

	app := handlers.NewApp(logger, videos, blobs, orchestrator, queue, geo, cfg.SignedURLTTL)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		StaticDir:       staticDir,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopQueue()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
