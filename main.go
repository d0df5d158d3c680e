package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/listingscraper/config"
	"sjsage522/listingscraper/helpers"
	"sjsage522/listingscraper/internal/scraper"
	"sjsage522/listingscraper/logger"
	"sjsage522/listingscraper/services/cache"
	"sjsage522/listingscraper/services/export"
	"sjsage522/listingscraper/services/publisher"
	"sjsage522/listingscraper/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("regions", cfg.Regions).
		Str("parser", cfg.Parser).
		Dur("delay", cfg.Delay).
		Str("cron", cfg.Cron).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	parser, err := scraper.NewParser(cfg.Parser)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create parser")
	}

	walker := scraper.NewWalker(
		scraper.HTTPFetcher,
		parser,
		scraper.FixedDelay{Delay: cfg.Delay},
		scraper.DefaultSelectors,
		nil,
	)

	w := worker.NewWorker(
		ctx,
		cfg,
		walker,
		export.NewCSVExporter(cfg.OutputDir),
		helpers.NewLogger(cfg.ErrorLogPath),
		worker.Options{
			Publisher: services.Publisher,
			Cache:     services.Cache,
			BlockTime: cfg.RateLimitBlock,
			Cron:      cfg.Cron,
		},
	)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting listing scraper")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker completion
	exitCode := 0
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
			exitCode = 1
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
	services.Cleanup()
	os.Exit(exitCode)
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup closes every open service
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
		s.Publisher = nil
	}
}

// initializeServices connects the optional Memcache and Redis services.
// An unreachable service is logged and left disabled.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		if err := cacheService.Ping(); err != nil {
			logger.LogError("cache", err, "Memcache at %s unavailable, rate limit blocking disabled", cfg.MemcacheAddr)
		} else {
			services.Cache = cacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(); err != nil {
			logger.LogError("publisher", err, "Redis at %s unavailable, publishing disabled", cfg.RedisAddr)
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services
}
