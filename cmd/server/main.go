package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/selivandex/ticker-sentiment/internal/adapters/ai"
	"github.com/selivandex/ticker-sentiment/internal/adapters/config"
	"github.com/selivandex/ticker-sentiment/internal/adapters/price"
	"github.com/selivandex/ticker-sentiment/internal/adapters/reddit"
	redisAdapter "github.com/selivandex/ticker-sentiment/internal/adapters/redis"
	"github.com/selivandex/ticker-sentiment/internal/cache"
	"github.com/selivandex/ticker-sentiment/internal/health"
	"github.com/selivandex/ticker-sentiment/internal/pipeline"
	"github.com/selivandex/ticker-sentiment/internal/sentiment"
	"github.com/selivandex/ticker-sentiment/internal/server"
	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("ticker sentiment service starting",
		zap.String("port", cfg.Server.Port),
		zap.String("scoring_backend", cfg.Scoring.Backend),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	probes := health.NewHandler()

	resultCache, coalescer, redisClient, err := initCache(cfg, probes)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	svc := initPipeline(cfg, resultCache, coalescer)
	quotes := price.NewFinnhubProvider(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, cfg.Server.HTTPTimeout)

	workers := worker.NewGroup(ctx)
	if mem, ok := resultCache.(*cache.MemoryCache); ok && cfg.Cache.SweepInterval > 0 {
		workers.Add(cache.NewSweeper(mem), cfg.Cache.SweepInterval)
	}
	workers.Start()

	srv := server.NewServer(cfg.Server.Port, quotes, svc, probes)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	probes.SetReady(true)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			workers.Stop(cfg.Server.ShutdownTimeout)
			return fmt.Errorf("api server failed: %w", err)
		}
	}

	return performGracefulShutdown(cfg, srv, probes, workers)
}

// initConfig loads .env and configuration and initializes logger
func initConfig() (*config.Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initClassifier picks the hosted model, falling back to the local lexicon
// when no token is configured
func initClassifier(cfg *config.Config) sentiment.Classifier {
	if cfg.UseHuggingFace() {
		return ai.NewHuggingFaceClassifier(
			cfg.HuggingFace.ModelURL,
			cfg.HuggingFace.Token,
			ai.WithHTTPClient(&http.Client{Timeout: cfg.Server.HTTPTimeout}),
		)
	}

	if cfg.Scoring.Backend == config.ScorerHuggingFace {
		logger.Warn("HF_TOKEN not set, using lexicon scorer")
	}
	return sentiment.NewLexiconClassifier()
}

// initCache builds the result cache. With redis enabled the cache is shared
// and aggregation is coordinated across replicas.
func initCache(cfg *config.Config, probes *health.Handler) (cache.ResultCache, pipeline.Coalescer, *redisAdapter.Client, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(cfg.Cache.TTL), pipeline.NewLocalCoalescer(), nil, nil
	}

	redisClient, err := redisAdapter.New(&cfg.Redis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	probes.AddCheck("redis", redisClient)

	shared := cache.NewRedisCache(redisClient, cfg.Cache.TTL)
	coalescer := pipeline.NewDistributedCoalescer(redisClient.GetLockFactory(), shared, cfg.Redis.LockWait)

	return shared, coalescer, redisClient, nil
}

// initPipeline wires forum access, scoring and aggregation
func initPipeline(cfg *config.Config, resultCache cache.ResultCache, coalescer pipeline.Coalescer) *pipeline.Service {
	redditClient := reddit.NewClient(cfg.Reddit.APIURL, cfg.Reddit.UserAgent, cfg.Server.HTTPTimeout)

	tokens := reddit.NewTokenManager(reddit.TokenConfig{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		TokenURL:     cfg.Reddit.TokenURL,
		UserAgent:    cfg.Reddit.UserAgent,
		Timeout:      cfg.Server.HTTPTimeout,
		Reuse:        cfg.Reddit.ReuseToken,
	})

	threads := reddit.NewThreadFetcher(redditClient, cfg.Reddit.Sections, cfg.Reddit.SectionLimit, cfg.Reddit.MaxPosts)
	comments := reddit.NewCommentFetcher(redditClient, cfg.Reddit.CommentLimit)

	classifier := initClassifier(cfg)
	limiter := rate.NewLimiter(rate.Limit(cfg.Scoring.Rate), 1)
	aggregator := sentiment.NewThreadAggregator(sentiment.NewScorer(classifier), limiter)

	logger.Info("sentiment pipeline initialized",
		zap.String("classifier", classifier.Name()),
		zap.Strings("sections", cfg.Reddit.Sections),
		zap.Float64("scoring_rate", cfg.Scoring.Rate),
	)

	return pipeline.NewService(tokens, threads, comments, aggregator, resultCache, coalescer)
}

// performGracefulShutdown stops taking traffic, drains requests and stops workers
func performGracefulShutdown(cfg *config.Config, srv *server.Server, probes *health.Handler, workers *worker.Group) error {
	logger.Info("shutdown signal received, starting graceful shutdown...")

	probes.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", zap.Error(err))
	}

	workers.Stop(5 * time.Second)

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded")
		return fmt.Errorf("graceful shutdown timeout")
	default:
		logger.Info("shutdown completed successfully")
	}

	return nil
}
