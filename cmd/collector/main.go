package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"snackindex/internal/adapters/config"
	"snackindex/internal/adapters/errors/noop"
	"snackindex/internal/adapters/errors/sentry"
	"snackindex/internal/adapters/finnhub"
	"snackindex/internal/adapters/newsapi"
	"snackindex/internal/adapters/postgres"
	"snackindex/internal/adapters/ratelimit"
	"snackindex/internal/adapters/reddit"
	"snackindex/internal/adapters/trends"
	"snackindex/internal/collector"
	"snackindex/internal/metrics"
	repository "snackindex/internal/repository/postgres"
	"snackindex/internal/services/sentiment"
	"snackindex/internal/workers"
	"snackindex/pkg/errors"
	"snackindex/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "run one collection pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	db, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	catalog := repository.NewProductRepository(db.DB())
	metricsRepo := repository.NewMetricsRepository(db.DB())

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		startMetricsListener(cfg.Metrics.Port, log)
	}

	pipeline := buildPipeline(cfg, metricsRepo, pipelineMetrics, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		products, err := catalog.ListTracked(ctx)
		if err != nil {
			log.Fatalf("Failed to load product catalog: %v", err)
		}
		if err := pipeline.Run(ctx, products); err != nil {
			log.Fatalf("Collection run failed: %v", err)
		}
		errorTracker.Flush(ctx)
		return
	}

	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewDailyMetricsWorker(pipeline, catalog, cfg.Collector.Interval))

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	waitForShutdown(cancel, log)

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Scheduler shutdown: %v", err)
	}
	errorTracker.Flush(context.Background())
}

// buildPipeline constructs the external clients and wires the pipeline.
// A source with missing credentials is disabled for the whole process and
// reported once here, never rediscovered mid-run.
func buildPipeline(
	cfg *config.Config,
	metricsRepo *repository.MetricsRepository,
	pipelineMetrics *metrics.PipelineMetrics,
	log *logger.Logger,
) *collector.Pipeline {
	scorer := sentiment.NewVaderScorer()

	trendSignal := collector.NewTrendSignal(trends.NewClient(cfg.Trends.Category, cfg.Trends.Geo))

	var socialSearch collector.SocialSearch
	redditClient, err := reddit.NewClient(cfg.Reddit, ratelimit.New("reddit", cfg.Collector.RedditRPM))
	if err != nil {
		log.Errorf("Social collection disabled: %v", err)
	} else {
		socialSearch = redditClient
	}

	var newsSearch collector.NewsSearch
	newsClient, err := newsapi.NewClient(cfg.NewsAPI, ratelimit.New("newsapi", cfg.Collector.NewsRPM))
	if err != nil {
		log.Errorf("News collection disabled: %v", err)
	} else {
		newsSearch = newsClient
	}

	var quotes collector.QuoteService
	finnhubClient, err := finnhub.NewClient(cfg.Finnhub)
	if err != nil {
		log.Errorf("Price collection disabled: %v", err)
	} else {
		quotes = finnhubClient
	}

	return collector.NewPipeline(
		trendSignal,
		collector.NewSocialCollector(socialSearch, scorer, cfg.Collector.Subreddits, cfg.Collector.SearchLimit),
		collector.NewNewsCollector(newsSearch, scorer),
		quotes,
		metricsRepo,
		metricsRepo,
		pipelineMetrics,
	)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// startMetricsListener exposes /metrics for Prometheus scraping
func startMetricsListener(port int, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Infof("Metrics listener on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("Metrics listener failed: %v", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT or SIGTERM
func waitForShutdown(cancel context.CancelFunc, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	log.Infof("Received signal %s, shutting down", sig)
	cancel()
}
