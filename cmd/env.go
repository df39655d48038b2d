package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/candidate"
	"github.com/sells-group/outreach-cli/internal/cascade"
	"github.com/sells-group/outreach-cli/internal/crawl"
	"github.com/sells-group/outreach-cli/internal/enrich"
	"github.com/sells-group/outreach-cli/internal/extract"
	"github.com/sells-group/outreach-cli/internal/predict"
	"github.com/sells-group/outreach-cli/internal/quarantine"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/internal/score"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/verify"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/perplexity"
	"github.com/sells-group/outreach-cli/pkg/zerobounce"
)

// env holds the wired pipeline for enrichment commands.
type env struct {
	Store store.Store
	Batch *enrich.Batch
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initPredictor() predict.EmailPredictor {
	switch cfg.Predictor.Backend {
	case "anthropic":
		return predict.NewAnthropicPredictor(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	case "perplexity":
		return predict.NewPerplexityPredictor(perplexity.NewClient(
			cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		))
	default:
		return nil
	}
}

func retryConfig() resilience.RetryConfig {
	return resilience.FromRetryConfig(
		cfg.Retry.MaxAttempts,
		cfg.Retry.InitialBackoffMs,
		cfg.Retry.MaxBackoffMs,
		cfg.Retry.Multiplier,
		cfg.Retry.JitterFraction,
	)
}

func initCrawler() *crawl.Controller {
	fetcherOpts := []crawl.FetcherOption{}
	if cfg.Crawl.UserAgent != "" {
		fetcherOpts = append(fetcherOpts, crawl.WithUserAgent(cfg.Crawl.UserAgent))
	}
	if cfg.Crawl.TimeoutSecs > 0 {
		fetcherOpts = append(fetcherOpts, crawl.WithTimeout(time.Duration(cfg.Crawl.TimeoutSecs)*time.Second))
	}
	return crawl.NewController(
		crawl.NewHTTPFetcher(fetcherOpts...),
		crawl.NewRobotsSitemapDiscovery(nil),
		crawl.NewLinkDiscoverer(nil, nil, cfg.Crawl.ExcludePaths),
		crawl.NewPlaceholderDetector(cfg.Extract.PlaceholderPhrases),
		extract.NewExtractor(),
		extract.NewDeduplicator(),
		score.NewScorer(cfg.Score.Weights, cfg.Extract.GenericLocalParts),
		crawl.Config{
			MaxPages:        cfg.Crawl.MaxPages,
			LowScorePages:   cfg.Crawl.LowScorePages,
			MidScorePages:   cfg.Crawl.MidScorePages,
			HighScore:       cfg.Crawl.HighScore,
			MidScore:        cfg.Crawl.MidScore,
			PolitenessDelay: time.Duration(cfg.Crawl.PolitenessDelayMs) * time.Millisecond,
			Retry:           retryConfig(),
		},
	)
}

// initPipeline wires the full enrichment environment.
func initPipeline(ctx context.Context) (*env, error) {
	if err := cfg.Validate("enrich"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	verifier := verify.NewZeroBounceVerifier(
		zerobounce.NewClient(cfg.ZeroBounce.Key, zerobounce.WithBaseURL(cfg.ZeroBounce.BaseURL)),
		retryConfig(),
	)

	runner := cascade.NewRunner(
		verifier,
		cascade.DefaultStrategies(
			cascade.AIStrategy{Predictor: initPredictor(), Max: cfg.Cascade.MaxSuggestions},
			cascade.PatternStrategy{Generator: candidate.NewGenerator()},
		),
		time.Duration(cfg.Cascade.SpacingMs)*time.Millisecond,
	)

	orchestrator := enrich.NewOrchestrator(st, initCrawler(), runner, quarantine.NewManager(st))

	return &env{
		Store: st,
		Batch: enrich.NewBatch(orchestrator, cfg.Batch.Workers),
	}, nil
}

// initStoreOnly wires just the store for commands that never touch the network.
func initStoreOnly(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	return initStore(ctx)
}
