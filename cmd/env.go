package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/interview-crawler/internal/adapter"
	"github.com/sells-group/interview-crawler/internal/browser"
	"github.com/sells-group/interview-crawler/internal/cache"
	"github.com/sells-group/interview-crawler/internal/crawler"
)

// crawlEnv holds the browser, cache and orchestrator used by the
// crawl/batch/serve commands.
type crawlEnv struct {
	Browser      *browser.Manager
	Cache        *cache.ResultCache
	Orchestrator *crawler.Orchestrator
}

// Close releases the browser and the cache store.
func (e *crawlEnv) Close() {
	if e.Browser != nil {
		if err := e.Browser.Close(); err != nil {
			zap.L().Warn("close browser", zap.Error(err))
		}
	}
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
}

// initCrawler validates config for mode and wires the orchestrator.
// Callers should defer env.Close().
func initCrawler(ctx context.Context, mode string) (*crawlEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	reg, err := adapter.Load(cfg.Crawl.SitesFile)
	if err != nil {
		return nil, eris.Wrap(err, "load sites")
	}

	rc, err := initCache(ctx)
	if err != nil {
		return nil, err
	}

	mgr := browser.NewManager(cfg.Browser)
	orch := crawler.New(reg, crawler.NewBrowserSession(mgr), rc, cfg.Crawl)

	zap.L().Info("crawler ready",
		zap.Strings("sites", reg.IDs()),
		zap.String("cache_driver", cfg.Cache.Driver),
	)
	return &crawlEnv{Browser: mgr, Cache: rc, Orchestrator: orch}, nil
}

// initCache opens the configured cache store.
func initCache(ctx context.Context) (*cache.ResultCache, error) {
	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, eris.Wrap(err, "open cache")
	}
	return cache.NewResultCache(store, cfg.Cache.TTL(), cfg.Cache.KeyPrefix), nil
}
