// Package crawler runs question crawls across source sites: it fans out per
// site with bounded concurrency, aggregates and ranks the questions, falls
// back to sample data, and caches the outcome.
package crawler

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/sells-group/interview-crawler/internal/adapter"
	"github.com/sells-group/interview-crawler/internal/browser"
	"github.com/sells-group/interview-crawler/internal/cache"
	"github.com/sells-group/interview-crawler/internal/config"
	"github.com/sells-group/interview-crawler/internal/extract"
	"github.com/sells-group/interview-crawler/internal/fallback"
	"github.com/sells-group/interview-crawler/internal/model"
	"github.com/sells-group/interview-crawler/internal/rank"
	"github.com/sells-group/interview-crawler/internal/resilience"
	"github.com/sells-group/interview-crawler/internal/scrape"
)

// ErrNoResults is reported when a search page never showed its result list.
var ErrNoResults = eris.New("search results not found")

// sampleMarker is appended to the source label of fallback results.
const sampleMarker = " (sample)"

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Orchestrator owns the lifecycle of crawl requests.
type Orchestrator struct {
	registry  *adapter.Registry
	session   Session
	cache     *cache.ResultCache
	extractor *extract.Extractor
	cfg       config.CrawlConfig
	breakers  *resilience.ServiceBreakers
	retry     resilience.RetryConfig
	flight    singleflight.Group
	sleep     Sleeper
	now       func() time.Time

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSleeper replaces the inter-keyword delay.
func WithSleeper(s Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithClock overrides the result timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithExtractor replaces the question extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithRetry replaces the navigation retry policy.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(o *Orchestrator) { o.retry = rc }
}

// New creates an Orchestrator.
func New(reg *adapter.Registry, session Session, rc *cache.ResultCache, cfg config.CrawlConfig, opts ...Option) *Orchestrator {
	if cfg.MaxConcurrentSites <= 0 {
		cfg.MaxConcurrentSites = 2
	}
	if cfg.KeywordsPerSite <= 0 {
		cfg.KeywordsPerSite = 2
	}
	o := &Orchestrator{
		registry:  reg,
		session:   session,
		cache:     rc,
		extractor: extract.New(),
		cfg:       cfg,
		breakers:  resilience.NewServiceBreakers(resilience.BreakerConfigFor(cfg)),
		retry:     resilience.RetryConfigFor(cfg),
		sleep:     sleepCtx,
		now:       time.Now,
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Crawl answers req from cache or by crawling the target sites. Only a
// failure to persist the result or the caller's own cancellation is
// returned as an error; site failures are reported inside the result.
//
// Identical concurrent requests share one crawl. The shared crawl runs
// detached from every caller, bounded by the configured crawl timeout, so a
// caller that gives up neither stops it nor leaves a partial result in the
// cache.
func (o *Orchestrator) Crawl(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req.TargetSites = uniqueSites(req.TargetSites)
	key := o.cache.Key(req)
	log := zap.L().With(zap.String("fingerprint", key), zap.String("category", req.Category))

	if hit := o.cache.Get(ctx, key); hit != nil {
		log.Info("crawl: cache hit", zap.Int("count", len(hit.Questions)))
		return respond(hit, req.MaxQuestions, true), nil
	}

	ch := o.flight.DoChan(key, func() (any, error) {
		return o.runFlight(context.WithoutCancel(ctx), key, req)
	})
	select {
	case <-ctx.Done():
		log.Info("crawl: caller left, crawl continues", zap.Error(ctx.Err()))
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			log.Error("crawl: cache store failed", zap.Error(r.Err))
			return nil, eris.Wrap(r.Err, "crawl: persist result")
		}
		if r.Shared {
			log.Debug("crawl: joined in-flight crawl")
		}
		fr := r.Val.(flightResult)
		return respond(fr.res, req.MaxQuestions, fr.cached), nil
	}
}

type flightResult struct {
	res    *model.CrawlResult
	cached bool
}

// runFlight crawls once for every caller sharing key and stores the result.
// Fallback results get the short degraded TTL. Failed results and crawls cut
// short by the timeout are returned but never stored.
func (o *Orchestrator) runFlight(ctx context.Context, key string, req model.CrawlRequest) (flightResult, error) {
	if d := o.cfg.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if hit := o.cache.Get(ctx, key); hit != nil {
		return flightResult{res: hit, cached: true}, nil
	}

	res := o.crawlLive(ctx, req)
	if err := ctx.Err(); err != nil {
		zap.L().Warn("crawl: timed out, result not cached",
			zap.String("fingerprint", key),
			zap.String("status", string(res.Status)),
			zap.Error(err),
		)
		return flightResult{res: res}, nil
	}

	ttl := o.cache.TTL()
	switch res.Status {
	case model.StatusFailed:
		return flightResult{res: res}, nil
	case model.StatusDegraded:
		ttl = o.cfg.DegradedTTL()
		if ttl <= 0 {
			return flightResult{res: res}, nil
		}
	}
	if err := o.cache.SetTTL(ctx, key, res, ttl); err != nil {
		return flightResult{}, err
	}
	return flightResult{res: res}, nil
}

// respond copies res for one caller, truncated to max questions.
func respond(res *model.CrawlResult, max int, cached bool) *model.CrawlResult {
	out := res.AsCached()
	out.Cached = cached
	if max > 0 && len(out.Questions) > max {
		out.Questions = out.Questions[:max]
	}
	return out
}

// uniqueSites trims ids and drops blanks and repeats, keeping first-seen
// order.
func uniqueSites(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

type siteOutcome struct {
	name      string
	questions []model.CrawledQuestion
	err       error
}

// crawlLive crawls every target site and builds the uncached result.
func (o *Orchestrator) crawlLive(ctx context.Context, req model.CrawlRequest) *model.CrawlResult {
	start := o.now()
	outcomes := make([]siteOutcome, len(req.TargetSites))

	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrentSites)
	for i, id := range req.TargetSites {
		g.Go(func() error {
			outcomes[i] = o.crawlSite(ctx, id, req)
			return nil
		})
	}
	_ = g.Wait()

	var (
		all   []model.CrawledQuestion
		names []string
		errs  []string
	)
	for i, out := range outcomes {
		if out.name != "" {
			names = append(names, out.name)
		}
		if out.err != nil {
			errs = append(errs, req.TargetSites[i]+": "+out.err.Error())
		}
		all = append(all, out.questions...)
	}

	res := &model.CrawlResult{
		Questions: rank.DedupAndRank(all, 0),
		Source:    strings.Join(names, ", "),
		Timestamp: o.now().UnixMilli(),
		Error:     strings.Join(errs, "; "),
	}
	switch {
	case len(res.Questions) > 0:
		res.Success = true
		res.Status = model.StatusLive
	case o.cfg.FallbackEnabled:
		res.Success = true
		res.Status = model.StatusDegraded
		res.Questions = fallback.Generate(req.Category, math.MaxInt)
		if res.Source == "" {
			res.Source = model.SampleSource
		} else {
			res.Source += sampleMarker
		}
		if res.Error == "" {
			res.Error = "no questions found"
		}
	default:
		res.Status = model.StatusFailed
		if res.Error == "" {
			res.Error = "no questions found"
		}
	}

	zap.L().Info("crawl: finished",
		zap.String("category", req.Category),
		zap.String("status", string(res.Status)),
		zap.Int("sites", len(req.TargetSites)),
		zap.Int("failed_sites", len(errs)),
		zap.Int("count", len(res.Questions)),
		zap.Duration("duration", o.now().Sub(start)),
	)
	return res
}

// crawlSite runs every keyword for one site in a single browsing context.
// A failing keyword ends the site but keeps what was already gathered.
func (o *Orchestrator) crawlSite(ctx context.Context, id string, req model.CrawlRequest) siteOutcome {
	ad, err := o.registry.Get(id)
	if err != nil {
		zap.L().Warn("crawl: unknown site", zap.String("site", id))
		return siteOutcome{err: err}
	}
	out := siteOutcome{name: ad.Name()}

	if o.breakers.Get(id).State() == resilience.CircuitOpen {
		out.err = resilience.ErrCircuitOpen
		return out
	}

	bc, err := o.session.NewContext(ctx)
	if err != nil {
		out.err = eris.Wrap(err, "open browsing context")
		return out
	}
	defer func() { _ = bc.Close() }()

	for i, kw := range keywordsFor(req, o.cfg.KeywordsPerSite) {
		if i > 0 {
			if err := o.sleep(ctx, o.delay()); err != nil {
				out.err = err
				break
			}
		}
		qs, err := o.crawlKeyword(ctx, bc, ad, kw, req.Category)
		if err != nil {
			zap.L().Warn("crawl: keyword failed",
				zap.String("site", id),
				zap.String("keyword", kw),
				zap.Error(err),
			)
			out.err = eris.Wrapf(err, "keyword %q", kw)
			break
		}
		out.questions = append(out.questions, qs...)
	}
	return out
}

func (o *Orchestrator) crawlKeyword(ctx context.Context, bc BrowsingContext, ad adapter.Adapter, kw, category string) ([]model.CrawledQuestion, error) {
	start := o.now()
	target, err := ad.SearchURL(kw)
	if err != nil {
		return nil, err
	}
	if err := o.limiter(ad.ID()).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limit")
	}

	retry := o.retry
	retry.OnRetry = resilience.RetryLogger(ad.ID(), "fetch")
	page, err := resilience.ExecuteVal(ctx, o.breakers.Get(ad.ID()), func(ctx context.Context) (*model.FetchedPage, error) {
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (*model.FetchedPage, error) {
			page, err := bc.Fetch(ctx, browser.FetchRequest{
				URL:             target,
				WaitSelector:    ad.WaitSelector(),
				NavTimeout:      o.cfg.NavTimeout(),
				SelectorTimeout: o.cfg.SelectorTimeout(),
			})
			if err != nil {
				return nil, err
			}
			if page.SelectorFound {
				return page, nil
			}
			if bt := scrape.DetectBlock(*page); bt != scrape.BlockNone {
				return nil, resilience.NewBlockedError(ad.ID(), string(bt))
			}
			return page, nil
		})
	})
	if err != nil {
		return nil, err
	}
	if !page.SelectorFound {
		return nil, eris.Wrapf(ErrNoResults, "selector %q on %s", ad.WaitSelector(), target)
	}

	items, err := ad.ExtractItems(page.HTML)
	if err != nil {
		return nil, err
	}
	qs := o.extractor.ExtractAll(items, category, ad.Name())
	zap.L().Info("crawl: keyword done",
		zap.String("site", ad.ID()),
		zap.String("keyword", kw),
		zap.Int("items", len(items)),
		zap.Int("count", len(qs)),
		zap.Duration("duration", o.now().Sub(start)),
	)
	return qs, nil
}

// delay returns a random duration in the configured inter-keyword range.
func (o *Orchestrator) delay() time.Duration {
	lo, hi := o.cfg.DelayRange()
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)+1))
}

func (o *Orchestrator) limiter(site string) *rate.Limiter {
	o.limMu.Lock()
	defer o.limMu.Unlock()
	if l, ok := o.limiters[site]; ok {
		return l
	}
	limit := rate.Inf
	if o.cfg.SiteRPS > 0 {
		limit = rate.Limit(o.cfg.SiteRPS)
	}
	l := rate.NewLimiter(limit, 1)
	o.limiters[site] = l
	return l
}

// Health checks that the browser can open a page.
func (o *Orchestrator) Health(ctx context.Context) error {
	return o.session.HealthCheck(ctx)
}

// Breakers reports the circuit state of every site crawled so far.
func (o *Orchestrator) Breakers() []resilience.BreakerStatus {
	return o.breakers.Snapshot()
}

// SiteStatus describes one registered site for listing.
type SiteStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseURL  string `json:"baseUrl"`
	Breaker  string `json:"breaker"`
	Failures int    `json:"failures"`
}

// Sites lists the registered sites with their circuit state.
func (o *Orchestrator) Sites() []SiteStatus {
	all := o.registry.All()
	out := make([]SiteStatus, 0, len(all))
	for _, a := range all {
		cb := o.breakers.Get(a.ID())
		out = append(out, SiteStatus{
			ID:       a.ID(),
			Name:     a.Name(),
			BaseURL:  a.Config().BaseURL,
			Breaker:  cb.State().String(),
			Failures: cb.Failures(),
		})
	}
	return out
}

// PurgeCache deletes cached results under prefix.
func (o *Orchestrator) PurgeCache(ctx context.Context, prefix string) (int, error) {
	return o.cache.Purge(ctx, prefix)
}
