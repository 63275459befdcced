package crawler

import (
	"context"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/interview-crawler/internal/browser"
	"github.com/sells-group/interview-crawler/internal/model"
	"github.com/sells-group/interview-crawler/internal/scrape"
)

// CrawlURLs renders each URL in its own browsing context and returns one
// result per URL in input order. A failing URL never affects the others.
func (o *Orchestrator) CrawlURLs(ctx context.Context, urls []string) []model.PageResult {
	results := make([]model.PageResult, len(urls))

	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrentSites)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = o.crawlURL(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) crawlURL(ctx context.Context, raw string) model.PageResult {
	res := model.PageResult{URL: raw, Status: model.StatusFailed}
	fail := func(msg string) model.PageResult {
		res.Error = msg
		res.Timestamp = o.now().UnixMilli()
		zap.L().Warn("batch: url failed", zap.String("url", raw), zap.String("error", msg))
		return res
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail("invalid url")
	}

	bc, err := o.session.NewContext(ctx)
	if err != nil {
		return fail(err.Error())
	}
	defer func() { _ = bc.Close() }()

	page, err := bc.Fetch(ctx, browser.FetchRequest{
		URL:             raw,
		NavTimeout:      o.cfg.NavTimeout(),
		SelectorTimeout: o.cfg.SelectorTimeout(),
	})
	if err != nil {
		return fail(err.Error())
	}
	if bt := scrape.DetectBlock(*page); bt != scrape.BlockNone {
		res.Blocked = string(bt)
		return fail("blocked: " + string(bt))
	}

	title, text, err := scrape.PageText(page.HTML)
	if err != nil {
		return fail(err.Error())
	}
	if title == "" {
		title = page.Title
	}
	res.Success = true
	res.Status = model.StatusLive
	res.Title = title
	res.Content = text
	res.Timestamp = o.now().UnixMilli()
	return res
}
