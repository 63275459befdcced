package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/interview-crawler/internal/model"
)

// fetchGrace is added to the navigation and selector timeouts to bound the
// whole tab lifetime.
const fetchGrace = 5 * time.Second

// FetchRequest describes one page load.
type FetchRequest struct {
	URL string
	// WaitSelector is awaited after navigation when set.
	WaitSelector    string
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
}

// Context is an isolated browsing context. Each Fetch opens a fresh tab in it.
type Context struct {
	m       *Manager
	ctx     context.Context
	cancel  context.CancelFunc
	profile Profile
	once    sync.Once
}

// Profile returns the fingerprint this context presents.
func (c *Context) Profile() Profile { return c.profile }

// Close disposes of the context and all its tabs.
func (c *Context) Close() error {
	c.once.Do(func() {
		c.cancel()
		c.m.release(c)
	})
	return nil
}

// prepare applies the stealth script and the profile overrides to the
// current tab. It must run before the first navigation.
func (c *Context) prepare() chromedp.Action {
	p := c.profile
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := page.AddScriptToEvaluateOnNewDocument(StealthScript(p)).Do(ctx); err != nil {
			return eris.Wrap(err, "inject stealth script")
		}
		if err := network.Enable().Do(ctx); err != nil {
			return eris.Wrap(err, "enable network")
		}
		if err := network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": p.AcceptLanguage}).Do(ctx); err != nil {
			return eris.Wrap(err, "set headers")
		}
		if err := emulation.SetUserAgentOverride(p.UserAgent).
			WithAcceptLanguage(p.AcceptLanguage).
			WithPlatform(p.Platform).
			Do(ctx); err != nil {
			return eris.Wrap(err, "override user agent")
		}
		if err := emulation.SetLocaleOverride().WithLocale(p.Locale).Do(ctx); err != nil {
			return eris.Wrap(err, "override locale")
		}
		if err := emulation.SetTimezoneOverride(p.Timezone).Do(ctx); err != nil {
			return eris.Wrap(err, "override timezone")
		}
		if err := emulation.SetDeviceMetricsOverride(int64(p.Width), int64(p.Height), p.DeviceScaleFactor, false).Do(ctx); err != nil {
			return eris.Wrap(err, "override device metrics")
		}
		return nil
	})
}

// Fetch opens a tab, navigates to req.URL, waits for req.WaitSelector and
// returns the rendered page. The tab is closed on every return path. A
// selector that never appears is not an error: the page is returned with
// SelectorFound false so callers can inspect it for blocks.
func (c *Context) Fetch(ctx context.Context, req FetchRequest) (*model.FetchedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.NavTimeout <= 0 {
		req.NavTimeout = 30 * time.Second
	}
	if req.SelectorTimeout <= 0 {
		req.SelectorTimeout = 10 * time.Second
	}

	tabCtx, closeTab := chromedp.NewContext(c.ctx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()
	limit := time.AfterFunc(req.NavTimeout+req.SelectorTimeout+fetchGrace, closeTab)
	defer limit.Stop()

	start := time.Now()
	if err := chromedp.Run(tabCtx, c.prepare()); err != nil {
		return nil, eris.Wrap(err, "browser: prepare tab")
	}

	navCtx, cancelNav := context.WithTimeout(tabCtx, req.NavTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(req.URL))
	cancelNav()
	if err != nil {
		return nil, eris.Wrapf(err, "browser: navigate %s", req.URL)
	}

	found := true
	if req.WaitSelector != "" {
		selCtx, cancelSel := context.WithTimeout(tabCtx, req.SelectorTimeout)
		err := chromedp.Run(selCtx, chromedp.WaitVisible(req.WaitSelector, chromedp.ByQuery))
		cancelSel()
		if err != nil {
			if tabCtx.Err() != nil {
				return nil, eris.Wrapf(tabCtx.Err(), "browser: wait %q", req.WaitSelector)
			}
			found = false
		}
	}

	out := &model.FetchedPage{URL: req.URL, SelectorFound: found}
	if err := chromedp.Run(tabCtx,
		chromedp.Title(&out.Title),
		chromedp.Location(&out.FinalURL),
		chromedp.OuterHTML("html", &out.HTML, chromedp.ByQuery),
	); err != nil {
		return nil, eris.Wrapf(err, "browser: read %s", req.URL)
	}
	out.Duration = time.Since(start)
	return out, nil
}
