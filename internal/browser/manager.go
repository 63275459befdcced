// Package browser owns the headless Chrome process and hands out isolated
// browsing contexts with anti-detection applied.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/interview-crawler/internal/config"
)

const (
	startTimeout  = 30 * time.Second
	healthTimeout = 10 * time.Second
)

// ErrClosed is returned after Close.
var ErrClosed = eris.New("browser: manager closed")

// Manager lazily starts one Chrome process shared by all crawls.
type Manager struct {
	cfg  config.BrowserConfig
	pick func(n int) int

	mu            sync.Mutex
	ready         bool
	closed        bool
	starting      chan struct{}
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	contexts      map[*Context]struct{}
}

// NewManager creates a Manager. Chrome is not started until first use.
func NewManager(cfg config.BrowserConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		contexts: make(map[*Context]struct{}),
	}
}

// Ready reports whether the browser process is up.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// OpenContexts returns the number of browsing contexts not yet closed.
func (m *Manager) OpenContexts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contexts)
}

func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", "zh-CN"),
		chromedp.WindowSize(1366, 768),
	)
	if m.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}
	if m.cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(m.cfg.Proxy))
	}
	return opts
}

// browser returns the running browser context, launching Chrome first if
// needed. Only one launch runs at a time and it happens without holding
// m.mu; other callers wait for it or for ctx.
func (m *Manager) browser(ctx context.Context) (context.Context, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}
		if m.ready {
			bctx := m.browserCtx
			m.mu.Unlock()
			return bctx, nil
		}
		if wait := m.starting; wait != nil {
			m.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		done := make(chan struct{})
		m.starting = done
		m.mu.Unlock()

		err := m.start()

		m.mu.Lock()
		m.starting = nil
		m.mu.Unlock()
		close(done)
		if err != nil {
			return nil, err
		}
	}
}

// start launches Chrome. The launch is shared, so it is bounded by
// startTimeout rather than by any caller's context.
func (m *Manager) start() error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), m.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(zap.S().Debugf),
		chromedp.WithErrorf(zap.S().Debugf),
	)

	start := time.Now()
	timer := time.AfterFunc(startTimeout, browserCancel)
	err := chromedp.Run(browserCtx)
	timer.Stop()
	if err != nil {
		browserCancel()
		allocCancel()
		return eris.Wrap(err, "browser: start chrome")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		browserCancel()
		allocCancel()
		return ErrClosed
	}
	m.allocCancel = allocCancel
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel
	m.ready = true
	zap.L().Info("browser: chrome started",
		zap.Bool("headless", m.cfg.Headless),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// shutdownLocked stops Chrome and forgets every context. Callers hold m.mu.
func (m *Manager) shutdownLocked() {
	for c := range m.contexts {
		c.cancel()
		delete(m.contexts, c)
	}
	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
	m.browserCtx, m.browserCancel, m.allocCancel = nil, nil, nil
	m.ready = false
}

// NewContext creates an isolated browsing context with its own cookies,
// cache and randomized Profile.
func (m *Manager) NewContext(ctx context.Context) (*Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parent, err := m.browser(ctx)
	if err != nil {
		return nil, err
	}

	bctx, cancel := chromedp.NewContext(parent, chromedp.WithNewBrowserContext())
	stop := context.AfterFunc(ctx, cancel)
	err = chromedp.Run(bctx)
	stop()
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.markUnready(parent, err)
		return nil, eris.Wrap(err, "browser: create context")
	}

	c := &Context{
		m:       m,
		ctx:     bctx,
		cancel:  cancel,
		profile: RandomProfile(m.pick),
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	m.contexts[c] = struct{}{}
	m.mu.Unlock()
	return c, nil
}

func (m *Manager) release(c *Context) {
	m.mu.Lock()
	delete(m.contexts, c)
	m.mu.Unlock()
}

// markUnready drops the browser that parent belongs to so the next use
// starts a fresh one. A browser already replaced is left alone.
func (m *Manager) markUnready(parent context.Context, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready || m.browserCtx != parent {
		return
	}
	zap.L().Warn("browser: marking unready", zap.Error(cause))
	m.shutdownLocked()
}

// HealthCheck opens about:blank in a new tab and closes it. If the browser
// itself fails it is torn down and restarted on next use; a cancelled ctx
// only fails the check.
func (m *Manager) HealthCheck(ctx context.Context) error {
	parent, err := m.browser(ctx)
	if err != nil {
		return err
	}
	tabCtx, cancel := chromedp.NewContext(parent)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	timer := time.AfterFunc(healthTimeout, cancel)
	defer timer.Stop()

	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "browser: health check")
		}
		m.markUnready(parent, err)
		return eris.Wrap(err, "browser: health check")
	}
	return nil
}

// Close closes every open context and then the browser process. A launch in
// progress is discarded when it completes.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	n := len(m.contexts)
	m.shutdownLocked()
	zap.L().Info("browser: closed", zap.Int("contexts", n))
	return nil
}
