package crawler

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/interview-crawler/internal/browser"
	"github.com/sells-group/interview-crawler/internal/model"
)

// fakePage is the canned response for one URL or host.
type fakePage struct {
	html       string
	title      string
	finalURL   string
	noSelector bool
	err        error
	delay      time.Duration
}

// fakeSession serves canned pages keyed by full URL or host and records context
// lifecycle and concurrency.
type fakeSession struct {
	mu       sync.Mutex
	pages    map[string]fakePage
	fetched  []string
	opened   int
	closed   int
	healthOK error

	active    atomic.Int32
	maxActive atomic.Int32
	fetches   atomic.Int32
	gate      chan struct{}
}

func newFakeSession(pages map[string]fakePage) *fakeSession {
	return &fakeSession{pages: pages}
}

func (s *fakeSession) NewContext(context.Context) (BrowsingContext, error) {
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()
	n := s.active.Add(1)
	for {
		cur := s.maxActive.Load()
		if n <= cur || s.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}
	return &fakeContext{s: s}, nil
}

func (s *fakeSession) HealthCheck(context.Context) error { return s.healthOK }

func (s *fakeSession) counts() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed
}

type fakeContext struct {
	s    *fakeSession
	once sync.Once
}

func (c *fakeContext) Fetch(ctx context.Context, req browser.FetchRequest) (*model.FetchedPage, error) {
	c.s.fetches.Add(1)
	if c.s.gate != nil {
		select {
		case <-c.s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	c.s.fetched = append(c.s.fetched, req.URL)
	p, ok := c.s.pages[req.URL]
	if !ok {
		p, ok = c.s.pages[u.Host]
	}
	c.s.mu.Unlock()
	if !ok {
		return nil, eris.Errorf("net::ERR_NAME_NOT_RESOLVED at %s", req.URL)
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	final := p.finalURL
	if final == "" {
		final = req.URL
	}
	return &model.FetchedPage{
		URL:           req.URL,
		FinalURL:      final,
		Title:         p.title,
		HTML:          p.html,
		SelectorFound: !p.noSelector,
	}, nil
}

func (c *fakeContext) Close() error {
	c.once.Do(func() {
		c.s.mu.Lock()
		c.s.closed++
		c.s.mu.Unlock()
		c.s.active.Add(-1)
	})
	return nil
}

// mockStore is a testify mock of cache.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockStore) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	args := m.Called(ctx, prefix)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) Close() error { return m.Called().Error(0) }
