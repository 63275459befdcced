package crawler

import (
	"context"

	"github.com/sells-group/interview-crawler/internal/browser"
	"github.com/sells-group/interview-crawler/internal/model"
)

// BrowsingContext is one isolated browser context. Fetch must close the
// tab it opens on every return path.
type BrowsingContext interface {
	Fetch(ctx context.Context, req browser.FetchRequest) (*model.FetchedPage, error)
	Close() error
}

// Session hands out browsing contexts and reports browser health.
type Session interface {
	NewContext(ctx context.Context) (BrowsingContext, error)
	HealthCheck(ctx context.Context) error
}

type browserSession struct {
	m *browser.Manager
}

// NewBrowserSession adapts a browser.Manager to Session.
func NewBrowserSession(m *browser.Manager) Session {
	return browserSession{m: m}
}

func (s browserSession) NewContext(ctx context.Context) (BrowsingContext, error) {
	c, err := s.m.NewContext(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s browserSession) HealthCheck(ctx context.Context) error {
	return s.m.HealthCheck(ctx)
}
