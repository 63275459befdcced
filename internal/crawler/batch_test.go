package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/interview-crawler/internal/model"
)

func TestCrawlURLs_OneTimeoutDoesNotAffectOthers(t *testing.T) {
	h := newHarness(t, map[string]fakePage{
		"ok.example.com":   {html: `<html><head><title>面经合集</title></head><body><nav>menu</nav><p>一面 问了 HTTP 缓存</p></body></html>`},
		"slow.example.com": {err: context.DeadlineExceeded},
	}, nil, testCrawlConfig())

	results := h.orch.CrawlURLs(context.Background(), []string{
		"https://ok.example.com/post/1",
		"https://slow.example.com/post/2",
	})
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.Equal(t, model.StatusLive, results[0].Status)
	assert.Equal(t, "https://ok.example.com/post/1", results[0].URL)
	assert.Equal(t, "面经合集", results[0].Title)
	assert.Contains(t, results[0].Content, "HTTP 缓存")
	assert.NotContains(t, results[0].Content, "menu")
	assert.Empty(t, results[0].Error)

	assert.False(t, results[1].Success)
	assert.Equal(t, model.StatusFailed, results[1].Status)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, fixedNow.UnixMilli(), results[1].Timestamp)

	opened, closed := h.session.counts()
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
}

func TestCrawlURLs_InvalidAndBlocked(t *testing.T) {
	h := newHarness(t, map[string]fakePage{
		"blocked.example.com": {html: pageChallenge},
	}, nil, testCrawlConfig())

	results := h.orch.CrawlURLs(context.Background(), []string{
		"not a url",
		"ftp://files.example.com/x",
		"https://blocked.example.com/",
	})
	require.Len(t, results, 3)

	assert.Equal(t, "invalid url", results[0].Error)
	assert.Equal(t, "invalid url", results[1].Error)
	assert.False(t, results[2].Success)
	assert.Equal(t, "cloudflare", results[2].Blocked)

	opened, _ := h.session.counts()
	assert.Equal(t, 1, opened, "invalid urls never open a context")
}

func TestCrawlURLs_Empty(t *testing.T) {
	h := newHarness(t, nil, nil, testCrawlConfig())
	assert.Empty(t, h.orch.CrawlURLs(context.Background(), nil))
}
