package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `
<html><body>
<div class="item">
  <a href="/discuss/123"><span class="title">  阿里巴巴 前端一面面经  </span></a>
  <div class="body">1. 说说 React 的虚拟 DOM 原理
  2. 浏览器缓存策略有哪些？</div>
</div>
<div class="item">
  <a href="https://other.example.com/abs"><span class="title">算法题汇总</span></a>
</div>
<div class="item"><span class="ad"></span></div>
</body></html>`

func TestSelectorAdapter_ExtractItems(t *testing.T) {
	a, err := NewSelectorAdapter(testSite("a"))
	require.NoError(t, err)

	items, err := a.ExtractItems(searchPage)
	require.NoError(t, err)
	require.Len(t, items, 2, "item with neither title nor content is dropped")

	assert.Equal(t, "阿里巴巴 前端一面面经", items[0].Title)
	assert.Equal(t, "1. 说说 React 的虚拟 DOM 原理 2. 浏览器缓存策略有哪些？", items[0].Content)
	assert.Equal(t, "https://a.example.com/discuss/123", items[0].URL)

	assert.Equal(t, "算法题汇总", items[1].Title)
	assert.Empty(t, items[1].Content)
	assert.Equal(t, "https://other.example.com/abs", items[1].URL)
}

func TestSelectorAdapter_ExtractItems_NoMatches(t *testing.T) {
	a, err := NewSelectorAdapter(testSite("a"))
	require.NoError(t, err)

	items, err := a.ExtractItems("<html><body><p>登录后查看</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSelectorAdapter_ContainerIsAnchor(t *testing.T) {
	cfg := testSite("a")
	cfg.Selectors.Item = "a.card"
	cfg.Selectors.Link = ""
	a, err := NewSelectorAdapter(cfg)
	require.NoError(t, err)

	items, err := a.ExtractItems(`<a class="card" href="/x"><span class="title">标题</span></a>`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://a.example.com/x", items[0].URL)
}

func TestSelectorAdapter_SearchURL(t *testing.T) {
	a, err := NewSelectorAdapter(testSite("a"))
	require.NoError(t, err)

	u, err := a.SearchURL("golang")
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com/search?q=golang", u)
	assert.Equal(t, "a", a.ID())
	assert.Equal(t, "a", a.Config().ID)
}
