package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/interview-crawler/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))

func newTestExtractor() *Extractor {
	n := 0
	return New(
		WithClock(func() time.Time { return fixedNow }),
		WithIDFunc(func() string {
			n++
			return fmt.Sprintf("q-%d", n)
		}),
	)
}

func TestFromItem_NumberedList(t *testing.T) {
	item := model.RawItem{
		Title:   "阿里巴巴 前端一面面经",
		Content: "1. 说说 React 的虚拟 DOM 原理 2. 浏览器缓存策略有哪些？",
		URL:     "https://www.nowcoder.com/discuss/1",
	}

	qs := newTestExtractor().FromItem(item, model.CategoryFrontend, "牛客网")
	require.Len(t, qs, 2)

	first := qs[0]
	assert.Equal(t, "q-1", first.ID)
	assert.Equal(t, "说说 React 的虚拟 DOM 原理", first.Question)
	assert.Equal(t, model.CategoryFrontend, first.Category)
	assert.Equal(t, model.DifficultyHard, first.Difficulty)
	assert.Equal(t, model.TypePrinciple, first.Type)
	assert.Equal(t, "牛客网", first.Source)
	assert.Equal(t, "阿里巴巴", first.Company)
	assert.Equal(t, []string{"React"}, first.Tags)
	assert.Equal(t, item.URL, first.URL)
	assert.Equal(t, time.UTC, first.CrawledAt.Location())
	assert.True(t, fixedNow.Equal(first.CrawledAt))

	second := qs[1]
	assert.Equal(t, "浏览器缓存策略有哪些？", second.Question)
	assert.Equal(t, model.DifficultyMedium, second.Difficulty)
	assert.Equal(t, model.TypeTechnical, second.Type)
	assert.Equal(t, "阿里巴巴", second.Company)
}

func TestFromItem_IrrelevantItemYieldsNothing(t *testing.T) {
	item := model.RawItem{
		Title:   "周末去哪儿玩？",
		Content: "今天天气怎么样？大家有什么推荐",
	}
	assert.Empty(t, newTestExtractor().FromItem(item, model.CategoryBackend, "知乎"))
}

func TestFromItem_PrefixedQuestion(t *testing.T) {
	item := model.RawItem{Content: "题目：如何实现一个 LRU 缓存"}

	qs := newTestExtractor().FromItem(item, model.CategoryBackend, "LeetCode")
	require.Len(t, qs, 1)
	assert.Equal(t, "如何实现一个 LRU 缓存？", qs[0].Question)
	assert.Equal(t, model.DifficultyHard, qs[0].Difficulty)
	assert.False(t, qs[0].HasCompany())
	assert.Empty(t, qs[0].Tags)
}

func TestFromItem_ResultTitleLengthCap(t *testing.T) {
	title := strings.Repeat("架构", 105) + "怎么做？"
	require.Greater(t, utf8.RuneCountInString(title), MaxItemLen)
	require.LessOrEqual(t, utf8.RuneCountInString(title), model.MaxQuestionLen)

	qs := newTestExtractor().FromItem(model.RawItem{Title: title, Content: "面经分享"}, model.CategoryBackend, "掘金")
	require.Len(t, qs, 1)
	assert.Equal(t, title, qs[0].Question)

	tooLong := strings.Repeat("架构", 130) + "怎么做？"
	assert.Empty(t, newTestExtractor().FromItem(model.RawItem{Title: tooLong, Content: "面经分享"}, model.CategoryBackend, "掘金"))
}

func TestFromItem_AllWithinBounds(t *testing.T) {
	item := model.RawItem{
		Title:   "字节跳动后端面经",
		Content: "1. 讲讲 MySQL 索引的底层实现 2. Redis 为什么快？ 3. 问 4. 面试官问：Kafka 如何保证消息不丢失",
	}
	qs := newTestExtractor().FromItem(item, model.CategoryBackend, "CSDN")
	require.NotEmpty(t, qs)
	for _, q := range qs {
		n := utf8.RuneCountInString(q.Question)
		assert.GreaterOrEqual(t, n, model.MinQuestionLen, q.Question)
		assert.LessOrEqual(t, n, model.MaxQuestionLen, q.Question)
		assert.Equal(t, "字节跳动", q.Company)
		assert.LessOrEqual(t, len(q.Tags), MaxTags)
	}
}

func TestExtractAll_SkipsFailingItem(t *testing.T) {
	calls := 0
	e := New(WithIDFunc(func() string {
		calls++
		if calls == 1 {
			panic("id source exhausted")
		}
		return fmt.Sprintf("q-%d", calls)
	}))

	items := []model.RawItem{
		{Title: "面经", Content: "题目：如何实现一个 LRU 缓存"},
		{Title: "无关内容", Content: "随便聊聊"},
		{Title: "二面", Content: "面试官问：TCP 三次握手为什么不是两次"},
	}
	qs := e.ExtractAll(items, model.CategoryBackend, "知乎")
	require.Len(t, qs, 1)
	assert.Equal(t, "TCP 三次握手为什么不是两次", qs[0].Question)
	assert.Equal(t, "q-2", qs[0].ID)
}

func TestExtractAll_PreservesItemOrder(t *testing.T) {
	items := []model.RawItem{
		{Content: "面试官问：TCP 三次握手为什么不是两次"},
		{Content: "题目：如何实现一个 LRU 缓存"},
	}
	qs := newTestExtractor().ExtractAll(items, model.CategoryBackend, "知乎")
	require.Len(t, qs, 2)
	assert.Equal(t, "TCP 三次握手为什么不是两次", qs[0].Question)
	assert.Equal(t, "如何实现一个 LRU 缓存？", qs[1].Question)
}
