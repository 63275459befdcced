package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/interview-crawler/internal/model"
)

func TestKeywordsFor(t *testing.T) {
	tests := []struct {
		name  string
		req   model.CrawlRequest
		limit int
		want  []string
	}{
		{
			name:  "explicit keywords trimmed and capped",
			req:   model.CrawlRequest{Category: model.CategoryFrontend, Keywords: []string{" React ", "", "Vue", "CSS"}},
			limit: 2,
			want:  []string{"React", "Vue"},
		},
		{
			name:  "category table",
			req:   model.CrawlRequest{Category: model.CategoryBackend},
			limit: 2,
			want:  []string{"后端面试题", "后端面经"},
		},
		{
			name:  "unknown category",
			req:   model.CrawlRequest{Category: "嵌入式"},
			limit: 2,
			want:  []string{"嵌入式 面试题", "嵌入式 面经"},
		},
		{
			name:  "no limit",
			req:   model.CrawlRequest{Category: model.CategoryFrontend},
			limit: 0,
			want:  []string{"前端面试题", "前端面经", "JavaScript 面试"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordsFor(tt.req, tt.limit))
		})
	}
}

func TestCategoryKeywords_CoverKnownCategories(t *testing.T) {
	for _, c := range model.AllCategories() {
		assert.NotEmpty(t, categoryKeywords[c], c)
	}
}
