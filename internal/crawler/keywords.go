package crawler

import (
	"strings"

	"github.com/sells-group/interview-crawler/internal/model"
)

// categoryKeywords are the search keywords used when a request names none.
var categoryKeywords = map[string][]string{
	model.CategoryFrontend:  {"前端面试题", "前端面经", "JavaScript 面试"},
	model.CategoryBackend:   {"后端面试题", "后端面经", "Java 面试"},
	model.CategoryAlgorithm: {"算法面试题", "算法岗面经", "LeetCode 面试"},
	model.CategoryTesting:   {"测试开发面试题", "测试开发面经"},
	model.CategoryProduct:   {"产品经理面试题", "产品经理面经"},
	model.CategoryData:      {"数据分析面试题", "数据分析面经"},
	model.CategoryDevOps:    {"运维开发面试题", "运维面经"},
	model.CategoryMobile:    {"移动开发面试题", "Android 面经"},
}

// keywordsFor returns up to limit keywords for req: the explicit keywords
// when given, otherwise the category table, otherwise generic terms built
// from the category name.
func keywordsFor(req model.CrawlRequest, limit int) []string {
	var kws []string
	for _, k := range req.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	if len(kws) == 0 {
		if table, ok := categoryKeywords[req.Category]; ok {
			kws = table
		} else {
			kws = []string{req.Category + " 面试题", req.Category + " 面经"}
		}
	}
	if limit > 0 && len(kws) > limit {
		kws = kws[:limit]
	}
	return kws
}
