// Package rank deduplicates crawled questions and orders them for display.
package rank

import (
	"sort"

	"github.com/sells-group/interview-crawler/internal/extract"
	"github.com/sells-group/interview-crawler/internal/model"
)

// Dedup drops questions whose normalized text was already seen. The first
// occurrence wins and input order is preserved.
func Dedup(qs []model.CrawledQuestion) []model.CrawledQuestion {
	seen := make(map[string]struct{}, len(qs))
	out := make([]model.CrawledQuestion, 0, len(qs))
	for _, q := range qs {
		key := extract.NormalizeKey(q.Question)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

// Rank sorts questions in place: those attributed to a company first, then
// by descending tag count. Ties keep their relative order.
func Rank(qs []model.CrawledQuestion) {
	sort.SliceStable(qs, func(i, j int) bool {
		ci, cj := qs[i].HasCompany(), qs[j].HasCompany()
		if ci != cj {
			return ci
		}
		return len(qs[i].Tags) > len(qs[j].Tags)
	})
}

// DedupAndRank dedups, ranks and truncates to max questions. A max of zero
// or less disables truncation.
func DedupAndRank(qs []model.CrawledQuestion, max int) []model.CrawledQuestion {
	out := Dedup(qs)
	Rank(out)
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
