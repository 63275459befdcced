package model

import "github.com/rotisserie/eris"

// ResultStatus separates live data from fallback data and total failure.
type ResultStatus string

const (
	StatusLive     ResultStatus = "live"
	StatusDegraded ResultStatus = "degraded"
	StatusFailed   ResultStatus = "failed"
)

// CrawlRequest asks for interview questions in a category from a set of sites.
type CrawlRequest struct {
	Category     string   `json:"category"`
	Keywords     []string `json:"keywords,omitempty"`
	TargetSites  []string `json:"targetSites"`
	MaxQuestions int      `json:"maxQuestions"`
}

// Validate checks the request invariants that do not depend on the site
// registry. Unknown site ids are reported per site by the crawler.
func (r CrawlRequest) Validate() error {
	if r.MaxQuestions <= 0 {
		return eris.Errorf("crawl request: maxQuestions must be positive, got %d", r.MaxQuestions)
	}
	if r.Category == "" {
		return eris.New("crawl request: category is required")
	}
	return nil
}

// CrawlResult is the response for one crawl request. It is never mutated
// after construction; cache hits are returned as copies.
type CrawlResult struct {
	Success   bool              `json:"success"`
	Status    ResultStatus      `json:"status"`
	Questions []CrawledQuestion `json:"questions"`
	Source    string            `json:"source"`
	Timestamp int64             `json:"timestamp"`
	Error     string            `json:"error,omitempty"`
	Cached    bool              `json:"cached,omitempty"`
}

// AsCached returns a copy of r flagged as served from cache.
func (r *CrawlResult) AsCached() *CrawlResult {
	cp := *r
	cp.Questions = append([]CrawledQuestion{}, r.Questions...)
	cp.Cached = true
	return &cp
}
