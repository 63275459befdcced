// Package extract mines interview questions out of unstructured page text
// and classifies them. It performs no I/O.
package extract

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/interview-crawler/internal/model"
)

// Extractor turns raw items into classified questions.
type Extractor struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the crawl timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithIDFunc overrides question id generation.
func WithIDFunc(fn func() string) Option {
	return func(e *Extractor) { e.newID = fn }
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// FromItem extracts the questions in one raw item. Items that mention none
// of the interview keywords yield nothing. Candidates are mined from the
// combined title and content; a title that itself reads as a question is
// accepted up to model.MaxQuestionLen.
func (e *Extractor) FromItem(item model.RawItem, category, source string) []model.CrawledQuestion {
	text := item.Text()
	if !IsRelevant(text) {
		return nil
	}

	candidates := Candidates(text, MaxItemLen)
	if looksLikeQuestion(item.Title) {
		if title := Clean(item.Title); model.ValidLength(title) {
			candidates = appendUnique(candidates, title)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	company := Company(text)
	crawledAt := e.now().UTC()
	out := make([]model.CrawledQuestion, 0, len(candidates))
	for _, q := range candidates {
		out = append(out, model.CrawledQuestion{
			ID:         e.newID(),
			Question:   q,
			Category:   category,
			Difficulty: Difficulty(q),
			Type:       Type(q),
			Source:     source,
			Company:    company,
			Tags:       Tags(q + " " + item.Content),
			URL:        item.URL,
			CrawledAt:  crawledAt,
		})
	}
	return out
}

// ExtractAll extracts every item in order. A failing item is skipped and
// never aborts its siblings.
func (e *Extractor) ExtractAll(items []model.RawItem, category, source string) []model.CrawledQuestion {
	var out []model.CrawledQuestion
	for i, item := range items {
		qs, err := e.safeFromItem(item, category, source)
		if err != nil {
			zap.L().Debug("extract: item skipped",
				zap.String("source", source),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, qs...)
	}
	return out
}

func (e *Extractor) safeFromItem(item model.RawItem, category, source string) (qs []model.CrawledQuestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			qs = nil
			err = eris.Errorf("extract: panic on item %q: %v", item.URL, r)
		}
	}()
	return e.FromItem(item, category, source), nil
}

func appendUnique(list []string, s string) []string {
	key := NormalizeKey(s)
	for _, existing := range list {
		if NormalizeKey(existing) == key {
			return list
		}
	}
	return append(list, s)
}
