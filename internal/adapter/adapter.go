// Package adapter describes the supported question source sites and turns
// rendered search pages into raw items.
package adapter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/interview-crawler/internal/model"
)

// keywordPlaceholder is replaced by the escaped keyword in search templates.
const keywordPlaceholder = "{keyword}"

// Adapter defines the behavior each source site must implement.
type Adapter interface {
	// ID returns the unique site identifier (e.g., "nowcoder", "csdn").
	ID() string

	// Name returns the display name used as a question source.
	Name() string

	// Config returns the immutable site description.
	Config() model.SiteConfig

	// SearchURL builds the search page URL for a keyword.
	SearchURL(keyword string) (string, error)

	// WaitSelector returns the selector that signals results have rendered.
	WaitSelector() string

	// ExtractItems parses rendered page HTML into raw items. It performs no I/O.
	ExtractItems(html string) ([]model.RawItem, error)
}

// SelectorAdapter is an Adapter driven entirely by a SiteConfig.
type SelectorAdapter struct {
	cfg  model.SiteConfig
	base *url.URL
}

// NewSelectorAdapter validates cfg and returns an adapter for it.
func NewSelectorAdapter(cfg model.SiteConfig) (*SelectorAdapter, error) {
	if cfg.ID == "" {
		return nil, eris.New("adapter: site id is required")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if !strings.Contains(cfg.SearchTemplate, keywordPlaceholder) {
		return nil, eris.Errorf("adapter: %s: search template must contain %s", cfg.ID, keywordPlaceholder)
	}
	if cfg.Selectors.Item == "" {
		return nil, eris.Errorf("adapter: %s: item selector is required", cfg.ID)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, eris.Errorf("adapter: %s: invalid base url %q", cfg.ID, cfg.BaseURL)
	}
	return &SelectorAdapter{cfg: cfg, base: base}, nil
}

func (a *SelectorAdapter) ID() string               { return a.cfg.ID }
func (a *SelectorAdapter) Name() string             { return a.cfg.Name }
func (a *SelectorAdapter) Config() model.SiteConfig { return a.cfg }
func (a *SelectorAdapter) WaitSelector() string     { return a.cfg.Selectors.Item }

// SearchURL substitutes the query-escaped keyword into the search template.
func (a *SelectorAdapter) SearchURL(keyword string) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", eris.Errorf("adapter: %s: empty keyword", a.cfg.ID)
	}
	return strings.ReplaceAll(a.cfg.SearchTemplate, keywordPlaceholder, url.QueryEscape(keyword)), nil
}

// ExtractItems selects every item container and reads its title, content and
// link. Items with neither title nor content are dropped.
func (a *SelectorAdapter) ExtractItems(html string) ([]model.RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrapf(err, "adapter: %s: parse html", a.cfg.ID)
	}

	sel := a.cfg.Selectors
	var items []model.RawItem
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		item := model.RawItem{
			Title:   selectText(s, sel.Title),
			Content: selectText(s, sel.Content),
			URL:     a.resolveLink(s, sel.Link),
		}
		if item.Title == "" && item.Content == "" {
			return
		}
		items = append(items, item)
	})
	return items, nil
}

// selectText returns the collapsed text of the first match of selector
// within s, or of s itself when selector is empty.
func selectText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return collapse(s.Text())
	}
	return collapse(s.Find(selector).First().Text())
}

func (a *SelectorAdapter) resolveLink(s *goquery.Selection, selector string) string {
	link := s
	if selector != "" {
		link = s.Find(selector).First()
	}
	href, ok := link.Attr("href")
	if !ok {
		// The item container itself may be the anchor.
		href, ok = s.Attr("href")
		if !ok {
			return ""
		}
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return a.base.ResolveReference(ref).String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
