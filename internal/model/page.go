package model

import "time"

// SiteSelectors locates question items on a rendered search page.
type SiteSelectors struct {
	Item    string `yaml:"item" json:"item"`
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
	Link    string `yaml:"link" json:"link"`
}

// SiteConfig describes one supported source site.
type SiteConfig struct {
	ID             string        `yaml:"id" json:"id"`
	Name           string        `yaml:"name" json:"name"`
	BaseURL        string        `yaml:"base_url" json:"baseUrl"`
	SearchTemplate string        `yaml:"search_template" json:"searchTemplate"`
	Selectors      SiteSelectors `yaml:"selectors" json:"selectors"`
}

// RawItem is a single search hit scraped from a site, before extraction.
type RawItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Text returns the title and content joined for pattern matching.
func (r RawItem) Text() string {
	if r.Content == "" {
		return r.Title
	}
	if r.Title == "" {
		return r.Content
	}
	return r.Title + " " + r.Content
}

// FetchedPage is the rendered state of a page after navigation.
type FetchedPage struct {
	URL      string        `json:"url"`
	FinalURL string        `json:"final_url"`
	Title    string        `json:"title"`
	HTML     string        `json:"-"`
	Duration time.Duration `json:"duration"`
	// SelectorFound is false when the awaited selector never appeared.
	SelectorFound bool `json:"selector_found"`
}

// PageResult is the outcome of crawling one URL in a batch.
type PageResult struct {
	URL       string       `json:"url"`
	Success   bool         `json:"success"`
	Status    ResultStatus `json:"status"`
	Title     string       `json:"title,omitempty"`
	Content   string       `json:"content,omitempty"`
	Blocked   string       `json:"blocked,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp int64        `json:"timestamp"`
}
