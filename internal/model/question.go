package model

import (
	"time"
	"unicode/utf8"
)

// Difficulty grades how demanding a question is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question type labels assigned by the extractor.
const (
	TypeAlgorithm    = "算法题"
	TypeProject      = "项目经验"
	TypePrinciple    = "原理题"
	TypeSystemDesign = "系统设计"
	TypeTechnical    = "技术问题"
)

// SampleSource marks questions produced by the fallback generator rather
// than a live crawl.
const SampleSource = "sample"

// Question length bounds, counted in runes.
const (
	MinQuestionLen = 10
	MaxQuestionLen = 250
)

// CrawledQuestion is one interview question discovered on a target site.
type CrawledQuestion struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Type       string     `json:"type"`
	Source     string     `json:"source"`
	Company    string     `json:"company,omitempty"`
	Tags       []string   `json:"tags"`
	URL        string     `json:"url,omitempty"`
	CrawledAt  time.Time  `json:"crawledAt"`
}

// HasCompany reports whether the question is attributed to an employer.
func (q CrawledQuestion) HasCompany() bool {
	return q.Company != ""
}

// ValidLength reports whether s is within the accepted question length.
func ValidLength(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= MinQuestionLen && n <= MaxQuestionLen
}
