package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sells-group/interview-crawler/internal/model"
)

// MaxItemLen bounds candidates mined from an item's title and content. A
// result title accepted as a question may run to model.MaxQuestionLen.
const MaxItemLen = 200

// relevanceKeywords gate which items are mined at all.
var relevanceKeywords = []string{"面试", "面经", "笔试", "题目", "问题", "算法", "技术"}

// interrogativePrefixes start a clause that should end with a question mark.
var interrogativePrefixes = []string{
	"什么", "如何", "怎么", "怎样", "为什么", "为何", "哪些", "哪个", "是否",
	"请问", "能否", "能不能", "有没有", "what ", "how ", "why ",
}

// pattern is one question-shaped matcher. Patterns run in declaration order.
// Unless raw is set, a pattern sees the text with list markers turned into
// line breaks so that a match never spans two list items.
type pattern struct {
	name  string
	raw   bool
	match func(text string) []string
}

var (
	// A list marker such as "1." "2、" "3)" "(4)" at the start of the text or
	// after whitespace or sentence punctuation.
	numberedMarkerRe = regexp.MustCompile(`(^|[\s。；;！!？?])(?:\d{1,2}[.、．)）]|[（(]\d{1,2}[)）])\s*`)

	prefixedRe = regexp.MustCompile(`(?:问题|题目)\s*[:：]\s*([^。！!？?\n]+[？?]?)`)

	interrogativeRe = regexp.MustCompile(`((?:什么是|如何|怎么|怎样|为什么|为何|请问|说说|谈谈|介绍一下|解释一下|简述|讲讲|描述一下)[^。！!？?\n]{3,150}[？?]?)`)

	interviewerRe = regexp.MustCompile(`面试官问(?:了|到|我)?\s*[:：]?\s*([^。！!？?\n]+[？?]?)`)
)

var patterns = []pattern{
	{name: "numbered", raw: true, match: matchNumbered},
	{name: "prefixed", match: submatches(prefixedRe)},
	{name: "interrogative", match: submatches(interrogativeRe)},
	{name: "interviewer", match: submatches(interviewerRe)},
}

// submatches returns a matcher yielding the first capture group of every match.
func submatches(re *regexp.Regexp) func(string) []string {
	return func(text string) []string {
		var out []string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 {
				out = append(out, m[1])
			}
		}
		return out
	}
}

// matchNumbered splits text on list markers and returns each segment up to
// its first sentence terminator. A question mark ends the segment inclusively.
func matchNumbered(text string) []string {
	locs := numberedMarkerRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		seg := text[loc[1]:end]
		if idx := strings.IndexAny(seg, "。；;\n"); idx >= 0 {
			seg = seg[:idx]
		}
		if idx := strings.IndexAny(seg, "？?"); idx >= 0 {
			_, size := utf8.DecodeRuneInString(seg[idx:])
			seg = seg[:idx+size]
		}
		out = append(out, seg)
	}
	return out
}

var (
	spaceRe         = regexp.MustCompile(`\s+`)
	leadingNoiseRe  = regexp.MustCompile(`^[^\p{L}]+`)
	trailingNoiseRe = regexp.MustCompile(`[\s,，.。;；:：、!！~～…\-—_]+$`)
)

// Clean normalizes one raw candidate: collapses whitespace, strips leading
// characters that are not letters (CJK included) and trailing punctuation
// noise, and appends a full-width question mark to interrogative clauses.
func Clean(s string) string {
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = leadingNoiseRe.ReplaceAllString(s, "")
	s = trailingNoiseRe.ReplaceAllString(s, "")
	if s == "" {
		return ""
	}
	if isInterrogative(s) && !strings.HasSuffix(s, "？") && !strings.HasSuffix(s, "?") {
		s += "？"
	}
	return s
}

func isInterrogative(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range interrogativePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// looksLikeQuestion reports whether a whole title reads as a question.
func looksLikeQuestion(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, "？") || strings.HasSuffix(s, "?") || isInterrogative(s)
}

// IsRelevant reports whether text mentions at least one interview keyword.
func IsRelevant(text string) bool {
	for _, k := range relevanceKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// NormalizeKey is the dedup key of a question: full-width folded, lowercased,
// with all whitespace removed.
func NormalizeKey(s string) string {
	s = foldWidth(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Candidates applies every pattern to text in order and returns the cleaned
// candidates whose length lies in [model.MinQuestionLen, maxLen], without
// repeats.
func Candidates(text string, maxLen int) []string {
	clauses := numberedMarkerRe.ReplaceAllString(text, "${1}\n")
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		input := clauses
		if p.raw {
			input = text
		}
		for _, raw := range p.match(input) {
			q := Clean(raw)
			if !withinLen(q, maxLen) {
				continue
			}
			key := NormalizeKey(q)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, q)
		}
	}
	return out
}

func withinLen(s string, maxLen int) bool {
	n := utf8.RuneCountInString(s)
	return n >= model.MinQuestionLen && n <= maxLen
}
