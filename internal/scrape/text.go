package scrape

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// MaxTextRunes caps the text kept per page.
const MaxTextRunes = 20000

var (
	inlineSpaceRe = regexp.MustCompile(`[ \t\r\f\v\x{00a0}\x{3000}]+`)
	blankLinesRe  = regexp.MustCompile(`\n\s*\n+`)
)

// PageText parses rendered HTML and returns its title and visible body
// text. Scripts, styles, navigation and footers are dropped.
func PageText(html string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", eris.Wrap(err, "scrape: parse html")
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, iframe, nav, footer").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return title, Truncate(collapse(body.Text()), MaxTextRunes), nil
}

func collapse(s string) string {
	s = inlineSpaceRe.ReplaceAllString(s, " ")
	s = blankLinesRe.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
