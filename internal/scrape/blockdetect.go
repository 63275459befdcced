// Package scrape inspects rendered pages: it spots anti-bot interstitials
// and reduces page HTML to readable text.
package scrape

import (
	"strings"

	"github.com/sells-group/interview-crawler/internal/model"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockRateLimit  BlockType = "rate_limit"
	BlockLoginWall  BlockType = "login_wall"
	BlockJSShell    BlockType = "js_shell"
)

const (
	// jsShellMaxLen bounds the size of a page that can be a bare JS shell.
	jsShellMaxLen = 2000
	// markerBodyMaxLen bounds the size of a page whose body is searched for
	// captcha and rate limit words. Larger pages are real content that may
	// discuss those topics, so only their title is checked.
	markerBodyMaxLen = 16 << 10
)

var (
	captchaMarkers   = []string{"captcha", "recaptcha", "hcaptcha", "geetest", "验证码", "滑块验证", "安全验证", "人机验证"}
	rateLimitMarkers = []string{"访问过于频繁", "请求过于频繁", "操作太频繁", "too many requests"}
	loginPaths       = []string{"/signin", "/login", "passport."}
)

// DetectBlock checks a rendered page for signs of anti-bot protection.
func DetectBlock(page model.FetchedPage) BlockType {
	if page.FinalURL != "" && page.FinalURL != page.URL {
		final := strings.ToLower(page.FinalURL)
		for _, p := range loginPaths {
			if strings.Contains(final, p) {
				return BlockLoginWall
			}
		}
	}

	lower := strings.ToLower(page.Title + "\n" + page.HTML)

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return BlockCloudflare
	}
	markerText := strings.ToLower(page.Title)
	if len(page.HTML) < markerBodyMaxLen {
		markerText = lower
	}
	if containsAny(markerText, captchaMarkers) {
		return BlockCaptcha
	}
	if containsAny(markerText, rateLimitMarkers) {
		return BlockRateLimit
	}
	if len(page.HTML) < jsShellMaxLen &&
		strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return BlockJSShell
	}
	return BlockNone
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
