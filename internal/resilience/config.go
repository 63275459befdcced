package resilience

import (
	"time"

	"github.com/sells-group/interview-crawler/internal/config"
)

// RetryConfigFor builds the navigation retry policy from crawl settings.
func RetryConfigFor(cfg config.CrawlConfig) RetryConfig {
	rc := DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		rc.MaxAttempts = cfg.RetryAttempts
	}
	return rc
}

// BreakerConfigFor builds the per-site breaker policy from crawl settings.
// Blocked pages and transient failures trip the breaker; configuration
// errors do not.
func BreakerConfigFor(cfg config.CrawlConfig) CircuitBreakerConfig {
	bc := DefaultCircuitBreakerConfig()
	if cfg.BreakerThreshold > 0 {
		bc.FailureThreshold = cfg.BreakerThreshold
	}
	if cfg.BreakerResetSecs > 0 {
		bc.ResetTimeout = time.Duration(cfg.BreakerResetSecs) * time.Second
	}
	bc.ShouldTrip = func(err error) bool {
		return IsBlocked(err) || IsTransient(err)
	}
	return bc
}
