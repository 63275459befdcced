package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
)

// TransientError marks a navigation failure that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err as retryable.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// BlockedError reports that a site served an anti-bot page instead of
// content. Retrying the same request does not help.
type BlockedError struct {
	Site   string
	Signal string
}

func (e *BlockedError) Error() string {
	return "site " + e.Site + " blocked the request (" + e.Signal + ")"
}

// NewBlockedError returns an eris-wrapped BlockedError.
func NewBlockedError(site, signal string) error {
	return eris.Wrap(&BlockedError{Site: site, Signal: signal}, "navigation")
}

// IsBlocked reports whether err carries a BlockedError.
func IsBlocked(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}

// transientPatterns match network-layer failures surfaced as plain strings,
// including Chrome's net::ERR_* navigation errors.
var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"i/o timeout",
	"net::err_connection_reset",
	"net::err_connection_closed",
	"net::err_connection_timed_out",
	"net::err_timed_out",
	"net::err_network_changed",
	"net::err_empty_response",
	"net::err_http2_protocol_error",
}

// IsTransient reports whether err is worth retrying. Cancellation by the
// caller and blocked pages never are; per-attempt deadlines are.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || IsBlocked(err) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
