package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("selector not found"), false},
		{"explicit", NewTransientError(errors.New("flaky")), true},
		{"wrapped explicit", eris.Wrap(NewTransientError(errors.New("flaky")), "fetch"), true},
		{"deadline", fmt.Errorf("navigate: %w", context.DeadlineExceeded), true},
		{"canceled", fmt.Errorf("navigate: %w", context.Canceled), false},
		{"conn reset", fmt.Errorf("dial: %w", syscall.ECONNRESET), true},
		{"chrome net error", errors.New("page load error net::ERR_CONNECTION_RESET"), true},
		{"chrome timed out", errors.New("page load error net::ERR_TIMED_OUT"), true},
		{"chrome not resolved", errors.New("page load error net::ERR_NAME_NOT_RESOLVED"), false},
		{"blocked", NewBlockedError("zhihu", "captcha"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBlockedError(t *testing.T) {
	err := NewBlockedError("csdn", "cloudflare")
	if !IsBlocked(err) {
		t.Fatal("expected IsBlocked")
	}
	var be *BlockedError
	if !errors.As(err, &be) || be.Site != "csdn" || be.Signal != "cloudflare" {
		t.Errorf("unexpected blocked error: %+v", be)
	}
	if IsBlocked(errors.New("other")) {
		t.Error("plain error reported as blocked")
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	te := NewTransientError(inner)
	if !errors.Is(te, inner) {
		t.Error("expected errors.Is to find inner error")
	}
	if te.Error() != "inner" {
		t.Errorf("Error() = %q", te.Error())
	}
}
