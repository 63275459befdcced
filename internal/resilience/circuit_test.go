package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sells-group/interview-crawler/internal/config"
)

func failN(cb *CircuitBreaker, n int, err error) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(context.Background(), func(_ context.Context) error { return err })
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Minute})
	failN(cb, 3, errors.New("timeout"))

	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}
	err := cb.Execute(context.Background(), func(_ context.Context) error {
		t.Error("should not be called when circuit is open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	failN(cb, 2, errors.New("timeout"))
	failN(cb, 1, nil)
	if cb.Failures() != 0 {
		t.Errorf("expected failures reset, got %d", cb.Failures())
	}
	failN(cb, 2, errors.New("timeout"))
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	cb.nowFunc = func() time.Time { return now }

	failN(cb, 1, errors.New("blocked"))
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	now = now.Add(2 * time.Minute)
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.State())
	}

	// A failed probe reopens.
	failN(cb, 1, errors.New("blocked"))
	if cb.State() != CircuitOpen {
		t.Fatalf("expected reopened, got %s", cb.State())
	}

	now = now.Add(2 * time.Minute)
	failN(cb, 1, nil)
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successful probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_ShouldTripAndStateChange(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ShouldTrip:       IsTransient,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	failN(cb, 3, errors.New("unknown site"))
	if cb.State() != CircuitClosed {
		t.Fatalf("non-tripping errors must not open the circuit, got %s", cb.State())
	}

	failN(cb, 1, context.DeadlineExceeded)
	cb.Reset()
	want := []string{"closed->open", "open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestExecuteVal(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())
	n, err := ExecuteVal(context.Background(), cb, func(_ context.Context) (int, error) { return 7, nil })
	if err != nil || n != 7 {
		t.Errorf("got (%d, %v), want (7, nil)", n, err)
	}
}

func TestServiceBreakers(t *testing.T) {
	sb := NewServiceBreakers(CircuitBreakerConfig{FailureThreshold: 1})
	if sb.Get("nowcoder") != sb.Get("nowcoder") {
		t.Fatal("expected the same breaker for one site")
	}
	failN(sb.Get("zhihu"), 1, errors.New("captcha"))

	snap := sb.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 breakers, got %d", len(snap))
	}
	if snap[0].Site != "nowcoder" || snap[0].State != "closed" {
		t.Errorf("unexpected first entry %+v", snap[0])
	}
	if snap[1].Site != "zhihu" || snap[1].State != "open" || snap[1].Failures != 1 {
		t.Errorf("unexpected second entry %+v", snap[1])
	}
}

func TestServiceBreakers_Concurrent(t *testing.T) {
	sb := NewServiceBreakers(DefaultCircuitBreakerConfig())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sb.Get("juejin").Execute(context.Background(), func(_ context.Context) error { return nil })
		}()
	}
	wg.Wait()
	if len(sb.Snapshot()) != 1 {
		t.Error("expected a single breaker")
	}
}

func TestBreakerConfigFor(t *testing.T) {
	bc := BreakerConfigFor(config.CrawlConfig{BreakerThreshold: 2, BreakerResetSecs: 60})
	if bc.FailureThreshold != 2 || bc.ResetTimeout != time.Minute {
		t.Errorf("unexpected config %+v", bc)
	}
	if !bc.ShouldTrip(NewBlockedError("csdn", "captcha")) {
		t.Error("blocked pages should trip")
	}
	if bc.ShouldTrip(errors.New("unknown site")) {
		t.Error("configuration errors should not trip")
	}
}
