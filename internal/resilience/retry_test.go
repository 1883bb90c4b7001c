package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		Operation:      "test operation",
		MaxAttempts:    maxAttempts,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastConfig(4), func(_ context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoVal_FailsTwiceThenSucceeds(t *testing.T) {
	// Three retries allowed: the operation is invoked exactly three times
	// and the success value comes through.
	var calls int
	val, err := DoVal(context.Background(), fastConfig(4), func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(errors.New("temporary"), 503)
		}
		return "quote ready", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "quote ready" {
		t.Errorf("expected success value, got %q", val)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_AlwaysFails_ExhaustsAttempts(t *testing.T) {
	// Two retries: one initial attempt plus two retries, three invocations.
	var calls int
	err := Do(context.Background(), fastConfig(3), func(_ context.Context) error {
		calls++
		return NewTransientError(errors.New("always fails"), 500)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls (1 initial + 2 retries), got %d", calls)
	}
}

func TestDo_SurfacesLastError(t *testing.T) {
	sentinel := errors.New("final failure")
	err := Do(context.Background(), fastConfig(2), func(_ context.Context) error {
		return NewTransientError(sentinel, 502)
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected last observed error in chain, got %v", err)
	}
}

func TestDo_NonTransientError_NoRetry(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastConfig(4), func(_ context.Context) error {
		calls++
		return errors.New("permanent error: bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call (no retry for non-transient), got %d", calls)
	}
}

func TestDo_TimeoutErrorIsRetried(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastConfig(2), func(_ context.Context) error {
		calls++
		return NewTimeoutError("llm completion", 60*time.Second)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("expected 2 calls (timeouts are transient), got %d", calls)
	}
}

func TestDo_ContextCancelled_StopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	cfg := fastConfig(5)
	cfg.InitialBackoff = 50 * time.Millisecond

	err := Do(ctx, cfg, func(_ context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return NewTransientError(errors.New("fail"), 500)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls > 3 {
		t.Errorf("expected <= 3 calls after cancel, got %d", calls)
	}
}

func TestDo_CustomShouldRetry(t *testing.T) {
	var calls int
	cfg := fastConfig(4)
	cfg.ShouldRetry = func(err error) bool {
		return err.Error() == "retry me"
	}

	err := Do(context.Background(), cfg, func(_ context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("retry me")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestDefaultRetryConfig_DeterministicSequence(t *testing.T) {
	// The default policy is 2s, 4s, 8s with no jitter.
	cfg := applyDefaults(DefaultRetryConfig())

	delays := []time.Duration{
		computeBackoff(0, cfg),
		computeBackoff(1, cfg),
		computeBackoff(2, cfg),
	}
	expected := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, d := range delays {
		if d != expected[i] {
			t.Errorf("retry %d: expected %v, got %v", i+1, expected[i], d)
		}
	}
}

func TestComputeBackoff_CapsAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     5 * time.Second,
		Multiplier:     10.0,
	})

	if d := computeBackoff(5, cfg); d > 5*time.Second {
		t.Errorf("expected delay capped at 5s, got %v", d)
	}
}

func TestComputeBackoff_WithJitter(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.5,
	})

	seen := make(map[time.Duration]bool)
	for i := 0; i < 100; i++ {
		d := computeBackoff(0, cfg)
		seen[d] = true
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Errorf("delay %v outside expected range [500ms, 1500ms]", d)
		}
	}
	if len(seen) < 2 {
		t.Error("expected jitter to produce varying delays")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(3, 2000, 0, 0)
	if cfg.MaxAttempts != 4 {
		t.Errorf("expected 4 attempts for 3 retries, got %d", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != 2*time.Second {
		t.Errorf("expected 2s initial backoff, got %v", cfg.InitialBackoff)
	}
	if cfg.JitterFraction != 0 {
		t.Errorf("expected zero jitter by default, got %v", cfg.JitterFraction)
	}
}

func TestFromConfigZeroDisablesRetries(t *testing.T) {
	cfg := FromConfig(0, 2000, 0, 0)
	if cfg.MaxAttempts != 1 {
		t.Errorf("expected 1 attempt for 0 retries, got %d", cfg.MaxAttempts)
	}

	calls := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return NewTransientError(errors.New("boom"), 503)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 invocation with retries disabled, got %d", calls)
	}
}

func TestFromConfigNegativeKeepsDefault(t *testing.T) {
	cfg := FromConfig(-1, 0, 0, 0)
	if cfg.MaxAttempts != 4 {
		t.Errorf("expected default 4 attempts for negative retries, got %d", cfg.MaxAttempts)
	}
}
