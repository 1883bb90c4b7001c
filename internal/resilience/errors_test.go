package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsTransient_TransientError(t *testing.T) {
	err := NewTransientError(errors.New("rate limited"), 429)
	if !IsTransient(err) {
		t.Error("expected TransientError to be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	inner := NewTransientError(errors.New("overloaded"), 503)
	wrapped := fmt.Errorf("llm call: %w", inner)
	if !IsTransient(wrapped) {
		t.Error("expected wrapped TransientError to be transient")
	}
}

func TestIsTransient_TimeoutError(t *testing.T) {
	err := NewTimeoutError("budget research", time.Minute)
	if !IsTransient(err) {
		t.Error("expected TimeoutError to be transient")
	}
}

func TestIsTransient_DeadlineExceeded(t *testing.T) {
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("expected deadline exceeded to be transient")
	}
}

func TestIsTransient_PlainError(t *testing.T) {
	if IsTransient(errors.New("invalid request body")) {
		t.Error("expected plain error to be non-transient")
	}
}

func TestIsTransient_NetworkPattern(t *testing.T) {
	err := errors.New("read tcp: connection reset by peer")
	if !IsTransient(err) {
		t.Error("expected connection reset to be transient")
	}
}

func TestIsTransient_Nil(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(NewTimeoutError("call", time.Second)) {
		t.Error("expected TimeoutError to report timeout")
	}
	if IsTimeout(errors.New("boom")) {
		t.Error("plain error is not a timeout")
	}
	if IsTimeout(nil) {
		t.Error("nil is not a timeout")
	}
}

func TestTimeoutError_Message(t *testing.T) {
	err := NewTimeoutError("cost proposal generation", 60*time.Second)
	want := "cost proposal generation timed out after 1m0s"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be transient", code)
		}
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected %d to be non-transient", code)
		}
	}
}
