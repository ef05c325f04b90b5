package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func fastResilient(retries int) *Resilient {
	return NewResilient(ResilientOptions{Timeout: time.Second, Retries: retries, Backoff: time.Millisecond})
}

func TestCallRetriesTransientFailures(t *testing.T) {
	calls := 0
	got, err := Call(context.Background(), fastResilient(3), "test", func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, status.Error(codes.Unavailable, "try again")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Fatalf("expected 42 after 3 calls, got %d after %d", got, calls)
	}
}

func TestCallExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := Call(context.Background(), fastResilient(2), "sentiment", func(ctx context.Context) (int, error) {
		calls++
		return 0, status.Error(codes.ResourceExhausted, "quota")
	})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	var mu *ModelUnavailableError
	if !errors.As(err, &mu) {
		t.Fatalf("expected *ModelUnavailableError, got %T", err)
	}
	if mu.Attempts != 3 || calls != 3 {
		t.Errorf("expected 3 attempts, got %d (calls %d)", mu.Attempts, calls)
	}
	if mu.Service != "sentiment" {
		t.Errorf("expected service name to be kept, got %s", mu.Service)
	}
	if status.Code(errors.Unwrap(err)) != codes.ResourceExhausted {
		t.Errorf("expected last error to be wrapped")
	}
}

func TestCallStopsOnPermanentErrors(t *testing.T) {
	for name, failure := range map[string]error{
		"permanent":        Permanent(errors.New("bad response")),
		"invalid argument": status.Error(codes.InvalidArgument, "document too large"),
	} {
		calls := 0
		_, err := Call(context.Background(), fastResilient(5), "syntax", func(ctx context.Context) (string, error) {
			calls++
			return "", failure
		})
		if !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("%s: expected ErrModelUnavailable, got %v", name, err)
		}
		if calls != 1 {
			t.Errorf("%s: expected a single attempt, got %d", name, calls)
		}
	}
}

func TestCallAppliesPerCallTimeout(t *testing.T) {
	r := NewResilient(ResilientOptions{Timeout: 5 * time.Millisecond, Retries: 1, Backoff: time.Millisecond})
	calls := 0
	_, err := Call(context.Background(), r, "entities", func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, ErrModelUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected unavailable deadline error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("timeouts are transient, expected 2 attempts, got %d", calls)
	}
}

func TestCallHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Call(ctx, fastResilient(3), "sentiment", func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("no call should be made on a cancelled context, got %d", calls)
	}
}
