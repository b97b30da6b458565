package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func newTestDispatcher(retries int) *Dispatcher {
	return NewDispatcher(Options{
		Workers:      1,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
		MaxDuration:  time.Second,
	})
}

func TestDoRetriesTransientErrors(t *testing.T) {
	d := newTestDispatcher(2)
	defer d.Close()

	var calls atomic.Int32
	err := d.Do(context.Background(), "send", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return timeoutErr{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("expected no failures, got %d", d.ErrorCount())
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	d := newTestDispatcher(3)
	defer d.Close()

	boom := errors.New("telegram: chat not found (400)")
	var calls atomic.Int32
	err := d.Do(context.Background(), "send", "sendMessage", func() error {
		calls.Add(1)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("expected one failure, got %d", d.ErrorCount())
	}
}

func TestDoNotModifiedIsNotCounted(t *testing.T) {
	d := newTestDispatcher(0)
	defer d.Close()

	err := d.Do(context.Background(), "edit", "editMessageText", func() error {
		return errors.New("telegram: Bad Request: message is not modified (400)")
	})
	if !IsNotModified(err) {
		t.Fatalf("expected not-modified error, got %v", err)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("not-modified must not count as failure")
	}
}

func TestEnqueueRunsAsync(t *testing.T) {
	d := newTestDispatcher(0)
	done := make(chan struct{})
	if err := d.Enqueue(context.Background(), "answer", "answerCallbackQuery", func() error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job was not executed")
	}
	d.Close()

	if err := d.Enqueue(context.Background(), "answer", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	if err := d.Do(context.Background(), "answer", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed from Do, got %v", err)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:ABC-def_1/sendMessage": timeout`)
	got := sanitizeErrorMessage(err)
	if got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout` {
		t.Fatalf("token leaked: %s", got)
	}
}
