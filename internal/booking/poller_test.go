package booking

import (
	"context"
	"testing"
	"time"

	"github.com/wayfarerhq/wayfarer-backend/pkg/config"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type scriptedStatus struct {
	results []types.BookingStatus
	calls   int
}

func (s *scriptedStatus) Lookup(ctx context.Context, sessionID string) (*types.BookingStatus, error) {
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	result := s.results[idx]
	return &result, nil
}

func (s *scriptedStatus) Claim(ctx context.Context, sessionID string) (bool, error) {
	return true, nil
}

func (s *scriptedStatus) WriteFinal(ctx context.Context, sessionID string, status types.BookingStatus) error {
	return nil
}

func fastPollConfig(attempts int) config.BookingConfig {
	return config.BookingConfig{
		PollInitialDelay: time.Millisecond,
		PollMaxInterval:  4 * time.Millisecond,
		PollMaxAttempts:  attempts,
	}
}

func TestWaitResolvesOnTerminalStatus(t *testing.T) {
	status := &scriptedStatus{results: []types.BookingStatus{
		{Status: enums.BookingStateProcessing},
		{Status: enums.BookingStateProcessing},
		{Status: enums.BookingStateConfirmed, BookingReference: "ABC123"},
	}}
	poller, err := NewPoller(status, quietLogger(), fastPollConfig(8))
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	result, err := poller.Wait(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.TimedOut {
		t.Fatal("should not time out")
	}
	if result.Attempts != 3 {
		t.Fatalf("attempts = %d, want 3", result.Attempts)
	}
	if result.Status.BookingReference != "ABC123" {
		t.Fatalf("status = %+v", result.Status)
	}
}

func TestWaitTimesOutWhileStillProcessing(t *testing.T) {
	status := &scriptedStatus{results: []types.BookingStatus{
		{Status: enums.BookingStateProcessing},
	}}
	poller, err := NewPoller(status, quietLogger(), fastPollConfig(3))
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	result, err := poller.Wait(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !result.TimedOut {
		t.Fatal("expected timeout")
	}
	// A timeout is not a failure; the record stays processing.
	if result.Status.Status != enums.BookingStateProcessing {
		t.Fatalf("status = %s, want processing", result.Status.Status)
	}
	if status.calls != 3 {
		t.Fatalf("lookups = %d, want 3", status.calls)
	}
}

func TestWaitFailedIsTerminalNotTimeout(t *testing.T) {
	status := &scriptedStatus{results: []types.BookingStatus{
		{Status: enums.BookingStateFailed, Error: "offer expired"},
	}}
	poller, err := NewPoller(status, quietLogger(), fastPollConfig(8))
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	result, err := poller.Wait(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.TimedOut {
		t.Fatal("a failed booking is terminal, not a timeout")
	}
	if result.Status.Status != enums.BookingStateFailed {
		t.Fatalf("status = %s, want failed", result.Status.Status)
	}
	if result.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", result.Attempts)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	status := &scriptedStatus{results: []types.BookingStatus{
		{Status: enums.BookingStateProcessing},
	}}
	poller, err := NewPoller(status, quietLogger(), config.BookingConfig{
		PollInitialDelay: time.Minute,
		PollMaxInterval:  time.Minute,
		PollMaxAttempts:  8,
	})
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := poller.Wait(ctx, "cs_test_1"); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
