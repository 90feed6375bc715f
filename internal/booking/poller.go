package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/wayfarerhq/wayfarer-backend/pkg/config"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// PollResult is the outcome of waiting for a booking to resolve. TimedOut
// reports that the attempt budget ran out while the session was still
// processing; the booking itself may yet confirm, so a timeout is never
// recorded as a failure.
type PollResult struct {
	Status   *types.BookingStatus
	Attempts int
	TimedOut bool
}

// Poller repeatedly checks a session's booking record until it reaches a
// terminal state, with exponential backoff between attempts.
type Poller struct {
	status       StatusService
	logg         *logger.Logger
	initialDelay time.Duration
	maxInterval  time.Duration
	maxAttempts  int
}

// NewPoller builds a poller from the booking configuration.
func NewPoller(status StatusService, logg *logger.Logger, cfg config.BookingConfig) (*Poller, error) {
	if status == nil {
		return nil, fmt.Errorf("status service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	initial := cfg.PollInitialDelay
	if initial <= 0 {
		initial = 2 * time.Second
	}
	maxInterval := cfg.PollMaxInterval
	if maxInterval <= 0 {
		maxInterval = 10 * time.Second
	}
	attempts := cfg.PollMaxAttempts
	if attempts <= 0 {
		attempts = 8
	}

	return &Poller{
		status:       status,
		logg:         logg,
		initialDelay: initial,
		maxInterval:  maxInterval,
		maxAttempts:  attempts,
	}, nil
}

// Wait polls until the record turns terminal, the attempt budget is spent,
// or the context is canceled. Each attempt doubles the delay before the
// next one, capped at the configured maximum.
func (p *Poller) Wait(ctx context.Context, sessionID string) (*PollResult, error) {
	delay := p.initialDelay
	lctx := p.logg.WithSessionID(ctx, sessionID)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.status.Lookup(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if status.Status.IsTerminal() {
			return &PollResult{Status: status, Attempts: attempt}, nil
		}
		if attempt == p.maxAttempts {
			break
		}

		p.logg.Info(lctx, fmt.Sprintf("booking still processing, retrying in %s (attempt %d/%d)",
			delay, attempt, p.maxAttempts))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > p.maxInterval {
			delay = p.maxInterval
		}
	}

	p.logg.Warn(lctx, fmt.Sprintf("booking unresolved after %d attempts", p.maxAttempts))
	return &PollResult{
		Status:   &types.BookingStatus{Status: enums.BookingStateProcessing},
		Attempts: p.maxAttempts,
		TimedOut: true,
	}, nil
}
