package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	pkgredis "github.com/wayfarerhq/wayfarer-backend/pkg/redis"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// StatusService reads and writes the per-session booking outcome record.
// A session with no record yet reads as processing; confirmed and failed
// are final and written exactly once.
type StatusService interface {
	Lookup(ctx context.Context, sessionID string) (*types.BookingStatus, error)
	Claim(ctx context.Context, sessionID string) (bool, error)
	WriteFinal(ctx context.Context, sessionID string, status types.BookingStatus) error
}

type statusService struct {
	store pkgredis.StatusStore
	logg  *logger.Logger
	ttl   time.Duration
}

// NewStatusService builds the status record service.
func NewStatusService(store pkgredis.StatusStore, logg *logger.Logger, ttl time.Duration) (StatusService, error) {
	if store == nil {
		return nil, fmt.Errorf("status store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &statusService{store: store, logg: logg, ttl: ttl}, nil
}

// Lookup returns the session's booking record. An absent record means the
// payment is still being processed, never an error.
func (s *statusService) Lookup(ctx context.Context, sessionID string) (*types.BookingStatus, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	var status types.BookingStatus
	if err := s.store.GetJSON(ctx, s.store.BookingStatusKey(sessionID), &status); err != nil {
		if errors.Is(err, pkgredis.ErrNotFound) {
			return &types.BookingStatus{Status: enums.BookingStateProcessing}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read booking status")
	}
	return &status, nil
}

// Claim atomically marks the session as being processed. The first caller
// wins; repeat deliveries of the same payment event observe an existing
// claim and must not book again.
func (s *statusService) Claim(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	claim := types.BookingStatus{
		Status:    enums.BookingStateProcessing,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(claim)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode claim")
	}

	ok, err := s.store.SetNX(ctx, s.store.BookingStatusKey(sessionID), payload, s.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim booking session")
	}
	return ok, nil
}

// WriteFinal overwrites the claim with the terminal outcome.
func (s *statusService) WriteFinal(ctx context.Context, sessionID string, status types.BookingStatus) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if !status.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("status %q is not terminal", status.Status))
	}
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now().UTC()
	}

	if err := s.store.SetJSON(ctx, s.store.BookingStatusKey(sessionID), status, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write booking status")
	}

	lctx := s.logg.WithSessionID(ctx, sessionID)
	s.logg.Info(lctx, fmt.Sprintf("booking status finalized: %s", status.Status))
	return nil
}
