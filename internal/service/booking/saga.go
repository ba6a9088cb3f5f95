package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
)

const (
	compensationAttempts = 5
	compensationBackoff  = 50 * time.Millisecond
)

type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// saga records undo steps for a multi-step operation. rollback runs them in
// reverse order of registration.
type saga struct {
	steps    []compensation
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

func newSaga(log *slog.Logger) *saga {
	return &saga{attempts: compensationAttempts, backoff: compensationBackoff, log: log}
}

func (s *saga) add(name string, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, compensation{name: name, undo: undo})
}

// rollback keeps going past failed steps and returns all their errors. It
// ignores cancellation of ctx so a dropped request cannot leave half the
// steps undone. A step that hits a busy flight lock is retried with a
// growing pause, up to s.attempts tries.
func (s *saga) rollback(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := s.run(ctx, step); err != nil {
			s.log.Error("compensation failed", "step", step.name, "error", err)
			errs = append(errs, err)
			continue
		}
		s.log.Info("compensation applied", "step", step.name)
	}
	s.steps = nil
	return errors.Join(errs...)
}

func (s *saga) run(ctx context.Context, step compensation) error {
	var err error
	attempts := max(s.attempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = step.undo(ctx); err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt == attempts {
			break
		}
		s.log.Warn("compensation hit a busy flight, retrying", "step", step.name, "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * s.backoff)
	}
	return err
}
