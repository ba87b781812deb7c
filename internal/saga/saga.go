// Package saga runs a workflow as an ordered list of steps, each paired with a
// compensation that undoes it. When a step fails, the completed steps are
// compensated in reverse order.
package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"camera-rental-backend/internal/logger"
)

// Step is one unit of work in a saga. Compensate may be nil for steps that leave
// nothing behind.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Error reports the step that failed and any compensation that failed after it.
type Error struct {
	Saga               string
	Step               string
	Err                error
	CompensationErrors []error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("saga %s: step %s: %v", e.Saga, e.Step, e.Err)
	if len(e.CompensationErrors) > 0 {
		parts := make([]string, len(e.CompensationErrors))
		for i, ce := range e.CompensationErrors {
			parts[i] = ce.Error()
		}
		msg += fmt.Sprintf(" (compensation failed: %s)", strings.Join(parts, "; "))
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CompensationFailed reports whether err is a saga error that left state behind.
func CompensationFailed(err error) bool {
	var se *Error
	return errors.As(err, &se) && len(se.CompensationErrors) > 0
}

// Observer is notified of compensation failures.
type Observer func(saga, step string)

type Saga struct {
	name       string
	steps      []Step
	onCompFail Observer
}

func New(name string) *Saga {
	return &Saga{name: name}
}

func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// OnCompensationFailure registers a callback invoked for every failed compensation.
func (s *Saga) OnCompensationFailure(fn Observer) *Saga {
	s.onCompFail = fn
	return s
}

// Execute runs the steps in order. Compensations run on a context detached from
// ctx's cancellation so a cancelled request still rolls back.
func (s *Saga) Execute(ctx context.Context) error {
	log := logger.WithService("saga").With("saga", s.name)

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return s.rollback(ctx, i, step.Name, err)
		}
		log.Debug("Running saga step", "step", step.Name)
		if err := step.Action(ctx); err != nil {
			log.Warn("Saga step failed", "step", step.Name, "error", err)
			return s.rollback(ctx, i, step.Name, err)
		}
	}
	return nil
}

// rollback compensates steps [0, failed) in reverse order.
func (s *Saga) rollback(ctx context.Context, failed int, stepName string, cause error) error {
	log := logger.WithService("saga").With("saga", s.name)
	compCtx := context.WithoutCancel(ctx)

	sagaErr := &Error{Saga: s.name, Step: stepName, Err: cause}
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(compCtx); err != nil {
			log.Error("Saga compensation failed", "step", step.Name, "error", err)
			sagaErr.CompensationErrors = append(sagaErr.CompensationErrors, fmt.Errorf("%s: %w", step.Name, err))
			if s.onCompFail != nil {
				s.onCompFail(s.name, step.Name)
			}
			continue
		}
		log.Debug("Saga step compensated", "step", step.Name)
	}
	return sagaErr
}
