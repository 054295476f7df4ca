// Package stagedop drives multi-step ledger operations to completion and
// validates the stage sequence actually observed.
package stagedop

import (
	"context"
	"errors"
	"io"

	"github.com/loyaltyware/walletcore/internal/domain"
)

// Terminal identifies the stage sequence that marks one operation kind as
// completed: the expected stage count and the key of the last stage.
// Different operations have different counts and terminal keys, so the
// executor is parameterized per call site rather than by a global table.
type Terminal struct {
	Count int
	Key   string
}

// Executor runs one externally-defined staged operation at a time.
// It has no shared state of its own; the at-most-one-operation-per-screen
// policy is the caller's, enforced by disabling the triggering control.
type Executor struct {
	// Busy, when set, is raised for the duration of every Run and cleared
	// unconditionally on both success and failure paths.
	Busy domain.BusyGate
}

// NewExecutor creates an executor. busy may be nil.
func NewExecutor(busy domain.BusyGate) *Executor {
	return &Executor{Busy: busy}
}

// Run consumes the producer to exhaustion, collecting every stage in
// arrival order, then succeeds only if the collected count and the last
// stage key match term. A producer that ends early without failing is an
// IncompleteSequence, never a success: the transport completed but the
// operation did not reach its intended terminal stage.
//
// There is no mid-flight cancellation beyond ctx: once started the
// operation runs to exhaustion or transport failure, because a partially
// applied ledger operation must not be abandoned silently.
func (e *Executor) Run(ctx context.Context, p domain.StageProducer, term Terminal) ([]domain.OperationStage, error) {
	if e.Busy != nil {
		e.Busy.Set()
		defer e.Busy.Clear()
	}

	var stages []domain.OperationStage
	for {
		stage, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stages, &domain.OperationError{
				Kind:   domain.TransportFailure,
				Stages: stages,
				Cause:  err,
			}
		}
		stages = append(stages, stage)
	}

	if len(stages) == term.Count && term.Count > 0 && stages[len(stages)-1].Key == term.Key {
		return stages, nil
	}
	return stages, &domain.OperationError{
		Kind:   domain.IncompleteSequence,
		Stages: stages,
	}
}
