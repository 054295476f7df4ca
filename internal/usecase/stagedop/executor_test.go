package stagedop

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loyaltyware/walletcore/internal/domain"
)

// sliceProducer replays a fixed stage sequence and then fails with
// failErr, or ends cleanly when failErr is nil.
type sliceProducer struct {
	stages  []domain.OperationStage
	failErr error
	pos     int
}

func (p *sliceProducer) Next(ctx context.Context) (domain.OperationStage, error) {
	if p.pos >= len(p.stages) {
		if p.failErr != nil {
			return domain.OperationStage{}, p.failErr
		}
		return domain.OperationStage{}, io.EOF
	}
	stage := p.stages[p.pos]
	p.pos++
	return stage, nil
}

// countingGate records busy transitions.
type countingGate struct {
	sets, clears int
}

func (g *countingGate) Set()   { g.sets++ }
func (g *countingGate) Clear() { g.clears++ }

func requestedSequence() []domain.OperationStage {
	return []domain.OperationStage{
		{Key: domain.StagePrepared},
		{Key: domain.StageRequested, RequestID: "req-1"},
	}
}

func TestRun_TerminalStageReached(t *testing.T) {
	exec := NewExecutor(nil)

	stages, err := exec.Run(context.Background(),
		&sliceProducer{stages: requestedSequence()},
		Terminal{Count: 2, Key: domain.StageRequested})

	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, domain.StageRequested, stages[1].Key)
	assert.Equal(t, "req-1", stages[1].RequestID)
}

func TestRun_ShortSequenceIsIncomplete(t *testing.T) {
	exec := NewExecutor(nil)

	// Same producer output, stricter expectation: the producer ended
	// without throwing, but that is not success.
	stages, err := exec.Run(context.Background(),
		&sliceProducer{stages: requestedSequence()},
		Terminal{Count: 3, Key: domain.StageRequested})

	require.Error(t, err)
	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, domain.IncompleteSequence, opErr.Kind)
	assert.Len(t, opErr.Stages, 2)
	assert.Len(t, stages, 2)
}

func TestRun_WrongTerminalKeyIsIncomplete(t *testing.T) {
	exec := NewExecutor(nil)

	_, err := exec.Run(context.Background(),
		&sliceProducer{stages: requestedSequence()},
		Terminal{Count: 2, Key: domain.StageDone})

	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, domain.IncompleteSequence, opErr.Kind)
}

func TestRun_EmptySequenceIsIncomplete(t *testing.T) {
	exec := NewExecutor(nil)

	_, err := exec.Run(context.Background(),
		&sliceProducer{},
		Terminal{Count: 2, Key: domain.StageRequested})

	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, domain.IncompleteSequence, opErr.Kind)
	assert.Empty(t, opErr.Stages)
}

func TestRun_ProducerFailureIsTransport(t *testing.T) {
	exec := NewExecutor(nil)
	cause := errors.New("relay unreachable")

	_, err := exec.Run(context.Background(),
		&sliceProducer{stages: requestedSequence()[:1], failErr: cause},
		Terminal{Count: 2, Key: domain.StageRequested})

	var opErr *domain.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, domain.TransportFailure, opErr.Kind)
	assert.ErrorIs(t, err, cause)
	// The partial sequence is preserved for diagnostics.
	assert.Len(t, opErr.Stages, 1)
}

func TestRun_BusyClearedOnBothPaths(t *testing.T) {
	gate := &countingGate{}
	exec := NewExecutor(gate)

	_, err := exec.Run(context.Background(),
		&sliceProducer{stages: requestedSequence()},
		Terminal{Count: 2, Key: domain.StageRequested})
	require.NoError(t, err)

	_, err = exec.Run(context.Background(),
		&sliceProducer{failErr: errors.New("boom")},
		Terminal{Count: 2, Key: domain.StageRequested})
	require.Error(t, err)

	assert.Equal(t, 2, gate.sets)
	assert.Equal(t, 2, gate.clears)
}

func TestOperationError_DiagnosticIsVerbatimJSON(t *testing.T) {
	opErr := &domain.OperationError{
		Kind:   domain.IncompleteSequence,
		Stages: requestedSequence(),
	}

	diag := opErr.Diagnostic()
	assert.Contains(t, diag, `"kind":"incomplete_sequence"`)
	assert.Contains(t, diag, `"requestId":"req-1"`)
}
