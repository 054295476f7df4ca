package domain

import (
	"encoding/json"
	"fmt"
)

// OperationErrorKind classifies how a staged operation failed.
type OperationErrorKind string

const (
	// TransportFailure means the producer itself failed before the
	// sequence was exhausted.
	TransportFailure OperationErrorKind = "transport_failure"
	// IncompleteSequence means the producer completed without reaching
	// the expected terminal stage. No transport error occurred, yet the
	// business outcome did not happen.
	IncompleteSequence OperationErrorKind = "incomplete_sequence"
)

// OperationError reports a failed staged operation together with every
// stage collected before the failure, so the payload can be copied
// verbatim into a support diagnostics buffer.
type OperationError struct {
	Kind   OperationErrorKind
	Stages []OperationStage
	Cause  error
}

func (e *OperationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("staged operation failed (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("staged operation failed (%s): %d stage(s) collected", e.Kind, len(e.Stages))
}

func (e *OperationError) Unwrap() error { return e.Cause }

// Diagnostic renders the failure as a JSON payload for the user-support
// side channel.
func (e *OperationError) Diagnostic() string {
	payload := struct {
		Kind   OperationErrorKind `json:"kind"`
		Stages []OperationStage   `json:"stages"`
		Cause  string             `json:"cause,omitempty"`
	}{Kind: e.Kind, Stages: e.Stages}
	if e.Cause != nil {
		payload.Cause = e.Cause.Error()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return e.Error()
	}
	return string(b)
}
