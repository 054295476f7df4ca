package domain

import "context"

// Stage keys the relay emits. Sequences are operation-specific; only the
// call site knows which key and count mark success.
const (
	StagePrepared  = "prepared"
	StageSent      = "sent"
	StageRequested = "requested"
	StageAccepted  = "accepted"
	StageApproved  = "approved"
	StageDone      = "done"
)

// OperationStage is one progress notification in the ordered sequence a
// multi-step ledger operation yields. The last stage key observed is the
// authoritative success marker, not the absence of a transport error.
type OperationStage struct {
	Key       string `json:"key"`
	RequestID string `json:"requestId,omitempty"`
	TxHash    string `json:"txHash,omitempty"`
}

// StageProducer yields the stages of one in-flight operation in arrival
// order. Next blocks until the next stage is available and returns io.EOF
// once the sequence is exhausted. Producers are single-use.
type StageProducer interface {
	Next(ctx context.Context) (OperationStage, error)
}
