package domain

import (
	"context"
	"time"
)

// Summary describes the balances and fees bound to one wallet address.
// Balance and fee fields are raw integer magnitudes.
type Summary struct {
	TokenName        string `json:"tokenName"`
	TokenSymbol      string `json:"tokenSymbol"`
	Currency         string `json:"currency"`
	MainChainBalance string `json:"mainChainBalance"`
	LedgerBalance    string `json:"ledgerBalance"`
	TransferFee      string `json:"transferFee"`
}

// ShopUpdateTask is a pending shop-update approval delivered through an
// external notification. It is valid until Timestamp+Timeout (unix seconds).
type ShopUpdateTask struct {
	TaskID    string `json:"taskId"`
	ShopID    string `json:"shopId"`
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Timestamp int64  `json:"timestamp"`
	Timeout   int64  `json:"timeout"`
}

// LinkClient drives phone-number verification against the link relay.
type LinkClient interface {
	// RegisterPhone starts a verification for the formatted phone number.
	RegisterPhone(ctx context.Context, phone string) StageProducer

	// SubmitCode submits the one-time code for a pending verification.
	SubmitCode(ctx context.Context, requestID, code string) StageProducer
}

// ShopClient drives shop registration, update approval and history queries.
type ShopClient interface {
	AddShop(ctx context.Context, shopID, name, currency string) StageProducer
	ApproveUpdate(ctx context.Context, taskID, shopID string, approve bool) StageProducer
	TaskDetail(ctx context.Context, taskID string) (*ShopUpdateTask, error)

	// ScheduledProvideHistory returns estimated future provide events.
	ScheduledProvideHistory(ctx context.Context, shopID string) ([]ScheduledRecord, error)

	// TradeHistory returns settled trade records with raw action codes.
	TradeHistory(ctx context.Context, shopID string) ([]TradeRecord, error)
}

// LedgerClient exposes balance queries and transfer operations.
type LedgerClient interface {
	Summary(ctx context.Context, address string) (*Summary, error)

	// UnpayablePointBalance returns the raw point balance still bound to
	// a phone number instead of a wallet address.
	UnpayablePointBalance(ctx context.Context, phone string) (string, error)

	// ChangeToPayablePoint converts phone-bound points to the wallet.
	ChangeToPayablePoint(ctx context.Context, phone string) StageProducer

	Transfer(ctx context.Context, to, rawAmount string) StageProducer
	TransferMainChain(ctx context.Context, to, rawAmount string) StageProducer

	MainChainTransferHistory(ctx context.Context, address string) ([]MainChainTransfer, error)
}

// SecretStore holds the wallet's private key material and derived address.
type SecretStore interface {
	SaveKey(address, privateKeyHex string) error
	LoadKey() (address, privateKeyHex string, err error)
	Address() (string, error)
}

// Navigator is the sink the session-lock controller routes through after
// a successful unlock.
type Navigator interface {
	Navigate(screen string)
}

// Clock supplies wall-clock time. Now may fail when the host clock is not
// readable; callers that gate security decisions on elapsed time must
// fail safe in that case.
type Clock interface {
	Now() (time.Time, error)
}

// BusyGate marks the caller busy for the duration of a staged operation.
// Clear is guaranteed to run on both success and failure paths.
type BusyGate interface {
	Set()
	Clear()
}
