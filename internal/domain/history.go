package domain

// ActionKind classifies one entry of the merged transaction timeline.
type ActionKind string

const (
	ActionScheduled        ActionKind = "SCHEDULED"
	ActionProvided         ActionKind = "PROVIDED"
	ActionUsed             ActionKind = "USED"
	ActionCancelled        ActionKind = "CANCELLED"
	ActionSettlementOpened ActionKind = "SETTLEMENT_OPENED"
	ActionSettlementClosed ActionKind = "SETTLEMENT_CLOSED"
	ActionTransfer         ActionKind = "TRANSFER"
)

// Raw trade action codes as the backend reports them.
const (
	TradeActionProvide         = 1
	TradeActionUse             = 2
	TradeActionOpenSettlement  = 11
	TradeActionCloseSettlement = 12
)

// TradeRecord is a settled provide/use/cancel or settlement event as
// returned by the shop trade-history query. Amounts are raw integer
// magnitudes at point precision.
type TradeRecord struct {
	ID             string `json:"id"`
	Action         int    `json:"action"`
	Cancel         bool   `json:"cancel"`
	Increase       string `json:"increase"`
	ProvidedAmount string `json:"providedAmount"`
	Currency       string `json:"currency"`
	BlockTimestamp int64  `json:"blockTimestamp"`
}

// ScheduledRecord is an estimated future provide event.
type ScheduledRecord struct {
	PurchaseID     string `json:"purchaseId"`
	ProvidedAmount string `json:"providedAmount"`
	Currency       string `json:"currency"`
	Timestamp      int64  `json:"timestamp"`
}

// MainChainTransfer is one settled token transfer on the main chain.
// Value is a raw integer magnitude at token precision.
type MainChainTransfer struct {
	From           string `json:"from"`
	To             string `json:"to"`
	Value          string `json:"value"`
	BlockTimestamp int64  `json:"blockTimestamp"`
}

// HistoryRecord is one display-ready entry of the reconciled timeline.
// The amount is parsed at mapping time so the presentation layer performs
// no further parsing.
type HistoryRecord struct {
	ID        string
	Kind      ActionKind
	Amount    Amount
	Timestamp int64
	Currency  string
}
