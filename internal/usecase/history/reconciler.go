// Package history merges the heterogeneous event collections the ledger
// backend returns into one consistently ordered, classified timeline.
package history

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/loyaltyware/walletcore/internal/domain"
)

// Service materializes display-ready timelines on demand.
type Service struct {
	shop   domain.ShopClient
	ledger domain.LedgerClient

	// activeCurrency is attached to records whose source omits a
	// currency field.
	activeCurrency string
}

// NewService creates a history service bound to the caller's active
// currency context.
func NewService(shop domain.ShopClient, ledger domain.LedgerClient, activeCurrency string) *Service {
	return &Service{shop: shop, ledger: ledger, activeCurrency: activeCurrency}
}

// ProvideTimeline merges scheduled provide estimates with settled
// provide/use/cancel trades for one shop. An empty result is a valid
// state, not an error.
func (s *Service) ProvideTimeline(ctx context.Context, shopID string) ([]domain.HistoryRecord, error) {
	estimates, err := s.shop.ScheduledProvideHistory(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("scheduled provide history: %w", err)
	}
	trades, err := s.shop.TradeHistory(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("trade history: %w", err)
	}

	scheduled, err := MapScheduled(estimates, s.activeCurrency)
	if err != nil {
		return nil, err
	}
	settled, err := MapTrades(trades, s.activeCurrency)
	if err != nil {
		return nil, err
	}
	return Merge(scheduled, settled), nil
}

// SettlementTimeline classifies withdrawal open/close events for one shop.
func (s *Service) SettlementTimeline(ctx context.Context, shopID string) ([]domain.HistoryRecord, error) {
	trades, err := s.shop.TradeHistory(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("trade history: %w", err)
	}
	settlements, err := MapSettlements(trades, s.activeCurrency)
	if err != nil {
		return nil, err
	}
	return Merge(settlements), nil
}

// TransferTimeline lists settled main-chain token transfers for an address.
func (s *Service) TransferTimeline(ctx context.Context, address string) ([]domain.HistoryRecord, error) {
	items, err := s.ledger.MainChainTransferHistory(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("main chain transfer history: %w", err)
	}
	transfers, err := MapTransfers(items, s.activeCurrency)
	if err != nil {
		return nil, err
	}
	return Merge(transfers), nil
}

// MapScheduled classifies estimated future provide events. Scheduled
// records always classify as SCHEDULED.
func MapScheduled(records []domain.ScheduledRecord, fallbackCurrency string) ([]domain.HistoryRecord, error) {
	out := make([]domain.HistoryRecord, 0, len(records))
	for _, r := range records {
		amount, err := domain.AmountFromRaw(r.ProvidedAmount, domain.PointDecimals)
		if err != nil {
			return nil, fmt.Errorf("scheduled record %q: %w", r.PurchaseID, err)
		}
		out = append(out, domain.HistoryRecord{
			ID:        strconv.FormatInt(r.Timestamp, 10) + r.PurchaseID,
			Kind:      domain.ActionScheduled,
			Amount:    amount,
			Timestamp: r.Timestamp,
			Currency:  currencyOr(r.Currency, fallbackCurrency),
		})
	}
	return out, nil
}

// MapTrades classifies settled provide/use records: action 1 is PROVIDED,
// action 2 is USED unless the cancel flag is set, which makes it
// CANCELLED. Other action codes belong to other timelines and are skipped.
func MapTrades(records []domain.TradeRecord, fallbackCurrency string) ([]domain.HistoryRecord, error) {
	out := make([]domain.HistoryRecord, 0, len(records))
	for _, r := range records {
		var kind domain.ActionKind
		var raw string
		switch r.Action {
		case domain.TradeActionProvide:
			kind = domain.ActionProvided
			raw = r.ProvidedAmount
		case domain.TradeActionUse:
			kind = domain.ActionUsed
			if r.Cancel {
				kind = domain.ActionCancelled
			}
			raw = r.Increase
		default:
			continue
		}
		amount, err := domain.AmountFromRaw(raw, domain.PointDecimals)
		if err != nil {
			return nil, fmt.Errorf("trade record %q: %w", r.ID, err)
		}
		out = append(out, domain.HistoryRecord{
			ID:        r.ID,
			Kind:      kind,
			Amount:    amount,
			Timestamp: r.BlockTimestamp,
			Currency:  currencyOr(r.Currency, fallbackCurrency),
		})
	}
	return out, nil
}

// MapSettlements classifies withdrawal events: action 11 opens a
// settlement, action 12 closes one.
func MapSettlements(records []domain.TradeRecord, fallbackCurrency string) ([]domain.HistoryRecord, error) {
	out := make([]domain.HistoryRecord, 0, len(records))
	for _, r := range records {
		var kind domain.ActionKind
		switch r.Action {
		case domain.TradeActionOpenSettlement:
			kind = domain.ActionSettlementOpened
		case domain.TradeActionCloseSettlement:
			kind = domain.ActionSettlementClosed
		default:
			continue
		}
		amount, err := domain.AmountFromRaw(r.Increase, domain.PointDecimals)
		if err != nil {
			return nil, fmt.Errorf("settlement record %q: %w", r.ID, err)
		}
		out = append(out, domain.HistoryRecord{
			ID:        r.ID,
			Kind:      kind,
			Amount:    amount,
			Timestamp: r.BlockTimestamp,
			Currency:  currencyOr(r.Currency, fallbackCurrency),
		})
	}
	return out, nil
}

// MapTransfers converts main-chain transfers, which carry token-precision
// values and no currency of their own.
func MapTransfers(items []domain.MainChainTransfer, fallbackCurrency string) ([]domain.HistoryRecord, error) {
	out := make([]domain.HistoryRecord, 0, len(items))
	for _, it := range items {
		amount, err := domain.AmountFromRaw(it.Value, domain.TokenDecimals)
		if err != nil {
			return nil, fmt.Errorf("transfer at %d: %w", it.BlockTimestamp, err)
		}
		out = append(out, domain.HistoryRecord{
			ID:        fmt.Sprintf("%d:%s:%s:%s", it.BlockTimestamp, it.From, it.To, it.Value),
			Kind:      domain.ActionTransfer,
			Amount:    amount,
			Timestamp: it.BlockTimestamp,
			Currency:  fallbackCurrency,
		})
	}
	return out, nil
}

// Merge concatenates the mapped collections and orders them newest first.
// The sort is stable so records with identical timestamps keep their
// relative input order. Ids are expected to be disjoint across sources;
// if they ever collide, the first-seen record wins.
func Merge(collections ...[]domain.HistoryRecord) []domain.HistoryRecord {
	merged := make([]domain.HistoryRecord, 0)
	seen := make(map[string]struct{})
	for _, col := range collections {
		for _, r := range col {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged
}

func currencyOr(currency, fallback string) string {
	if currency == "" {
		return fallback
	}
	return currency
}
