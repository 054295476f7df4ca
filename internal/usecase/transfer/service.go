// Package transfer implements main-chain and ledger (side-chain) token
// transfers with exact pre-flight balance and fee validation.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/loyaltyware/walletcore/internal/domain"
	"github.com/loyaltyware/walletcore/internal/usecase/stagedop"
)

var (
	// ErrBelowFee indicates a transfer amount not strictly greater than
	// the protocol fee.
	ErrBelowFee = errors.New("amount does not exceed transfer fee")
	// ErrInsufficientBalance indicates a transfer amount above the
	// available balance.
	ErrInsufficientBalance = errors.New("amount exceeds available balance")
)

// Service drives token transfers for one wallet address.
type Service struct {
	ledger  domain.LedgerClient
	exec    *stagedop.Executor
	address string
}

// NewService binds the transfer flows to one wallet address.
func NewService(ledger domain.LedgerClient, exec *stagedop.Executor, address string) *Service {
	return &Service{ledger: ledger, exec: exec, address: address}
}

// Quote validates a transfer form locally and returns the amount the
// receiver would get (amount minus fee). All three operands are decimal
// strings in display units; the math is exact, never floating point.
func Quote(amount, balance, fee string) (string, error) {
	overFee, err := domain.Greater(amount, fee)
	if err != nil {
		return "", err
	}
	if !overFee {
		return "", ErrBelowFee
	}
	covered, err := domain.GreaterOrEqual(balance, amount)
	if err != nil {
		return "", err
	}
	if !covered {
		return "", ErrInsufficientBalance
	}
	return domain.Sub(amount, fee)
}

// Summary fetches balances and fees for the bound address.
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	summary, err := s.ledger.Summary(ctx, s.address)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return summary, nil
}

// MainChain transfers tokens on the main chain. The operation is done
// only when the relay reports the "done" stage as the third and final
// stage.
func (s *Service) MainChain(ctx context.Context, to, amount string) error {
	raw, err := rawTokenAmount(amount)
	if err != nil {
		return err
	}
	_, err = s.exec.Run(ctx, s.ledger.TransferMainChain(ctx, to, raw), stagedop.Terminal{
		Count: 3,
		Key:   domain.StageDone,
	})
	if err != nil {
		return fmt.Errorf("main chain transfer: %w", err)
	}
	return nil
}

// SideChain transfers tokens on the ledger.
func (s *Service) SideChain(ctx context.Context, to, amount string) error {
	raw, err := rawTokenAmount(amount)
	if err != nil {
		return err
	}
	_, err = s.exec.Run(ctx, s.ledger.Transfer(ctx, to, raw), stagedop.Terminal{
		Count: 3,
		Key:   domain.StageDone,
	})
	if err != nil {
		return fmt.Errorf("side chain transfer: %w", err)
	}
	return nil
}

// rawTokenAmount converts a display amount into the raw token magnitude
// the relay expects.
func rawTokenAmount(amount string) (string, error) {
	a, err := domain.ParseAmount(amount, domain.TokenDecimals)
	if err != nil {
		return "", err
	}
	return a.Raw(), nil
}
