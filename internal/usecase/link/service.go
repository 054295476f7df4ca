// Package link implements phone-number verification: a staged register
// request that opens a one-time-code window, and the gated code
// submission that completes it.
package link

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/loyaltyware/walletcore/internal/domain"
	"github.com/loyaltyware/walletcore/internal/usecase/stagedop"
)

// ErrInvalidPhone indicates a phone number that failed local validation.
// It is never retried against the backend.
var ErrInvalidPhone = errors.New("invalid phone number")

var (
	digitsPattern      = regexp.MustCompile(`^[0-9]{4,14}$`)
	countryCodePattern = regexp.MustCompile(`^[0-9]{1,3}$`)
)

// DefaultCodeTTLSeconds is the production one-time-code window.
const DefaultCodeTTLSeconds = 180

// Service drives the two-phase phone verification flow.
type Service struct {
	link   domain.LinkClient
	ledger domain.LedgerClient
	exec   *stagedop.Executor
	window *stagedop.CodeWindow

	codeTTL int
	phone   string
}

// NewService wires the verification flow. codeTTL <= 0 selects the
// production default.
func NewService(link domain.LinkClient, ledger domain.LedgerClient, exec *stagedop.Executor, window *stagedop.CodeWindow, codeTTL int) *Service {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTLSeconds
	}
	return &Service{link: link, ledger: ledger, exec: exec, window: window, codeTTL: codeTTL}
}

// NormalizePhone validates the parts locally and renders the
// international form the relay expects.
func NormalizePhone(countryCode, number string) (string, error) {
	countryCode = strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	number = strings.TrimSpace(number)
	if !countryCodePattern.MatchString(countryCode) || !digitsPattern.MatchString(number) {
		return "", ErrInvalidPhone
	}
	return "+" + countryCode + number, nil
}

// Register starts a verification for the given number. Success means the
// relay reached the "requested" stage as its second and final stage; the
// returned request id is then held in the code window while the countdown
// runs.
func (s *Service) Register(ctx context.Context, countryCode, number string) error {
	phone, err := NormalizePhone(countryCode, number)
	if err != nil {
		return err
	}

	stages, err := s.exec.Run(ctx, s.link.RegisterPhone(ctx, phone), stagedop.Terminal{
		Count: 2,
		Key:   domain.StageRequested,
	})
	if err != nil {
		return fmt.Errorf("register phone: %w", err)
	}

	s.phone = phone
	s.window.Open(stages[len(stages)-1].RequestID, s.codeTTL)
	return nil
}

// Submit sends the one-time code for the pending verification. Once the
// window has expired the submission is rejected locally with
// ErrCodeExpired. On acceptance, any points still bound to the phone
// number are converted to the wallet.
func (s *Service) Submit(ctx context.Context, code string) error {
	requestID, err := s.window.RequestID()
	if err != nil {
		return err
	}

	_, err = s.exec.Run(ctx, s.link.SubmitCode(ctx, requestID, code), stagedop.Terminal{
		Count: 2,
		Key:   domain.StageAccepted,
	})
	if err != nil {
		return fmt.Errorf("submit code: %w", err)
	}

	s.window.Close()
	return s.convertUnpayable(ctx)
}

// Remaining exposes the countdown for rendering.
func (s *Service) Remaining() int { return s.window.Remaining() }

// convertUnpayable moves phone-bound points onto the wallet once the
// number is verified. A zero balance is a no-op.
func (s *Service) convertUnpayable(ctx context.Context) error {
	balance, err := s.ledger.UnpayablePointBalance(ctx, s.phone)
	if err != nil {
		return fmt.Errorf("unpayable balance: %w", err)
	}
	positive, err := domain.Greater(balance, "0")
	if err != nil {
		return fmt.Errorf("unpayable balance %q: %w", balance, err)
	}
	if !positive {
		return nil
	}

	_, err = s.exec.Run(ctx, s.ledger.ChangeToPayablePoint(ctx, s.phone), stagedop.Terminal{
		Count: 3,
		Key:   domain.StageDone,
	})
	if err != nil {
		return fmt.Errorf("change to payable: %w", err)
	}
	return nil
}
