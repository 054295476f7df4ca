// Package shop implements shop registration and the notification-driven
// shop-update approval flow.
package shop

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/loyaltyware/walletcore/internal/domain"
	"github.com/loyaltyware/walletcore/internal/usecase/stagedop"
)

// ErrTaskExpired indicates an update task whose validity window has
// passed; the approval is abandoned without contacting the backend.
var ErrTaskExpired = errors.New("shop update task expired")

// networkTag namespaces shop ids within the loyalty network.
const networkTag = "kios"

// Service drives shop operations for the wallet's address.
type Service struct {
	shop    domain.ShopClient
	exec    *stagedop.Executor
	clock   domain.Clock
	address string
}

// NewService binds the shop flows to one wallet address.
func NewService(shop domain.ShopClient, exec *stagedop.Executor, clock domain.Clock, address string) *Service {
	return &Service{shop: shop, exec: exec, clock: clock, address: address}
}

// MakeShopID derives the deterministic shop identifier for an address.
func MakeShopID(address string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(networkTag + ":" + strings.ToLower(address)))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// Register creates the shop bound to the wallet address and returns its id.
func (s *Service) Register(ctx context.Context, name, currency string) (string, error) {
	shopID := MakeShopID(s.address)
	_, err := s.exec.Run(ctx, s.shop.AddShop(ctx, shopID, name, currency), stagedop.Terminal{
		Count: 3,
		Key:   domain.StageDone,
	})
	if err != nil {
		return "", fmt.Errorf("add shop: %w", err)
	}
	return shopID, nil
}

// TaskDetail fetches the pending update task behind a notification.
func (s *Service) TaskDetail(ctx context.Context, taskID string) (*domain.ShopUpdateTask, error) {
	task, err := s.shop.TaskDetail(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task detail: %w", err)
	}
	return task, nil
}

// ApproveUpdate confirms a pending shop update. Tasks past their validity
// window fail locally with ErrTaskExpired. A clock failure counts as
// expired: approvals are time-sensitive and must not fail open.
func (s *Service) ApproveUpdate(ctx context.Context, task domain.ShopUpdateTask) error {
	now, err := s.clock.Now()
	if err != nil {
		return fmt.Errorf("%w: clock unreadable: %v", ErrTaskExpired, err)
	}
	if now.Unix() >= task.Timestamp+task.Timeout {
		return ErrTaskExpired
	}

	_, err = s.exec.Run(ctx, s.shop.ApproveUpdate(ctx, task.TaskID, task.ShopID, true), stagedop.Terminal{
		Count: 3,
		Key:   domain.StageApproved,
	})
	if err != nil {
		return fmt.Errorf("approve update: %w", err)
	}
	return nil
}
