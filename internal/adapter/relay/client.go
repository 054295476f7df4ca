// Package relay is the HTTP/JSON client for the ledger relay. It
// implements the domain collaborator interfaces; staged endpoints are
// surfaced as stage producers consumed by the executor.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/loyaltyware/walletcore/internal/domain"
)

// Client talks to one relay endpoint, optionally bound to a wallet
// address for transfer operations.
type Client struct {
	baseURL    string
	apiKey     string
	address    string
	httpClient *http.Client
}

// New creates a relay client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Bound returns a copy of the client bound to a wallet address.
func (c *Client) Bound(address string) *Client {
	bound := *c
	bound.address = address
	return &bound
}

// Address returns the bound wallet address, if any.
func (c *Client) Address() string { return c.address }

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// fetchStages requests a staged endpoint; the relay answers with the full
// ordered stage array for the operation.
func (c *Client) fetchStages(ctx context.Context, path string, body any) ([]domain.OperationStage, error) {
	var out struct {
		Stages []domain.OperationStage `json:"stages"`
	}
	if err := c.doRequest(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return out.Stages, nil
}

// RegisterPhone implements domain.LinkClient.
func (c *Client) RegisterPhone(ctx context.Context, phone string) domain.StageProducer {
	return newFetchProducer(func(ctx context.Context) ([]domain.OperationStage, error) {
		return c.fetchStages(ctx, "/v1/link/register", map[string]string{"phone": phone})
	})
}

// SubmitCode implements domain.LinkClient.
func (c *Client) SubmitCode(ctx context.Context, requestID, code string) domain.StageProducer {
	return newFetchProducer(func(ctx context.Context) ([]domain.OperationStage, error) {
		return c.fetchStages(ctx, "/v1/link/submit", map[string]string{
			"requestId": requestID,
			"code":      code,
		})
	})
}

// AddShop implements domain.ShopClient.
func (c *Client) AddShop(ctx context.Context, shopID, name, currency string) domain.StageProducer {
	return newFetchProducer(func(ctx context.Context) ([]domain.OperationStage, error) {
		return c.fetchStages(ctx, "/v1/shop/add", map[string]string{
			"shopId":   shopID,
			"name":     name,
			"currency": currency,
			"account":  c.address,
		})
	})
}

// ApproveUpdate implements domain.ShopClient.
func (c *Client) ApproveUpdate(ctx context.Context, taskID, shopID string, approve bool) domain.StageProducer {
	return newFetchProducer(func(ctx context.Context) ([]domain.OperationStage, error) {
		return c.fetchStages(ctx, "/v1/shop/task/"+url.PathEscape(taskID)+"/approve", map[string]any{
			"shopId":  shopID,
			"approve": approve,
		})
	})
}

// TaskDetail implements domain.ShopClient.
func (c *Client) TaskDetail(ctx context.Context, taskID string) (*domain.ShopUpdateTask, error) {
	var task domain.ShopUpdateTask
	if err := c.doRequest(ctx, http.MethodGet, "/v1/shop/task/"+url.PathEscape(taskID), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ScheduledProvideHistory implements domain.ShopClient.
func (c *Client) ScheduledProvideHistory(ctx context.Context, shopID string) ([]domain.ScheduledRecord, error) {
	var out struct {
		Items []domain.ScheduledRecord `json:"items"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/shop/"+url.PathEscape(shopID)+"/estimated-provide", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// TradeHistory implements domain.ShopClient.
func (c *Client) TradeHistory(ctx context.Context, shopID string) ([]domain.TradeRecord, error) {
	var out struct {
		Items []domain.TradeRecord `json:"items"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/shop/"+url.PathEscape(shopID)+"/trades", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Summary implements domain.LedgerClient.
func (c *Client) Summary(ctx context.Context, address string) (*domain.Summary, error) {
	var summary domain.Summary
	if err := c.doRequest(ctx, http.MethodGet, "/v1/ledger/summary/"+url.PathEscape(address), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// UnpayablePointBalance implements domain.LedgerClient.
func (c *Client) UnpayablePointBalance(ctx context.Context, phone string) (string, error) {
	var out struct {
		Balance string `json:"balance"`
	}
	err := c.doRequest(ctx, http.MethodPost, "/v1/ledger/unpayable", map[string]string{"phone": phone}, &out)
	if err != nil {
		return "", err
	}
	return out.Balance, nil
}

// ChangeToPayablePoint implements domain.LedgerClient.
func (c *Client) ChangeToPayablePoint(ctx context.Context, phone string) domain.StageProducer {
	return newFetchProducer(func(ctx context.Context) ([]domain.OperationStage, error) {
		return c.fetchStages(ctx, "/v1/ledger/payable", map[string]string{
			"phone":   phone,
			"account": c.address,
		})
	})
}

// Transfer implements domain.LedgerClient.
func (c *Client) Transfer(ctx context.Context, to, rawAmount string) domain.StageProducer {
	return c.transfer("ledger", to, rawAmount)
}

// TransferMainChain implements domain.LedgerClient.
func (c *Client) TransferMainChain(ctx context.Context, to, rawAmount string) domain.StageProducer {
	return c.transfer("main", to, rawAmount)
}

func (c *Client) transfer(chain, to, rawAmount string) domain.StageProducer {
	return newFetchProducer(func(ctx context.Context) ([]domain.OperationStage, error) {
		return c.fetchStages(ctx, "/v1/ledger/transfer", map[string]string{
			"chain":  chain,
			"from":   c.address,
			"to":     to,
			"amount": rawAmount,
		})
	})
}

// MainChainTransferHistory implements domain.LedgerClient.
func (c *Client) MainChainTransferHistory(ctx context.Context, address string) ([]domain.MainChainTransfer, error) {
	var out struct {
		Items []domain.MainChainTransfer `json:"items"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/ledger/main-transfers/"+url.PathEscape(address), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
