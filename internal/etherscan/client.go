// Package etherscan implements the transaction-fetch and contract-lookup
// collaborators against an Etherscan-style block explorer API. All retry
// and backoff policy lives here; the analyzers never retry.
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"clusterScope/internal/model"
)

const (
	actionTxList         = "txlist"
	actionTxListInternal = "txlistinternal"

	// Etherscan caps page*offset at 10,000 results per listing.
	resultWindow = 10_000
)

// Config holds client settings.
type Config struct {
	BaseURL      string
	APIKey       string
	PageSize     int
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// Client fetches account transaction histories with pagination and checks
// contract status via the getsourcecode endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	mu            sync.Mutex
	contractCache map[string]bool
}

// NewClient builds a Client. Zero-valued Config fields get defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.PageSize > resultWindow {
		// A page larger than the listing window would trip the window check
		// before page 1 and fetch nothing.
		logger.Warn("page size clamped to the pagination window",
			zap.Int("requested", cfg.PageSize),
			zap.Int("window", resultWindow),
		)
		cfg.PageSize = resultWindow
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:           cfg,
		http:          &http.Client{Timeout: cfg.Timeout},
		logger:        logger,
		contractCache: make(map[string]bool),
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// FetchTransactions returns the union of normal and internal transfer
// records for address, in listing order. A terminal failure after retries
// surfaces as *model.FetchError.
func (c *Client) FetchTransactions(ctx context.Context, address string) ([]model.RawTransaction, error) {
	normal, err := c.listTransactions(ctx, address, actionTxList)
	if err != nil {
		return nil, &model.FetchError{Address: address, Err: err}
	}

	internal, err := c.listTransactions(ctx, address, actionTxListInternal)
	if err != nil {
		return nil, &model.FetchError{Address: address, Err: err}
	}
	for i := range internal {
		internal[i].Internal = true
	}

	return append(normal, internal...), nil
}

func (c *Client) listTransactions(ctx context.Context, address, action string) ([]model.RawTransaction, error) {
	var all []model.RawTransaction
	for page := 1; ; page++ {
		if page*c.cfg.PageSize > resultWindow {
			c.logger.Warn("pagination window reached, partial data fetched",
				zap.String("address", address),
				zap.String("action", action),
			)
			break
		}

		batch, err := c.fetchPage(ctx, address, action, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		if len(batch) < c.cfg.PageSize {
			break
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, address, action string, page int) ([]model.RawTransaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("sort", "asc")
	params.Set("page", strconv.Itoa(page))
	params.Set("offset", strconv.Itoa(c.cfg.PageSize))
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}

	var batch []model.RawTransaction
	err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		resp, err := c.call(ctx, params)
		if err != nil {
			c.logger.Warn("api request failed",
				zap.String("action", action),
				zap.String("address", address),
				zap.Int("page", page),
				zap.Error(err),
			)
			return err
		}

		if noTransactions(resp) {
			batch = nil
			return nil
		}

		var txs []model.RawTransaction
		if err := json.Unmarshal(resp.Result, &txs); err != nil {
			return fmt.Errorf("decode %s result: %w", action, err)
		}
		batch = txs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// IsContract checks whether address has verified deployed code via the
// getsourcecode endpoint (non-empty ContractName). Results are memoized.
// Failures surface as *model.LookupError.
func (c *Client) IsContract(ctx context.Context, address string) (bool, error) {
	addr := strings.ToLower(address)

	c.mu.Lock()
	cached, ok := c.contractCache[addr]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getsourcecode")
	params.Set("address", addr)
	if c.cfg.APIKey != "" {
		params.Set("apikey", c.cfg.APIKey)
	}

	var isContract bool
	err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		resp, err := c.call(ctx, params)
		if err != nil {
			return err
		}

		var result []struct {
			ContractName string `json:"ContractName"`
		}
		if err := json.Unmarshal(resp.Result, &result); err != nil {
			return fmt.Errorf("decode getsourcecode result: %w", err)
		}
		isContract = len(result) > 0 && result[0].ContractName != ""
		return nil
	})
	if err != nil {
		return false, &model.LookupError{Address: addr, Err: err}
	}

	c.mu.Lock()
	c.contractCache[addr] = isContract
	c.mu.Unlock()

	return isContract, nil
}

func (c *Client) call(ctx context.Context, params url.Values) (apiResponse, error) {
	endpoint := c.cfg.BaseURL
	if endpoint == "" {
		endpoint = "https://api.etherscan.io/api"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return apiResponse{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiResponse{}, fmt.Errorf("unexpected http status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if parsed.Status != "1" && !noTransactions(parsed) {
		return apiResponse{}, fmt.Errorf("api error: %s", apiErrorDetail(parsed))
	}

	return parsed, nil
}

func noTransactions(resp apiResponse) bool {
	return strings.EqualFold(resp.Message, "No transactions found")
}

func apiErrorDetail(resp apiResponse) string {
	detail := resp.Message
	var text string
	if err := json.Unmarshal(resp.Result, &text); err == nil && text != "" {
		detail = detail + ": " + text
	}
	return detail
}
