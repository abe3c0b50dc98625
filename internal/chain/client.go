// Package chain provides an RPC-backed contract checker as an alternative
// to the explorer getsourcecode lookup. Preferred when an RPC URL is
// configured, since eth_getCode also catches unverified contracts.
package chain

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"clusterScope/internal/model"
)

// Client wraps go-ethereum RPC and answers contract-detection lookups.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu        sync.RWMutex
	codeCache map[string]bool
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		codeCache: make(map[string]bool),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// IsContract reports whether address has deployed code at the latest block,
// using an in-memory cache. Failures surface as *model.LookupError.
func (c *Client) IsContract(ctx context.Context, address string) (bool, error) {
	addr := strings.ToLower(address)

	c.mu.RLock()
	cached, ok := c.codeCache[addr]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	code, err := c.ethClient.CodeAt(ctx, common.HexToAddress(addr), nil)
	if err != nil {
		return false, &model.LookupError{Address: addr, Err: err}
	}

	isContract := len(code) > 0
	c.mu.Lock()
	c.codeCache[addr] = isContract
	c.mu.Unlock()

	return isContract, nil
}
