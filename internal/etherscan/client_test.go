package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterScope/internal/model"
)

func testAddr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func writeResult(w http.ResponseWriter, result any) {
	payload, _ := json.Marshal(result)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "1",
		"message": "OK",
		"result":  json.RawMessage(payload),
	})
}

func writeNoTransactions(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "0",
		"message": "No transactions found",
		"result":  []any{},
	})
}

func writeRateLimited(w http.ResponseWriter) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "0",
		"message": "NOTOK",
		"result":  "Max rate limit reached",
	})
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		PageSize:     2,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, nil)
}

func TestFetchTransactionsPaginates(t *testing.T) {
	page1 := []model.RawTransaction{
		{Hash: "0x1", From: testAddr(1), To: testAddr(2), Value: "1", TimeStamp: "100"},
		{Hash: "0x2", From: testAddr(1), To: testAddr(2), Value: "2", TimeStamp: "200"},
	}
	page2 := []model.RawTransaction{
		{Hash: "0x3", From: testAddr(1), To: testAddr(2), Value: "3", TimeStamp: "300"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "account", q.Get("module"))
		assert.Equal(t, "asc", q.Get("sort"))
		assert.Equal(t, "test-key", q.Get("apikey"))

		if q.Get("action") == actionTxListInternal {
			writeNoTransactions(w)
			return
		}

		switch q.Get("page") {
		case "1":
			writeResult(w, page1)
		case "2":
			writeResult(w, page2)
		default:
			t.Errorf("unexpected page %q", q.Get("page"))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	txs, err := client.FetchTransactions(context.Background(), testAddr(2))
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "0x3", txs[2].Hash)
	assert.False(t, txs[0].Internal)
}

func TestFetchTransactionsMarksInternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == actionTxList {
			writeResult(w, []model.RawTransaction{
				{Hash: "0xn", From: testAddr(1), To: testAddr(2), Value: "1", TimeStamp: "100"},
			})
			return
		}
		writeResult(w, []model.RawTransaction{
			{Hash: "0xi", From: testAddr(3), To: testAddr(2), Value: "1", TimeStamp: "200"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	txs, err := client.FetchTransactions(context.Background(), testAddr(2))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.False(t, txs[0].Internal)
	assert.True(t, txs[1].Internal)
}

func TestFetchTransactionsEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeNoTransactions(w)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	txs, err := client.FetchTransactions(context.Background(), testAddr(2))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestFetchTransactionsRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == actionTxListInternal {
			writeNoTransactions(w)
			return
		}
		if calls.Add(1) == 1 {
			writeRateLimited(w)
			return
		}
		writeResult(w, []model.RawTransaction{
			{Hash: "0x1", From: testAddr(1), To: testAddr(2), Value: "1", TimeStamp: "100"},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	txs, err := client.FetchTransactions(context.Background(), testAddr(2))
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchTransactionsExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeRateLimited(w)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchTransactions(context.Background(), testAddr(2))
	require.Error(t, err)

	var fetchErr *model.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, testAddr(2), fetchErr.Address)
}

func TestIsContract(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "contract", q.Get("module"))
		assert.Equal(t, "getsourcecode", q.Get("action"))

		name := ""
		if q.Get("address") == testAddr(7) {
			name = "UniswapV2Router"
		}
		writeResult(w, []map[string]string{{"ContractName": name}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	isContract, err := client.IsContract(context.Background(), testAddr(7))
	require.NoError(t, err)
	assert.True(t, isContract)

	isContract, err = client.IsContract(context.Background(), testAddr(8))
	require.NoError(t, err)
	assert.False(t, isContract)

	// Second lookup of a known address is served from the cache.
	_, err = client.IsContract(context.Background(), testAddr(7))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIsContractLookupError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.IsContract(context.Background(), testAddr(7))
	require.Error(t, err)

	var lookupErr *model.LookupError
	assert.ErrorAs(t, err, &lookupErr)
}

func TestNewClientClampsPageSize(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("offset"))
		writeNoTransactions(w)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:      server.URL,
		PageSize:     50_000,
		RetryBackoff: time.Millisecond,
	}, nil)
	assert.Equal(t, resultWindow, client.cfg.PageSize)

	txs, err := client.FetchTransactions(context.Background(), testAddr(2))
	require.NoError(t, err)
	assert.Empty(t, txs)
	// Both listings actually queried the API instead of skipping page 1.
	assert.Len(t, pages, 2)
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(fmt.Errorf("api error: NOTOK: Max rate limit reached")))
	assert.False(t, isRateLimited(fmt.Errorf("unexpected http status 500")))
	assert.False(t, isRateLimited(nil))
}

func TestWithRetryBacksOff(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 5, time.Minute, func(context.Context) error {
		return fmt.Errorf("always fails")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
