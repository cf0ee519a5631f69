// Package actual is the HTTP client for the Actual Budget sync server: the
// ledger collaborator the reconciled variation series is replayed into.
// The server deduplicates imported transactions by imported_id, which is
// what makes replays idempotent; this client keeps no local state about
// what was previously sent, and never retries on its own.
package actual

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotInitialized reports an import attempted before the session and
// budget context were established.
var ErrNotInitialized = errors.New("actual client not initialized")

// Transaction is one ledger entry in the shape the import endpoint accepts.
// Amount is in minor currency units. Date is a calendar date (YYYY-MM-DD).
type Transaction struct {
	ID         string `json:"id"`
	Account    string `json:"account"`
	Payee      string `json:"payee_name"`
	Amount     int64  `json:"amount"`
	Date       string `json:"date"`
	ImportedID string `json:"imported_id"`
	Notes      string `json:"notes"`
}

// ImportError is one per-transaction failure reported by the server.
type ImportError struct {
	Message string `json:"message"`
}

// ImportResult carries the server's upsert outcome for one batch.
type ImportResult struct {
	Added   []string      `json:"added"`
	Updated []string      `json:"updated"`
	Errors  []ImportError `json:"errors"`
}

// ClientOptions configures the sync server client.
type ClientOptions struct {
	ServerURL  string
	Password   string
	SyncID     string
	BudgetID   string
	HTTPClient *http.Client
}

// Client is a token session against the sync server.
type Client struct {
	serverURL  string
	password   string
	syncID     string
	budgetID   string
	httpClient *http.Client

	token       string
	initialized bool
}

// NewClient creates a sync server client.
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		serverURL:  strings.TrimRight(strings.TrimSpace(opts.ServerURL), "/"),
		password:   opts.Password,
		syncID:     opts.SyncID,
		budgetID:   opts.BudgetID,
		httpClient: httpClient,
	}
}

// Init logs into the sync server and downloads the budget identified by the
// configured sync ID. It must succeed before any import call.
func (c *Client) Init(ctx context.Context) error {
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/account/login", map[string]string{"password": c.password}, &login); err != nil {
		return fmt.Errorf("actual login: %w", err)
	}
	if login.Data.Token == "" {
		return fmt.Errorf("actual login: server returned no token")
	}
	c.token = login.Data.Token

	path := fmt.Sprintf("/budgets/%s/download", c.syncID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("download budget %s: %w", c.syncID, err)
	}
	c.initialized = true
	return nil
}

// ImportTransactions submits one batch of transactions for an account. The
// server upserts by imported_id and reports what it added, what it updated,
// and which entries failed.
func (c *Client) ImportTransactions(ctx context.Context, accountID string, txs []Transaction) (*ImportResult, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	payload := map[string]any{"transactions": txs}
	path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions-import", c.budgetID, accountID)

	var result ImportResult
	if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
		return nil, fmt.Errorf("import transactions for account %s: %w", accountID, err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("X-Actual-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		var parsed struct {
			Reason string `json:"reason"`
		}
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Reason != "" {
			msg = parsed.Reason
		}
		return fmt.Errorf("status=%d message=%s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
