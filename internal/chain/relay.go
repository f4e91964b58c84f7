package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mining-game-bot/internal/models"
)

// RelayClient implements Sender against a transaction relay service
// that owns key management and transaction construction. The bot never
// touches signing.
type RelayClient struct {
	baseURL      string
	pollInterval time.Duration
	httpClient   *http.Client
}

// NewRelayClient creates a relay client. pollInterval is the delay
// between receipt polls while a transaction is pending.
func NewRelayClient(baseURL string, pollInterval time.Duration, timeout time.Duration) *RelayClient {
	return &RelayClient{
		baseURL:      baseURL,
		pollInterval: pollInterval,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type submitRequest struct {
	Method string            `json:"method"`
	Params map[string]string `json:"params"`
}

type submitResponse struct {
	TxHash string `json:"tx_hash"`
}

// SubmitClose submits a close-mine transaction.
func (c *RelayClient) SubmitClose(ctx context.Context, gameID string) (models.TxHandle, error) {
	return c.submit(ctx, submitRequest{
		Method: "closeGame",
		Params: map[string]string{"game_id": gameID},
	})
}

// SubmitDispatch submits a start-mine transaction for a team.
func (c *RelayClient) SubmitDispatch(ctx context.Context, teamID string) (models.TxHandle, error) {
	return c.submit(ctx, submitRequest{
		Method: "startGame",
		Params: map[string]string{"team_id": teamID},
	})
}

// SubmitReinforce submits a reinforce-defense transaction borrowing
// the candidate at the given price.
func (c *RelayClient) SubmitReinforce(ctx context.Context, gameID, candidateID string, price uint64) (models.TxHandle, error) {
	return c.submit(ctx, submitRequest{
		Method: "reinforceDefense",
		Params: map[string]string{
			"game_id":      gameID,
			"candidate_id": candidateID,
			"price":        fmt.Sprintf("%d", price),
		},
	})
}

// AwaitReceipt polls the relay until the transaction is mined. A
// pending transaction with a hung chain blocks indefinitely; callers
// that need a deadline must supply one on the context.
func (c *RelayClient) AwaitReceipt(ctx context.Context, tx models.TxHandle) (*models.Receipt, error) {
	for {
		receipt, pending, err := c.getReceipt(ctx, tx)
		if err != nil {
			return nil, err
		}
		if !pending {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for receipt of %s cancelled: %w", tx, ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *RelayClient) submit(ctx context.Context, sr submitRequest) (models.TxHandle, error) {
	body, err := json.Marshal(sr)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit %s: %w", sr.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("relay rejected %s with status %d: %s", sr.Method, resp.StatusCode, string(respBody))
	}

	var sres submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sres); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if sres.TxHash == "" {
		return "", fmt.Errorf("relay returned no transaction hash for %s", sr.Method)
	}
	return models.TxHandle(sres.TxHash), nil
}

// getReceipt fetches the receipt once; pending is true while the
// transaction is not yet mined.
func (c *RelayClient) getReceipt(ctx context.Context, tx models.TxHandle) (*models.Receipt, bool, error) {
	reqURL := c.baseURL + "/receipts/" + url.PathEscape(string(tx))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to poll receipt of %s: %w", tx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("unexpected status %d polling receipt of %s: %s", resp.StatusCode, tx, string(body))
	}

	var receipt models.Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, false, fmt.Errorf("failed to decode receipt: %w", err)
	}
	if receipt.TxHash == "" {
		receipt.TxHash = tx
	}
	return &receipt, false, nil
}
