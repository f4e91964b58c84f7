package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mining-game-bot/internal/models"
)

func TestRelayClient_Submit(t *testing.T) {
	var gotRequest submitRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(submitResponse{TxHash: "0xdead"})
	}))
	defer server.Close()

	client := NewRelayClient(server.URL, time.Millisecond, 5*time.Second)

	tests := []struct {
		name       string
		submit     func() (models.TxHandle, error)
		wantMethod string
		wantParams map[string]string
	}{
		{
			name: "close",
			submit: func() (models.TxHandle, error) {
				return client.SubmitClose(context.Background(), "m1")
			},
			wantMethod: "closeGame",
			wantParams: map[string]string{"game_id": "m1"},
		},
		{
			name: "dispatch",
			submit: func() (models.TxHandle, error) {
				return client.SubmitDispatch(context.Background(), "t1")
			},
			wantMethod: "startGame",
			wantParams: map[string]string{"team_id": "t1"},
		},
		{
			name: "reinforce",
			submit: func() (models.TxHandle, error) {
				return client.SubmitReinforce(context.Background(), "m1", "c1", 250)
			},
			wantMethod: "reinforceDefense",
			wantParams: map[string]string{"game_id": "m1", "candidate_id": "c1", "price": "250"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := tt.submit()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tx != "0xdead" {
				t.Errorf("expected tx 0xdead, got %q", tx)
			}
			if gotRequest.Method != tt.wantMethod {
				t.Errorf("method = %q, want %q", gotRequest.Method, tt.wantMethod)
			}
			for key, want := range tt.wantParams {
				if gotRequest.Params[key] != want {
					t.Errorf("param %s = %q, want %q", key, gotRequest.Params[key], want)
				}
			}
		})
	}
}

func TestRelayClient_SubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nonce too low", http.StatusConflict)
	}))
	defer server.Close()

	client := NewRelayClient(server.URL, time.Millisecond, 5*time.Second)
	if _, err := client.SubmitClose(context.Background(), "m1"); err == nil {
		t.Error("expected error on rejected submission, got none")
	}
}

func TestRelayClient_AwaitReceipt_Polls(t *testing.T) {
	var polls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/receipts/0xdead" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		// Pending for the first two polls, then mined.
		if atomic.AddInt32(&polls, 1) < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(models.Receipt{
			TxHash:   "0xdead",
			Status:   models.ReceiptStatusSuccess,
			BlockNum: 42,
		})
	}))
	defer server.Close()

	client := NewRelayClient(server.URL, time.Millisecond, 5*time.Second)
	receipt, err := client.AwaitReceipt(context.Background(), "0xdead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.Succeeded() {
		t.Errorf("expected successful receipt, got status %d", receipt.Status)
	}
	if receipt.BlockNum != 42 {
		t.Errorf("BlockNum = %d, want 42", receipt.BlockNum)
	}
	if atomic.LoadInt32(&polls) != 3 {
		t.Errorf("expected 3 polls, got %d", polls)
	}
}

func TestRelayClient_AwaitReceipt_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewRelayClient(server.URL, time.Millisecond, 5*time.Second)
	if _, err := client.AwaitReceipt(ctx, "0xdead"); err == nil {
		t.Error("expected cancellation error, got none")
	}
}
