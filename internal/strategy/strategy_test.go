package strategy

import (
	"errors"
	"testing"

	"github.com/mining-game-bot/internal/models"
)

func uintPtr(v uint64) *uint64 {
	return &v
}

var testMine = models.Mine{GameID: "m1", Status: models.MineStatusOpen}

func TestCheapest_SelectCandidate(t *testing.T) {
	pool := []models.Candidate{
		{CandidateID: "c1", Price: 300, MinePower: 50},
		{CandidateID: "c2", Price: 100, MinePower: 10},
		{CandidateID: "c3", Price: 200, MinePower: 90},
	}

	tests := []struct {
		name    string
		pool    []models.Candidate
		opts    Options
		wantID  string
		wantErr error
	}{
		{
			name:   "no ceiling picks global cheapest",
			pool:   pool,
			opts:   Options{},
			wantID: "c2",
		},
		{
			name:   "ceiling admits cheapest",
			pool:   pool,
			opts:   Options{MaxPrice: uintPtr(150)},
			wantID: "c2",
		},
		{
			name:   "non-strict relaxes ceiling",
			pool:   pool,
			opts:   Options{MaxPrice: uintPtr(50)},
			wantID: "c2",
		},
		{
			name:    "empty pool",
			pool:    nil,
			opts:    Options{},
			wantErr: ErrNoCandidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cheapest{}.SelectCandidate(testMine, tt.pool, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.CandidateID != tt.wantID {
				t.Errorf("selected %q, want %q", got.CandidateID, tt.wantID)
			}
		})
	}
}

func TestCheapest_StrictCeiling(t *testing.T) {
	pool := []models.Candidate{
		{CandidateID: "c1", Price: 300},
		{CandidateID: "c2", Price: 200},
	}

	_, err := Cheapest{}.SelectCandidate(testMine, pool, Options{Strict: true, MaxPrice: uintPtr(100)})
	var priceErr *PriceTooHighError
	if !errors.As(err, &priceErr) {
		t.Fatalf("expected PriceTooHighError, got %v", err)
	}
	if priceErr.CheapestPrice != 200 {
		t.Errorf("CheapestPrice = %d, want 200", priceErr.CheapestPrice)
	}
	if priceErr.MaxPrice != 100 {
		t.Errorf("MaxPrice = %d, want 100", priceErr.MaxPrice)
	}
}

func TestHighestPower_SelectCandidate(t *testing.T) {
	pool := []models.Candidate{
		{CandidateID: "c1", Price: 300, MinePower: 50},
		{CandidateID: "c2", Price: 100, MinePower: 10},
		{CandidateID: "c3", Price: 200, MinePower: 90},
		{CandidateID: "c4", Price: 900, MinePower: 95},
	}

	tests := []struct {
		name    string
		pool    []models.Candidate
		opts    Options
		wantID  string
		wantErr error
	}{
		{
			name:   "no ceiling picks highest power",
			pool:   pool,
			opts:   Options{},
			wantID: "c4",
		},
		{
			name:   "ceiling excludes strongest",
			pool:   pool,
			opts:   Options{MaxPrice: uintPtr(250)},
			wantID: "c3",
		},
		{
			name:   "non-strict falls back to cheapest",
			pool:   pool,
			opts:   Options{MaxPrice: uintPtr(50)},
			wantID: "c2",
		},
		{
			name: "equal power keeps pool order",
			pool: []models.Candidate{
				{CandidateID: "a", Price: 100, MinePower: 70},
				{CandidateID: "b", Price: 90, MinePower: 70},
			},
			opts:   Options{},
			wantID: "a",
		},
		{
			name:    "empty pool",
			pool:    nil,
			opts:    Options{Strict: true, MaxPrice: uintPtr(10)},
			wantErr: ErrNoCandidate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HighestPower{}.SelectCandidate(testMine, tt.pool, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.CandidateID != tt.wantID {
				t.Errorf("selected %q, want %q", got.CandidateID, tt.wantID)
			}
		})
	}
}

func TestHighestPower_StrictCeiling(t *testing.T) {
	pool := []models.Candidate{
		{CandidateID: "c1", Price: 300, MinePower: 50},
		{CandidateID: "c2", Price: 200, MinePower: 10},
	}

	_, err := HighestPower{}.SelectCandidate(testMine, pool, Options{Strict: true, MaxPrice: uintPtr(100)})
	var priceErr *PriceTooHighError
	if !errors.As(err, &priceErr) {
		t.Fatalf("expected PriceTooHighError, got %v", err)
	}
	if priceErr.CheapestPrice != 200 {
		t.Errorf("CheapestPrice = %d, want 200", priceErr.CheapestPrice)
	}
}

func TestSelectCandidate_DoesNotMutatePool(t *testing.T) {
	pool := []models.Candidate{
		{CandidateID: "c1", Price: 300, MinePower: 50},
		{CandidateID: "c2", Price: 100, MinePower: 10},
	}

	if _, err := (HighestPower{}).SelectCandidate(testMine, pool, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := (Cheapest{}).SelectCandidate(testMine, pool, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pool[0].CandidateID != "c1" || pool[1].CandidateID != "c2" {
		t.Error("pool order was mutated by selection")
	}
}
