package gamequery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mining-game-bot/internal/models"
)

func TestHTTPClient_ListMines(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mines" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"mines": []map[string]interface{}{
				{
					"game_id":       "m1",
					"owner_address": "0xabc",
					"end_time":      1709294400,
					"status":        "open",
					"can_reinforce": true,
				},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	mines, err := client.ListMines(context.Background(), models.MineFilter{
		UserAddress: "0xabc",
		Status:      models.MineStatusOpen,
		Limit:       200,
		Page:        1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["user_address"] != "0xabc" || gotQuery["status"] != "open" || gotQuery["limit"] != "200" || gotQuery["page"] != "1" {
		t.Errorf("unexpected query parameters: %v", gotQuery)
	}

	if len(mines) != 1 {
		t.Fatalf("expected 1 mine, got %d", len(mines))
	}
	m := mines[0]
	if m.GameID != "m1" {
		t.Errorf("GameID = %q, want m1", m.GameID)
	}
	if !m.CanReinforce {
		t.Error("expected CanReinforce to be true")
	}
	if want := time.Unix(1709294400, 0).UTC(); !m.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", m.EndTime, want)
	}
}

func TestHTTPClient_ListTeams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("is_team_available") != "1" {
			t.Errorf("expected is_team_available=1, got %q", r.URL.Query().Get("is_team_available"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"teams": []map[string]interface{}{
				{"team_id": "t1", "owner_address": "0xabc", "is_team_available": 1},
				{"team_id": "t2", "owner_address": "0xabc", "is_team_available": 0},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	teams, err := client.ListTeams(context.Background(), models.TeamFilter{
		UserAddress:   "0xabc",
		AvailableOnly: true,
		Limit:         200,
		Page:          1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if !teams[0].Available || teams[1].Available {
		t.Errorf("availability flags decoded wrong: %+v", teams)
	}
}

func TestHTTPClient_ListReinforceableMines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"mines": []map[string]interface{}{
				{"game_id": "m1", "status": "open", "can_reinforce": true},
				{"game_id": "m2", "status": "open", "can_reinforce": false},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	mines, err := client.ListReinforceableMines(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mines) != 1 || mines[0].GameID != "m1" {
		t.Errorf("expected only m1, got %+v", mines)
	}
}

func TestHTTPClient_GetMine_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.GetMine(context.Background(), "missing")
	if !errors.Is(err, ErrMineNotFound) {
		t.Errorf("expected ErrMineNotFound, got %v", err)
	}
}

func TestHTTPClient_ListLendableCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mines/m1/lendings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"candidate_id": "c1", "price": 100, "mine_power": 40},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	pool, err := client.ListLendableCandidates(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool) != 1 || pool[0].CandidateID != "c1" || pool[0].Price != 100 {
		t.Errorf("unexpected pool: %+v", pool)
	}
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	if _, err := client.ListMines(context.Background(), models.MineFilter{}); err == nil {
		t.Error("expected error on server failure, got none")
	}
}
