package gamequery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mining-game-bot/internal/models"
)

// Service is the read-only game-state API consumed by the bot. No
// ordering guarantee is attached to the listings beyond the remote
// service's default.
type Service interface {
	// ListMines lists the mines matching the filter.
	ListMines(ctx context.Context, f models.MineFilter) ([]models.Mine, error)

	// ListTeams lists the teams matching the filter.
	ListTeams(ctx context.Context, f models.TeamFilter) ([]models.Team, error)

	// ListReinforceableMines lists the user's open mines whose
	// defending team can still accept a reinforcement.
	ListReinforceableMines(ctx context.Context, userAddress string) ([]models.Mine, error)

	// GetMine retrieves a single mine by its game ID.
	GetMine(ctx context.Context, gameID string) (*models.Mine, error)

	// ListLendableCandidates lists the reinforcement candidates
	// currently offered for the given mine.
	ListLendableCandidates(ctx context.Context, gameID string) ([]models.Candidate, error)
}

// ErrMineNotFound is returned when the game service has no record of
// the requested mine.
var ErrMineNotFound = &QueryError{Message: "mine not found"}

// QueryError represents a game query failure
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// HTTPClient implements Service against the game's web API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the game web API at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Wire records use unix-second end times, matching the game API.
type mineRecord struct {
	GameID       string `json:"game_id"`
	OwnerAddress string `json:"owner_address"`
	EndTime      int64  `json:"end_time"`
	Status       string `json:"status"`
	CanReinforce bool   `json:"can_reinforce"`
}

func (r mineRecord) toModel() models.Mine {
	return models.Mine{
		GameID:       r.GameID,
		OwnerAddress: r.OwnerAddress,
		EndTime:      time.Unix(r.EndTime, 0).UTC(),
		Status:       models.MineStatus(r.Status),
		CanReinforce: r.CanReinforce,
	}
}

type teamRecord struct {
	TeamID       string `json:"team_id"`
	OwnerAddress string `json:"owner_address"`
	IsAvailable  int    `json:"is_team_available"`
}

func (r teamRecord) toModel() models.Team {
	return models.Team{
		TeamID:       r.TeamID,
		OwnerAddress: r.OwnerAddress,
		Available:    r.IsAvailable == 1,
	}
}

// ListMines lists mines from GET /mines.
func (c *HTTPClient) ListMines(ctx context.Context, f models.MineFilter) ([]models.Mine, error) {
	params := url.Values{}
	if f.UserAddress != "" {
		params.Set("user_address", f.UserAddress)
	}
	if f.Status != "" {
		params.Set("status", string(f.Status))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}

	var resp struct {
		Mines []mineRecord `json:"mines"`
	}
	if err := c.get(ctx, "/mines", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list mines: %w", err)
	}

	mines := make([]models.Mine, 0, len(resp.Mines))
	for _, r := range resp.Mines {
		mines = append(mines, r.toModel())
	}
	return mines, nil
}

// ListTeams lists teams from GET /teams.
func (c *HTTPClient) ListTeams(ctx context.Context, f models.TeamFilter) ([]models.Team, error) {
	params := url.Values{}
	if f.UserAddress != "" {
		params.Set("user_address", f.UserAddress)
	}
	if f.AvailableOnly {
		params.Set("is_team_available", "1")
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}

	var resp struct {
		Teams []teamRecord `json:"teams"`
	}
	if err := c.get(ctx, "/teams", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	teams := make([]models.Team, 0, len(resp.Teams))
	for _, r := range resp.Teams {
		teams = append(teams, r.toModel())
	}
	return teams, nil
}

// ListReinforceableMines lists the user's open mines and keeps the
// ones whose defense slot is open. The eligibility flag itself is
// computed by the game service.
func (c *HTTPClient) ListReinforceableMines(ctx context.Context, userAddress string) ([]models.Mine, error) {
	open, err := c.ListMines(ctx, models.MineFilter{
		UserAddress: userAddress,
		Status:      models.MineStatusOpen,
		Limit:       defaultPageLimit,
		Page:        1,
	})
	if err != nil {
		return nil, err
	}

	reinforceable := make([]models.Mine, 0, len(open))
	for _, m := range open {
		if m.CanReinforce {
			reinforceable = append(reinforceable, m)
		}
	}
	return reinforceable, nil
}

// GetMine retrieves a single mine from GET /mines/{id}.
func (c *HTTPClient) GetMine(ctx context.Context, gameID string) (*models.Mine, error) {
	var resp struct {
		Mine mineRecord `json:"mine"`
	}
	if err := c.get(ctx, "/mines/"+url.PathEscape(gameID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get mine %s: %w", gameID, err)
	}
	mine := resp.Mine.toModel()
	return &mine, nil
}

// ListLendableCandidates lists the lending market for a mine from
// GET /mines/{id}/lendings.
func (c *HTTPClient) ListLendableCandidates(ctx context.Context, gameID string) ([]models.Candidate, error) {
	var resp struct {
		Candidates []models.Candidate `json:"candidates"`
	}
	if err := c.get(ctx, "/mines/"+url.PathEscape(gameID)+"/lendings", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list candidates for mine %s: %w", gameID, err)
	}
	return resp.Candidates, nil
}

// defaultPageLimit bounds single-page listings; paging beyond the
// first page is not implemented.
const defaultPageLimit = 200

// get performs a GET request against the game API and decodes the
// JSON response into out.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrMineNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
