package models

import "time"

// MineStatus is the lifecycle state of a mine as reported by the game API.
type MineStatus string

const (
	MineStatusOpen   MineStatus = "open"
	MineStatusClosed MineStatus = "closed"
)

// Mine represents one round of the game committed by a team.
// The bot only ever holds read-only snapshots; the game service owns
// the record.
type Mine struct {
	GameID       string     `json:"game_id"`
	OwnerAddress string     `json:"owner_address"`
	EndTime      time.Time  `json:"end_time"`
	Status       MineStatus `json:"status"`
	// CanReinforce reports whether the defending team can still accept
	// a borrowed reinforcement. Computed by the game service from the
	// current in-game defense state.
	CanReinforce bool `json:"can_reinforce"`
}

// Team represents a group of participants owned by a user.
type Team struct {
	TeamID       string `json:"team_id"`
	OwnerAddress string `json:"owner_address"`
	Available    bool   `json:"available"`
}

// Candidate describes a lendable participant offered on the market.
// Price is expressed in the smallest on-chain unit.
type Candidate struct {
	CandidateID string `json:"candidate_id"`
	Price       uint64 `json:"price"`
	MinePower   int64  `json:"mine_power"`
}

// UserConfig holds per-user bot settings.
type UserConfig struct {
	Address string `json:"address" yaml:"address"`
	// MaxReinforcePrice is the price ceiling for borrowed
	// reinforcements; nil means no ceiling is configured.
	MaxReinforcePrice *uint64 `json:"max_reinforce_price,omitempty" yaml:"max_reinforce_price,omitempty"`
}

// TxHandle identifies a submitted blockchain transaction.
type TxHandle string

// Receipt statuses as reported by the chain.
const (
	ReceiptStatusSuccess = 1
)

// Receipt is the outcome record of a mined transaction.
type Receipt struct {
	TxHash   TxHandle  `json:"tx_hash"`
	Status   int       `json:"status"`
	BlockNum uint64    `json:"block_number"`
	MinedAt  time.Time `json:"mined_at"`
}

// Succeeded reports whether the transaction was executed successfully.
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccess
}

// TaskResponse reports the outcome of one orchestrator operation.
type TaskResponse struct {
	User  string `json:"user"`
	Task  string `json:"task"`
	Count int    `json:"count"`
}

// NextMineResponse describes the next mine to finish for a user.
type NextMineResponse struct {
	GameID    string `json:"game_id"`
	Remaining string `json:"remaining"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MineFilter narrows a mine listing request.
type MineFilter struct {
	UserAddress string
	Status      MineStatus
	Limit       int
	Page        int
}

// TeamFilter narrows a team listing request.
type TeamFilter struct {
	UserAddress   string
	AvailableOnly bool
	Limit         int
	Page          int
}
