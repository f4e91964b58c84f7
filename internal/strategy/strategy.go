package strategy

import (
	"errors"
	"fmt"

	"github.com/mining-game-bot/internal/models"
)

// Options control how a strategy applies the user's price ceiling.
type Options struct {
	// Strict makes the strategy fail with a PriceTooHighError instead
	// of relaxing the ceiling when no candidate is affordable.
	Strict bool
	// MaxPrice is the price ceiling in the smallest on-chain unit;
	// nil means no ceiling is enforced.
	MaxPrice *uint64
}

// Strategy selects the reinforcement candidate to borrow for a mine.
// Implementations are pure selections over the supplied pool snapshot;
// the mine is available for policies that weigh its current state.
type Strategy interface {
	SelectCandidate(mine models.Mine, pool []models.Candidate, opts Options) (*models.Candidate, error)
}

// ErrNoCandidate is returned when the pool has no lendable candidate
// at all.
var ErrNoCandidate = errors.New("no reinforcement candidate available")

// PriceTooHighError is returned when every candidate exceeds the price
// ceiling and the strategy has no fallback.
type PriceTooHighError struct {
	// CheapestPrice is the lowest price found in the pool.
	CheapestPrice uint64
	// MaxPrice is the ceiling that was exceeded.
	MaxPrice uint64
}

func (e *PriceTooHighError) Error() string {
	return fmt.Sprintf("cheapest candidate costs %d which exceeds the price ceiling of %d", e.CheapestPrice, e.MaxPrice)
}

// withinCeiling reports whether the candidate is affordable under the
// given ceiling; a nil ceiling admits everything.
func withinCeiling(c models.Candidate, maxPrice *uint64) bool {
	return maxPrice == nil || c.Price <= *maxPrice
}
