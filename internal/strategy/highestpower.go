package strategy

import (
	"sort"

	"github.com/mining-game-bot/internal/models"
)

// HighestPower selects the candidate with the highest mining power
// among those within the price ceiling.
type HighestPower struct{}

// SelectCandidate returns the affordable candidate with the highest
// mining power; candidates with equal power keep their pool order.
// When no candidate is affordable, strict mode fails with a
// PriceTooHighError, while non-strict mode falls back to the cheapest
// candidate regardless of power.
func (HighestPower) SelectCandidate(mine models.Mine, pool []models.Candidate, opts Options) (*models.Candidate, error) {
	if len(pool) == 0 {
		return nil, ErrNoCandidate
	}

	byPower := make([]models.Candidate, len(pool))
	copy(byPower, pool)
	sort.SliceStable(byPower, func(i, j int) bool {
		return byPower[i].MinePower > byPower[j].MinePower
	})

	for _, c := range byPower {
		if withinCeiling(c, opts.MaxPrice) {
			picked := c
			return &picked, nil
		}
	}

	// Nothing affordable. Fall back to the cheapest candidate unless
	// the caller asked for strict ceiling enforcement.
	cheapest := pool[0]
	for _, c := range pool[1:] {
		if c.Price < cheapest.Price {
			cheapest = c
		}
	}
	if opts.Strict {
		return nil, &PriceTooHighError{CheapestPrice: cheapest.Price, MaxPrice: *opts.MaxPrice}
	}
	return &cheapest, nil
}
