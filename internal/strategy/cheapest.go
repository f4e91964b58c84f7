package strategy

import (
	"sort"

	"github.com/mining-game-bot/internal/models"
)

// Cheapest selects the lowest-priced candidate in the pool.
type Cheapest struct{}

// SelectCandidate returns the cheapest candidate whose price is within
// the ceiling. With no ceiling it returns the global cheapest. When the
// global cheapest still exceeds the ceiling, strict mode fails with a
// PriceTooHighError; otherwise the ceiling is relaxed and the global
// cheapest is returned anyway.
func (Cheapest) SelectCandidate(mine models.Mine, pool []models.Candidate, opts Options) (*models.Candidate, error) {
	if len(pool) == 0 {
		return nil, ErrNoCandidate
	}

	byPrice := make([]models.Candidate, len(pool))
	copy(byPrice, pool)
	sort.SliceStable(byPrice, func(i, j int) bool {
		return byPrice[i].Price < byPrice[j].Price
	})

	cheapest := byPrice[0]
	if withinCeiling(cheapest, opts.MaxPrice) {
		return &cheapest, nil
	}
	if opts.Strict {
		return nil, &PriceTooHighError{CheapestPrice: cheapest.Price, MaxPrice: *opts.MaxPrice}
	}
	return &cheapest, nil
}
