package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mining-game-bot/internal/alert"
	"github.com/mining-game-bot/internal/chain"
	"github.com/mining-game-bot/internal/game"
	"github.com/mining-game-bot/internal/gamequery"
	"github.com/mining-game-bot/internal/models"
	"github.com/mining-game-bot/internal/strategy"
	"github.com/mining-game-bot/internal/txlog"
	"github.com/mining-game-bot/internal/userconfig"
	"github.com/mining-game-bot/pkg/logger"
)

// listLimit bounds every listing call to a single page. Paging beyond
// the first page is a stated limitation; accounts with more open mines
// or teams than this are processed partially per run.
const listLimit = 200

// Action names used in audit records and alerts.
const (
	actionClose     = "close"
	actionDispatch  = "dispatch"
	actionReinforce = "reinforce"
)

// Bot orchestrates the recurring game actions for one or more users.
// Each operation is self-contained: it fetches fresh remote state,
// acts on each candidate in listed order, and isolates one candidate's
// failure from the rest of the batch.
type Bot struct {
	games             gamequery.Service
	sender            chain.Sender
	users             userconfig.Store
	auditLog          txlog.Sink
	alerts            alert.Notifier
	reinforceStrategy strategy.Strategy
	logger            *logger.Logger
	now               func() time.Time
}

// NewBot creates a bot over the given collaborators.
func NewBot(
	games gamequery.Service,
	sender chain.Sender,
	users userconfig.Store,
	auditLog txlog.Sink,
	alerts alert.Notifier,
	reinforceStrategy strategy.Strategy,
	log *logger.Logger,
) *Bot {
	return &Bot{
		games:             games,
		sender:            sender,
		users:             users,
		auditLog:          auditLog,
		alerts:            alerts,
		reinforceStrategy: reinforceStrategy,
		logger:            log,
		now:               time.Now,
	}
}

// CloseFinishedMines closes every open mine of the user whose end time
// has elapsed and returns the number of mines closed. A mine that
// fails to close does not stop the remaining mines from being tried.
func (b *Bot) CloseFinishedMines(ctx context.Context, userAddress string) (int, error) {
	openMines, err := b.games.ListMines(ctx, models.MineFilter{
		UserAddress: userAddress,
		Status:      models.MineStatusOpen,
		Limit:       listLimit,
		Page:        1,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list open mines: %w", err)
	}

	now := b.now()
	finished := make([]models.Mine, 0, len(openMines))
	for _, m := range openMines {
		if game.IsFinished(m, now) {
			finished = append(finished, m)
		}
	}

	if len(finished) == 0 {
		fields := []logger.Field{logger.F("user", userAddress)}
		if next := game.NextToFinish(openMines, now); next != nil {
			fields = append(fields, logger.F("next_in", game.FormatRemaining(*next, now)))
		}
		b.logger.Info("No mines to close", fields...)
		return 0, nil
	}

	closed := 0
	for _, m := range finished {
		b.logger.Info("Closing mine", logger.F("game_id", m.GameID))

		tx, err := b.sender.SubmitClose(ctx, m.GameID)
		if err != nil {
			b.reportSubmitFailure(ctx, actionClose, m.GameID, err)
			continue
		}
		if b.settle(ctx, actionClose, tx) {
			closed++
			b.logger.Info("Mine closed", logger.F("game_id", m.GameID), logger.F("tx_hash", string(tx)))
		} else {
			b.logger.Error("Error closing mine", logger.F("game_id", m.GameID), logger.F("tx_hash", string(tx)))
		}
	}

	return closed, nil
}

// DispatchAvailableTeams sends every available team of the user to
// start a new mine and returns the number of teams dispatched. The
// created mine is not tracked locally.
func (b *Bot) DispatchAvailableTeams(ctx context.Context, userAddress string) (int, error) {
	teams, err := b.games.ListTeams(ctx, models.TeamFilter{
		UserAddress:   userAddress,
		AvailableOnly: true,
		Limit:         listLimit,
		Page:          1,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list available teams: %w", err)
	}

	available := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		if t.Available {
			available = append(available, t)
		}
	}

	if len(available) == 0 {
		b.logger.Info("No teams to dispatch", logger.F("user", userAddress))
		return 0, nil
	}

	dispatched := 0
	for _, t := range available {
		b.logger.Info("Dispatching team", logger.F("team_id", t.TeamID))

		tx, err := b.sender.SubmitDispatch(ctx, t.TeamID)
		if err != nil {
			b.reportSubmitFailure(ctx, actionDispatch, t.TeamID, err)
			continue
		}
		if b.settle(ctx, actionDispatch, tx) {
			dispatched++
			b.logger.Info("Team dispatched", logger.F("team_id", t.TeamID), logger.F("tx_hash", string(tx)))
		} else {
			b.logger.Error("Error dispatching team", logger.F("team_id", t.TeamID), logger.F("tx_hash", string(tx)))
		}
	}

	return dispatched, nil
}

// ReinforceMines borrows a reinforcement for every open mine of the
// user whose defending team can still accept one, and returns the
// number of mines reinforced. Mines for which no acceptable candidate
// exists are skipped with a warning, not counted as failures.
func (b *Bot) ReinforceMines(ctx context.Context, userAddress string) (int, error) {
	userCfg, err := b.userConfig(ctx, userAddress)
	if err != nil {
		return 0, fmt.Errorf("failed to load user config: %w", err)
	}

	mines, err := b.games.ListReinforceableMines(ctx, userAddress)
	if err != nil {
		return 0, fmt.Errorf("failed to list reinforceable mines: %w", err)
	}

	if len(mines) == 0 {
		b.logger.Info("No mines to reinforce", logger.F("user", userAddress))
		return 0, nil
	}

	reinforced := 0
	for _, m := range mines {
		// The ceiling may have been changed since the batch started;
		// re-read it per mine and fall back to the initial load if the
		// store is briefly unreachable.
		ceiling := userCfg.MaxReinforcePrice
		if fresh, err := b.userConfig(ctx, userAddress); err == nil {
			ceiling = fresh.MaxReinforcePrice
		} else {
			b.logger.Warn("Could not refresh user config, using cached ceiling",
				logger.F("user", userAddress), logger.F("error", err.Error()))
		}

		pool, err := b.games.ListLendableCandidates(ctx, m.GameID)
		if err != nil {
			b.logger.Error("Failed to fetch candidate pool",
				logger.F("game_id", m.GameID), logger.F("error", err.Error()))
			continue
		}

		candidate, err := b.reinforceStrategy.SelectCandidate(m, pool, strategy.Options{
			Strict:   false,
			MaxPrice: ceiling,
		})
		if err != nil {
			var priceErr *strategy.PriceTooHighError
			switch {
			case errors.As(err, &priceErr):
				b.logger.Warn("Reinforcement price exceeds user ceiling",
					logger.F("game_id", m.GameID),
					logger.F("price", strconv.FormatUint(priceErr.CheapestPrice, 10)),
					logger.F("max_price", strconv.FormatUint(priceErr.MaxPrice, 10)))
			case errors.Is(err, strategy.ErrNoCandidate):
				b.logger.Warn("Could not find a candidate to lend", logger.F("game_id", m.GameID))
			default:
				b.logger.Warn("Reinforcement selection failed",
					logger.F("game_id", m.GameID), logger.F("error", err.Error()))
			}
			continue
		}

		b.logger.Info("Borrowing reinforcement",
			logger.F("candidate_id", candidate.CandidateID),
			logger.F("game_id", m.GameID),
			logger.F("price", strconv.FormatUint(candidate.Price, 10)))

		tx, err := b.sender.SubmitReinforce(ctx, m.GameID, candidate.CandidateID, candidate.Price)
		if err != nil {
			b.reportSubmitFailure(ctx, actionReinforce, m.GameID, err)
			continue
		}
		if b.settle(ctx, actionReinforce, tx) {
			reinforced++
			b.logger.Info("Mine reinforced", logger.F("game_id", m.GameID), logger.F("tx_hash", string(tx)))
		} else {
			b.logger.Error("Error reinforcing mine", logger.F("game_id", m.GameID), logger.F("tx_hash", string(tx)))
		}
	}

	return reinforced, nil
}

// settle records the submitted transaction, blocks until its receipt
// is available, records the receipt, and classifies the outcome. A
// non-success status raises an operator alert and reports false; it
// does not fail the batch.
func (b *Bot) settle(ctx context.Context, action string, tx models.TxHandle) bool {
	if err := b.auditLog.RecordSubmission(ctx, action, tx); err != nil {
		b.logger.Warn("Failed to audit transaction submission",
			logger.F("tx_hash", string(tx)), logger.F("error", err.Error()))
	}

	receipt, err := b.sender.AwaitReceipt(ctx, tx)
	if err != nil {
		b.logger.Error("Error waiting for transaction receipt",
			logger.F("action", action), logger.F("tx_hash", string(tx)), logger.F("error", err.Error()))
		b.alerts.Notify(ctx, fmt.Sprintf("mining bot: ERROR %s > %s", action, tx))
		return false
	}

	if err := b.auditLog.RecordReceipt(ctx, action, receipt); err != nil {
		b.logger.Warn("Failed to audit transaction receipt",
			logger.F("tx_hash", string(tx)), logger.F("error", err.Error()))
	}

	if !receipt.Succeeded() {
		b.logger.Error("Transaction reverted",
			logger.F("action", action),
			logger.F("tx_hash", string(tx)),
			logger.F("status", strconv.Itoa(receipt.Status)))
		b.alerts.Notify(ctx, fmt.Sprintf("mining bot: ERROR %s > %s", action, tx))
		return false
	}

	return true
}

// reportSubmitFailure handles a transaction the relay refused before a
// receipt existed: error log plus one operator alert, batch continues.
func (b *Bot) reportSubmitFailure(ctx context.Context, action, itemID string, err error) {
	b.logger.Error("Failed to submit transaction",
		logger.F("action", action), logger.F("item", itemID), logger.F("error", err.Error()))
	b.alerts.Notify(ctx, fmt.Sprintf("mining bot: ERROR %s %s (submit failed)", action, itemID))
}

// userConfig loads the user's settings; an unknown user gets empty
// settings, meaning no price ceiling is enforced at this layer.
func (b *Bot) userConfig(ctx context.Context, userAddress string) (*models.UserConfig, error) {
	cfg, err := b.users.Get(ctx, userAddress)
	if err != nil {
		if errors.Is(err, userconfig.ErrUserNotFound) {
			return &models.UserConfig{Address: userAddress}, nil
		}
		return nil, err
	}
	return cfg, nil
}
