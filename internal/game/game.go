package game

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mining-game-bot/internal/models"
)

// MineGetter is the slice of the game query service needed to refresh
// a single mine record.
type MineGetter interface {
	GetMine(ctx context.Context, gameID string) (*models.Mine, error)
}

// RemainingTime returns the time left until the mine's end time.
// Negative when the mine is already past due.
func RemainingTime(m models.Mine, now time.Time) time.Duration {
	return m.EndTime.Sub(now)
}

// IsFinished reports whether the mine is past its end time.
func IsFinished(m models.Mine, now time.Time) bool {
	return RemainingTime(m, now) <= 0
}

// IsClosed reports whether the mine's reward has been claimed. The
// status is read through to the game service so a stale snapshot does
// not misreport a mine that was closed since it was listed.
func IsClosed(ctx context.Context, games MineGetter, m models.Mine) (bool, error) {
	fresh, err := games.GetMine(ctx, m.GameID)
	if err != nil {
		return false, fmt.Errorf("failed to refresh mine %s: %w", m.GameID, err)
	}
	return fresh.Status == models.MineStatusClosed, nil
}

// NextToFinish returns the unfinished mine with the earliest end time,
// or nil if every mine in the list is already finished. Mines sharing
// an end time keep their listed order.
func NextToFinish(mines []models.Mine, now time.Time) *models.Mine {
	unfinished := make([]models.Mine, 0, len(mines))
	for _, m := range mines {
		if !IsFinished(m, now) {
			unfinished = append(unfinished, m)
		}
	}
	if len(unfinished) == 0 {
		return nil
	}
	sort.SliceStable(unfinished, func(i, j int) bool {
		return unfinished[i].EndTime.Before(unfinished[j].EndTime)
	})
	next := unfinished[0]
	return &next
}

// FormatRemaining renders the time left on a mine as hours, minutes
// and seconds. Past-due mines render as "0s".
func FormatRemaining(m models.Mine, now time.Time) string {
	return prettyDuration(RemainingTime(m, now))
}

func prettyDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
