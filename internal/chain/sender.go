package chain

import (
	"context"

	"github.com/mining-game-bot/internal/models"
)

// Sender submits game transactions to the chain and waits for their
// receipts. Submission does not imply execution; callers must check
// the receipt status.
type Sender interface {
	// SubmitClose submits a transaction closing the given mine and
	// claiming its reward.
	SubmitClose(ctx context.Context, gameID string) (models.TxHandle, error)

	// SubmitDispatch submits a transaction sending the given team to
	// start a new mine.
	SubmitDispatch(ctx context.Context, teamID string) (models.TxHandle, error)

	// SubmitReinforce submits a transaction borrowing the candidate
	// for the given mine at the given price.
	SubmitReinforce(ctx context.Context, gameID, candidateID string, price uint64) (models.TxHandle, error)

	// AwaitReceipt blocks until the transaction is mined and returns
	// its receipt. No timeout is applied beyond the caller's context.
	AwaitReceipt(ctx context.Context, tx models.TxHandle) (*models.Receipt, error)
}
