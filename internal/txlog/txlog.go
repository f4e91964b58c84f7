package txlog

import (
	"context"
	"sync"
	"time"

	"github.com/mining-game-bot/internal/models"
)

// Sink records submitted transactions and their receipts for audit
// purposes. Writes are side effects only; callers do not depend on
// reading anything back.
type Sink interface {
	// RecordSubmission records that a transaction was submitted for
	// the given action.
	RecordSubmission(ctx context.Context, action string, tx models.TxHandle) error

	// RecordReceipt records the receipt obtained for a previously
	// submitted transaction.
	RecordReceipt(ctx context.Context, action string, receipt *models.Receipt) error
}

// Entry is one audited transaction.
type Entry struct {
	TxHash      models.TxHandle
	Action      string
	SubmittedAt time.Time
	Status      int
	BlockNum    uint64
	MinedAt     time.Time
}

// MemorySink keeps audit entries in memory. Used in tests and when
// Cassandra is disabled.
type MemorySink struct {
	mu      sync.RWMutex
	entries map[models.TxHandle]*Entry
}

// NewMemorySink creates a new in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{
		entries: make(map[models.TxHandle]*Entry),
	}
}

// RecordSubmission records a submission in memory
func (s *MemorySink) RecordSubmission(ctx context.Context, action string, tx models.TxHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[tx] = &Entry{
		TxHash:      tx,
		Action:      action,
		SubmittedAt: time.Now(),
	}
	return nil
}

// RecordReceipt records a receipt in memory
func (s *MemorySink) RecordReceipt(ctx context.Context, action string, receipt *models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[receipt.TxHash]
	if !exists {
		entry = &Entry{TxHash: receipt.TxHash, Action: action}
		s.entries[receipt.TxHash] = entry
	}
	entry.Status = receipt.Status
	entry.BlockNum = receipt.BlockNum
	entry.MinedAt = receipt.MinedAt
	return nil
}

// Entries returns a snapshot of all recorded entries
func (s *MemorySink) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, *e)
	}
	return entries
}
