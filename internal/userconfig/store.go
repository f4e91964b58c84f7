package userconfig

import (
	"context"
	"sync"

	"github.com/mining-game-bot/internal/models"
)

// Store provides per-user bot settings.
type Store interface {
	// Get retrieves the settings for a user address.
	Get(ctx context.Context, address string) (*models.UserConfig, error)

	// Put stores the settings for a user address.
	Put(ctx context.Context, cfg *models.UserConfig) error
}

// Errors
var (
	ErrUserNotFound = &StoreError{Message: "user config not found"}
)

// StoreError represents a user config storage error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// MemoryStore keeps user settings in memory. Used in tests and when
// Redis is disabled.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.UserConfig
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.UserConfig),
	}
}

// Get retrieves user settings from memory
func (s *MemoryStore) Get(ctx context.Context, address string) (*models.UserConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, exists := s.users[address]
	if !exists {
		return nil, ErrUserNotFound
	}

	copied := *cfg
	return &copied, nil
}

// Put stores user settings in memory
func (s *MemoryStore) Put(ctx context.Context, cfg *models.UserConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *cfg
	s.users[cfg.Address] = &copied
	return nil
}
