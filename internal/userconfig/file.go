package userconfig

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mining-game-bot/internal/models"
)

// usersFile is the YAML shape of the per-user settings seed file:
//
//	users:
//	  - address: "0xabc..."
//	    max_reinforce_price: 25000000000000000000
type usersFile struct {
	Users []models.UserConfig `yaml:"users"`
}

// LoadFile reads per-user settings from a YAML seed file.
func LoadFile(path string) ([]models.UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var parsed usersFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}

	for i, u := range parsed.Users {
		if u.Address == "" {
			return nil, fmt.Errorf("users file entry %d has no address", i)
		}
	}
	return parsed.Users, nil
}

// Seed loads the users file and stores every entry, overwriting any
// existing settings for the same address.
func Seed(ctx context.Context, store Store, path string) (int, error) {
	users, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	for i := range users {
		if err := store.Put(ctx, &users[i]); err != nil {
			return i, fmt.Errorf("failed to seed user %s: %w", users[i].Address, err)
		}
	}
	return len(users), nil
}
