package userconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const validUsersYAML = `
users:
  - address: "0xabc"
    max_reinforce_price: 250
  - address: "0xdef"
`

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTempFile(t, validUsersYAML)

	users, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	if users[0].Address != "0xabc" {
		t.Errorf("Address = %q, want 0xabc", users[0].Address)
	}
	if users[0].MaxReinforcePrice == nil || *users[0].MaxReinforcePrice != 250 {
		t.Errorf("MaxReinforcePrice = %v, want 250", users[0].MaxReinforcePrice)
	}
	if users[1].MaxReinforcePrice != nil {
		t.Errorf("expected no ceiling for 0xdef, got %v", *users[1].MaxReinforcePrice)
	}
}

func TestLoadFile_MissingAddress(t *testing.T) {
	path := writeTempFile(t, "users:\n  - max_reinforce_price: 10\n")

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for entry without address, got none")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got none")
	}
}

func TestSeed(t *testing.T) {
	path := writeTempFile(t, validUsersYAML)
	store := NewMemoryStore()

	seeded, err := Seed(context.Background(), store, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seeded != 2 {
		t.Errorf("expected 2 seeded users, got %d", seeded)
	}

	cfg, err := store.Get(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxReinforcePrice == nil || *cfg.MaxReinforcePrice != 250 {
		t.Errorf("MaxReinforcePrice = %v, want 250", cfg.MaxReinforcePrice)
	}
}

func TestMemoryStore_GetUnknownUser(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "0xmissing"); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
