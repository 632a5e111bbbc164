package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore(nil)

	if _, ok := store.Get("missing"); ok {
		t.Error("Get on empty store should miss")
	}

	store.Set("key", "value", 0)
	if v, ok := store.Get("key"); !ok || v != "value" {
		t.Errorf("Get() = (%q, %v), want (value, true)", v, ok)
	}

	store.Delete("key")
	if _, ok := store.Get("key"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })

	store.Set("session", "abc", 2*time.Hour)

	now = now.Add(time.Hour)
	if _, ok := store.Get("session"); !ok {
		t.Error("entry expired before its TTL")
	}

	now = now.Add(time.Hour)
	if _, ok := store.Get("session"); ok {
		t.Error("entry should expire exactly at its TTL boundary")
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })

	store.Set("visitor", "abc", 0)
	now = now.Add(1000 * 24 * time.Hour)
	if _, ok := store.Get("visitor"); !ok {
		t.Error("zero TTL must mean no expiry")
	}
}

func TestMemoryStore_SetRewritesTTL(t *testing.T) {
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore(func() time.Time { return now })

	store.Set("session", "abc", 2*time.Hour)
	now = now.Add(90 * time.Minute)
	store.Set("session", "abc", 2*time.Hour) // activity refresh

	now = now.Add(90 * time.Minute)
	if _, ok := store.Get("session"); !ok {
		t.Error("refreshed entry expired inside its new window")
	}
}

func TestBuntStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	store, err := OpenBuntStore(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenBuntStore() error = %v", err)
	}
	defer store.Close()

	store.Set("key", "value", 0)
	if v, ok := store.Get("key"); !ok || v != "value" {
		t.Errorf("Get() = (%q, %v), want (value, true)", v, ok)
	}

	store.Delete("key")
	if _, ok := store.Get("key"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestNewStore_DegradesToMemory(t *testing.T) {
	// A directory path cannot be opened as a database file
	store := NewStore(t.TempDir(), zerolog.Nop())

	store.Set("key", "value", 0)
	if v, ok := store.Get("key"); !ok || v != "value" {
		t.Error("degraded store should still hold values in memory")
	}
}
