package gamification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

var errStoreDown = errors.New("store unavailable")

// flakyStore wraps a MemoryStore and fails writes while failWrites is set.
type flakyStore struct {
	*store.MemoryStore
	mu         sync.Mutex
	failWrites bool
	writes     int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: store.NewMemoryStore()}
}

func (f *flakyStore) setFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failWrites
	if !fail {
		f.writes++
	}
	f.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return f.MemoryStore.Set(ctx, key, value)
}

// at returns a fixed UTC instant.
func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func newRecords(kv store.Store) *Store {
	return NewStore(kv, zap.NewNop())
}

func testUser(id string) models.User {
	return models.User{ID: id, Name: "छात्र_" + id}
}

func openService(t *testing.T, kv store.Store, id string, now time.Time) *Service {
	t.Helper()
	return Open(context.Background(), kv, testUser(id), now, zap.NewNop())
}

func challengeIDs(defs []models.ChallengeDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}

func badgeIDs(defs []models.BadgeDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}

func findBadge(t *testing.T, id string) models.BadgeDefinition {
	t.Helper()
	for _, b := range Badges {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("badge %q not in catalog", id)
	return models.BadgeDefinition{}
}
