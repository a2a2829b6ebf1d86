package gamification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

// UserLookup resolves a user id to its profile.
type UserLookup interface {
	Lookup(ctx context.Context, id string) (models.User, error)
}

// Runner delivers events one at a time, in arrival order. Each user's
// engines are loaded on their first event and kept for the life of the
// Runner, so a change whose write failed stays in memory and is rewritten
// by the next mutation of the same record. All users share one leaderboard.
type Runner struct {
	mu       sync.Mutex
	records  *Store
	users    UserLookup
	clock    func() time.Time
	loc      *time.Location
	log      *zap.Logger
	board    *Leaderboard
	services map[string]*Service
}

func NewRunner(kv store.Store, users UserLookup, clock func() time.Time, loc *time.Location, log *zap.Logger) *Runner {
	if loc == nil {
		loc = time.Local
	}
	return &Runner{
		records:  NewStore(kv, log),
		users:    users,
		clock:    clock,
		loc:      loc,
		log:      log,
		services: make(map[string]*Service),
	}
}

// Do calls fn with userID's engines as of the current time.
func (r *Runner) Do(ctx context.Context, userID string, fn func(svc *Service, now time.Time) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.users.Lookup(ctx, userID)
	if err != nil {
		return err
	}

	now := r.clock().In(r.loc)
	svc, ok := r.services[user.ID]
	if !ok {
		if r.board == nil {
			r.board = NewLeaderboard(ctx, r.records, r.log)
		}
		svc = openUser(ctx, r.records, user, now, r.board, r.log)
		r.services[user.ID] = svc
	} else {
		// Profile edits such as a rename happen outside the Runner.
		svc.user = user
	}
	return fn(svc, now)
}
