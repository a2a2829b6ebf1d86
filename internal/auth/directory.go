package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hamar-padhai/progression/internal/models"
	"github.com/hamar-padhai/progression/internal/store"
)

var ErrUserNotFound = errors.New("user not found")

// currentProfileKey points at the single local profile used by the CLI.
const currentProfileKey = "userId"

func userKey(id string) string { return "user_" + id }

// Directory provisions and looks up user profiles in the progression store.
type Directory struct {
	kv store.Store
}

func NewDirectory(kv store.Store) *Directory {
	return &Directory{kv: kv}
}

// DefaultName returns a generated display name like "छात्र_4821".
func DefaultName() string {
	return fmt.Sprintf("छात्र_%d", rand.IntN(9999))
}

// Register creates a new profile. An empty name gets a generated default.
func (d *Directory) Register(ctx context.Context, name string, now time.Time) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName()
	}

	user := models.User{
		ID:        "user_" + uuid.NewString(),
		Name:      name,
		CreatedAt: now,
	}
	if err := store.SaveJSON(ctx, d.kv, userKey(user.ID), user); err != nil {
		return models.User{}, fmt.Errorf("register user: %w", err)
	}
	return user, nil
}

func (d *Directory) Lookup(ctx context.Context, id string) (models.User, error) {
	var user models.User
	found, err := store.LoadJSON(ctx, d.kv, userKey(id), &user)
	if err != nil {
		return models.User{}, fmt.Errorf("lookup user %s: %w", id, err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// Rename changes the display name. Blank names are rejected.
func (d *Directory) Rename(ctx context.Context, id, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, errors.New("name is required")
	}

	user, err := d.Lookup(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Name = name
	if err := store.SaveJSON(ctx, d.kv, userKey(id), user); err != nil {
		return models.User{}, fmt.Errorf("rename user: %w", err)
	}
	return user, nil
}

// CurrentProfile returns the store's single local profile, creating it on
// first use.
func (d *Directory) CurrentProfile(ctx context.Context, now time.Time) (models.User, error) {
	raw, ok, err := d.kv.Get(ctx, currentProfileKey)
	if err != nil {
		return models.User{}, fmt.Errorf("read current profile: %w", err)
	}
	if ok {
		user, err := d.Lookup(ctx, string(raw))
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return models.User{}, err
		}
	}

	user, err := d.Register(ctx, "", now)
	if err != nil {
		return models.User{}, err
	}
	if err := d.kv.Set(ctx, currentProfileKey, []byte(user.ID)); err != nil {
		return models.User{}, fmt.Errorf("save current profile: %w", err)
	}
	return user, nil
}
