package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"craft-storefront/internal/models"
)

// RepositoryInterface defines methods for interacting with user storage.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)

	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Repository keeps users in memory. Every read and write goes through a copy so
// callers never share state with the store.
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	revoked map[string]time.Time
}

func NewRepository() RepositoryInterface {
	return &Repository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		revoked: make(map[string]time.Time),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Repository) FindByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u.Clone(), nil
}

// FindByEmail returns the user including the password hash.
func (r *Repository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *Repository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := emailKey(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return nil, models.ErrConflict
	}
	stored := user.Clone()
	r.byID[stored.ID] = stored
	r.byEmail[key] = stored.ID
	return stored.Clone(), nil
}

// Update replaces the stored user, keeping the email index consistent.
func (r *Repository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[user.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	oldKey, newKey := emailKey(old.Email), emailKey(user.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return nil, models.ErrConflict
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}
	stored := user.Clone()
	r.byID[user.ID] = stored
	return stored.Clone(), nil
}

func (r *Repository) RevokeToken(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *Repository) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}
