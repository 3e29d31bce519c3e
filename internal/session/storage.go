// Package session persists the client session (auth token and a cached user) across runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"craft-storefront/internal/models"
)

const (
	TokenKey = "storefront_token"
	UserKey  = "storefront_user"
)

// ErrNotFound is returned by Storage.Get for a missing key.
var ErrNotFound = errors.New("session: key not found")

// Storage is durable client-side key/value storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// MemoryStorage keeps values for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// FileStorage keeps values in a single JSON file, rewritten on every change.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session.FileStorage.load: %w", err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("session.FileStorage.load: %w", err)
	}
	return values, nil
}

func (f *FileStorage) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session.FileStorage.save: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session.FileStorage.save: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStorage) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStorage) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return f.save(values)
}

// Token returns the persisted auth token, or "" when there is none.
func Token(ctx context.Context, s Storage) string {
	tok, err := s.Get(ctx, TokenKey)
	if err != nil {
		return ""
	}
	return tok
}

// Save persists the token and the user cache together.
func Save(ctx context.Context, s Storage, token string, user *models.User) error {
	if err := s.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("session.Save: token: %w", err)
	}
	return SaveUser(ctx, s, user)
}

// SaveUser refreshes the display cache of the current user.
func SaveUser(ctx context.Context, s Storage, user *models.User) error {
	if user == nil {
		return s.Delete(ctx, UserKey)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session.SaveUser: %w", err)
	}
	return s.Set(ctx, UserKey, string(data))
}

// CachedUser returns the last persisted user. It is a display fallback only;
// the auth store re-verifies against the API.
func CachedUser(ctx context.Context, s Storage) (*models.User, error) {
	raw, err := s.Get(ctx, UserKey)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("session.CachedUser: %w", err)
	}
	return &u, nil
}

// Clear removes every persisted session key.
func Clear(ctx context.Context, s Storage) error {
	return s.Delete(ctx, TokenKey, UserKey)
}
