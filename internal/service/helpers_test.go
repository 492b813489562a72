package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/colegio-api/internal/models"
	"github.com/noah-isme/colegio-api/internal/store"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
)

var testHasher = BcryptHasher{Cost: bcrypt.MinCost}

var (
	adminActor    = Actor{ID: "1", Role: models.RoleAdmin}
	juanActor     = Actor{ID: "2", Role: models.RoleTeacher}
	mariaActor    = Actor{ID: "3", Role: models.RoleTeacher}
	carlosActor   = Actor{ID: "4", Role: models.RoleStudent}
	anaActor      = Actor{ID: "5", Role: models.RoleStudent}
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Seed(testHasher))
	return s
}

func ptr[T any](v T) *T { return &v }

// memoryCache is a CacheRepository backed by a map of JSON payloads.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	n := 0
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			n++
		}
	}
	return n, nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *memoryCache) patterns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// recordingInvalidator captures the patterns a mutation asks to drop.
type recordingInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (r *recordingInvalidator) Invalidate(patterns ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, patterns...)
}

func (r *recordingInvalidator) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.patterns...)
}
