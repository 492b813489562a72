// Package store holds the in-memory domain store: the users, subjects,
// grades, schedules and curriculum topics of one school, with the
// referential-integrity rules that govern them.
//
// Every exported method is safe for concurrent use. Reads take a shared lock;
// each mutation validates and applies under one exclusive lock, so a check
// such as schedule-slot uniqueness can never interleave with another writer.
package store

import (
	"slices"
	"strconv"
	"sync"

	"github.com/noah-isme/colegio-api/internal/models"
)

// CredentialVerifier compares a stored credential hash with a presented
// password. The session layer supplies the implementation.
type CredentialVerifier interface {
	Verify(hash, password string) bool
}

// PasswordHasher turns a plaintext password into the stored credential hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Store is an owned repository of the five domain collections.
type Store struct {
	mu sync.RWMutex

	users     collection[models.User]
	subjects  collection[models.Subject]
	grades    collection[models.Grade]
	schedules collection[models.Schedule]
	topics    collection[models.CurriculumTopic]
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:     newCollection[models.User](),
		subjects:  newCollection[models.Subject](),
		grades:    newCollection[models.Grade](),
		schedules: newCollection[models.Schedule](),
		topics:    newCollection[models.CurriculumTopic](),
	}
}

// collection is an insertion-ordered map with its own sequential id counter.
// Ids are never reused, even after a delete.
type collection[T any] struct {
	next  int
	order []string
	items map[string]T
}

func newCollection[T any]() collection[T] {
	return collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) nextID() string {
	c.next++
	return strconv.Itoa(c.next)
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) put(id string, v T) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = v
	// keep the counter ahead of explicitly assigned numeric ids
	if n, err := strconv.Atoi(id); err == nil && n > c.next {
		c.next = n
	}
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	if idx := slices.Index(c.order, id); idx >= 0 {
		c.order = slices.Delete(c.order, idx, idx+1)
	}
	return true
}

func (c *collection[T]) len() int {
	return len(c.order)
}

// each visits items in insertion order until fn returns false.
func (c *collection[T]) each(fn func(T) bool) {
	for _, id := range c.order {
		if !fn(c.items[id]) {
			return
		}
	}
}

// some reports whether an item satisfies pred.
func (c *collection[T]) some(pred func(T) bool) bool {
	found := false
	c.each(func(v T) bool {
		if pred(v) {
			found = true
			return false
		}
		return true
	})
	return found
}

// filter returns the items satisfying pred, converted with conv, in insertion order.
func filter[T, R any](c *collection[T], pred func(T) bool, conv func(T) R) []R {
	out := make([]R, 0)
	c.each(func(v T) bool {
		if pred == nil || pred(v) {
			out = append(out, conv(v))
		}
		return true
	})
	return out
}
