// Package storage provides the small key-value store behind the wardrobe, avatar and
// linktree state. Values are opaque byte blobs, in practice JSON documents.
package storage

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Provider is a string-keyed blob store.
type Provider interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Keys lists stored keys in lexical order.
	Keys() ([]string, error)
}

// Updater is implemented by providers that can apply a read-modify-write atomically
// with respect to other writers in the same process.
type Updater interface {
	Update(key string, fn UpdateFunc) error
}

// UpdateFunc receives the current value (nil when absent) and returns the new one.
// Returning a nil slice removes the key.
type UpdateFunc func(current []byte) ([]byte, error)

// Update applies fn to key on p, atomically when p implements Updater.
func Update(p Provider, key string, fn UpdateFunc) error {
	if u, ok := p.(Updater); ok {
		return u.Update(key, fn)
	}
	return applyUpdate(p, key, fn)
}

func applyUpdate(p Provider, key string, fn UpdateFunc) error {
	current, err := p.Get(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return p.Remove(key)
	}
	return p.Set(key, next)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateKey rejects keys that are empty, too long or unsafe as file names.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Memory is an in-process Provider, mainly for tests.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory returns an empty Memory provider.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

// Get implements Provider.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements Provider.
func (m *Memory) Set(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Remove implements Provider.
func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys implements Provider.
func (m *Memory) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Update implements Updater.
func (m *Memory) Update(key string, fn UpdateFunc) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var current []byte
	if v, ok := m.data[key]; ok {
		current = append([]byte(nil), v...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		delete(m.data, key)
		return nil
	}
	m.data[key] = append([]byte(nil), next...)
	return nil
}
