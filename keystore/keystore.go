// Package keystore persists signing keys by name.
package keystore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/allyabase/sessionless-go"
)

// ErrNotFound is returned by Load when no key is stored under a name.
var ErrNotFound = errors.New("key not found")

// Store saves and loads key pairs by name.
type Store interface {
	Save(name string, key *sessionless.KeyPair) error
	Load(name string) (*sessionless.KeyPair, error)
	// Names lists stored key names in ascending order.
	Names() ([]string, error)
}

// LoadOrGenerate returns the key stored under name, generating and saving
// a new one when there is none.
func LoadOrGenerate(store Store, name string) (*sessionless.KeyPair, error) {
	key, err := store.Load(name)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	key, err = sessionless.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := store.Save(name, key); err != nil {
		return nil, fmt.Errorf("failed to save generated key %q: %w", name, err)
	}
	return key, nil
}

// Memory keeps keys in a map. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	keys map[string]string
}

func (m *Memory) Save(name string, key *sessionless.KeyPair) error {
	if key == nil {
		return fmt.Errorf("cannot save nil key %q", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = make(map[string]string)
	}
	m.keys[name] = key.PrivateKeyHex()
	return nil
}

func (m *Memory) Load(name string) (*sessionless.KeyPair, error) {
	m.mu.RLock()
	priv, ok := m.keys[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return sessionless.ParsePrivateKey(priv)
}

func (m *Memory) Names() ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.keys))
	for name := range m.keys {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names, nil
}
