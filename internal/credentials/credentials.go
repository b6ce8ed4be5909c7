// Package credentials stores the Linear API key in the OS keyring
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
package credentials

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// Keyring entry coordinates.
const (
	Service = "linear-cli"
	Account = "api_key"
)

// ErrNotFound is returned when no key is stored.
var ErrNotFound = errors.New("api key not found in keyring")

// Keyring is the interface for keyring operations
type Keyring interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// Manager reads and writes the API key.
type Manager struct {
	keyring Keyring
}

// ManagerOption is a functional option for Manager
type ManagerOption func(*Manager)

// WithKeyring sets a custom keyring implementation
func WithKeyring(k Keyring) ManagerOption {
	return func(m *Manager) {
		m.keyring = k
	}
}

// NewManager creates a manager backed by the system keyring unless
// another is supplied.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{keyring: systemKeyring{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// APIKey returns the stored key.
func (m *Manager) APIKey() (string, error) {
	v, err := m.keyring.Get(Service, Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return v, nil
}

// SetAPIKey stores key.
func (m *Manager) SetAPIKey(key string) error {
	if err := m.keyring.Set(Service, Account, key); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// DeleteAPIKey removes the stored key. Deleting a missing key is not an
// error.
func (m *Manager) DeleteAPIKey() error {
	err := m.keyring.Delete(Service, Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring entry: %w", err)
	}
	return nil
}

type systemKeyring struct{}

func (systemKeyring) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}

func (systemKeyring) Get(service, account string) (string, error) {
	return keyring.Get(service, account)
}

func (systemKeyring) Delete(service, account string) error {
	return keyring.Delete(service, account)
}

// MockKeyring is an in-memory Keyring for tests.
type MockKeyring struct {
	mu    sync.RWMutex
	store map[string]string // service/account -> secret
}

// NewMockKeyring creates an empty mock keyring.
func NewMockKeyring() *MockKeyring {
	return &MockKeyring{store: make(map[string]string)}
}

func (m *MockKeyring) Set(service, account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[service+"/"+account] = secret
	return nil
}

func (m *MockKeyring) Get(service, account string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[service+"/"+account]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m *MockKeyring) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := service + "/" + account
	if _, ok := m.store[k]; !ok {
		return keyring.ErrNotFound
	}
	delete(m.store, k)
	return nil
}
