package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/storage"
)

// DefaultTTL is how long a cached identifier is trusted before it is
// fetched again.
const DefaultTTL = 24 * time.Hour

// fileVersion is written to every saved store.
const fileVersion = 1

// Kind scopes cache keys by entity type.
type Kind string

const (
	KindTeam    Kind = "team"
	KindProject Kind = "project"
)

// Kinds lists every resolvable kind.
var Kinds = []Kind{KindTeam, KindProject}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errs.Validation("unknown entity kind %q: must be \"team\" or \"project\"", s)
}

// Entry is one cached name-to-identifier mapping.
type Entry struct {
	Kind      Kind      `json:"kind"`
	Key       string    `json:"key"`
	ID        string    `json:"id"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsStale reports whether the entry is older than ttl at now.
// A zero FetchedAt is always stale.
func (e Entry) IsStale(ttl time.Duration, now time.Time) bool {
	if e.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(e.FetchedAt) > ttl
}

type record struct {
	ID        string    `json:"id"`
	FetchedAt time.Time `json:"fetched_at"`
}

type fileFormat struct {
	Version int                `json:"version"`
	Entries map[string]*record `json:"entries"`
}

// Store is the in-memory copy of the cache file.
type Store struct {
	mu        sync.Mutex
	path      string
	entries   map[string]record
	dirty     bool
	recovered bool
}

// Path returns the cache file location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, "cache.json")
}

// LockPath returns the lock file used while saving the store at path.
func LockPath(path string) string {
	return path + ".lock"
}

// New returns an empty store that saves to path.
// An empty path gives an in-memory store whose Save is a no-op.
func New(path string) *Store {
	return &Store{path: path, entries: make(map[string]record)}
}

// Load reads the store at path. A missing, empty or unparsable file yields
// an empty store; only I/O errors other than not-exist are returned.
func Load(path string) (*Store, error) {
	s := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		// Corrupted - start fresh
		s.recovered = true
		return s, nil
	}

	for k, r := range f.Entries {
		if r == nil || r.ID == "" {
			continue
		}
		if _, _, ok := splitKey(k); !ok {
			continue
		}
		s.entries[k] = *r
	}

	return s, nil
}

// Recovered reports whether Load discarded an unreadable file.
func (s *Store) Recovered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recovered
}

// Get returns the entry for (kind, key).
func (s *Store) Get(kind Kind, key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.entries[makeKey(kind, key)]
	if !ok {
		return Entry{}, false
	}
	return Entry{Kind: kind, Key: key, ID: r.ID, FetchedAt: r.FetchedAt}, true
}

// Set inserts or overwrites the entry for (kind, key).
func (s *Store) Set(kind Kind, key, id string, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[makeKey(kind, key)] = record{ID: id, FetchedAt: fetchedAt.UTC()}
	s.dirty = true
}

// Delete removes the entry for (kind, key) and reports whether it existed.
func (s *Store) Delete(kind Kind, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := makeKey(kind, key)
	if _, ok := s.entries[k]; !ok {
		return false
	}
	delete(s.entries, k)
	s.dirty = true
	return true
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) > 0 {
		s.entries = make(map[string]record)
		s.dirty = true
	}
}

// Entries returns all entries sorted by kind, then key.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for k, r := range s.entries {
		kind, key, _ := splitKey(k)
		out = append(out, Entry{Kind: kind, Key: key, ID: r.ID, FetchedAt: r.FetchedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Dirty reports whether the store has unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save writes the store to disk atomically.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		s.dirty = false
		return nil
	}

	f := fileFormat{
		Version: fileVersion,
		Entries: make(map[string]*record, len(s.entries)),
	}
	for k, r := range s.entries {
		f.Entries[k] = &r
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	lock := NewFileLock(LockPath(s.path))
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	if err := storage.SaveJSON(s.path, f); err != nil {
		return err
	}

	s.dirty = false
	s.recovered = false
	return nil
}

func makeKey(kind Kind, key string) string {
	return string(kind) + ":" + key
}

func splitKey(k string) (Kind, string, bool) {
	kind, key, ok := strings.Cut(k, ":")
	if !ok || key == "" {
		return "", "", false
	}
	return Kind(kind), key, true
}
