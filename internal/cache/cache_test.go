package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphi011/linear/internal/errs"
)

func TestEntry_IsStale(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		fetchedAt time.Time
		want      bool
	}{
		{"zero time is stale", time.Time{}, true},
		{"recent entry is fresh", now.Add(-1 * time.Hour), false},
		{"old entry is stale", now.Add(-25 * time.Hour), true},
		{"just under ttl", now.Add(-DefaultTTL + time.Minute), false},
		{"just past ttl", now.Add(-DefaultTTL - time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := Entry{FetchedAt: tt.fetchedAt}
			if got := e.IsStale(DefaultTTL, now); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"team", "project"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q) error = %v", s, err)
		}
	}

	_, err := ParseKind("cycle")
	if !errs.Is(err, errs.KindValidation) {
		t.Errorf("ParseKind(cycle) error = %v, want validation error", err)
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	if got, want := Path("/home/user/.config/linear"), "/home/user/.config/linear/cache.json"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if got, want := LockPath("/x/cache.json"), "/x/cache.json.lock"; got != want {
		t.Errorf("LockPath() = %q, want %q", got, want)
	}
}

func TestLoad_TolerantOfBadFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		content       *string
		wantRecovered bool
	}{
		{"missing file", nil, false},
		{"empty file", ptr(""), false},
		{"whitespace only", ptr("  \n"), false},
		{"corrupt json", ptr("{not json"), true},
		{"wrong shape", ptr(`["team:ENG"]`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "cache.json")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			s, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if n := len(s.Entries()); n != 0 {
				t.Errorf("Entries() len = %d, want 0", n)
			}
			if s.Recovered() != tt.wantRecovered {
				t.Errorf("Recovered() = %v, want %v", s.Recovered(), tt.wantRecovered)
			}
		})
	}
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	content := `{
  "version": 7,
  "future_setting": true,
  "entries": {
    "team:ENG": {"id": "team_abc123", "fetched_at": "2026-01-02T03:04:05Z", "name": "Engineering"},
    "bogus": {"id": "x"},
    "project:Empty": {"id": ""}
  }
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e, ok := s.Get(KindTeam, "ENG")
	if !ok {
		t.Fatal("expected team:ENG entry")
	}
	if e.ID != "team_abc123" {
		t.Errorf("ID = %q, want team_abc123", e.ID)
	}
	if want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC); !e.FetchedAt.Equal(want) {
		t.Errorf("FetchedAt = %v, want %v", e.FetchedAt, want)
	}
	if n := len(s.Entries()); n != 1 {
		t.Errorf("Entries() len = %d, want 1 (malformed keys dropped)", n)
	}
}

func TestStore_SaveAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "linear", "cache.json")
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	s := New(path)
	s.Set(KindTeam, "ENG", "team_abc123", at)
	s.Set(KindProject, "ENG", "proj_1", at)
	if !s.Dirty() {
		t.Error("Dirty() = false after Set")
	}

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if s.Dirty() {
		t.Error("Dirty() = true after Save")
	}

	var raw struct {
		Version int                        `json:"version"`
		Entries map[string]json.RawMessage `json:"entries"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if raw.Version != fileVersion {
		t.Errorf("version = %d, want %d", raw.Version, fileVersion)
	}
	if _, ok := raw.Entries["team:ENG"]; !ok {
		t.Errorf("saved entries = %v, want key team:ENG", raw.Entries)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	team, ok := reloaded.Get(KindTeam, "ENG")
	if !ok || team.ID != "team_abc123" || !team.FetchedAt.Equal(at) {
		t.Errorf("reloaded team = %+v, %v", team, ok)
	}
	proj, ok := reloaded.Get(KindProject, "ENG")
	if !ok || proj.ID != "proj_1" {
		t.Errorf("kinds must not collide: project = %+v, %v", proj, ok)
	}
}

func TestStore_Overwrite(t *testing.T) {
	t.Parallel()

	s := New("")
	s.Set(KindTeam, "ENG", "old", time.Unix(0, 0))
	s.Set(KindTeam, "ENG", "new", time.Unix(100, 0))

	e, _ := s.Get(KindTeam, "ENG")
	if e.ID != "new" {
		t.Errorf("ID = %q, want last write to win", e.ID)
	}
	if n := len(s.Entries()); n != 1 {
		t.Errorf("Entries() len = %d, want 1", n)
	}
}

func TestStore_DeleteAndClear(t *testing.T) {
	t.Parallel()

	s := New("")
	s.Set(KindTeam, "ENG", "t1", time.Now())
	s.Set(KindTeam, "OPS", "t2", time.Now())
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	if s.Delete(KindTeam, "NOPE") {
		t.Error("Delete() of missing entry returned true")
	}
	if s.Dirty() {
		t.Error("Delete() of missing entry marked store dirty")
	}
	if !s.Delete(KindTeam, "ENG") {
		t.Error("Delete() of existing entry returned false")
	}
	if _, ok := s.Get(KindTeam, "ENG"); ok {
		t.Error("entry still present after Delete")
	}

	s.Clear()
	if n := len(s.Entries()); n != 0 {
		t.Errorf("Entries() len = %d after Clear, want 0", n)
	}
}

func TestStore_EntriesSorted(t *testing.T) {
	t.Parallel()

	s := New("")
	now := time.Now()
	s.Set(KindTeam, "OPS", "t2", now)
	s.Set(KindProject, "Website", "p1", now)
	s.Set(KindTeam, "ENG", "t1", now)

	got := s.Entries()
	want := []string{"project:Website", "team:ENG", "team:OPS"}
	if len(got) != len(want) {
		t.Fatalf("Entries() len = %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if k := string(e.Kind) + ":" + e.Key; k != want[i] {
			t.Errorf("Entries()[%d] = %s, want %s", i, k, want[i])
		}
	}
}

func TestStore_SaveRepairsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("\x00garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Set(KindTeam, "ENG", "team_abc123", time.Now())
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if s.Recovered() {
		t.Error("Recovered() should reset after a successful save")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Recovered() {
		t.Error("file still unreadable after save")
	}
	if _, ok := reloaded.Get(KindTeam, "ENG"); !ok {
		t.Error("expected entry after repair")
	}
}

func ptr(s string) *string { return &s }
