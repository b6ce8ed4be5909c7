package resolve

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/log"
)

// Fetcher looks names up on the remote side. *linear.Client implements it.
type Fetcher interface {
	TeamID(ctx context.Context, key string) (string, error)
	ProjectID(ctx context.Context, name string) (string, error)
	IssueIDByIdentifier(ctx context.Context, teamKey string, number int) (string, error)
}

// Source tells where a resolved id came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceFetch Source = "fetch"
	SourceStale Source = "stale"
)

// Resolved is the outcome of a lookup.
type Resolved struct {
	ID     string
	Source Source
}

// Stale reports whether the id is an expired cache entry served because
// the remote was unavailable.
func (r Resolved) Stale() bool {
	return r.Source == SourceStale
}

// Resolver maps names to ids through a cache.
type Resolver struct {
	store *cache.Store
	fetch Fetcher
	ttl   time.Duration
	now   func() time.Time
	log   *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL sets how long cached entries are trusted. A zero TTL makes every
// entry stale, so every lookup fetches.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithLogger sets the logger that receives stale-value warnings.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// New creates a Resolver over store and fetch.
func New(store *cache.Store, fetch Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		store: store,
		fetch: fetch,
		ttl:   cache.DefaultTTL,
		now:   time.Now,
		log:   log.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying cache.
func (r *Resolver) Store() *cache.Store {
	return r.store
}

// NormalizeKey returns the cache key used for name: team keys are upper
// case, project names lower case. Both are trimmed.
func NormalizeKey(kind cache.Kind, name string) string {
	name = strings.TrimSpace(name)
	if kind == cache.KindTeam {
		return strings.ToUpper(name)
	}
	return strings.ToLower(name)
}

// Resolve returns the id for name.
func (r *Resolver) Resolve(ctx context.Context, kind cache.Kind, name string) (Resolved, error) {
	if _, err := cache.ParseKind(string(kind)); err != nil {
		return Resolved{}, err
	}
	key := NormalizeKey(kind, name)
	if key == "" {
		return Resolved{}, errs.Validation("%s name must not be empty", kind)
	}

	entry, cached := r.store.Get(kind, key)
	if cached && !entry.IsStale(r.ttl, r.now()) {
		r.log.Debug("cache hit", "kind", kind, "key", key)
		return Resolved{ID: entry.ID, Source: SourceCache}, nil
	}

	id, err := r.lookup(ctx, kind, key, strings.TrimSpace(name))
	if err != nil {
		if cached && errs.Is(err, errs.KindRemoteUnavailable) {
			r.log.Warnf("using cached %s %q from %s: %v", kind, key, entry.FetchedAt.Local().Format(time.DateTime), err)
			return Resolved{ID: entry.ID, Source: SourceStale}, nil
		}
		return Resolved{}, err
	}

	r.store.Set(kind, key, id, r.now())
	r.persist()
	return Resolved{ID: id, Source: SourceFetch}, nil
}

// ID is Resolve returning only the id.
func (r *Resolver) ID(ctx context.Context, kind cache.Kind, name string) (string, error) {
	res, err := r.Resolve(ctx, kind, name)
	if err != nil {
		return "", err
	}
	return res.ID, nil
}

// lookup fetches the id on a miss. Projects are queried by name as typed;
// the API matches them ignoring case.
func (r *Resolver) lookup(ctx context.Context, kind cache.Kind, key, name string) (string, error) {
	r.log.Debug("cache miss", "kind", kind, "key", key)
	switch kind {
	case cache.KindTeam:
		return r.fetch.TeamID(ctx, key)
	default:
		return r.fetch.ProjectID(ctx, name)
	}
}

// Invalidate removes the entry for name. A missing entry is a no-op.
func (r *Resolver) Invalidate(kind cache.Kind, name string) error {
	if _, err := cache.ParseKind(string(kind)); err != nil {
		return err
	}
	if r.store.Delete(kind, NormalizeKey(kind, name)) {
		return r.store.Save()
	}
	return nil
}

// Reconcile corrects the cache from an authoritative listing of
// id -> canonical name. Entries mapping another name to a listed id are
// invalidated, then every listed pair is stored as fresh.
func (r *Resolver) Reconcile(kind cache.Kind, canonical map[string]string) error {
	if _, err := cache.ParseKind(string(kind)); err != nil {
		return err
	}
	for _, e := range r.store.Entries() {
		if e.Kind != kind {
			continue
		}
		name, ok := canonical[e.ID]
		if ok && NormalizeKey(kind, name) != e.Key {
			r.log.Debug("renamed", "kind", kind, "old", e.Key, "new", name)
			r.store.Delete(kind, e.Key)
		}
	}
	now := r.now()
	for id, name := range canonical {
		if key := NormalizeKey(kind, name); key != "" {
			r.store.Set(kind, key, id, now)
		}
	}
	if !r.store.Dirty() {
		return nil
	}
	return r.store.Save()
}

// persist saves the store. A failed save never fails the lookup that
// triggered it.
func (r *Resolver) persist() {
	if err := r.store.Save(); err != nil {
		r.log.Warnf("could not save cache: %v", err)
	}
}

var identifierRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*)-([0-9]+)$`)

// ParseIdentifier splits "ENG-123" into its team key and number.
func ParseIdentifier(ref string) (teamKey string, number int, ok bool) {
	m := identifierRe.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(m[1]), n, true
}

// Issue resolves an issue reference to its internal id. References that
// are not of the form TEAM-NUMBER are taken to be internal ids already.
func (r *Resolver) Issue(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errs.Validation("issue id must not be empty")
	}
	key, n, ok := ParseIdentifier(ref)
	if !ok {
		return ref, nil
	}
	id, err := r.fetch.IssueIDByIdentifier(ctx, key, n)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return "", errs.NotFound("issue not found: %s-%d", key, n)
		}
		return "", err
	}
	return id, nil
}

// TeamKey picks the team for a command: flag when set, otherwise the
// configured default.
func TeamKey(flag, defaultTeam string) (string, error) {
	if key := NormalizeKey(cache.KindTeam, flag); key != "" {
		return key, nil
	}
	if key := NormalizeKey(cache.KindTeam, defaultTeam); key != "" {
		return key, nil
	}
	return "", errs.WithSuggestion(
		errs.Config("no team specified"),
		"Pass --team or set default_team in config",
	)
}

// TeamOrDefault resolves the team named by flag, or by defaultTeam when
// flag is empty.
func (r *Resolver) TeamOrDefault(ctx context.Context, flag, defaultTeam string) (string, error) {
	key, err := TeamKey(flag, defaultTeam)
	if err != nil {
		return "", err
	}
	return r.ID(ctx, cache.KindTeam, key)
}
