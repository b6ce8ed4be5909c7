package main

import (
	"context"
	"errors"
	"os"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/config"
	"github.com/raphi011/linear/internal/credentials"
	"github.com/raphi011/linear/internal/errs"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/resolve"
)

// session is what API-backed commands work with: the config they ran
// under, the client and the name resolver.
type session struct {
	cfg      *config.Config
	client   *linear.Client
	resolver *resolve.Resolver
}

type sessionKey struct{}

var getenv = os.Getenv

// keyStore returns the credential store consulted for the API key.
// Tests swap it for a mock keyring.
var keyStore = func() *credentials.Manager {
	return credentials.NewManager()
}

func newSession(cfg *config.Config, logger *log.Logger) (*session, error) {
	key, source, err := cfg.ResolveAPIKey(getenv, keyStore())
	if err != nil {
		return nil, err
	}
	logger.Debug("api key", "source", source)

	client := linear.New(key,
		linear.WithBaseURL(cfg.APIURL),
		linear.WithTimeout(cfg.Timeout),
		linear.WithLogger(logger),
	)

	path := cache.Path(cfg.Dir)
	store, err := cache.Load(path)
	if err != nil {
		logger.Warnf("cannot read cache, continuing without it: %v", err)
		store = cache.New(path)
	}
	if store.Recovered() {
		logger.Debug("cache file was unreadable, starting empty", "path", path)
	}

	return &session{
		cfg:      cfg,
		client:   client,
		resolver: resolve.New(store, client, resolve.WithTTL(cfg.CacheTTL), resolve.WithLogger(logger)),
	}, nil
}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(ctx context.Context) (*session, error) {
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s, nil
	}
	return nil, errors.New("no API session configured")
}

// team resolves the --team flag, falling back to default_team.
func (s *session) team(ctx context.Context, flag string) (string, error) {
	return s.resolver.TeamOrDefault(ctx, flag, s.cfg.DefaultTeam)
}

// optionalTeam is team for commands that also work across all teams:
// with neither flag nor default it returns "".
func (s *session) optionalTeam(ctx context.Context, flag string) (string, error) {
	key, err := resolve.TeamKey(flag, s.cfg.DefaultTeam)
	if errs.Is(err, errs.KindConfig) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.resolver.ID(ctx, cache.KindTeam, key)
}

// optionalTeamKey returns the team key from the flag or default_team, or "".
func (s *session) optionalTeamKey(flag string) string {
	key, _ := resolve.TeamKey(flag, s.cfg.DefaultTeam)
	return key
}

// project resolves a project name to its id.
func (s *session) project(ctx context.Context, name string) (string, error) {
	return s.resolver.ID(ctx, cache.KindProject, name)
}

// issue resolves an issue reference (ENG-123 or an id) to its id.
func (s *session) issue(ctx context.Context, ref string) (string, error) {
	return s.resolver.Issue(ctx, ref)
}

// issueTeam returns the team id of the referenced issue. Identifiers
// carry the team key, which resolves through the cache; bare ids need
// the issue itself.
func (s *session) issueTeam(ctx context.Context, ref, issueID string) (string, error) {
	if key, _, ok := resolve.ParseIdentifier(ref); ok {
		return s.resolver.ID(ctx, cache.KindTeam, key)
	}
	is, err := s.client.Issue(ctx, issueID)
	if err != nil {
		return "", err
	}
	return is.Team.ID, nil
}

// flagTeamKey normalizes an explicit --team value without consulting
// default_team.
func (s *session) flagTeamKey(flag string) string {
	return resolve.NormalizeKey(cache.KindTeam, flag)
}
