package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/raphi011/linear/internal/cache"
	"github.com/raphi011/linear/internal/config"
	"github.com/raphi011/linear/internal/linear"
	"github.com/raphi011/linear/internal/linear/lineartest"
	"github.com/raphi011/linear/internal/log"
	"github.com/raphi011/linear/internal/output"
	"github.com/raphi011/linear/internal/resolve"
)

// testEnv wires a command to a fake GraphQL server and a temporary
// config directory, the way setup does for a real invocation.
type testEnv struct {
	srv    *lineartest.Server
	cfg    *config.Config
	store  *cache.Store
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	ctx    context.Context
}

func newTestEnv(t *testing.T, format output.Format) *testEnv {
	t.Helper()

	cfg := config.Default(t.TempDir())
	cfg.APIKey = "lin_api_test"
	srv := lineartest.New(t)

	env := &testEnv{
		srv:    srv,
		cfg:    &cfg,
		store:  cache.New(cache.Path(cfg.Dir)),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}

	logger := log.New(env.stderr, false, false)
	client := linear.New(cfg.APIKey, linear.WithBaseURL(srv.URL), linear.WithLogger(logger))
	s := &session{
		cfg:      env.cfg,
		client:   client,
		resolver: resolve.New(env.store, client, resolve.WithLogger(logger)),
	}

	ctx := log.WithLogger(context.Background(), logger)
	ctx = config.WithConfig(ctx, env.cfg)
	ctx = output.WithPrinter(ctx, output.New(env.stdout, format, true))
	env.ctx = withSession(ctx, s)
	return env
}

func (e *testEnv) run(cmd *cobra.Command, args ...string) error {
	cmd.SetContext(e.ctx)
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func (e *testEnv) replyTeam(key, id string) {
	e.srv.Reply("TeamByKey", map[string]any{"teams": map[string]any{
		"nodes": []linear.Team{{ID: id, Key: key, Name: "Engineering"}},
	}})
}

func (e *testEnv) replyIssueID(id string) {
	e.srv.Reply("IssueID", map[string]any{"issues": map[string]any{
		"nodes": []map[string]string{{"id": id}},
	}})
}

func mutationReply(field string, ref linear.IssueRef) map[string]any {
	return map[string]any{field: map[string]any{"success": true, "issue": ref}}
}
