// Package clitest builds command contexts backed by a temporary SQLite store.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/config"
	"github.com/julianstephens/streakline/internal/storage/sqlite"
)

// NewContext returns an initialized context for user "tester" in UTC, and the
// buffer its output goes to.
func NewContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Database = filepath.Join(dir, "streakline.db")
	cfg.User = "tester"
	cfg.Timezone = "UTC"

	store := sqlite.NewStore(cfg.Database)
	require.NoError(t, store.Init(context.Background()))

	ctx, err := cli.Setup(context.Background(), cfg, store)
	require.NoError(t, err)
	ctx.ConfigPath = filepath.Join(dir, "config.yaml")

	out := &bytes.Buffer{}
	ctx.Out = out
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, out
}
