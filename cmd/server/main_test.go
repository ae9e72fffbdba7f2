package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))
	t.Setenv("SUBGRAPH_URL_PRIMARY", "http://127.0.0.1:1/primary")
	t.Setenv("SUBGRAPH_URL_TEST", "http://127.0.0.1:1/test")
	t.Setenv("PDS_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("LOG_LEVEL", "error")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "sweep"}, names)
}

func TestSweepCommandWithSQLite(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("NONCE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "file:"+t.TempDir()+"/invitegate.sqlite")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"sweep"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "0\n", out.String())
}

func TestMigrateRejectsMemoryDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("NONCE_BACKEND", "memory")

	root := newRootCommand()
	root.SetArgs([]string{"migrate"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sql STORAGE_DRIVER")
}

func TestServeFailsOnInvalidConfig(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")
	root := newRootCommand()
	root.SetArgs([]string{"serve"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}
