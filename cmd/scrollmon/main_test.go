package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/scroll-monitor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithConfig(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	t.Setenv(config.EnvConfigPath, path)
	return path
}

func TestRun(t *testing.T) {
	isolate(t)

	t.Run("no command shows help", func(t *testing.T) {
		stdout, _, err := runWithConfig(t)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Available commands:")
		assert.Contains(t, stdout, "run (script)")
		assert.Contains(t, stdout, "demo")
	})

	t.Run("help flag", func(t *testing.T) {
		stdout, _, err := runWithConfig(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Usage: scrollmon <command>")
	})

	t.Run("version", func(t *testing.T) {
		stdout, _, err := runWithConfig(t, "version")
		require.NoError(t, err)
		assert.Equal(t, "scrollmon version "+version+"\n", stdout)
	})

	t.Run("unknown command", func(t *testing.T) {
		_, stderr, err := runWithConfig(t, "frobnicate")
		require.Error(t, err)
		assert.Contains(t, stderr, "Unknown command: frobnicate")
	})

	t.Run("bad flag", func(t *testing.T) {
		_, stderr, err := runWithConfig(t, "run", "-nope")
		require.Error(t, err)
		assert.Contains(t, stderr, "Usage: scrollmon run")
	})

	t.Run("command -h", func(t *testing.T) {
		_, stderr, err := runWithConfig(t, "demo", "-h")
		require.NoError(t, err)
		assert.Contains(t, stderr, "-sections")
	})

	t.Run("script alias", func(t *testing.T) {
		stdout, _, err := runWithConfig(t, "script", "-e", `console.log(typeof require('scrollmon:monitor').create)`)
		require.NoError(t, err)
		assert.Equal(t, "function\n", stdout)
	})
}

func TestRun_InitThenConfig(t *testing.T) {
	path := isolate(t)

	stdout, _, err := runWithConfig(t, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	_, _, err = runWithConfig(t, "config", "-section", "demo", "sections", "3")
	require.NoError(t, err)

	// a fresh invocation reads the persisted value
	stdout, _, err = runWithConfig(t, "config", "-section", "demo", "sections")
	require.NoError(t, err)
	assert.Equal(t, "sections: 3\n", stdout)

	stdout, _, err = runWithConfig(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sections 3")
}
