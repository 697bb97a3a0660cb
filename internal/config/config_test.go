package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`# scrollmon
resize.debounce 250ms
log.level debug

[demo]
sections 4
offset   -2

[run]
timeout 5s
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.GetWarnings())

	v, ok := cfg.GetGlobalOption("resize.debounce")
	assert.True(t, ok)
	assert.Equal(t, "250ms", v)

	v, ok = cfg.GetCommandOption("demo", "offset")
	assert.True(t, ok)
	assert.Equal(t, "-2", v)

	// falls back to global
	v, ok = cfg.GetCommandOption("demo", "log.level")
	assert.True(t, ok)
	assert.Equal(t, "debug", v)

	_, ok = cfg.GetCommandOption("nonexistent", "option")
	assert.False(t, ok)
}

func TestLoadFromReader_Warnings(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`verbose true
resize.debounce soon
log.level loud

[demo]
sections many
`))
	require.NoError(t, err)
	require.True(t, cfg.HasWarnings())
	assert.Equal(t, []string{
		`global option "log.level": expected one of debug, info, warn, error, got "loud"`,
		`global option "resize.debounce": expected duration, got "soon"`,
		`option "sections" in [demo]: expected int, got "many"`,
		`unknown global option: "verbose" (value: "true")`,
	}, cfg.GetWarnings())
}

func TestLoadFromReader_EmptySection(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[ ]\n"))
	require.EqualError(t, err, "line 1: empty section name")
}

func TestLoadFromPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := LoadFromPath(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Global)

	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte("log.file /tmp/scrollmon.log\n"), 0644))
	cfg, err = LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/scrollmon.log", cfg.Global["log.file"])

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(path, link))
	_, err = LoadFromPath(link)
	require.ErrorContains(t, err, "symlink not allowed")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/scrollmon.conf")
	p, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/scrollmon.conf", p)

	home := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", home)
	p, err = GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".scrollmon", "config"), p)

	require.NoError(t, EnsureConfigDir())
	assert.DirExists(t, filepath.Join(home, ".scrollmon"))
}

func TestSetKeyInFile(t *testing.T) {
	t.Parallel()
	for _, tc := range [...]struct {
		name     string
		initial  string
		section  string
		key      string
		value    string
		expected string
	}{
		{
			name:     "empty file",
			key:      "log.level",
			value:    "debug",
			expected: "log.level debug\n",
		},
		{
			name:     "replace global",
			initial:  "# comment\nlog.level info\n\n[demo]\nlog.level warn\n",
			key:      "log.level",
			value:    "error",
			expected: "# comment\nlog.level error\n\n[demo]\nlog.level warn\n",
		},
		{
			name:     "insert global before first section",
			initial:  "log.level info\n[demo]\nsections 3\n",
			key:      "resize.debounce",
			value:    "1s",
			expected: "log.level info\nresize.debounce 1s\n[demo]\nsections 3\n",
		},
		{
			name:     "replace in section",
			initial:  "sections 1\n[demo]\nsections 3\n[run]\ntimeout 1s\n",
			section:  "demo",
			key:      "sections",
			value:    "9",
			expected: "sections 1\n[demo]\nsections 9\n[run]\ntimeout 1s\n",
		},
		{
			name:     "append to section followed by another",
			initial:  "[demo]\nsections 3\n[run]\ntimeout 1s\n",
			section:  "demo",
			key:      "offset",
			value:    "2",
			expected: "[demo]\nsections 3\noffset 2\n[run]\ntimeout 1s\n",
		},
		{
			name:     "create section",
			initial:  "log.level info\n",
			section:  "run",
			key:      "timeout",
			value:    "10s",
			expected: "log.level info\n\n[run]\ntimeout 10s\n",
		},
		{
			name:     "empty value",
			initial:  "log.file /x\n",
			key:      "log.file",
			expected: "log.file\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "nested", "config")
			if tc.initial != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
				require.NoError(t, os.WriteFile(path, []byte(tc.initial), 0644))
			}
			require.NoError(t, SetKeyInFile(path, tc.section, tc.key, tc.value))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))

			cfg, err := LoadFromPath(path)
			require.NoError(t, err)
			got, ok := cfg.GetCommandOption(tc.section, tc.key)
			assert.True(t, ok)
			assert.Equal(t, tc.value, got)
		})
	}
}
