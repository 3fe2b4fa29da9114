package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/servekit/internal/bodylimit"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servekit.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()
	model, err := Load(context.Background(), "")
	require.NoError(t, err)

	if diff := cmp.Diff(Defaults(), model); diff != "" {
		t.Errorf("unexpected model (-want +got):\n%s", diff)
	}
	assert.True(t, model.BodyLimit.Enabled)
	assert.Equal(t, int64(10_485_760), model.BodyLimit.MaxBytes)
}

func TestLoadFullFile(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  listen_addr          = ":9090"
  cors_allowed_origins = ["https://example.com"]
  body_limit {
    max_bytes = 2097152
  }
}
log {
  level  = "debug"
  format = "text"
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)

	want := &Model{
		ListenAddr:         ":9090",
		CORSAllowedOrigins: []string{"https://example.com"},
		BodyLimit:          bodylimit.Enabled(2_097_152),
		LogLevel:           "debug",
		LogFormat:          "text",
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("unexpected model (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  listen_addr = ":3000"
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", model.ListenAddr)
	assert.Equal(t, bodylimit.Default(), model.BodyLimit)
	assert.Equal(t, "info", model.LogLevel)
	assert.Equal(t, "json", model.LogFormat)
}

func TestLoadDisabledBodyLimit(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  body_limit {
    disabled = true
  }
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, model.BodyLimit.Enabled)
}

func TestLoadSizeString(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  body_limit {
    max_bytes = "10MiB"
  }
}
`)

	model, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, bodylimit.Enabled(10<<20), model.BodyLimit)
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
}

func TestLoadInvalidHCLFails(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `server { listen_addr = `)
	_, err := Load(context.Background(), path)
	require.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		contents string
	}{
		{
			name:     "negative max_bytes",
			contents: `server { body_limit { max_bytes = -1 } }`,
		},
		{
			name:     "bad log level",
			contents: `log { level = "verbose" }`,
		},
		{
			name:     "bad log format",
			contents: `log { format = "xml" }`,
		},
		{
			name:     "empty listen addr",
			contents: `server { listen_addr = "" }`,
		},
		{
			name:     "garbage size unit",
			contents: `server { body_limit { max_bytes = "10parsecs" } }`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tc.contents)
			_, err := Load(context.Background(), path)
			require.Error(t, err)
		})
	}
}

func TestParseSizeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want int64
	}{
		{"10485760", 10_485_760},
		{"10MiB", 10 << 20},
		{"10mib", 10 << 20},
		{"1 GiB", 1 << 30},
		{"512kb", 512_000},
		{"512KiB", 512 << 10},
		{"2gb", 2_000_000_000},
		{"100b", 100},
	}
	for _, tc := range testCases {
		got, err := parseSizeString(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	for _, bad := range []string{"", "MiB", "ten", "10 lightyears"} {
		_, err := parseSizeString(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
