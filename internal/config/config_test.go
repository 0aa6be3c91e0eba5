package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/fields"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gqltz.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func loadConfig(t *testing.T, path string) *Config {
	t.Helper()

	mod, err := (&DefaultLoader{}).Load(path)
	require.NoError(t, err)

	cfg, ok := mod.(*Config)
	require.True(t, ok)

	return cfg
}

func TestDefaultLoader_Init(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".gqltz.toml")
	loader := &DefaultLoader{}

	require.NoError(t, loader.Init(path))

	cfg := loadConfig(t, path)
	require.NotNil(t, cfg.Fields)
	require.Equal(t, fields.DefaultDirect(), cfg.Fields.Direct)
	require.Equal(t, fields.DefaultPaired(), cfg.Fields.Paired)

	err := loader.Init(path)
	require.ErrorContains(t, err, "already exists")
}

func TestDefaultLoader_Load(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		expectedErr string
	}{
		{
			name: "full config",
			content: `
[daemon]
addr = "0.0.0.0:8090"
upstream = "http://localhost:4000/graphql"
graphql_path = "/graphql"
timezone = "America/New_York"
timezone_header = "X-Timezone"
shutdown_timeout = "5s"

[daemon.cors]
enable = true
allow_origins = ["http://localhost:3000"]

[fields]
direct = ["createdAt", "updatedAt"]

[[fields.paired]]
date = "startDate"
time = "startTime"
combined = "startDateTime"
`,
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name: "field classified twice",
			content: `
[fields]
direct = ["startDate"]

[[fields.paired]]
date = "startDate"
time = "startTime"
`,
			expectedErr: "classified as direct and paired date",
		},
		{
			name: "unknown timezone",
			content: `
[daemon]
timezone = "Mars/Olympus_Mons"
`,
			expectedErr: "unknown timezone",
		},
		{
			name: "relative upstream",
			content: `
[daemon]
upstream = "localhost:4000"
`,
			expectedErr: "must be an absolute http or https URL",
		},
		{
			name:        "malformed toml",
			content:     `[daemon`,
			expectedErr: "failed to decode config",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfigFile(t, tc.content)
			_, err := (&DefaultLoader{}).Load(path)
			if tc.expectedErr != "" {
				require.ErrorIs(t, err, ErrConfigLoadFailed)
				require.ErrorContains(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDefaultLoader_LoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := (&DefaultLoader{}).Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, ErrConfigLoadFailed)
	require.ErrorContains(t, err, "run: 'gqltz init'")

	_, err = (&DefaultLoader{}).Load("  ")
	require.ErrorContains(t, err, "path cannot be empty")
}

func TestConfig_Registry(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	reg, err := cfg.Registry()
	require.NoError(t, err)
	require.Equal(t, fields.Default().Direct(), reg.Direct())

	cfg = &Config{Fields: &FieldsConfig{
		Direct: []string{"publishedAt"},
		Paired: []fields.Pair{{Date: "shiftDate", Time: "shiftTime"}},
	}}
	reg, err = cfg.Registry()
	require.NoError(t, err)
	require.True(t, reg.IsDirect("publishedAt"))
	require.False(t, reg.IsDirect("createdAt"))
	require.Equal(t, []fields.Pair{{Date: "shiftDate", Time: "shiftTime", Combined: "shiftDateTime"}}, reg.Pairs())
}

func TestConfig_AddDirectField(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")
	cfg := loadConfig(t, path)

	result, err := cfg.AddDirectField("publishedAt")
	require.NoError(t, err)
	require.Equal(t, Created, result)

	// Adding to an empty file starts from the built-in classification.
	reloaded := loadConfig(t, path)
	require.Contains(t, reloaded.Fields.ListDirect(), "publishedAt")
	require.Contains(t, reloaded.Fields.ListDirect(), "createdAt")
	require.Equal(t, fields.DefaultPaired(), reloaded.Fields.ListPaired())

	result, err = reloaded.AddDirectField("publishedAt")
	require.NoError(t, err)
	require.Equal(t, Noop, result)

	_, err = reloaded.AddDirectField("  ")
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestConfig_AddDirectFieldConflict(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")
	cfg := loadConfig(t, path)

	result, err := cfg.AddDirectField("startTime")
	require.ErrorIs(t, err, fields.ErrInvalidRegistry)
	require.Equal(t, Noop, result)

	// A rejected change leaves the configuration untouched.
	require.Nil(t, cfg.Fields)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, content)
}

func TestConfig_AddPairedField(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "[fields]\ndirect = [\"createdAt\"]\n")
	cfg := loadConfig(t, path)

	result, err := cfg.AddPairedField(fields.Pair{Date: "shiftDate", Time: "shiftTime"})
	require.NoError(t, err)
	require.Equal(t, Created, result)

	result, err = cfg.AddPairedField(fields.Pair{Date: "shiftDate", Time: "shiftTime"})
	require.NoError(t, err)
	require.Equal(t, Noop, result)

	result, err = cfg.AddPairedField(fields.Pair{Date: "shiftDate", Time: "shiftStart", Combined: "shiftAt"})
	require.NoError(t, err)
	require.Equal(t, Updated, result)

	reloaded := loadConfig(t, path)
	require.Equal(t, []fields.Pair{{Date: "shiftDate", Time: "shiftStart", Combined: "shiftAt"}}, reloaded.Fields.ListPaired())

	_, err = cfg.AddPairedField(fields.Pair{Date: "", Time: "x"})
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = cfg.AddPairedField(fields.Pair{Date: "createdAt", Time: "x"})
	require.ErrorIs(t, err, fields.ErrInvalidRegistry)
}

func TestConfig_RemoveField(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")
	cfg := loadConfig(t, path)

	result, err := cfg.RemoveField("endTime")
	require.NoError(t, err)
	require.Equal(t, Deleted, result)

	result, err = cfg.RemoveField("createdAt")
	require.NoError(t, err)
	require.Equal(t, Deleted, result)

	reloaded := loadConfig(t, path)
	require.NotContains(t, reloaded.Fields.ListDirect(), "createdAt")
	require.Equal(t, []fields.Pair{{Date: "startDate", Time: "startTime", Combined: "startDateTime"}}, reloaded.Fields.ListPaired())

	_, err = reloaded.RemoveField("nope")
	require.ErrorContains(t, err, "field 'nope' not found in config")
}

func TestConfig_SaveConfig(t *testing.T) {
	t.Parallel()

	addr := "localhost:9000"
	upstream := "https://api.example.com/graphql"
	shutdown := Duration(0)
	require.NoError(t, shutdown.UnmarshalText([]byte("10s")))

	cfg := &Config{
		Daemon: &DaemonConfig{
			Addr:            &addr,
			Upstream:        &upstream,
			ShutdownTimeout: &shutdown,
		},
		Fields: &FieldsConfig{Direct: []string{"createdAt"}},
	}

	err := cfg.SaveConfig()
	require.ErrorContains(t, err, "config file path not present")

	cfg.configFilePath = filepath.Join(t.TempDir(), ".gqltz.toml")
	require.NoError(t, cfg.SaveConfig())

	loaded := loadConfig(t, cfg.configFilePath)
	assert.Equal(t, cfg.Daemon, loaded.Daemon)
	assert.Equal(t, cfg.Fields, loaded.Fields)
}
