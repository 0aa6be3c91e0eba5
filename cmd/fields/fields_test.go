package fields

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/fields"
	"github.com/mozilla-ai/gqltz/internal/flags"
)

// fileConfigLoader loads a configuration file from a fixed path.
type fileConfigLoader struct {
	path string
}

func (f *fileConfigLoader) Load(_ string) (config.Modifier, error) {
	return (&config.DefaultLoader{}).Load(f.path)
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gqltz.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFieldsConfig(t *testing.T, path string) *config.FieldsConfig {
	t.Helper()

	var cfg config.Config
	_, err := toml.DecodeFile(path, &cfg)
	require.NoError(t, err)
	return cfg.Fields
}

func execute(
	t *testing.T,
	newFn func(*cmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error),
	loader config.Loader,
	args ...string,
) (string, error) {
	t.Helper()

	base := &cmd.BaseCmd{}
	base.SetLogger(hclog.NewNullLogger())

	c, err := newFn(base, cmdopts.WithConfigLoader(loader))
	require.NoError(t, err)

	var stdout bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)

	err = c.Execute()
	return stdout.String(), err
}

func TestNewCmd_SubCommands(t *testing.T) {
	t.Parallel()

	c, err := NewCmd(&cmd.BaseCmd{})
	require.NoError(t, err)

	var names []string
	for _, sub := range c.Commands() {
		names = append(names, sub.Name())
	}
	require.ElementsMatch(t, []string{"list", "add-direct", "add-pair", "remove"}, names)
}

// List tests set flags.ConfigFile and are not parallel.
func TestListCmd(t *testing.T) {
	configured := writeConfigFile(t, `[fields]
direct = ["publishedAt"]

[[fields.paired]]
date = "shiftDate"
time = "shiftTime"
`)

	tests := []struct {
		name       string
		configFile string
		args       []string
		want       string
	}{
		{
			name:       "built-in text",
			configFile: filepath.Join(t.TempDir(), "missing.toml"),
			want: "Datetime fields (built-in):\n" +
				"  Direct (5):\n" +
				"    createdAt\n" +
				"    updatedAt\n" +
				"    birthDate\n" +
				"    dueDate\n" +
				"    completionDate\n" +
				"  Paired (2):\n" +
				"    startDate + startTime -> startDateTime\n" +
				"    endDate + endTime -> endDateTime\n",
		},
		{
			name:       "configured text",
			configFile: configured,
			want: "Datetime fields (config):\n" +
				"  Direct (1):\n" +
				"    publishedAt\n" +
				"  Paired (1):\n" +
				"    shiftDate + shiftTime -> shiftDateTime\n",
		},
		{
			name:       "configured json",
			configFile: configured,
			args:       []string{"--format", "json"},
			want: `{
  "result": {
    "source": "config",
    "direct": [
      "publishedAt"
    ],
    "paired": [
      {
        "date": "shiftDate",
        "time": "shiftTime",
        "combined": "shiftDateTime"
      }
    ]
  }
}
`,
		},
		{
			name:       "configured yaml",
			configFile: configured,
			args:       []string{"--format", "yaml"},
			want: `result:
  source: config
  direct:
    - publishedAt
  paired:
    - date: shiftDate
      time: shiftTime
      combined: shiftDateTime
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			flags.ConfigFile = tc.configFile
			t.Cleanup(func() { flags.ConfigFile = "" })

			stdout, err := execute(t, NewListCmd, &config.DefaultLoader{}, tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.want, stdout)
		})
	}
}

func TestListCmd_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewListCmd, &config.DefaultLoader{}, "--format", "xml")
	require.ErrorContains(t, err, "invalid format 'xml', must be one of json, text, yaml")
}

func TestAddDirectCmd(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")

	stdout, err := execute(t, NewAddDirectCmd, &fileConfigLoader{path: path}, "publishedAt")
	require.NoError(t, err)
	require.Equal(t, "✓ Direct field 'publishedAt' (operation: Created)\n", stdout)

	// The built-in classification is copied into the file alongside the new field.
	saved := readFieldsConfig(t, path)
	require.NotNil(t, saved)
	require.Equal(t, append(fields.DefaultDirect(), "publishedAt"), saved.Direct)
	require.Equal(t, fields.DefaultPaired(), saved.Paired)

	stdout, err = execute(t, NewAddDirectCmd, &fileConfigLoader{path: path}, "publishedAt")
	require.NoError(t, err)
	require.Equal(t, "✓ Direct field 'publishedAt' already configured, nothing to change\n", stdout)
}

func TestAddDirectCmd_Conflict(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")

	_, err := execute(t, NewAddDirectCmd, &fileConfigLoader{path: path}, "startDate")
	require.ErrorContains(t, err, "error adding direct field 'startDate'")
	require.ErrorContains(t, err, "field 'startDate' classified as direct and paired date")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestAddPairCmd(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "[fields]\ndirect = [\"createdAt\"]\n")

	stdout, err := execute(
		t,
		NewAddPairCmd,
		&fileConfigLoader{path: path},
		"--date", "openDate", "--time", "openTime", "--combined", "opensAt",
	)
	require.NoError(t, err)
	require.Equal(t, "✓ Paired field 'openDate + openTime' (operation: Created)\n", stdout)

	stdout, err = execute(
		t,
		NewAddPairCmd,
		&fileConfigLoader{path: path},
		"--date", "openDate", "--time", "openingTime",
	)
	require.NoError(t, err)
	require.Equal(t, "✓ Paired field 'openDate + openingTime' (operation: Updated)\n", stdout)

	saved := readFieldsConfig(t, path)
	require.Equal(t, []string{"createdAt"}, saved.Direct)
	require.Equal(t, []fields.Pair{{Date: "openDate", Time: "openingTime"}}, saved.Paired)
}

func TestAddPairCmd_Errors(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")

	_, err := execute(t, NewAddPairCmd, &fileConfigLoader{path: path}, "--date", "openDate")
	require.ErrorContains(t, err, `required flag(s) "time" not set`)

	_, err = execute(t, NewAddPairCmd, &fileConfigLoader{path: path}, "--date", "slot", "--time", "slot")
	require.ErrorContains(t, err, "pair date and time fields are both 'slot'")
}

func TestRemoveCmd(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")

	stdout, err := execute(t, NewRemoveCmd, &fileConfigLoader{path: path}, "birthDate", "endTime")
	require.NoError(t, err)
	require.Equal(t, "✓ Removed field 'birthDate'\n✓ Removed field 'endTime'\n", stdout)

	saved := readFieldsConfig(t, path)
	require.NotContains(t, saved.Direct, "birthDate")
	require.Equal(t, []fields.Pair{{Date: "startDate", Time: "startTime", Combined: "startDateTime"}}, saved.Paired)
}

func TestRemoveCmd_NotFound(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")

	_, err := execute(t, NewRemoveCmd, &fileConfigLoader{path: path}, "publishedAt")
	require.EqualError(t, err, "error removing field 'publishedAt': field 'publishedAt' not found in config")
}

func TestRemoveCmd_MissingConfigFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), ".gqltz.toml")
	_, err := execute(t, NewRemoveCmd, &fileConfigLoader{path: missing}, "createdAt")
	require.ErrorIs(t, err, config.ErrConfigLoadFailed)
}
