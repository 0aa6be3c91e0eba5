package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/flags"
)

// InitCmd writes a starting configuration file holding the built-in field classification.
type InitCmd struct {
	*cmd.BaseCmd
	cfgInitializer config.Initializer
	cfgLoader      config.Loader
	Upstream       string
}

func NewInitCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InitCmd{
		BaseCmd:        baseCmd,
		cfgInitializer: opts.ConfigInitializer,
		cfgLoader:      opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "init [--upstream]",
		Short: "Writes a `gqltz` configuration file with the built-in field classification",
		Long: fmt.Sprintf(
			"Writes a %s configuration file listing the built-in direct and paired datetime fields, "+
				"ready to be edited with 'gqltz fields'.\n\n"+
				"An existing file is never overwritten. The path can be changed with the `--%s` flag "+
				"or the `%s` environment variable.",
			flags.DefaultConfigFile,
			flags.FlagNameConfigFile,
			flags.EnvVarConfigFile,
		),
		RunE: c.run,
		Args: cobra.NoArgs,
	}

	cobraCommand.Flags().StringVar(
		&c.Upstream,
		flagNameUpstream,
		"",
		"URL of the GraphQL server to store as the daemon upstream",
	)

	return cobraCommand, nil
}

func (c *InitCmd) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	path, err := initPath()
	if err != nil {
		return err
	}

	daemonCfg, err := c.daemonConfig()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "🚀 Initializing gqltz project at: %s\n", path)

	if err := c.cfgInitializer.Init(path); err != nil {
		c.Logger().Error("Project initialization failed", "path", path, "error", err)
		return fmt.Errorf("error initializing gqltz project: %w", err)
	}

	if daemonCfg != nil {
		if err := c.storeDaemonConfig(path, daemonCfg); err != nil {
			return err
		}
	}

	modifier, err := c.cfgLoader.Load(path)
	if err != nil {
		return fmt.Errorf("error reading new configuration: %w", err)
	}
	registry, err := modifier.Registry()
	if err != nil {
		return fmt.Errorf("error building field classification: %w", err)
	}

	_, _ = fmt.Fprintf(
		out,
		"✅ Config file created: %s (%d direct, %d paired datetime fields)\n",
		path,
		len(registry.Direct()),
		len(registry.Pairs()),
	)

	return nil
}

// daemonConfig returns the daemon section requested by flags, or nil when none was requested.
func (c *InitCmd) daemonConfig() (*config.DaemonConfig, error) {
	upstream := strings.TrimSpace(c.Upstream)
	if upstream == "" {
		return nil, nil
	}

	dc := &config.DaemonConfig{}
	if _, err := dc.Set("upstream", upstream); err != nil {
		return nil, err
	}
	if err := dc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid daemon configuration: %w", err)
	}

	return dc, nil
}

// storeDaemonConfig writes dc as the daemon section of the file at path.
func (c *InitCmd) storeDaemonConfig(path string, dc *config.DaemonConfig) error {
	modifier, err := c.cfgLoader.Load(path)
	if err != nil {
		return fmt.Errorf("error reading new configuration: %w", err)
	}

	cfg, ok := modifier.(*config.Config)
	if !ok {
		return fmt.Errorf("configuration loader returned unexpected type %T", modifier)
	}

	cfg.Daemon = dc

	return cfg.SaveConfig()
}

// initPath is the configuration file to create.
// The default file name is created in the working directory.
func initPath() (string, error) {
	if flags.ConfigFile != flags.DefaultConfigFile {
		return flags.ConfigFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current directory: %w", err)
	}

	return filepath.Join(cwd, flags.DefaultConfigFile), nil
}
