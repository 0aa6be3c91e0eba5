package daemon

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
)

type ListCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
	available bool
}

func NewListCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ListCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "list",
		Short: "List daemon configuration",
		Long: `List daemon configuration from .gqltz.toml file.

Examples:
  gqltz config daemon list               # Show current configuration
  gqltz config daemon list --available   # Show all available configuration keys`,
		RunE: c.run,
		Args: cobra.NoArgs,
	}

	cobraCmd.Flags().
		BoolVar(&c.available, "available", false, "Show all available configuration keys with descriptions")

	return cobraCmd, nil
}

func (c *ListCmd) run(cmd *cobra.Command, _ []string) error {
	if c.available {
		c.showAvailableKeys(cmd)
		return nil
	}

	cfg, err := c.LoadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	if cfg.Daemon == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No daemon configuration found")
		return nil
	}

	// Keys are listed in schema order, unset keys are skipped.
	for _, key := range cfg.Daemon.AvailableKeys() {
		value, err := cfg.Daemon.Get(key.Path)
		if err != nil {
			continue
		}
		printKeyValue(cmd, key.Path, value)
	}

	return nil
}

// printKeyValue formats and prints a single configuration key-value pair with appropriate type formatting.
func printKeyValue(cmd *cobra.Command, key string, value any) {
	switch v := value.(type) {
	case []string:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", key, v)
	case bool:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", key, v)
	case string:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", key, v)
	default:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, v)
	}
}

// showAvailableKeys displays all available daemon configuration keys with their types and descriptions.
func (c *ListCmd) showAvailableKeys(cmd *cobra.Command) {
	keys := (&config.DaemonConfig{}).AvailableKeys()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Available daemon configuration keys:")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")

	for _, key := range keys {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-30s %-12s %s\n", key.Path, "("+key.Type+")", key.Description)
	}
}
