package daemon

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
)

type GetCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

func NewGetCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &GetCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get daemon configuration value",
		Long: `Get a specific daemon configuration value from .gqltz.toml file using dotted key notation.

Examples:
  gqltz config daemon get upstream
  gqltz config daemon get cors.enable
  gqltz config daemon get upstream_timeout`,
		RunE: c.run,
		Args: cobra.ExactArgs(1),
	}

	return cobraCmd, nil
}

func (c *GetCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := c.LoadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	if cfg.Daemon == nil {
		return fmt.Errorf("no daemon configuration found")
	}

	value, err := cfg.Daemon.Get(args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
	return nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return "[]"
		}
		return strings.Join(v, ",")
	case *config.CORSConfigSection:
		return formatSection(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatSection renders every set key of the CORS section on its own line.
func formatSection(section *config.CORSConfigSection) string {
	var lines []string
	for _, key := range section.AvailableKeys() {
		value, err := section.Get(key.Path)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %s", key.Path, formatValue(value)))
	}
	return strings.Join(lines, "\n")
}
