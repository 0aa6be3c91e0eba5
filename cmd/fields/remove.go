package fields

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
)

type RemoveCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

func NewRemoveCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RemoveCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "remove <name> [name ...]",
		Short: "Removes datetime field classifications",
		Long: "Removes direct fields, or paired fields named by their date or time key.\n\n" +
			"Examples:\n" +
			"  gqltz fields remove birthDate\n" +
			"  gqltz fields remove startTime",
		RunE: c.run,
		Args: cobra.MinimumNArgs(1),
	}

	return cobraCmd, nil
}

func (c *RemoveCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := c.LoadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	for _, name := range args {
		if _, err := cfg.RemoveField(name); err != nil {
			return fmt.Errorf("error removing field '%s': %w", name, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed field '%s'\n", name)
	}

	return nil
}
