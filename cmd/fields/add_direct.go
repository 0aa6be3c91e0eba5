package fields

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
)

type AddDirectCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

func NewAddDirectCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &AddDirectCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "add-direct <name>",
		Short: "Classifies a key as a direct datetime field",
		Long: "Classifies a payload key as a direct datetime field holding a complete date-time.\n\n" +
			"The first change copies the built-in classification into .gqltz.toml.\n\n" +
			"Examples:\n" +
			"  gqltz fields add-direct publishedAt",
		RunE: c.run,
		Args: cobra.ExactArgs(1),
	}

	return cobraCmd, nil
}

func (c *AddDirectCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := c.LoadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	result, err := cfg.AddDirectField(args[0])
	if err != nil {
		return fmt.Errorf("error adding direct field '%s': %w", args[0], err)
	}

	c.Logger().Debug("Direct field updated", "field", args[0], "result", result)
	printUpsert(cmd, fmt.Sprintf("Direct field '%s'", args[0]), result)

	return nil
}
