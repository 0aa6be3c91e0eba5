package fields

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/printer"
)

type ListCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
	Format    cmd.OutputFormat
}

func NewListCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ListCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
		Format:    cmd.FormatText,
	}

	cobraCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the datetime field classification in effect",
		Long: "Lists the direct and paired datetime fields in effect, " +
			"either from .gqltz.toml or the built-in classification.",
		RunE: c.run,
		Args: cobra.NoArgs,
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

func (c *ListCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := cmdFormatHandler(cmd, c.Format)
	if err != nil {
		return err
	}

	cfg, err := c.LoadOptionalConfig(c.cfgLoader)
	if err != nil {
		return handler.HandleError(err)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return handler.HandleError(fmt.Errorf("error building field classification: %w", err))
	}

	source := printer.SourceBuiltIn
	if cfg.Fields != nil {
		source = printer.SourceConfig
	}

	return handler.HandleResult(printer.NewFieldsListResult(registry, source))
}
