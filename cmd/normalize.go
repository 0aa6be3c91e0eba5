package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/graphql"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

const stdinFile = "-"

// NormalizeCmd converts the datetime fields of a JSON document.
type NormalizeCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
	Direction datetime.Direction
	File      string
}

func NewNormalizeCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &NormalizeCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
		Direction: datetime.ToUTCDirection,
		File:      stdinFile,
	}

	cobraCmd := &cobra.Command{
		Use:   "normalize [--direction] [--file]",
		Short: "Converts the datetime fields of a JSON document",
		Long: "Converts the datetime fields of a JSON document, read from a file or standard input, " +
			"and writes the converted document to standard output.\n\n" +
			"Direction 'outbound' (alias 'utc') converts wall-clock values in the client timezone to UTC, " +
			"direction 'inbound' (alias 'local') converts UTC values to the client timezone.\n\n" +
			"Examples:\n" +
			"  echo '{\"createdAt\":\"2025-03-10T14:30:00.000\"}' | gqltz normalize --timezone Asia/Kolkata\n" +
			"  gqltz normalize --direction inbound --file response.json",
		RunE: c.run,
		Args: cobra.NoArgs,
	}

	allowed := datetime.Directions()
	cobraCmd.Flags().Var(
		&c.Direction,
		"direction",
		fmt.Sprintf("Conversion direction (one of: %v)", allowed),
	)
	cobraCmd.Flags().StringVarP(
		&c.File,
		"file",
		"f",
		stdinFile,
		"Path to the JSON document, '-' reads standard input",
	)

	return cobraCmd, nil
}

func (c *NormalizeCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := c.LoadOptionalConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	loc, err := c.ResolveLocation(cfg)
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("error building field classification: %w", err)
	}

	engine, err := normalize.NewEngine(registry)
	if err != nil {
		return err
	}

	in, closeFn, err := c.openInput(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	var payload any
	if err := graphql.Decode(in, &payload); err != nil {
		return fmt.Errorf("failed to decode JSON document: %w", err)
	}

	out, err := engine.Transform(payload, c.Direction, loc)
	if err != nil {
		return err
	}

	c.Logger().Debug("Normalized document", "direction", c.Direction, "timezone", loc.String())

	data, err := graphql.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON document: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func (c *NormalizeCmd) openInput(cmd *cobra.Command) (io.Reader, func(), error) {
	path := strings.TrimSpace(c.File)
	if path == "" || path == stdinFile {
		return cmd.InOrStdin(), func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}

	return f, func() { _ = f.Close() }, nil
}
