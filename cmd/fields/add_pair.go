package fields

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

const (
	flagNameDate     = "date"
	flagNameTime     = "time"
	flagNameCombined = "combined"
)

type AddPairCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
	Date      string
	Time      string
	Combined  string
}

func NewAddPairCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &AddPairCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "add-pair --date <key> --time <key> [--combined <label>]",
		Short: "Classifies a date key and a time key as a paired datetime field",
		Long: "Classifies sibling payload keys holding the date and the time of a single instant.\n\n" +
			"A pair with the same date key is replaced. The combined label defaults to the date key " +
			"with 'Time' appended.\n\n" +
			"Examples:\n" +
			"  gqltz fields add-pair --date shiftDate --time shiftTime\n" +
			"  gqltz fields add-pair --date openDate --time openTime --combined opensAt",
		RunE: c.run,
		Args: cobra.NoArgs,
	}

	cobraCmd.Flags().StringVar(&c.Date, flagNameDate, "", "Key holding the date part (required)")
	cobraCmd.Flags().StringVar(&c.Time, flagNameTime, "", "Key holding the time part (required)")
	cobraCmd.Flags().StringVar(&c.Combined, flagNameCombined, "", "Label for the combined instant")

	_ = cobraCmd.MarkFlagRequired(flagNameDate)
	_ = cobraCmd.MarkFlagRequired(flagNameTime)

	return cobraCmd, nil
}

func (c *AddPairCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := c.LoadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	pair := fields.Pair{
		Date:     c.Date,
		Time:     c.Time,
		Combined: c.Combined,
	}

	result, err := cfg.AddPairedField(pair)
	if err != nil {
		return fmt.Errorf("error adding paired field '%s + %s': %w", c.Date, c.Time, err)
	}

	c.Logger().Debug("Paired field updated", "date", c.Date, "time", c.Time, "result", result)
	printUpsert(cmd, fmt.Sprintf("Paired field '%s + %s'", c.Date, c.Time), result)

	return nil
}
