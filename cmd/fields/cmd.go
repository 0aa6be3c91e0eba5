package fields

import (
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	"github.com/mozilla-ai/gqltz/internal/cmd/options"
)

// NewCmd creates the 'fields' command which manages the datetime field classification.
func NewCmd(baseCmd *cmd.BaseCmd, opt ...options.CmdOption) (*cobra.Command, error) {
	cobraCmd := &cobra.Command{
		Use:   "fields",
		Short: "Manages the datetime field classification",
		Long: "Manages which payload keys are converted between the client timezone and UTC.\n\n" +
			"Direct fields hold a complete date-time, paired fields split one instant across a date key " +
			"and a time key. Without a fields section in .gqltz.toml the built-in classification is used.",
	}

	// Sub-commands for: gqltz fields
	fns := []func(baseCmd *cmd.BaseCmd, opt ...options.CmdOption) (*cobra.Command, error){
		NewListCmd,      // list
		NewAddDirectCmd, // add-direct
		NewAddPairCmd,   // add-pair
		NewRemoveCmd,    // remove
	}

	for _, fn := range fns {
		tempCmd, err := fn(baseCmd, opt...)
		if err != nil {
			return nil, err
		}
		cobraCmd.AddCommand(tempCmd)
	}

	return cobraCmd, nil
}
