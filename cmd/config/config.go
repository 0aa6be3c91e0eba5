package config

import (
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/cmd/config/daemon"
	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
)

func NewConfigCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	cobraCmd := &cobra.Command{
		Use:   "config",
		Short: "Manages gqltz configuration.",
		Long:  "Manages the settings stored in the gqltz configuration file.",
	}

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		daemon.NewCmd, // daemon
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
