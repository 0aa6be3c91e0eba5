package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	configcmd "github.com/mozilla-ai/gqltz/cmd/config"
	fieldscmd "github.com/mozilla-ai/gqltz/cmd/fields"
	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/flags"
	"github.com/mozilla-ai/gqltz/internal/perms"
)

var version = "dev" // Set at build time using -ldflags

// createCmdFunc is the constructor signature shared by every sub-command.
type createCmdFunc func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it.
func Execute() error {
	logger, err := configureLogger()
	if err != nil {
		return fmt.Errorf("error configuring logger: %w", err)
	}

	baseCmd := &cmd.BaseCmd{}
	baseCmd.SetLogger(logger)

	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: baseCmd})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

func NewRootCmd(c *RootCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:          "gqltz <command> [args]",
		Short:        "'gqltz' keeps GraphQL datetimes in UTC on the wire and in local time for clients.",
		Long:         c.longDescription(),
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []createCmdFunc{
		NewInitCmd,
		NewDaemonCmd,
		NewNormalizeCmd,
		NewQueryCmd,
		fieldscmd.NewCmd,
		configcmd.NewConfigCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(c.BaseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'gqltz' CLI runs a GraphQL gateway that converts datetime values between a client's
wall-clock timezone and UTC, and provides tools to inspect and configure which fields are converted.`
}

func configureLogger() (hclog.Logger, error) {
	logPath := strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))

	// If GQLTZ_LOG_PATH is not set, don't log anywhere.
	logOutput := io.Discard

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		logOutput = f
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "gqltz",
		Level:  hclog.LevelFromString(getLogLevel()),
		Output: logOutput,
	})

	return logger, nil
}

func getLogLevel() string {
	lvl := strings.ToLower(strings.TrimSpace(os.Getenv(flags.EnvVarLogLevel)))
	switch lvl {
	case "trace", "debug", "info", "warn", "error", "off":
		return lvl
	default:
		return flags.DefaultLogLevel
	}
}
