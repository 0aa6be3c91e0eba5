package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/daemon"
	"github.com/mozilla-ai/gqltz/internal/fields"
	"github.com/mozilla-ai/gqltz/internal/flags"
)

const (
	defaultDaemonAddr = "0.0.0.0:8090"
	devDaemonAddr     = "localhost:8090"

	flagNameAddr     = "addr"
	flagNameDev      = "dev"
	flagNameUpstream = "upstream"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Dev       bool
	Addr      string
	Upstream  string
	cfgLoader config.Loader
}

// daemonSettings are the resolved settings the gateway is started with.
type daemonSettings struct {
	addr       string
	upstream   string
	location   *time.Location
	registry   *fields.Registry
	apiOptions []daemon.APIOption
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	_, cobraCommand, err := newDaemonCmd(baseCmd, opt...)
	return cobraCommand, err
}

func newDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*DaemonCmd, *cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, nil, err
	}

	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr] [--upstream]",
		Short: "Launches a `gqltz` gateway in front of a GraphQL server",
		Long: "Launches a `gqltz` gateway which forwards GraphQL operations to the upstream server, " +
			"converting datetime variables to UTC on the way in and datetime fields back to the " +
			"client's timezone on the way out.\n\n" +
			"Flags take precedence over the daemon section of the configuration file.",
		RunE: c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		flagNameDev,
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		flagNameAddr,
		defaultDaemonAddr,
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCommand.Flags().StringVar(
		&c.Upstream,
		flagNameUpstream,
		"",
		"URL of the GraphQL server operations are forwarded to (e.g. http://localhost:4000/graphql)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive(flagNameDev, flagNameAddr)

	return c, cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(cmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	cfg, err := c.LoadOptionalConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	settings, err := c.resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}

	if c.Dev {
		logger.Info("Development-focused mode", "addr", c.Addr, "override", settings.addr)
	}

	deps, err := daemon.NewDependencies(logger, settings.addr, settings.upstream, settings.registry)
	if err != nil {
		return fmt.Errorf("error configuring gqltz daemon: %w", err)
	}

	d, err := daemon.NewDaemon(deps, daemon.WithAPIOptions(settings.apiOptions...))
	if err != nil {
		return fmt.Errorf("failed to create gqltz daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	// Print --dev mode banner if required.
	if c.Dev {
		logger.Info("Launching daemon in dev mode", "addr", settings.addr)
		banner := fmt.Sprintf("gqltz daemon running in 'dev' mode.\n\n"+
			"  GraphQL:\thttp://%s%s\n"+
			"  Upstream:\t%s\n"+
			"  Timezone:\t%s\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			settings.addr, graphQLPathOrDefault(cfg), settings.upstream, settings.location,
			settings.addr, settings.addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		_, _ = fmt.Fprint(cmd.OutOrStdout(), banner)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		logger.Error("daemon exited with error", "error", err)
		return err // Propagate daemon failure.
	}
}

// resolveSettings merges the command's flags with the configuration file.
func (c *DaemonCmd) resolveSettings(cmd *cobra.Command, cfg *config.Config) (daemonSettings, error) {
	dc := cfg.Daemon
	if dc == nil {
		dc = &config.DaemonConfig{}
	}

	addr := defaultDaemonAddr
	switch {
	case c.Dev:
		addr = devDaemonAddr
	case cmd.Flags().Changed(flagNameAddr):
		addr = c.Addr
	case dc.Addr != nil:
		addr = *dc.Addr
	}

	upstream := strings.TrimSpace(c.Upstream)
	if !cmd.Flags().Changed(flagNameUpstream) && dc.Upstream != nil {
		upstream = *dc.Upstream
	}
	if upstream == "" {
		return daemonSettings{}, fmt.Errorf(
			"an upstream GraphQL server is required, use --%s or 'gqltz config daemon set upstream=<url>'",
			flagNameUpstream,
		)
	}

	loc, err := c.ResolveLocation(cfg)
	if err != nil {
		return daemonSettings{}, err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return daemonSettings{}, fmt.Errorf("error building field classification: %w", err)
	}

	apiOptions := append(apiOptionsFromConfig(dc), daemon.WithLocation(loc))

	return daemonSettings{
		addr:       addr,
		upstream:   upstream,
		location:   loc,
		registry:   registry,
		apiOptions: apiOptions,
	}, nil
}

// apiOptionsFromConfig converts the settings present in the daemon configuration into API server options.
func apiOptionsFromConfig(dc *config.DaemonConfig) []daemon.APIOption {
	var opts []daemon.APIOption

	if dc.GraphQLPath != nil {
		opts = append(opts, daemon.WithGraphQLPath(*dc.GraphQLPath))
	}
	if dc.TimezoneHeader != nil {
		opts = append(opts, daemon.WithTimezoneHeader(*dc.TimezoneHeader))
	}
	if dc.ShutdownTimeout != nil {
		opts = append(opts, daemon.WithShutdownTimeout(time.Duration(*dc.ShutdownTimeout)))
	}
	if dc.UpstreamTimeout != nil {
		opts = append(opts, daemon.WithUpstreamTimeout(time.Duration(*dc.UpstreamTimeout)))
	}

	cors := dc.CORS
	if cors == nil {
		return opts
	}

	opts = append(opts, daemon.WithCORSEnabled(cors.EnableOrDefault(false)))
	if len(cors.Origins) > 0 {
		opts = append(opts, daemon.WithCORSAllowOrigins(cors.Origins))
	}
	if len(cors.Methods) > 0 {
		opts = append(opts, daemon.WithCORSAllowMethods(cors.Methods))
	}
	if len(cors.Headers) > 0 {
		opts = append(opts, daemon.WithCORSAllowHeaders(cors.Headers))
	}
	if len(cors.ExposeHeaders) > 0 {
		opts = append(opts, daemon.WithCORSExposeHeaders(cors.ExposeHeaders))
	}
	if cors.Credentials != nil {
		opts = append(opts, daemon.WithCORSAllowCredentials(*cors.Credentials))
	}
	if cors.MaxAge != nil {
		opts = append(opts, daemon.WithCORSMaxAge(time.Duration(*cors.MaxAge)))
	}

	return opts
}

func graphQLPathOrDefault(cfg *config.Config) string {
	if cfg.Daemon != nil && cfg.Daemon.GraphQLPath != nil {
		return *cfg.Daemon.GraphQLPath
	}
	return daemon.DefaultGraphQLPath()
}
