package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/client"
	"github.com/mozilla-ai/gqltz/internal/cmd"
	cmdopts "github.com/mozilla-ai/gqltz/internal/cmd/options"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/graphql"
	"github.com/mozilla-ai/gqltz/internal/interceptor"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

const (
	flagNameEndpoint  = "endpoint"
	flagNameQueryFile = "query-file"
)

// QueryCmd sends a single GraphQL operation straight to a GraphQL server, working in the client's timezone.
type QueryCmd struct {
	*cmd.BaseCmd
	cfgLoader     config.Loader
	Endpoint      string
	QueryFile     string
	Variables     string
	OperationName string
	Headers       []string
	Timeout       time.Duration
}

func NewQueryCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &QueryCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCmd := &cobra.Command{
		Use:   "query [<document>] [--endpoint] [--variables] [--query-file]",
		Short: "Sends a GraphQL operation with datetimes in the client timezone",
		Long: "Sends a GraphQL operation straight to a GraphQL server. Datetime variables are given in the " +
			"client timezone and converted to UTC before sending, datetime fields in the response are " +
			"converted back to the client timezone before printing.\n\n" +
			"The endpoint defaults to the configured upstream.\n\n" +
			"Examples:\n" +
			"  gqltz query '{ tasks { id dueDate } }' --timezone Asia/Kolkata\n" +
			"  gqltz query --query-file create.graphql --variables '{\"input\":{\"dueDate\":\"2025-03-10\"}}'",
		RunE: c.run,
		Args: cobra.MaximumNArgs(1),
	}

	cobraCmd.Flags().StringVar(&c.Endpoint, flagNameEndpoint, "", "URL of the GraphQL server")
	cobraCmd.Flags().StringVar(&c.QueryFile, flagNameQueryFile, "", "Path to a file holding the GraphQL document")
	cobraCmd.Flags().StringVar(&c.Variables, "variables", "", "Operation variables as a JSON object")
	cobraCmd.Flags().StringVar(&c.OperationName, "operation-name", "", "Name of the operation to run")
	cobraCmd.Flags().StringArrayVarP(&c.Headers, "header", "H", nil, "Header to send, as 'Name: value' (repeatable)")
	cobraCmd.Flags().DurationVar(&c.Timeout, "timeout", client.DefaultTimeout, "Timeout for the operation")

	return cobraCmd, nil
}

func (c *QueryCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := c.LoadOptionalConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	op, err := c.operation(args)
	if err != nil {
		return err
	}

	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" && cfg.Daemon != nil && cfg.Daemon.Upstream != nil {
		endpoint = *cfg.Daemon.Upstream
	}
	if endpoint == "" {
		return fmt.Errorf("an endpoint is required, use --%s or configure the daemon upstream", flagNameEndpoint)
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

	i, err := interceptor.NewInterceptor(engine, interceptor.WithLogger(c.Logger()))
	if err != nil {
		return err
	}

	clientOpts := []client.Option{
		client.WithLocation(loc),
		client.WithLogger(c.Logger()),
	}
	for _, h := range c.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header '%s', expected 'Name: value'", h)
		}
		clientOpts = append(clientOpts, client.WithHeader(strings.TrimSpace(name), strings.TrimSpace(value)))
	}

	cl, err := client.NewClient(endpoint, i, clientOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), c.Timeout)
	defer cancel()

	resp, err := cl.Do(ctx, op)
	if err != nil {
		return err
	}

	data, err := graphql.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// operation builds the operation from the document argument or file and the variables flag.
func (c *QueryCmd) operation(args []string) (*graphql.Operation, error) {
	var query string
	switch {
	case len(args) == 1 && c.QueryFile != "":
		return nil, fmt.Errorf("provide the GraphQL document as an argument or with --%s, not both", flagNameQueryFile)
	case len(args) == 1:
		query = args[0]
	case c.QueryFile != "":
		data, err := os.ReadFile(c.QueryFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", c.QueryFile, err)
		}
		query = string(data)
	}

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("a GraphQL document is required")
	}

	op := &graphql.Operation{
		Query:         query,
		OperationName: strings.TrimSpace(c.OperationName),
	}

	if strings.TrimSpace(c.Variables) != "" {
		if err := graphql.Unmarshal([]byte(c.Variables), &op.Variables); err != nil {
			return nil, fmt.Errorf("invalid variables, expected a JSON object: %w", err)
		}
	}

	return op, nil
}
