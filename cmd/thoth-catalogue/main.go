// Command thoth-catalogue browses the Thoth book catalogue.
//
// Without a subcommand it starts the interactive terminal UI. The list,
// dump, show and exports subcommands print to stdout for scripting.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/thoth-catalogue/pkg/config"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
	"github.com/Sternrassler/thoth-catalogue/pkg/logging"
	"github.com/Sternrassler/thoth-catalogue/pkg/metrics"
	"github.com/Sternrassler/thoth-catalogue/pkg/ratelimit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// execute runs the command line args and releases everything the command
// opened, also when it fails.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o := &options{}
	defer o.close()

	root := newRootCmd(o)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// options holds the global flags and the resources shared by the commands.
type options struct {
	configPath  string
	dotEnvPath  string
	graphqlAPI  string
	exportAPI   string
	pageSize    int
	logLevel    string
	logFile     string
	metricsAddr string
	redisURL    string

	cfg     config.Config
	closers []func() error
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "thoth-catalogue",
		Short: "Browse the Thoth book catalogue",
		Long: `thoth-catalogue reads the book catalogue of a Thoth GraphQL API.

Run without a subcommand to start the interactive browser. Configuration is
read from the YAML file given by --config, a .env file, the THOTH_* environment
variables and finally the flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, o, "")
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "YAML configuration file")
	f.StringVar(&o.dotEnvPath, "env-file", ".env", "dotenv file loaded into the environment if present")
	f.StringVar(&o.graphqlAPI, "graphql-api", "", "GraphQL endpoint (default "+config.DefaultGraphQLURL+")")
	f.StringVar(&o.exportAPI, "export-api", "", "export API base URL (default "+config.DefaultExportURL+")")
	f.IntVar(&o.pageSize, "page-size", 0, "books per page")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	f.StringVar(&o.logFile, "log-file", "", "append logs to this file")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve /health and /metrics on this address")
	f.StringVar(&o.redisURL, "redis", "", "Redis URL for the shared rate-limit state")

	root.AddCommand(
		newBrowseCmd(o),
		newListCmd(o),
		newDumpCmd(o),
		newShowCmd(o),
		newExportsCmd(o),
	)
	return root
}

// setup resolves the configuration and starts logging and metrics.
func (o *options) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(o.dotEnvPath); err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg

	if err := o.setupLogging(cmd); err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		o.startMetrics(cmd.Context())
	}
	return nil
}

func (o *options) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("graphql-api") {
		cfg.GraphQLURL = o.graphqlAPI
	}
	if flags.Changed("export-api") {
		cfg.ExportURL = o.exportAPI
	}
	if flags.Changed("page-size") {
		cfg.PageSize = o.pageSize
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}
	if flags.Changed("redis") {
		cfg.RedisURL = o.redisURL
	}
}

// setupLogging logs to stderr, or to the log file when one is configured.
// The terminal UI owns the screen, so it only logs to a file.
func (o *options) setupLogging(cmd *cobra.Command) error {
	lc := o.cfg.Logging()
	lc.Output = cmd.ErrOrStderr()

	switch {
	case o.cfg.LogFile != "":
		f, err := logging.OpenFile(o.cfg.LogFile)
		if err != nil {
			return err
		}
		o.closers = append(o.closers, f.Close)
		lc.Output = f
		lc.Pretty = false
	case interactive(cmd):
		lc.Level = logging.LevelDisabled
	}

	logging.Setup(lc)
	return nil
}

func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "browse" || !cmd.HasParent()
}

func (o *options) startMetrics(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := metrics.Serve(ctx, o.cfg.MetricsAddr); err != nil {
			log.Error().Err(err).Str("addr", o.cfg.MetricsAddr).Msg("Metrics server failed")
		}
	}()
	o.closers = append(o.closers, func() error {
		cancel()
		<-done
		return nil
	})
}

// client creates the GraphQL client. Interactive use makes a single attempt
// per request; batch commands retry transport and server failures.
func (o *options) client(ctx context.Context, retry bool) (*graphql.Client, error) {
	gc := o.cfg.GraphQL()
	if retry {
		gc.Retry = graphql.DefaultRetryConfig()
	}

	store, err := o.rateLimitStore(ctx)
	if err != nil {
		return nil, err
	}
	gc.Tracker = ratelimit.NewTracker(store, logging.NewLogger("ratelimit"))

	return graphql.New(gc)
}

// rateLimitStore shares the rate-limit state through Redis when configured.
func (o *options) rateLimitStore(ctx context.Context) (ratelimit.Store, error) {
	if o.cfg.RedisURL == "" {
		return ratelimit.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(o.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	o.closers = append(o.closers, rc.Close)

	log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	return ratelimit.NewRedisStore(rc), nil
}

// close releases resources in reverse order of acquisition.
func (o *options) close() {
	var errs []error
	for i := len(o.closers) - 1; i >= 0; i-- {
		errs = append(errs, o.closers[i]())
	}
	o.closers = nil
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("Shutdown incomplete")
	}
}
