package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	council "github.com/Hrishikeshgupta2002/AI-Council"
	"github.com/Hrishikeshgupta2002/AI-Council/config"
	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/logging"
	"github.com/Hrishikeshgupta2002/AI-Council/metrics"
)

// Options configures the command tree.
type Options struct {
	// Gateway builds the inference gateway. Defaults to the provider router.
	Gateway GatewayFactory
	// Interactive forces terminal detection on stdin. Nil detects.
	Interactive *bool
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the council command tree with its own viper instance.
func NewRootCmd(optFns ...func(o *Options)) *cobra.Command {
	opts := Options{Gateway: newGateway}
	for _, fn := range optFns {
		fn(&opts)
	}

	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "council [problem...]",
		Short: "Put a problem in front of a council of AI advisors",
		Long: `Council runs a group chat between several AI personas about one problem.

Every agent answers each message in parallel. Press Enter on an empty line to
let the agents keep talking, tag two or more agents (@Elon @Ray) to make them
debate, type /synth for a synthesis and exit to finish. On exit the council
synthesizes the discussion into a weighted recommendation.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCouncil(cmd, v, opts, args)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/council/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log debug traces to stderr and show error details")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("logging.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("metrics.addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))

	rootCmd.AddCommand(newConfigCmd(v))

	return rootCmd
}

func initConfig(v *viper.Viper) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults(v)

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(config.ConfigDir())
	v.AddConfigPath(".")

	// A missing default config file is fine
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func newLogger(cfg *config.Config, cmd *cobra.Command) *logging.CouncilLogger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LogLevelWarn
	}
	if cfg.Logging.Debug {
		level = logging.LogLevelDebug
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Logging.Format,
		Output:    cmd.ErrOrStderr(),
		AddSource: cfg.Logging.Debug,
	})
}

func runCouncil(cmd *cobra.Command, v *viper.Viper, opts Options, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd)

	agents, err := cfg.CoreAgents()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	r := newRenderer(cmd.OutOrStdout(), agents, cfg.Colors())

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}

	lines := bufio.NewScanner(in)
	lines.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	problem, err := readProblem(args, lines, interactive, r)
	if err != nil {
		return err
	}

	gateway, err := opts.Gateway(cfg)
	if err != nil {
		return err
	}

	var observer council.Observer
	if cfg.Metrics.Addr != "" {
		collector := metrics.NewCollector(metrics.DefaultNamespace)
		observer = collector

		shutdown, err := serveMetrics(cfg.Metrics.Addr, collector, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	c, err := council.New(gateway, agents, func(o *council.Options) {
		o.MaxWorkers = cfg.Council.MaxWorkers
		o.AgentTimeout = cfg.Council.AgentTimeout()
		o.MaxExchanges = cfg.Council.MaxDebateExchanges
		o.ContextWindow = cfg.Council.ContextWindow
		o.UseWeightedModel = cfg.Council.UseWeightedModel
		o.SynthesisModel = cfg.Synthesis.Model
		o.SynthesisProvider = cfg.Synthesis.Provider
		o.SynthesisTemperature = cfg.Synthesis.Temperature
		o.SynthesisTimeout = cfg.Synthesis.Timeout()
		o.Observer = observer
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	r.header(agents, c.Method(), describeGateway(cfg))

	s := &replSession{
		council: c,
		render:  r,
		lines:   lines,
		logger:  logger,
		debug:   cfg.Logging.Debug,
		names:   core.Names(agents),
	}

	if err := s.start(ctx, problem); err != nil {
		if errors.Is(err, core.ErrGatewayUnreachable) {
			r.failure(err)
			r.notice(fmt.Sprintf("Make sure the gateway is running at %s (ollama serve) and the models are pulled.", cfg.Gateway.BaseURL))
		}
		return err
	}

	return s.loop(ctx)
}

// serveMetrics exposes collector on addr until the returned func is called.
func serveMetrics(addr string, collector *metrics.Collector, logger logging.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// isExit reports whether input ends the session.
func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	}
	return false
}
