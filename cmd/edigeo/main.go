package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/edigeo/pkg/bundle"
	"github.com/odvcencio/edigeo/pkg/exchange"
	"github.com/odvcencio/edigeo/pkg/record"
)

const version = "0.1.0-dev"

// Process exit codes, one per failure class.
const (
	exitOK         = 0
	exitFailure    = 1
	exitNotFound   = 2
	exitIncomplete = 3
	exitUnknown    = 4
	exitLine       = 5
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	verbose    bool
	output     string
	strict     bool
	workers    int
	encoding   string

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "edigeo",
		Short:         "Decode EDIGéO cadastral exchange lots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", opts.output)
			}
			config := zap.NewProductionConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "edigeo.toml", "decoder config file (TOML)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	flags.BoolVar(&opts.strict, "strict", false, "treat anomalies and undecodable bytes as errors")
	flags.IntVar(&opts.workers, "workers", 0, "members decoded concurrently (0 = GOMAXPROCS)")
	flags.StringVar(&opts.encoding, "encoding", "", "member file encoding (windows-1252, iso-8859-1, utf-8)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newBlocksCmd(opts))
	root.AddCommand(newRecordsCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "edigeo %s\n", version)
		},
	}
}

// decoderConfig reads the config file and applies the flags the user set
// explicitly on top of it.
func (o *options) decoderConfig(cmd *cobra.Command) (exchange.Config, error) {
	cfg, err := exchange.LoadConfig(o.configPath)
	if err != nil {
		return exchange.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("encoding") {
		cfg.Encoding = o.encoding
	}
	return cfg, nil
}

func (o *options) decoder(cmd *cobra.Command) (*exchange.Decoder, exchange.Config, error) {
	cfg, err := o.decoderConfig(cmd)
	if err != nil {
		return nil, exchange.Config{}, err
	}
	d, err := exchange.NewDecoder(cfg, o.logger)
	if err != nil {
		return nil, exchange.Config{}, err
	}
	return d, cfg, nil
}

func exitCode(err error) int {
	var lineErr *record.LineError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, bundle.ErrSourceNotFound):
		return exitNotFound
	case errors.Is(err, bundle.ErrIncompleteBundle):
		return exitIncomplete
	case errors.Is(err, record.ErrUnknownCode):
		return exitUnknown
	case errors.As(err, &lineErr):
		return exitLine
	default:
		return exitFailure
	}
}
