// Command se runs a syscall-emulation simulation of one or more programs.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/neuralprobe/gem5/api"
	"github.com/neuralprobe/gem5/config"
	"github.com/neuralprobe/gem5/core"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/record"
	"github.com/neuralprobe/gem5/se"
)

var (
	cfg          = options.Default()
	configFile   string
	dumpTopology bool
	recordDB     string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "se",
	Short: "Simulate programs in syscall emulation mode.",
	Long: `se assembles a system of processors, caches and memory from the ` +
		`given options, assigns the programs to the processors and simulates ` +
		`until the workload or one of the limits ends the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	fs := rootCmd.Flags()
	options.RegisterFlags(fs, &cfg)

	fs.StringVar(&configFile, "config", "", "YAML file with options. Flags on the command line take precedence.")
	fs.BoolVar(&dumpTopology, "dump-topology", false, "Print the assembled system before simulating.")
	fs.StringVar(&recordDB, "record-db", "", "Record the system and the exit event into this SQLite database.")
	fs.StringVar(&logLevel, "log-level", "info", "One of trace, debug, info, warn, error.")
}

func parseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "trace") {
		return core.LevelTrace, nil
	}

	var l slog.Level
	err := l.UnmarshalText([]byte(s))

	return l, err
}

func run(cmd *cobra.Command, _ []string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if configFile != "" {
		if err := options.ApplyOverrides(configFile, &cfg, cmd.Flags()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return simulate(ctx, cfg, os.Stdout, logger)
}

// simulate prepares the system described by c, runs it and prints the exit
// line to out.
func simulate(ctx context.Context, c options.Config, out io.Writer, logger *slog.Logger) error {
	sys, err := se.MakePreparer().WithLogger(logger).Prepare(c)
	if err != nil {
		return err
	}

	if dumpTopology {
		fmt.Fprintln(out, config.Describe(sys.Topology))
	}

	var rec *record.Recorder

	if recordDB != "" {
		rec, err = record.Open(recordDB)
		if err != nil {
			return err
		}

		atexit.Register(func() { rec.Close() })

		if err := rec.Topology(sys.Topology); err != nil {
			return fmt.Errorf("failed to record topology: %w", err)
		}
	}

	simulator := core.MakeSimulatorBuilder().
		WithSyntheticInsts(sys.Config.SyntheticInsts).
		WithLogger(logger).
		Build()

	driver := api.MakeDriverBuilder().
		WithSimulator(simulator).
		WithTopology(sys.Topology).
		WithConfig(sys.Config).
		WithSelection(sys.Selection).
		WithLogger(logger).
		Build()

	if err := driver.Instantiate(); err != nil {
		return err
	}

	ev, err := driver.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, driver.Report())
	logger.Debug("run summary", "exits", "\n"+driver.Summary())
	core.Trace("Progress", "Table", "\n"+core.PrintProgress(simulator.Cores()))

	if rec != nil {
		if err := rec.Exit(sys.Topology.ID(), ev); err != nil {
			return fmt.Errorf("failed to record exit: %w", err)
		}
	}

	return nil
}

// exitCode maps the outcome of the command to the process exit status and
// writes the diagnostic of a failure to stderr.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, "fatal:", err)

	return 1
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	atexit.Exit(exitCode(err, os.Stderr))
}
