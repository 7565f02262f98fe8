package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"codeberg.org/mutker/rigsnr/internal/config"
	"codeberg.org/mutker/rigsnr/internal/console"
	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/logger"
	"codeberg.org/mutker/rigsnr/internal/meter"
	"codeberg.org/mutker/rigsnr/internal/pid"
	"codeberg.org/mutker/rigsnr/internal/rig"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitOpenFailed = 2
	exitUsage      = 64
)

var rootCmd = &cobra.Command{
	Use:   "rigsnr",
	Short: "Live SNR and DNR meter for a radio's S-meter",
	Long: `rigsnr polls a radio's signal strength and prints the signal to noise
ratio and dynamic range seen since start or the last reset.

Press Enter to reset the measurement window, Ctrl-C to quit.`,
	Args:          usageArgs(cobra.NoArgs),
	SilenceErrors: true,
	RunE:          runMeter,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported rig models",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listModels(cmd)
	},
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.New().Wrap(errors.ErrInvalidArgument, err)
	})
	rootCmd.AddCommand(modelsCmd)
}

// usageArgs marks positional argument errors as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.New().Wrap(errors.ErrInvalidArgument, err)
		}

		return nil
	}
}

func main() {
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	code := exitCode(err)
	if code == exitUsage {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return code
	}

	var coded errors.Error
	if errors.As(err, &coded) {
		logger.ErrorWithCode(coded).Msg("Exiting")
	} else {
		logger.Error().Err(err).Msg("Exiting")
	}

	return code
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if config.IsUsageError(err) {
		return exitUsage
	}

	code, ok := errors.CodeOf(err)
	if !ok {
		return exitFailure
	}

	switch code {
	case rig.ErrOpenFailed:
		return exitOpenFailed
	default:
		return exitFailure
	}
}

func runMeter(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	// Past this point failures are not usage errors.
	cmd.SilenceUsage = true

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		return err
	}
	if err := rig.SetDebug(cfg.RigDebug); err != nil {
		return err
	}
	logger.Debug().Interface("config", cfg).Msg("Config loaded")

	r, err := rig.Init(cfg.Model)
	if err != nil {
		return err
	}

	var lock *pid.Lock
	if r.Model().UsesSerialPort() {
		lock, err = pid.Acquire(cfg.Port)
		if err != nil {
			return err
		}
	}

	if err := r.Open(cfg.Port, cfg.Speed); err != nil {
		return multierr.Append(err, lock.Release())
	}
	logger.Info().
		Int("model", r.Model().ID).
		Str("name", r.Model().Name).
		Str("port", cfg.Port).
		Msg("Rig opened")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer := console.NewLineRenderer(os.Stdout, console.IsTerminal(os.Stdout))

	var kb *console.Keyboard
	if console.IsTerminal(os.Stdin) {
		kb, err = console.OpenKeyboard()
		if err != nil {
			logger.Warn().Err(err).Msg("Keyboard unavailable; Enter and Ctrl-C keys disabled")
			kb = nil
		}
	} else {
		logger.Debug().Msg("stdin is not a terminal; key controls disabled")
	}

	session := meter.NewSession(ctx)
	tracker := meter.NewTracker(cfg.Ceiling, cfg.Offset)
	poller := meter.NewPoller(r, tracker, renderer, cfg.Interval, logger.Default())
	listener := meter.NewListener(kb.Events(), tracker, session, renderer, cfg.Interval, logger.Default())

	runErr := session.Run(poller, listener)
	if ctx.Err() != nil {
		logger.Info().Msg("Received termination signal.")
	}

	if err := shutdown(renderer, kb, r, closerFunc(lock.Release)); err != nil {
		logger.ErrorWithCode(err).Msg("Cleanup failed")
	}
	logger.Info().Msg("Exiting...")

	if runErr != nil {
		return errors.New().Wrap(errors.ErrMainLoop, runErr)
	}

	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// shutdown closes every resource in order, even when an earlier close
// fails, and reports the combined failures.
func shutdown(closers ...interface{ Close() error }) errors.Error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	if err == nil {
		return nil
	}

	return errors.New().Wrap(errors.ErrShutdownFailed, err)
}

func listModels(cmd *cobra.Command) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMFG\tMODEL\tBACKEND")
	for _, m := range rig.Models() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Manufacturer, m.Name, m.Backend)
	}

	return w.Flush()
}
