package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vito/natded/pkg/ioctx"
)

// LogConfig holds the logging settings read from the environment.
type LogConfig struct {
	Level slog.Level
}

// LogLevelEnv selects the log level: 1 error, 2 warn, 3 info, 4 debug.
const LogLevelEnv = "NATDED_LOGLEVEL"

// ParseLogConfig interprets the value of NATDED_LOGLEVEL. An empty value
// means info.
func ParseLogConfig(value string) (LogConfig, error) {
	if value == "" {
		return LogConfig{Level: slog.LevelInfo}, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return LogConfig{}, fmt.Errorf("%s: %q is not a number", LogLevelEnv, value)
	}
	switch n {
	case 1:
		return LogConfig{Level: slog.LevelError}, nil
	case 2:
		return LogConfig{Level: slog.LevelWarn}, nil
	case 3:
		return LogConfig{Level: slog.LevelInfo}, nil
	case 4:
		return LogConfig{Level: slog.LevelDebug}, nil
	}
	return LogConfig{}, fmt.Errorf("%s: level %d out of range 1-4", LogLevelEnv, n)
}

// Logger returns a text logger writing to w at the configured level.
func (lc LogConfig) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lc.Level,
	}))
}

func main() {
	lc, err := ParseLogConfig(os.Getenv(LogLevelEnv))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := newRootCmd(lc)

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			printError(w, err, !isTerminal(os.Stderr))
		}),
	); err != nil {
		os.Exit(1)
	}
}

// printError writes err, followed by the failing command's usage when the
// command was invoked wrongly.
func printError(w io.Writer, err error, plain bool) {
	msg := err.Error()
	var ue *usageError
	if errors.As(err, &ue) {
		msg += "\n\n" + strings.TrimRight(ue.cmd.UsageString(), "\n")
	}
	if plain {
		msg = stripANSI(msg)
	}
	_, _ = fmt.Fprintln(w, msg)
}

// usageError is an error in how a command was invoked: missing or extra
// arguments, unknown subcommands and bad flags.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// withUsage marks argument validation failures as usage errors.
func withUsage(args cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := args(cmd, a); err != nil {
			return &usageError{cmd: cmd, err: err}
		}
		return nil
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	systemF bool
}

func newRootCmd(lc LogConfig) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "natded <command> [flags] <file>",
		Short: "Natural deduction proof checker",
		Long: `natded compiles natural deduction proof scripts into TypeScript
programs whose successful type check certifies every proof.`,
		Example: `  # Check a proof script
  natded check proofs.proof

  # Show the generated TypeScript
  natded transform proofs.proof

  # Enable quantifiers
  natded check --system-f quantifiers.proof

  # Debug logging
  NATDED_LOGLEVEL=4 natded check proofs.proof`,
		SilenceUsage: true,
		Args:         withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return &usageError{cmd: cmd, err: errors.New("no command given")}
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			cmd.SetContext(ioctx.LoggerToContext(ctx, lc.Logger(ioctx.StderrFromContext(ctx))))
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{cmd: cmd, err: err}
	})
	rootCmd.PersistentFlags().BoolVar(&flags.systemF, "system-f", false, "Enable quantified propositions (forall)")

	rootCmd.AddCommand(
		lexCmd(),
		astCmd(&flags),
		fmtCmd(&flags),
		transformCmd(&flags),
		checkCmd(&flags),
		lspCmd(lc),
	)

	return rootCmd
}
