package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/natded/pkg/ioctx"
	"github.com/vito/natded/pkg/natded"
	"github.com/vito/natded/pkg/oracle"
)

var (
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// watchDebounce coalesces bursts of file events into one re-check.
const watchDebounce = 100 * time.Millisecond

type checkFlags struct {
	watch  bool
	oracle string
}

func checkCmd(flags *globalFlags) *cobra.Command {
	var cf checkFlags

	cmd := &cobra.Command{
		Use:   "check [flags] <file>...",
		Short: "Compile proof scripts and type-check the result",
		Long: `Compile proof scripts and hand the generated programs to an oracle.
A script checks when its program type-checks without errors.

The oracle is tsc when it can be found on $PATH, otherwise a builtin
checker. Use --oracle to choose explicitly.`,
		Example: `  # Check two scripts
  natded check a.proof b.proof

  # Re-check whenever a script changes
  natded check --watch a.proof

  # Check without tsc
  natded check --oracle builtin a.proof`,
		Args: withUsage(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch cf.oracle {
			case "", oracle.KindAuto, oracle.KindTSC, oracle.KindBuiltin:
			default:
				return fmt.Errorf("unknown oracle %q (want auto, tsc or builtin)", cf.oracle)
			}
			if cf.watch {
				return watchFiles(cmd, flags, cf, args)
			}
			return checkFiles(cmd, flags, cf, args)
		},
	}

	cmd.Flags().BoolVar(&cf.watch, "watch", false, "Re-check files when they change")
	cmd.Flags().StringVar(&cf.oracle, "oracle", "", "Oracle to check with: auto, tsc or builtin")

	return cmd
}

type checkResult struct {
	path        string
	err         error
	compilation *natded.Compilation
	oracle      string
	report      *oracle.Report
}

func (r *checkResult) ok() bool {
	return r.err == nil && r.report.OK()
}

// checkFiles checks every path concurrently and prints the results in
// argument order. Files that fail to compile or check are reported; only a
// failure to run the oracle aborts the whole run.
func checkFiles(cmd *cobra.Command, flags *globalFlags, cf checkFlags, paths []string) error {
	results := make([]*checkResult, len(paths))

	eg, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range paths {
		eg.Go(func() error {
			res, err := checkFile(ctx, cmd, flags, cf, path)
			results[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	stdout := ioctx.StdoutFromContext(cmd.Context())
	stderr := ioctx.StderrFromContext(cmd.Context())

	var failed int
	for _, res := range results {
		printResult(stdout, stderr, res)
		if !res.ok() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to check", failed, len(paths))
	}
	return nil
}

func checkFile(ctx context.Context, cmd *cobra.Command, flags *globalFlags, cf checkFlags, path string) (*checkResult, error) {
	res := &checkResult{path: path}

	s, err := resolveSettings(cmd, flags, path)
	if err != nil {
		return nil, err
	}
	if cf.oracle != "" {
		s.oracle.Kind = cf.oracle
	}

	c, err := compileFile(ctx, path, s)
	if err != nil {
		var srcErr *natded.SourceError
		if !errors.As(err, &srcErr) {
			return nil, err
		}
		res.err = err
		return res, nil
	}
	res.compilation = c

	o, err := oracle.New(s.oracle)
	if err != nil {
		return nil, err
	}
	res.oracle = o.Name()

	report, err := natded.Check(ctx, c, o)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	res.report = report
	return res, nil
}

func printResult(stdout, stderr io.Writer, res *checkResult) {
	if res.err != nil {
		fmt.Fprintln(stderr, styled(stderr, res.err.Error()))
		return
	}

	for _, d := range res.report.Diagnostics {
		fmt.Fprintf(stdout, "%s: %s %s %s\n",
			diagnosticLocation(res.path, d),
			styled(stdout, errorStyle.Render("error:")),
			d.Message,
			styled(stdout, dimStyle.Render("("+d.Code+")")))
	}

	if res.report.OK() {
		var suffix string
		if n := len(res.compilation.Warnings()); n > 0 {
			suffix = " " + styled(stdout, warningStyle.Render(fmt.Sprintf("(%d warnings)", n)))
		}
		fmt.Fprintf(stdout, "%s %s: %d theorems checked by %s%s\n",
			styled(stdout, okStyle.Render("ok")),
			res.path, len(res.compilation.Document.Theorems), res.oracle, suffix)
	}
}

// diagnosticLocation prefers the proof-script position a diagnostic maps
// back to, falling back to the position in the generated program.
func diagnosticLocation(path string, d oracle.Diagnostic) string {
	switch {
	case d.Origin != nil:
		return fmt.Sprintf("%s:%d:%d", path, d.Origin.Line, d.Origin.Column)
	case d.Offset >= 0:
		return fmt.Sprintf("%s (generated %d:%d)", path, d.Line, d.Column)
	}
	return path
}

// watchFiles checks paths, then re-checks them whenever they or a
// natded.toml beside them change, until the context is cancelled.
func watchFiles(cmd *cobra.Command, flags *globalFlags, cf checkFlags, paths []string) error {
	ctx := cmd.Context()
	log := ioctx.LoggerFromContext(ctx)
	stderr := ioctx.StderrFromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]bool{}
	dirs := map[string]bool{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		watched[filepath.Join(dir, natded.ConfigFileName)] = true
		if !dirs[dir] {
			dirs[dir] = true
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
		}
	}

	run := func() {
		if err := checkFiles(cmd, flags, cf, paths); err != nil {
			fmt.Fprintln(stderr, styled(stderr, errorStyle.Render(err.Error())))
		}
	}
	run()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] || ev.Has(fsnotify.Chmod) {
				continue
			}
			log.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			pending = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			run()
		}
	}
}

// styled strips colour from s unless w is a terminal.
func styled(w io.Writer, s string) string {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return s
	}
	return stripANSI(s)
}
