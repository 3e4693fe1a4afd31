package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/vito/natded/pkg/ioctx"
	"github.com/vito/natded/pkg/natded"
	"github.com/vito/natded/pkg/oracle"
)

// SourceExt is the extension fmt looks for in directories.
const SourceExt = ".proof"

// settings are the effective options for one file: natded.toml values
// overridden by flags.
type settings struct {
	systemF    bool
	oracle     oracle.Config
	configPath string
}

func resolveSettings(cmd *cobra.Command, flags *globalFlags, path string) (settings, error) {
	s := settings{oracle: oracle.Config{Kind: oracle.KindAuto}}

	configPath, config, err := natded.FindProjectConfig(filepath.Dir(path))
	if err != nil {
		return s, err
	}
	if config != nil {
		s.configPath = configPath
		s.systemF = config.SystemF
		if config.Oracle != "" {
			s.oracle.Kind = config.Oracle
		}
		s.oracle.TSCPath = config.TSC.Path
		s.oracle.TSCVersion = config.TSC.Version
		s.oracle.TSCArgs = config.TSC.Args
	}

	if cmd.Flags().Changed("system-f") {
		s.systemF = flags.systemF
	}
	s.oracle.Logger = ioctx.LoggerFromContext(cmd.Context())
	return s, nil
}

func readSource(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(src), nil
}

func compileFile(ctx context.Context, path string, s settings) (*natded.Compilation, error) {
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	c, err := natded.Compile(src, natded.Options{
		SystemF: s.systemF,
		Logger:  ioctx.LoggerFromContext(ctx).With("file", path),
	})
	if err != nil {
		return nil, natded.NewSourceError(err, path, src)
	}
	return c, nil
}

func lexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lex <file>",
		Short: "Print the tokens of a proof script",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			toks, err := natded.Tokenize(src)
			if err != nil {
				return natded.NewSourceError(err, args[0], src)
			}
			out := ioctx.StdoutFromContext(cmd.Context())
			for _, tok := range toks {
				fmt.Fprintln(out, tok)
			}
			return nil
		},
	}
}

func astCmd(flags *globalFlags) *cobra.Command {
	var goSyntax bool

	cmd := &cobra.Command{
		Use:   "ast [flags] <file>",
		Short: "Print the syntax tree of a proof script",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, flags, args[0])
			if err != nil {
				return err
			}
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			doc, err := natded.Parse(src, natded.ParseOptions{SystemF: s.systemF})
			if err != nil {
				return natded.NewSourceError(err, args[0], src)
			}
			out := ioctx.StdoutFromContext(cmd.Context())
			if goSyntax {
				_, err := pretty.Fprintf(out, "%# v\n", doc)
				return err
			}
			_, err = fmt.Fprint(out, natded.SExp(doc))
			return err
		},
	}

	cmd.Flags().BoolVar(&goSyntax, "go", false, "Dump the Go structure instead of an S-expression")

	return cmd
}

func fmtCmd(flags *globalFlags) *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] <path>...",
		Short: "Format proof scripts",
		Long: `Format proof scripts according to the canonical style.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.`,
		Example: `  # Format a file and print to stdout
  natded fmt proofs.proof

  # Format every .proof file in a directory in place
  natded fmt -w ./proofs`,
		Args: withUsage(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandPaths(args)
			if err != nil {
				return err
			}
			for _, file := range files {
				s, err := resolveSettings(cmd, flags, file)
				if err != nil {
					return err
				}
				if err := formatFile(cmd.Context(), file, s, write, list); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files that would be formatted")

	return cmd
}

// expandPaths replaces each directory with the proof scripts directly inside
// it.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), SourceExt) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

func formatFile(ctx context.Context, path string, s settings, write, list bool) error {
	source, err := readSource(path)
	if err != nil {
		return err
	}

	formatted, err := natded.FormatSource(source, natded.ParseOptions{SystemF: s.systemF})
	if err != nil {
		return natded.NewSourceError(err, path, source)
	}

	out := ioctx.StdoutFromContext(ctx)
	changed := source != formatted

	if list && !write {
		if changed {
			fmt.Fprintln(out, path)
		}
		return nil
	}

	if write {
		if changed {
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return err
			}
			if list {
				fmt.Fprintln(out, path)
			}
		}
		return nil
	}

	_, err = fmt.Fprint(out, formatted)
	return err
}

func transformCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "transform <file>",
		Short: "Print the TypeScript program generated from a proof script",
		Args:  withUsage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, flags, args[0])
			if err != nil {
				return err
			}
			c, err := compileFile(cmd.Context(), args[0], s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(ioctx.StdoutFromContext(cmd.Context()), c.Program.Text)
			return err
		},
	}
}
