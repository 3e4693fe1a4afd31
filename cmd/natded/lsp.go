package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/spf13/cobra"

	"github.com/vito/natded/pkg/ioctx"
	"github.com/vito/natded/pkg/lsp"
)

func lspCmd(lc LogConfig) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Run the language server on stdin and stdout",
		Long: `Run a Language Server Protocol server for proof scripts. Open documents
are compiled and checked on every change; errors, warnings and oracle
diagnostics are published back to the editor.`,
		Args: withUsage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var logDest io.Writer = ioctx.StderrFromContext(ctx)
			if logFile != "" {
				f, err := os.Create(logFile)
				if err != nil {
					return fmt.Errorf("open lsp log: %w", err)
				}
				defer f.Close() //nolint:errcheck
				logDest = f
			}

			logger := lc.Logger(logDest)
			slog.SetDefault(logger)

			logger.InfoContext(ctx, "starting LSP server")

			handler := lsp.NewHandler()
			srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
				AllowPush: true,
				Logger:    func(text string) { logger.Debug(text) },
			})
			handler.SetServer(srv)

			srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

			logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Path to the server log (stderr if not specified)")

	return cmd
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
