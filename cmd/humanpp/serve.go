package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/phyten/humanpp/internal/lsp"
	"github.com/phyten/humanpp/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the editor bridge over stdio",
		Long:  "serve speaks Content-Length framed JSON-RPC on stdin/stdout and pushes\n" +
			"decorations to the editor as humanpp/* notifications.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			server := lsp.NewServer(a.stdin, a.stdout, store, lsp.ServerOptions{
				Logger:  a.logger(),
				Version: version,
			})
			if err := server.Run(cmd.Context()); err != nil {
				if errors.Is(err, lsp.ErrExit) {
					return nil
				}
				if errors.Is(err, lsp.ErrExitWithoutShutdown) {
					return fmt.Errorf("exit without shutdown")
				}
				return err
			}
			return nil
		},
	}
}

func newWebCmd(a *app) *cobra.Command {
	var (
		addr string
		root string
	)
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the scan UI and file previews over HTTP",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			dir := a.dir
			if root != "" {
				dir = a.abs(root)
			}
			logger := a.logger()
			ui := web.New(web.Options{Root: dir, Settings: store, Logger: logger})
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "humanpp web listening on http://%s (root=%s)\n", ln.Addr(), dir)
			return serveHTTP(cmd.Context(), ln, ui.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&root, "root", "", "directory to scan (default: current directory)")
	return cmd
}

// serveHTTP serves until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
