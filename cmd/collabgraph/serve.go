package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/api"
	"github.com/rmax-ai/collabgraph/pkg/mcp"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the interactive graph page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = a.Config.Server.Addr
			}
			srv := api.NewServer(a.Catalog, a.Expander, api.Defaults{
				MaxDepth: a.Config.Graph.MaxDepth,
				Breadth:  a.Config.Graph.Breadth,
			}, addr, a.Log)
			srv.SetPresets(a.Config.Filters)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.Log.Info("shutdown_initiated")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				a.Log.Error("server_shutdown_failed", zap.Error(err))
				return err
			}
			a.Log.Info("shutdown_complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

func newMCPCmd(root *rootOptions) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose a running collabgraph server to MCP clients over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if endpoint == "" {
				cfg, err := root.loadConfig(cmd)
				if err != nil {
					return err
				}
				endpoint = endpointFor(cfg.Server.Addr)
			}
			// stdout carries the protocol.
			cmd.SetOut(os.Stderr)
			return mcp.NewServer(endpoint).Serve()
		},
	}
	cmd.Flags().StringVar(&endpoint, "api", "", "collabgraph server URL (default derived from server.addr)")
	return cmd
}

// endpointFor turns a listen address into a URL a client can dial.
func endpointFor(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}
