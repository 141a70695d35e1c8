package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/antoinelucasfra/curator/internal/api"
	"github.com/antoinelucasfra/curator/internal/history"
	"github.com/antoinelucasfra/curator/internal/inbox"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP and MCP (foreground)",
	Long: `Serve the catalog over HTTP and MCP (foreground).

The HTTP API is read-only; every request reads the catalog file directly so
external edits show up immediately. The MCP server runs on stdio and exposes
search plus an add_resource tool that queues links into the inbox for the
next sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	serveCmd.Flags().String("catalog", "", "catalog file path (default from config)")
	serveCmd.Flags().String("inbox", "", "inbox file path (default from config)")
	serveCmd.Flags().Bool("mcp", true, "also serve MCP on stdio")
}

func runServer(cmd *cobra.Command) error {
	fmt.Fprintf(os.Stderr, "curator version %s\n", version)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalogPath, _ := cmd.Flags().GetString("catalog")
	inboxPath, _ := cmd.Flags().GetString("inbox")
	withMCP, _ := cmd.Flags().GetBool("mcp")
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	if inboxPath == "" {
		inboxPath = cfg.Inbox.Path
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run history is optional for serving; the API degrades gracefully.
	var store *history.Store
	if s, err := history.Open(cfg.Storage.DataDir); err == nil {
		store = s
		defer store.Close()
	} else {
		printWarning("run history unavailable: %v", err)
	}

	handler := api.NewHandler(api.Deps{
		CatalogPath: catalogPath,
		History:     store,
		Token:       os.Getenv("CURATOR_API_TOKEN"),
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			CatalogPath: catalogPath,
			Inbox:       inbox.NewFileSource(inboxPath),
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				printError("MCP stdio server error: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "curator listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
