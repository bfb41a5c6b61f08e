package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/gantry/internal/app"
	"github.com/rpggio/gantry/internal/mcp"
	"github.com/rpggio/gantry/internal/transport"
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and MCP server",
		Long: `Run the server.

In http mode the REST API is served under /api/v1 and MCP (streamable HTTP)
under /mcp, both behind bearer API keys. In stdio mode MCP is spoken on
stdin/stdout and every call acts as the --as person.

Examples:
  gantry serve
  gantry serve --transport stdio --as alice@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), e)
		},
	}
	cmd.Flags().String("transport", "", "Transport mode: http or stdio (default from config)")
	return cmd
}

func runServe(ctx context.Context, e *env) error {
	cfg, logger := e.cfg, e.logger
	mode := cfg.Transport.Mode
	if mode != "http" && mode != "stdio" {
		return fmt.Errorf("invalid transport mode %q (want http or stdio)", mode)
	}

	a, closeApp, err := openApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer closeApp()

	// Stdio and auth-disabled HTTP act as a fixed person.
	var defaultActor string
	if mode == "stdio" || !cfg.Auth.Enabled {
		p, err := resolvePerson(ctx, a.People, e.as)
		if err != nil {
			return fmt.Errorf("default person: %w", err)
		}
		defaultActor = p.ID
	}

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.MCPServices(),
		Resolver:      a.Keys,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultActor:  defaultActor,
		TransportMode: mode,
		Version:       e.version,
		Logger:        logger,
	})

	if mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}
	return runHTTPMode(e, a, mcpServer, defaultActor)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(e *env, a *app.App, mcpServer *sdkmcp.Server, defaultActor string) error {
	cfg, logger := e.cfg, e.logger

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	srv := transport.NewServer(transport.Config{
		Services:     a.HTTPServices(),
		Resolver:     a.Keys,
		AuthEnabled:  cfg.Auth.Enabled,
		DefaultActor: defaultActor,
		MCP:          mcpHandler,
		Logger:       logger,
	})

	addr := cfg.Server.Addr()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := srv.Start(addr, cfg.Server.ReadTimeout.Duration(), cfg.Server.WriteTimeout.Duration()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(logger, srv, cfg.Server.ShutdownTimeout.Duration(), errCh)
}

// waitForShutdown blocks until a signal arrives or the server fails, then
// drains in-flight requests.
func waitForShutdown(logger *slog.Logger, srv *transport.Server, timeout time.Duration, errCh <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
