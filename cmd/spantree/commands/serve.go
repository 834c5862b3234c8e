package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/spantree/spantree/internal/queryapi"
)

// Server timeouts; query handlers are in-memory and fast, so these bound
// only slow clients.
const (
	serveReadHeaderTimeout = 5 * time.Second
	serveWriteTimeout      = 30 * time.Second
)

// ServeCommand holds the flags for the serve command.
type ServeCommand struct {
	configPath string
	dataset    string
	listenAddr string
}

// NewServeCommand creates and configures the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &ServeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve span queries over HTTP",
		Long: `Serve loads a span dataset and answers overlap and point queries over
HTTP:

  GET /overlap?low=N&high=M
  GET /point?at=N
  GET /metrics   Prometheus scrape endpoint
  GET /healthz   liveness probe`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "Config file path")
	cobraCmd.Flags().StringVarP(&cmd.dataset, "dataset", "d", "", "Dataset file (JSON, optionally .lz4; - for stdin)")
	cobraCmd.Flags().StringVarP(&cmd.listenAddr, "listen", "l", "", "Listen address (overrides config)")

	return cobraCmd
}

// Run executes the serve command.
func (c *ServeCommand) Run(_ *cobra.Command, _ []string) error {
	cfg, err := loadCommandConfig(c.configPath)
	if err != nil {
		return err
	}

	store, err := loadStore(cfg, c.dataset)
	if err != nil {
		return err
	}

	addr := c.listenAddr
	if addr == "" {
		addr = cfg.Serve.ListenAddr
	}

	server := queryapi.NewServer(store, slog.Default())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: serveReadHeaderTimeout,
		WriteTimeout:      serveWriteTimeout,
	}

	slog.Info("query server listening", "addr", addr, "spans", store.Len())

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
