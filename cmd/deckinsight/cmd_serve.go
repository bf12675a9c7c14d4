package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/api"
	"github.com/ramonehamilton/deck-insight/internal/api/websocket"
	"github.com/ramonehamilton/deck-insight/internal/watch"
)

var (
	servePort     int
	serveWatchDir string
)

// serveCmd runs the REST API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Run the REST API server. The knowledge base is restored from the
snapshot database on startup and saved again on shutdown.

With --watch, decklists in the directory are re-validated on every write
and the results are pushed to WebSocket clients on /ws.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveWatchDir, "watch", "", "directory of decklists to watch")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.RestoreKnowledge(ctx); err != nil {
		a.Logger.Warn("Failed to restore knowledge base", "error", err)
	}

	port := a.Config.Server.Port
	if servePort > 0 {
		port = servePort
	}
	server, err := api.NewServer(&api.Config{
		Port:        port,
		CORSOrigins: a.Config.Server.CORSOrigins,
		Logger:      a.Logger,
	}, a.ServerServices())
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "API server running at http://localhost:%d\n", port)

	watchDone := make(chan error, 1)
	if serveWatchDir != "" {
		_, opts := a.ValidateOptions("", false, 0)
		w, err := watch.New(&watch.Config{
			Dir:        serveWatchDir,
			Extensions: a.Config.Watch.Extensions,
			Debounce:   a.Config.WatchDebounce(),
			Options:    opts,
			Logger:     a.Logger,
		})
		if err != nil {
			return err
		}
		events := server.Events()
		go func() {
			watchDone <- w.Run(ctx, func(r watch.Result) {
				events.Publish(websocket.EventDeckValidated, r)
			})
		}()
	} else {
		close(watchDone)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.PersistKnowledge(shutdownCtx); err != nil {
		a.Logger.Warn("Failed to save knowledge base", "error", err)
	}
	if err := <-watchDone; err != nil {
		a.Logger.Warn("Watcher stopped with error", "error", err)
	}
	return server.Shutdown(shutdownCtx)
}
