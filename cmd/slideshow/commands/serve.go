package commands

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

	"github.com/spf13/cobra"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/kv"
	"github.com/haivivi/slideshow/pkg/slideshow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser interface",
	Long: `Serve the browser interface: a request box, example requests, slides
streamed live over a websocket, and a download button for slideshow.zip.

Each browser gets its own session, identified by a cookie. Sessions are kept
in memory unless --data-dir or --persist is given, in which case slides
survive a restart.

Examples:
  slideshow serve --addr :8080
  slideshow serve --persist`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	persist, _ := cmd.Flags().GetBool("persist")
	idle, _ := cmd.Flags().GetDuration("session-idle")

	cctx, err := getContext()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := newGenerator(ctx, cctx)
	if err != nil {
		return err
	}

	if persist && dataDir == "" {
		paths, err := cli.NewPaths(appName)
		if err != nil {
			return err
		}
		if dataDir, err = paths.EnsureDataDir(); err != nil {
			return err
		}
	}
	var store kv.Store = kv.NewMemory(nil)
	if dataDir != "" {
		store, err = kv.NewBadger(kv.BadgerOptions{Dir: dataDir})
		if err != nil {
			return fmt.Errorf("open session store %s: %w", dataDir, err)
		}
	}
	defer store.Close()

	registry := slideshow.NewRegistry(gen, cctx.Model, store)
	if idle > 0 {
		// Persisted slides outlive their session object; in-memory ones do not.
		go sweepSessions(ctx, registry, idle, dataDir == "")
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("slideshow: web interface starting", "addr", addr, "data_dir", dataDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("slideshow: shutting down")
	registry.CancelAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepSessions evicts sessions idle for longer than idle until ctx ends.
func sweepSessions(ctx context.Context, registry *slideshow.Registry, idle time.Duration, dropSlides bool) {
	every := min(idle, time.Minute)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Evict(ctx, idle, dropSlides)
		}
	}
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("data-dir", "", "directory for the persistent session store (default: in memory)")
	serveCmd.Flags().Bool("persist", false, "persist sessions under ~/.giztoy/slideshow/data")
	serveCmd.Flags().Duration("session-idle", 30*time.Minute, "forget browser sessions idle for this long (0 keeps them forever)")
}
