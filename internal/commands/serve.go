package commands

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and live event stream",
	Long: `Run the HTTP API. Clients authenticate with a bearer token from 'punch token'.

Examples:
  punch serve
  PUNCH_ADDR=:9090 punch serve --config ./punch.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(true)
		if err != nil {
			return err
		}
		defer a.close()
		return runServer(a)
	},
}

func runServer(a *app) error {
	log := a.logger
	log.Info("punch server", "version", version, "commit", commit, "date", date)

	srv := server.New(server.Options{
		Trackers:     a.trackers,
		Reports:      a.reports,
		Tasks:        a.store,
		Hub:          a.hub,
		Logger:       log,
		JWTSecret:    []byte(a.cfg.Auth.JWTSecret),
		DefaultScope: a.cfg.Tracker.Scope,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		RateLimit:    a.cfg.Server.RateLimit,
		RateBurst:    a.cfg.Server.RateBurst,
		Keepalive:    a.cfg.Server.Keepalive,
		Ready:        a.store.Ping,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.redis != nil {
		go func() {
			if err := notify.Bridge(ctx, a.redis, notify.DefaultChannelPrefix, a.hub, log); err != nil {
				log.Error("event bridge stopped", slog.String("error", err.Error()))
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
		// event streams end when the signal arrives
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
	return nil
}
