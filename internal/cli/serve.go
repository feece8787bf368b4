package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/cadence"
	httpAdapter "github.com/aretw0/cadence/internal/adapters/http"
)

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully
// within the configured timeout.
func Serve(ctx context.Context, app *App, out io.Writer) error {
	handler := httpAdapter.NewHandler(app.Skill, app.Sessions,
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithMetrics(app.Metrics.Handler()),
		httpAdapter.WithInfo("cadence", cadence.Version),
	)

	srv := &http.Server{
		Addr:    app.Config.Server.Addr,
		Handler: handler,
	}

	reg := app.Skill.Registry()
	app.Logger.Info("app start", "actions", reg.Len(), "names", reg.Names(), "store", app.Config.Store.Type)

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	printSystemMessage(out, "Starting Cadence Server on %s", srv.Addr)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(out, "Start shutdown...")

		timeout := app.Config.Server.ShutdownTimeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("graceful shutdown did not complete", "timeout", timeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(out, "Cadence Server stopped gracefully")
		return nil
	}
}
