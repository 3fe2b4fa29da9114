package app

import (
	"context"

	"github.com/vk/servekit/internal/ctxlog"
)

// Run serves HTTP until the context is cancelled or the listener fails,
// then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run started.",
		"listen_addr", a.model.ListenAddr,
		"body_limit", a.model.BodyLimit.String(),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		a.logger.Info("Shutdown signal received.")
		// Shutdown uses its own timeout; the parent ctx is already done.
		if err := a.server.Shutdown(context.Background()); err != nil {
			return err
		}
		return <-serveErr
	}
}
