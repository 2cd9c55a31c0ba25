// Package dashboard serves a read-only HTTP view of dispatch state: agent
// coordinates and liveness, delivery history, queue stats, and a live SSE
// feed of delivery outcomes.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/history"
	"github.com/zulandar/switchboard/internal/registry"
	"github.com/zulandar/switchboard/internal/status"
)

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Registry    *registry.Registry
	Tracker     *status.Tracker
	Coordinator *dispatch.Coordinator
	Store       *history.Store // may be nil; history endpoints return empty
	Port        int
	Out         io.Writer
}

// Start launches the dashboard HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Registry == nil {
		return fmt.Errorf("dashboard: registry is required")
	}
	if opts.Coordinator == nil {
		return fmt.Errorf("dashboard: coordinator is required")
	}
	if opts.Tracker == nil {
		opts.Tracker = opts.Coordinator.Tracker()
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	router := newRouter(opts)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dashboard running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// newRouter builds the Gin router with all routes registered.
func newRouter(opts StartOpts) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, opts)
	return router
}
