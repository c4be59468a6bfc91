// Package server wires the store, selector, aggregator, and HTTP surface
// into one runnable unit.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kindredapp/kindred/internal/profile"
	"github.com/kindredapp/kindred/server/aggregator"
	"github.com/kindredapp/kindred/server/companion"
	"github.com/kindredapp/kindred/server/domino"
	apiv1 "github.com/kindredapp/kindred/server/router/api/v1"
	"github.com/kindredapp/kindred/server/runner/memoryprofile"
	"github.com/kindredapp/kindred/server/selector"
	"github.com/kindredapp/kindred/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	runner     *memoryprofile.Runner
}

func NewServer(ctx context.Context, profile *profile.Profile, st *store.Store) (*Server, error) {
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Recover())

	agg := aggregator.New(st, profile.AggregationWindow, profile.AggregationConcurrency)

	var analyzer domino.Analyzer
	if profile.DominoEndpoint != "" {
		analyzer = domino.NewHTTPAnalyzer(profile.DominoEndpoint, profile.DominoTimeout)
	}

	sel := selector.New(st, companion.NewStoreProvider(st), analyzer, profile.CompanionName)

	apiService := apiv1.NewAPIV1Service(profile, st, sel, agg)
	apiService.Register(echoServer)

	return &Server{
		Profile:    profile,
		Store:      st,
		echoServer: echoServer,
		runner:     memoryprofile.NewRunner(st, agg, profile.AggregationInterval),
	}, nil
}

// Start launches the background runner and the HTTP listener.
func (s *Server) Start(ctx context.Context) error {
	go s.runner.Run(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("kindred server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("kindred server stopped")
}
