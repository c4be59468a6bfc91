// Package v1 exposes the kindred core over a small JSON API.
package v1

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kindredapp/kindred/internal/profile"
	"github.com/kindredapp/kindred/server/aggregator"
	"github.com/kindredapp/kindred/server/middleware"
	"github.com/kindredapp/kindred/server/selector"
	"github.com/kindredapp/kindred/store"
)

type APIV1Service struct {
	Profile    *profile.Profile
	Store      *store.Store
	Selector   *selector.Selector
	Aggregator *aggregator.Aggregator

	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, sel *selector.Selector, agg *aggregator.Aggregator) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		Selector:    sel,
		Aggregator:  agg,
		rateLimiter: middleware.NewRateLimiter(),
	}
}

// Register mounts the v1 routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1")
	group.Use(echomw.CORS())
	group.Use(s.rateLimiter.Middleware())

	group.POST("/suggestions", s.createSuggestion)
	group.GET("/users/:id/profile", s.getMemoryProfile)
	group.POST("/users/:id/profile/refresh", s.refreshMemoryProfile)
	group.POST("/users/:id/events", s.createCompanionEvent)
	group.POST("/users/:id/state", s.upsertCompanionState)
}
