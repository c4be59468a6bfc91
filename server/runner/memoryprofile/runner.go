// Package memoryprofile runs the periodic batch aggregation of memory
// profiles for all users.
package memoryprofile

import (
	"context"
	"log/slog"
	"time"

	"github.com/kindredapp/kindred/server/aggregator"
	"github.com/kindredapp/kindred/store"
)

// UserStore enumerates the users the runner aggregates.
type UserStore interface {
	ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error)
}

type Runner struct {
	store      UserStore
	aggregator *aggregator.Aggregator
	interval   time.Duration
}

// NewRunner creates a memory profile runner.
func NewRunner(store UserStore, agg *aggregator.Aggregator, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{
		store:      store,
		aggregator: agg,
		interval:   interval,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup
	r.processAllUsers(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processAllUsers(ctx)
		case <-ctx.Done():
			slog.Info("memory profile runner stopped")
			return
		}
	}
}

// RunOnce processes all users once (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) *aggregator.BatchResult {
	return r.processAllUsers(ctx)
}

func (r *Runner) processAllUsers(ctx context.Context) *aggregator.BatchResult {
	users, err := r.store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		slog.Error("failed to list users for aggregation", "error", err)
		return &aggregator.BatchResult{}
	}
	if len(users) == 0 {
		return &aggregator.BatchResult{}
	}

	userIDs := make([]int32, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}

	return r.aggregator.RunBatch(ctx, userIDs)
}
