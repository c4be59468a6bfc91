package aggregator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UserResult records the outcome of one user's aggregation within a batch.
type UserResult struct {
	UserID  int32  `json:"userId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult summarizes a batch aggregation run. Processed counts
// successful users; Errors counts failed ones.
type BatchResult struct {
	Processed int          `json:"processed"`
	Errors    int          `json:"errors"`
	Results   []UserResult `json:"results"`
}

// RunBatch aggregates every given user with bounded parallelism. Each user
// is independent: a failure (or panic) for one is recorded in its result and
// never aborts the rest of the batch.
func (a *Aggregator) RunBatch(ctx context.Context, userIDs []int32) *BatchResult {
	runID := uuid.NewString()
	slog.Info("memory profile batch started", "runId", runID, "users", len(userIDs))

	results := make([]UserResult, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			results[i] = a.aggregateUserSafe(gctx, userID)
			return nil
		})
	}
	// Workers never return errors; failures live in the per-user results.
	_ = g.Wait()

	batch := &BatchResult{Results: results}
	for _, result := range results {
		if result.Success {
			batch.Processed++
		} else {
			batch.Errors++
		}
	}

	slog.Info("memory profile batch finished", "runId", runID, "processed", batch.Processed, "errors", batch.Errors)
	return batch
}

func (a *Aggregator) aggregateUserSafe(ctx context.Context, userID int32) (result UserResult) {
	result = UserResult{UserID: userID}
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("panic: %v", r)
			slog.Error("memory profile aggregation panicked", "userId", userID, "panic", r)
		}
	}()

	if _, err := a.AggregateUser(ctx, userID); err != nil {
		result.Error = err.Error()
		slog.Error("memory profile aggregation failed", "userId", userID, "error", err)
		return result
	}
	result.Success = true
	return result
}
