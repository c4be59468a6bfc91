// Package domino wraps the external dependency analyzer that estimates how
// many other tasks a given task would unlock.
package domino

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// TaskRef is the minimal task projection sent to the analyzer.
type TaskRef struct {
	ID       int32    `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords,omitempty"`
}

// Analyzer ranks a small task batch by estimated unlock count. Calls may
// fail; callers must treat failure as "no ranking available".
type Analyzer interface {
	RankUnlocks(ctx context.Context, tasks []TaskRef) (map[int32]int, error)
}

// HTTPAnalyzer calls a remote analyzer endpoint over JSON.
type HTTPAnalyzer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPAnalyzer creates an analyzer client bounded by the given timeout.
func NewHTTPAnalyzer(endpoint string, timeout time.Duration) *HTTPAnalyzer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPAnalyzer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type rankRequest struct {
	Tasks []TaskRef `json:"tasks"`
}

type rankResponse struct {
	Unlocks map[string]int `json:"unlocks"`
}

// RankUnlocks posts the batch to the analyzer and returns task id → unlock
// count. A timeout or any non-200 status is an error.
func (a *HTTPAnalyzer) RankUnlocks(ctx context.Context, tasks []TaskRef) (map[int32]int, error) {
	if a.endpoint == "" {
		return nil, errors.New("domino analyzer endpoint is not configured")
	}

	body, err := json.Marshal(rankRequest{Tasks: tasks})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal rank request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build rank request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "domino analyzer request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("domino analyzer returned status %d", resp.StatusCode)
	}

	decoded := rankResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode rank response")
	}

	unlocks := make(map[int32]int, len(decoded.Unlocks))
	for rawID, count := range decoded.Unlocks {
		id, err := strconv.ParseInt(rawID, 10, 32)
		if err != nil {
			continue
		}
		unlocks[int32(id)] = count
	}
	return unlocks, nil
}
