package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where kindred stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// CompanionName is the companion display name interpolated into guidance messages.
	CompanionName string // KINDRED_COMPANION_NAME (default: Pip)

	// AggregationInterval is how often the memory profile runner recomputes all users.
	AggregationInterval time.Duration // KINDRED_AGGREGATION_INTERVAL (default: 1h)

	// AggregationWindow is the behavioral lookback window for a profile run.
	AggregationWindow time.Duration // KINDRED_AGGREGATION_WINDOW (default: 168h)

	// AggregationConcurrency bounds parallel per-user aggregation in a batch run.
	AggregationConcurrency int // KINDRED_AGGREGATION_CONCURRENCY (default: 4)

	// DominoEndpoint is the URL of the dependency analyzer; empty disables it.
	DominoEndpoint string // KINDRED_DOMINO_ENDPOINT
	// DominoTimeout bounds a single analyzer call.
	DominoTimeout time.Duration // KINDRED_DOMINO_TIMEOUT (default: 3s)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", raw)
		return defaultValue
	}
	return d
}

func getIntEnv(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", raw)
		return defaultValue
	}
	return n
}

// FromEnv loads configuration from KINDRED_* environment variables.
func (p *Profile) FromEnv() {
	p.CompanionName = getEnvOrDefault("KINDRED_COMPANION_NAME", "Pip")
	p.AggregationInterval = getDurationEnv("KINDRED_AGGREGATION_INTERVAL", time.Hour)
	p.AggregationWindow = getDurationEnv("KINDRED_AGGREGATION_WINDOW", 7*24*time.Hour)
	p.AggregationConcurrency = getIntEnv("KINDRED_AGGREGATION_CONCURRENCY", 4)
	p.DominoEndpoint = os.Getenv("KINDRED_DOMINO_ENDPOINT")
	p.DominoTimeout = getDurationEnv("KINDRED_DOMINO_TIMEOUT", 3*time.Second)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/kindred"
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("kindred_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.AggregationConcurrency <= 0 {
		p.AggregationConcurrency = 1
	}
	if p.AggregationWindow <= 0 {
		p.AggregationWindow = 7 * 24 * time.Hour
	}

	return nil
}
