// Package health provides periodic health checks with auto-recovery: the
// snapshot store must answer a ping and the data directory must exist and
// be writable.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wildtrail/wildtrail/internal/infra/metrics"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// DefaultInterval is how often Run re-checks.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      *logger.Logger
}

// NewChecker creates a health checker for the store and the data directory.
// storePing may be nil for the in-memory store.
func NewChecker(storePing func(ctx context.Context) error, dataDir string, log *logger.Logger) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	c := &Checker{interval: DefaultInterval, log: log}
	if storePing != nil {
		c.checks = append(c.checks, Check{
			Name:    "store",
			CheckFn: storePing,
		})
	}
	if dataDir != "" {
		c.checks = append(c.checks, Check{
			Name: "data_dir",
			CheckFn: func(ctx context.Context) error {
				return checkDataDir(dataDir)
			},
			RecoverFn: func(ctx context.Context) error {
				return os.MkdirAll(dataDir, 0700)
			},
		})
	}
	return c
}

// SetInterval changes the re-check period for subsequent Run calls.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Add registers an extra check.
func (c *Checker) Add(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Run runs the checks until ctx is done. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) error {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce runs every check once and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	c.mu.RLock()
	checks := append([]Check(nil), c.checks...)
	c.mu.RUnlock()

	statuses := make([]Status, len(checks))
	for i, check := range checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			c.log.Warn("health check failed", "check", check.Name, "error", err)
			if check.RecoverFn != nil {
				metrics.HealthRecoveries.WithLabelValues(check.Name).Inc()
				if rerr := check.RecoverFn(ctx); rerr != nil {
					c.log.Error("health recovery failed", "check", check.Name, "error", rerr)
				} else if err := check.CheckFn(ctx); err == nil {
					s.Healthy = true
					s.Error = ""
				}
			}
		} else {
			s.Healthy = true
		}
		if s.Healthy {
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		} else {
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	probe := filepath.Join(dir, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	return os.Remove(probe)
}
