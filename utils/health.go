package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger checks the reachability of one external dependency.
type Pinger func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Dependencies map[string]bool `json:"dependencies"`
	CheckedAt    time.Time       `json:"checkedAt"`
}

// Healthy reports whether every dependency answered its last check.
func (h HealthStatus) Healthy() bool {
	for _, ok := range h.Dependencies {
		if !ok {
			return false
		}
	}
	return true
}

// HealthMonitor periodically pings dependencies and keeps the latest snapshot.
type HealthMonitor struct {
	pingers map[string]Pinger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(pingers map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{
		pingers: pingers,
		current: HealthStatus{Dependencies: map[string]bool{}},
	}
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check runs every pinger once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	deps := make(map[string]bool, len(m.pingers))
	for name, ping := range m.pingers {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		deps[name] = ping(pctx) == nil
		cancel()
	}

	status := HealthStatus{Dependencies: deps, CheckedAt: time.Now()}
	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is cancelled.
func (m *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		m.Check(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}
