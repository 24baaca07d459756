// Package health folds dependency probes into the single up/down flag that
// gates startup and backs GET /api/health.
package health

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/telecomnet/telecom-social/internal/metrics"
)

// HealthChecker is one probed dependency. IsHealthy must not block; Start
// probes every interval until ctx ends.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker is up only while every dependency is up.
type ServiceHealthChecker struct {
	up   atomic.Bool
	deps []HealthChecker
	log  zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log.With().Str("component", "health").Logger()}
}

// IsHealthy reports the result of the last evaluation. It starts false.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.up.Load() }

// Components maps each dependency name to its cached state.
func (h *ServiceHealthChecker) Components() map[string]bool {
	out := make(map[string]bool, len(h.deps))
	for _, c := range h.deps {
		out[c.Name()] = c.IsHealthy()
	}
	return out
}

// StartAll runs every dependency probe loop plus the aggregator until ctx ends.
func (h *ServiceHealthChecker) StartAll(ctx context.Context, interval time.Duration) {
	for _, c := range h.deps {
		go c.Start(ctx, interval)
	}
	go h.Start(ctx, interval)
}

// Start re-evaluates on every tick and logs only transitions.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.evaluate()
		}
	}
}

// evaluate publishes per-component gauges and flips the service flag.
func (h *ServiceHealthChecker) evaluate() bool {
	var down []string
	for name, ok := range h.Components() {
		gauge := 0.0
		if ok {
			gauge = 1
		} else {
			down = append(down, name)
		}
		metrics.ComponentUp.WithLabelValues(name).Set(gauge)
	}
	sort.Strings(down)

	up := len(down) == 0
	if up {
		metrics.ServiceUp.Set(1)
	} else {
		metrics.ServiceUp.Set(0)
	}
	if prev := h.up.Swap(up); prev != up {
		if up {
			h.log.Info().Msg("service healthy")
		} else {
			h.log.Error().Strs("down", down).Msg("service unhealthy")
		}
	}
	return up
}
