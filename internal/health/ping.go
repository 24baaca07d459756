package health

import "context"

// HealthPinger is a dependency that can answer a cheap liveness query.
// A nil error means healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
