package health

import "context"

// Pinger checks availability of a storage backend (cache or database).
type Pinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks availability of the recommendation refiner's provider.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}
