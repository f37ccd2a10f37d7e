package telemetry

import "context"

type ITelemetry interface {
	// WarmPriceCache refreshes the configured symbols in the price oracle
	// and publishes the cache size.
	WarmPriceCache(ctx context.Context) error
}
