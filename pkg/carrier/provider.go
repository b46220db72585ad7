// Package carrier provides a carrier-agnostic shipping-rate abstraction:
// domain models, a structured error taxonomy, a provider registry, and a
// rate-shopping service that fans out across carriers.
package carrier

import (
	"context"
)

// Provider is implemented by each carrier integration.
type Provider interface {
	// Name returns the carrier identifier (e.g., "ups").
	Name() string

	// Supports reports whether the carrier implements the given operation.
	Supports(op Operation) bool

	// GetRates returns price quotes for a shipment, sorted by total
	// charges ascending. Failures are always a *carrier.Error.
	GetRates(ctx context.Context, req *RateRequest) ([]RateQuote, error)
}
