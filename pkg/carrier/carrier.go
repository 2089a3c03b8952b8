// Package carrier provides an abstraction layer for shipping-rate carriers.
package carrier

import (
	"context"
)

// Carrier defines the interface that all rating carriers must implement.
type Carrier interface {
	// Name returns the carrier identifier (e.g., "UPS").
	Name() string

	// GetRates returns normalized rate quotes for a shipment.
	GetRates(ctx context.Context, req *RateRequest) (*RateResponse, error)
}
