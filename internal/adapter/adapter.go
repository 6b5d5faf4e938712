package adapter

import (
	"context"
	"time"

	"netcanvas/internal/domain"
)

// AdapterType defines how an adapter interacts with its data source
type AdapterType string

const (
	// AdapterTypePolling - adapter pulls state on a schedule
	AdapterTypePolling AdapterType = "polling"
	// AdapterTypeOneShot - manual trigger only
	AdapterTypeOneShot AdapterType = "oneshot"
)

// AdapterConfig holds configuration for an adapter instance
type AdapterConfig struct {
	// Enabled determines if the adapter should run
	Enabled bool `json:"enabled"`
	// PollInterval for polling adapters; one minute when zero
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	// JitterPercent randomizes each poll interval by up to this share
	JitterPercent int `json:"jitter_percent,omitempty"`
}

// Adapter produces node states from an external source
type Adapter interface {
	// Name returns the unique identifier for this adapter
	Name() string

	// Type returns how this adapter interacts with its source
	Type() AdapterType

	// Start initializes the adapter (called once on startup)
	Start(ctx context.Context) error

	// Stop gracefully shuts down the adapter
	Stop() error

	// Sync observes the source and returns a status report.
	// A nil report means there was nothing to observe.
	Sync(ctx context.Context) (*domain.StatusReport, error)
}

// TargetSource lists the addresses an adapter should observe
type TargetSource interface {
	ListAddressedNodes(ctx context.Context) ([]domain.AddressedNode, error)
}

// TargetSourceFunc adapts a function to TargetSource
type TargetSourceFunc func(ctx context.Context) ([]domain.AddressedNode, error)

// ListAddressedNodes calls f
func (f TargetSourceFunc) ListAddressedNodes(ctx context.Context) ([]domain.AddressedNode, error) {
	return f(ctx)
}
