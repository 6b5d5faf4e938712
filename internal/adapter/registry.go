package adapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"netcanvas/internal/domain"
)

// ReconcileFunc is called when an adapter produces a report to be applied
type ReconcileFunc func(ctx context.Context, source string, report *domain.StatusReport) error

// Registry manages all registered adapters and their lifecycle
type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]Adapter
	configs   map[string]AdapterConfig
	reconcile ReconcileFunc
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewRegistry creates a new adapter registry
func NewRegistry(reconcile ReconcileFunc) *Registry {
	return &Registry{
		adapters:  make(map[string]Adapter),
		configs:   make(map[string]AdapterConfig),
		reconcile: reconcile,
	}
}

// Register adds an adapter to the registry
func (r *Registry) Register(adapter Adapter, config AdapterConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := adapter.Name()
	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter %s already registered", name)
	}

	r.adapters[name] = adapter
	r.configs[name] = config
	log.Printf("Registered adapter: %s (type=%s, enabled=%v, interval=%s)",
		name, adapter.Type(), config.Enabled, config.PollInterval)

	return nil
}

// Start initializes all enabled adapters and begins their sync cycles
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ctx, r.cancel = context.WithCancel(ctx)

	for name, adapter := range r.adapters {
		config := r.configs[name]
		if !config.Enabled {
			log.Printf("Adapter %s is disabled, skipping", name)
			continue
		}

		if err := adapter.Start(r.ctx); err != nil {
			log.Printf("Failed to start adapter %s: %v", name, err)
			continue
		}

		if adapter.Type() == AdapterTypePolling {
			r.startPollingLoop(name, adapter, config)
		}
	}

	return nil
}

// Stop gracefully shuts down all adapters
func (r *Registry) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	r.wg.Wait()

	for name, adapter := range r.adapters {
		if err := adapter.Stop(); err != nil {
			log.Printf("Error stopping adapter %s: %v", name, err)
		}
	}

	return nil
}

// TriggerSync manually triggers a sync for a specific adapter
func (r *Registry) TriggerSync(ctx context.Context, name string) error {
	r.mu.RLock()
	adapter, exists := r.adapters[name]
	config := r.configs[name]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("adapter %s not found", name)
	}

	if !config.Enabled {
		return fmt.Errorf("adapter %s is disabled", name)
	}

	return r.runSync(ctx, name, adapter)
}

// TriggerSyncAll manually triggers sync for all enabled adapters
func (r *Registry) TriggerSyncAll(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for name, adapter := range r.adapters {
		if !r.configs[name].Enabled {
			continue
		}

		if err := r.runSync(ctx, name, adapter); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// AdapterInfo provides read-only information about an adapter
type AdapterInfo struct {
	Name         string        `json:"name"`
	Type         AdapterType   `json:"type"`
	Enabled      bool          `json:"enabled"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
}

// ListAdapters returns information about registered adapters sorted by name
func (r *Registry) ListAdapters() []AdapterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]AdapterInfo, 0, len(r.adapters))
	for name, adapter := range r.adapters {
		config := r.configs[name]
		infos = append(infos, AdapterInfo{
			Name:         name,
			Type:         adapter.Type(),
			Enabled:      config.Enabled,
			PollInterval: config.PollInterval,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// startPollingLoop starts a goroutine that polls the adapter on schedule
func (r *Registry) startPollingLoop(name string, adapter Adapter, config AdapterConfig) {
	interval := config.PollInterval
	if interval <= 0 {
		interval = time.Minute
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.runSync(r.ctx, name, adapter); err != nil {
			log.Printf("Initial sync failed for %s: %v", name, err)
		}

		timer := time.NewTimer(jittered(interval, config.JitterPercent))
		defer timer.Stop()

		for {
			select {
			case <-r.ctx.Done():
				log.Printf("Stopping polling loop for %s", name)
				return
			case <-timer.C:
				if err := r.runSync(r.ctx, name, adapter); err != nil {
					log.Printf("Sync failed for %s: %v", name, err)
				}
				timer.Reset(jittered(interval, config.JitterPercent))
			}
		}
	}()

	log.Printf("Started polling loop for %s (interval=%s, jitter=%d%%)", name, interval, config.JitterPercent)
}

// jittered spreads d by up to percent in either direction
func jittered(d time.Duration, percent int) time.Duration {
	if percent <= 0 {
		return d
	}
	if percent > 100 {
		percent = 100
	}
	span := int64(d) * int64(percent) / 100
	if span <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(2*span+1)-span)
}

// runSync executes a sync operation and reconciles the result
func (r *Registry) runSync(ctx context.Context, name string, adapter Adapter) error {
	report, err := adapter.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if report.Empty() {
		log.Printf("Adapter %s returned empty report", name)
		return nil
	}

	if err := r.reconcile(ctx, name, report); err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	log.Printf("Adapter %s sync complete: %d addresses", name, len(report.States))

	return nil
}
