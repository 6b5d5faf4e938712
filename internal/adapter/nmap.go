package adapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"

	"netcanvas/internal/domain"
)

// scanFunc runs one nmap host-discovery pass over a batch of targets
type scanFunc func(ctx context.Context, targets []string) (*nmap.Run, error)

// NmapAdapter probes the addresses of map nodes with nmap host discovery
// and reports each as up or down
type NmapAdapter struct {
	source            TargetSource
	interval          time.Duration
	timeout           time.Duration
	hostTimeout       time.Duration
	batchSize         int
	ports             string
	skipHostDiscovery bool
	scan              scanFunc
	mu                sync.Mutex
	running           bool
	lastScanTime      time.Time
}

// NewNmapAdapter creates a status adapter that probes the nodes listed by source
func NewNmapAdapter(source TargetSource, opts ...NmapOption) *NmapAdapter {
	adapter := &NmapAdapter{
		source:      source,
		interval:    time.Minute,
		timeout:     5 * time.Minute,
		hostTimeout: 2 * time.Second,
		batchSize:   128,
	}
	adapter.scan = adapter.runNmap

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// Name returns the adapter identifier
func (n *NmapAdapter) Name() string {
	return "nmap"
}

// Type returns the adapter type
func (n *NmapAdapter) Type() AdapterType {
	return AdapterTypePolling
}

// Interval returns the configured polling interval
func (n *NmapAdapter) Interval() time.Duration {
	return n.interval
}

// Start initializes the adapter
func (n *NmapAdapter) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.isNmapAvailable(ctx) {
		return fmt.Errorf("nmap binary not found in PATH")
	}

	n.running = true
	log.Printf("Nmap adapter started (batch=%d, host_timeout=%s, ports=%q, skip_discovery=%v)",
		n.batchSize, n.hostTimeout, n.ports, n.skipHostDiscovery)
	return nil
}

// Stop shuts down the adapter
func (n *NmapAdapter) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.running = false
	log.Printf("Nmap adapter stopped")
	return nil
}

// LastScan returns when the last sync began
func (n *NmapAdapter) LastScan() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastScanTime
}

// Sync probes every addressed node and returns their states. Addresses in a
// batch whose scan failed are left out of the report, not marked down.
func (n *NmapAdapter) Sync(ctx context.Context) (*domain.StatusReport, error) {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return nil, fmt.Errorf("adapter not running")
	}
	n.lastScanTime = time.Now()
	n.mu.Unlock()

	nodes, err := n.source.ListAddressedNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	targets := uniqueTargets(nodes)
	if len(targets) == 0 {
		log.Printf("Nmap: no addressed nodes to probe")
		return nil, nil
	}

	log.Printf("Nmap: probing %d addresses", len(targets))

	report := domain.NewStatusReport(n.Name())
	var errs []error
	for _, batch := range batches(targets, n.batchSize) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := n.scan(ctx, batch)
		if err != nil {
			log.Printf("Nmap: batch of %d failed: %v", len(batch), err)
			errs = append(errs, err)
			continue
		}
		n.processResults(result, batch, report)
	}

	if report.Empty() && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	log.Printf("Nmap: probe complete, %d addresses reported", len(report.States))
	return report, nil
}

// isNmapAvailable checks if nmap binary exists
func (n *NmapAdapter) isNmapAvailable(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets("localhost"),
		nmap.WithListScan(),
	)
	if err != nil {
		return false
	}

	_, _, err = scanner.Run()
	return err == nil
}

// runNmap performs one nmap pass over a batch
func (n *NmapAdapter) runNmap(ctx context.Context, targets []string) (*nmap.Run, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	opts := []nmap.Option{
		nmap.WithTargets(targets...),
	}

	if n.hostTimeout > 0 {
		opts = append(opts, nmap.WithHostTimeout(n.hostTimeout))
	}

	// With ports set, a host counts as up when the TCP probe completes
	if n.ports != "" {
		opts = append(opts, nmap.WithPorts(n.ports))
	} else {
		opts = append(opts, nmap.WithPingScan())
	}

	if n.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Nmap: warnings: %v", *warnings)
	}

	return result, nil
}

// processResults marks every requested target up or down
func (n *NmapAdapter) processResults(result *nmap.Run, requested []string, report *domain.StatusReport) {
	up := make(map[string]bool)
	if result != nil {
		for _, host := range result.Hosts {
			if host.Status.State != "up" {
				continue
			}
			if n.ports != "" && !hasOpenPort(host.Ports) {
				continue
			}
			for _, addr := range host.Addresses {
				up[normalizeAddress(addr.Addr)] = true
			}
			for _, name := range host.Hostnames {
				up[strings.ToLower(name.Name)] = true
			}
		}
	}

	for _, target := range requested {
		if up[normalizeAddress(target)] {
			report.Set(target, domain.StateUp)
		} else {
			report.Set(target, domain.StateDown)
		}
	}
}

func hasOpenPort(ports []nmap.Port) bool {
	for _, port := range ports {
		if port.State.State == "open" {
			return true
		}
	}
	return false
}

// uniqueTargets returns the distinct non-empty addresses in a stable order
func uniqueTargets(nodes []domain.AddressedNode) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, node := range nodes {
		addr := strings.TrimSpace(node.Address)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		targets = append(targets, addr)
	}
	sort.Strings(targets)
	return targets
}

// batches splits targets into groups of at most size
func batches(targets []string, size int) [][]string {
	if size <= 0 {
		size = len(targets)
	}
	var out [][]string
	for start := 0; start < len(targets); start += size {
		end := start + size
		if end > len(targets) {
			end = len(targets)
		}
		out = append(out, targets[start:end])
	}
	return out
}

// normalizeAddress canonicalizes IPs and lowercases hostnames
func normalizeAddress(addr string) string {
	if parsed := net.ParseIP(addr); parsed != nil {
		return parsed.String()
	}
	return strings.ToLower(addr)
}
