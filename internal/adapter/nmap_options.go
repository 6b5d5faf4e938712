package adapter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"netcanvas/internal/config"
)

// NmapOption is a functional option for configuring NmapAdapter
type NmapOption func(*NmapAdapter)

// WithInterval sets the polling interval
func WithInterval(d time.Duration) NmapOption {
	return func(n *NmapAdapter) {
		n.interval = d
	}
}

// WithTimeout sets the timeout for one nmap pass
func WithTimeout(d time.Duration) NmapOption {
	return func(n *NmapAdapter) {
		n.timeout = d
	}
}

// WithHostTimeout gives up on a host after d
func WithHostTimeout(d time.Duration) NmapOption {
	return func(n *NmapAdapter) {
		n.hostTimeout = d
	}
}

// WithBatchSize caps how many addresses one nmap pass probes
func WithBatchSize(size int) NmapOption {
	return func(n *NmapAdapter) {
		if size > 0 {
			n.batchSize = size
		}
	}
}

// WithPortRange probes TCP ports instead of pinging. A host is up only if
// one of them is open. Format: "80,443,8080" or "1-1000" or "22,80-443"
func WithPortRange(ports string) NmapOption {
	return func(n *NmapAdapter) {
		if validated, err := parsePorts(ports); err == nil {
			n.ports = validated
		}
	}
}

// WithSkipHostDiscovery treats all hosts as online (-Pn).
// Only meaningful together with WithPortRange, for networks that block ICMP.
func WithSkipHostDiscovery(skip bool) NmapOption {
	return func(n *NmapAdapter) {
		n.skipHostDiscovery = skip
	}
}

// WithProfile applies a posture's polling behavior
func WithProfile(p config.BehaviorProfile) NmapOption {
	return func(n *NmapAdapter) {
		if p.PollInterval > 0 {
			n.interval = p.PollInterval
		}
		if p.ProbeTimeout > 0 {
			n.hostTimeout = p.ProbeTimeout
		}
		if p.MaxTargetsPerScan > 0 {
			n.batchSize = p.MaxTargetsPerScan
		}
	}
}

// withScanFunc replaces the nmap invocation
func withScanFunc(fn scanFunc) NmapOption {
	return func(n *NmapAdapter) {
		n.scan = fn
	}
}

// parsePorts validates a port list in nmap format
func parsePorts(portRange string) (string, error) {
	if strings.TrimSpace(portRange) == "" {
		return "", fmt.Errorf("empty port range")
	}
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[1])
			}
		} else {
			port, err := strconv.Atoi(part)
			if err != nil || port < 1 || port > 65535 {
				return "", fmt.Errorf("invalid port number: %s", part)
			}
		}
	}
	return portRange, nil
}
