package config

import "time"

// Posture defines how hard the status poller works the network
type Posture string

const (
	PostureStealth    Posture = "stealth"    // Minimal footprint, slow
	PostureCautious   Posture = "cautious"   // Conservative, small batches
	PostureBalanced   Posture = "balanced"   // Default behavior
	PostureAggressive Posture = "aggressive" // Fast, large batches
)

// ParsePosture converts a string to Posture, defaulting to PostureBalanced
func ParsePosture(s string) Posture {
	switch s {
	case "stealth":
		return PostureStealth
	case "cautious":
		return PostureCautious
	case "balanced":
		return PostureBalanced
	case "aggressive":
		return PostureAggressive
	default:
		return PostureBalanced
	}
}

// BehaviorProfile defines poller timing and batch settings
type BehaviorProfile struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	ProbeTimeout      time.Duration `yaml:"probe_timeout"`
	MaxTargetsPerScan int           `yaml:"max_targets_per_scan"`
	JitterPercent     int           `yaml:"jitter_percent"` // timing variance
}

// PostureProfiles maps postures to their default behavior profiles
var PostureProfiles = map[Posture]BehaviorProfile{
	PostureStealth: {
		PollInterval:      30 * time.Minute,
		ProbeTimeout:      5 * time.Second,
		MaxTargetsPerScan: 8,
		JitterPercent:     30,
	},
	PostureCautious: {
		PollInterval:      5 * time.Minute,
		ProbeTimeout:      3 * time.Second,
		MaxTargetsPerScan: 32,
		JitterPercent:     20,
	},
	PostureBalanced: {
		PollInterval:      time.Minute,
		ProbeTimeout:      2 * time.Second,
		MaxTargetsPerScan: 128,
		JitterPercent:     10,
	},
	PostureAggressive: {
		PollInterval:      15 * time.Second,
		ProbeTimeout:      time.Second,
		MaxTargetsPerScan: 1024,
		JitterPercent:     0,
	},
}

// GetProfile returns the behavior profile for a posture
func (p Posture) GetProfile() BehaviorProfile {
	if profile, ok := PostureProfiles[p]; ok {
		return profile
	}
	return PostureProfiles[PostureBalanced]
}
