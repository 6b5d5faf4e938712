package domain

import (
	"fmt"
	"regexp"
	"time"
)

// MapInfo describes one stored topology map
type MapInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AssetBaseURL string    `json:"asset_base_url,omitempty"`
	ReadOnly     bool      `json:"read_only"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewMapInfo creates map metadata with timestamps set to now
func NewMapInfo(id, name string) *MapInfo {
	now := time.Now()
	return &MapInfo{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var mapIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,63}$`)

// ValidateMapID checks that id is usable in URLs and file names
func ValidateMapID(id string) error {
	if !mapIDPattern.MatchString(id) {
		return fmt.Errorf("invalid map id %q", id)
	}
	return nil
}

// AddressedNode is a node the status poller can probe
type AddressedNode struct {
	MapID   string `json:"map_id"`
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
}
