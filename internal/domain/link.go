package domain

import (
	"crypto/sha256"
	"fmt"
)

// DefaultLinkWidth is used when a link has no width set
const DefaultLinkWidth = 2

// Link represents a connection between two nodes
type Link struct {
	ID      string  `json:"id"`
	NodeID1 string  `json:"node_id1"`
	NodeID2 string  `json:"node_id2"`
	State1  string  `json:"state1,omitempty"`
	State2  string  `json:"state2,omitempty"`
	Info    string  `json:"info,omitempty"`
	Width   float64 `json:"width,omitempty"`
}

// NewLink creates a new link between two nodes
func NewLink(nodeID1, nodeID2 string) *Link {
	link := &Link{
		NodeID1: nodeID1,
		NodeID2: nodeID2,
		Width:   DefaultLinkWidth,
	}
	link.ID = link.GenerateID()
	return link
}

// GenerateID creates a deterministic ID for the link based on endpoints
func (l *Link) GenerateID() string {
	return LinkID(l.NodeID1, l.NodeID2)
}

// LinkID returns the ID shared by every link between a and b, in either direction
func LinkID(a, b string) string {
	if a > b {
		a, b = b, a
	}

	key := fmt.Sprintf("%s-%s", a, b)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}

// Connects reports whether the link joins a and b, in either direction
func (l *Link) Connects(a, b string) bool {
	return (l.NodeID1 == a && l.NodeID2 == b) || (l.NodeID1 == b && l.NodeID2 == a)
}

// LineWidth returns the stroke width, falling back to DefaultLinkWidth
func (l *Link) LineWidth() float64 {
	if l.Width <= 0 {
		return DefaultLinkWidth
	}
	return l.Width
}
