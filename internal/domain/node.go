package domain

// Well-known status keys. The color table may define any others.
const (
	StateUp      = "up"
	StateDown    = "down"
	StateWarning = "warning"
	StateUnknown = "unknown"
)

// Node represents a network entity on the map
type Node struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Icon  string  `json:"icon"`
	State string  `json:"state"`

	// Address is probed by the status poller; the canvas ignores it
	Address string `json:"address,omitempty"`
}

// NewNode creates a node at the given position in the unknown state
func NewNode(id, name string, x, y float64, icon string) *Node {
	return &Node{
		ID:    id,
		Name:  name,
		X:     x,
		Y:     y,
		Icon:  icon,
		State: StateUnknown,
	}
}

// Position returns the node position as a Point
func (n *Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// NodePosition is a committed node position
type NodePosition struct {
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ItemPosition is a committed item position
type ItemPosition struct {
	ItemID string  `json:"item_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}
