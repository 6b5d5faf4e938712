package domain

// Scene is the snapshot of one map pushed into the canvas
type Scene struct {
	Background string `json:"background,omitempty"`
	Nodes      []Node `json:"nodes"`
	Links      []Link `json:"links"`
	Items      []Item `json:"items"`
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{
		Nodes: make([]Node, 0),
		Links: make([]Link, 0),
		Items: make([]Item, 0),
	}
}

// AddNode adds a node to the scene
func (s *Scene) AddNode(node Node) {
	s.Nodes = append(s.Nodes, node)
}

// AddLink adds a link to the scene
func (s *Scene) AddLink(link Link) {
	s.Links = append(s.Links, link)
}

// AddItem adds an item to the scene
func (s *Scene) AddItem(item Item) {
	s.Items = append(s.Items, item)
}

// Clone returns a deep copy so the caller's slices are never shared
func (s *Scene) Clone() *Scene {
	out := &Scene{
		Background: s.Background,
		Nodes:      make([]Node, len(s.Nodes)),
		Links:      make([]Link, len(s.Links)),
		Items:      make([]Item, len(s.Items)),
	}
	copy(out.Nodes, s.Nodes)
	copy(out.Links, s.Links)
	for i, it := range s.Items {
		// Sparkline is the only variant holding a slice
		if k, ok := it.Kind.(Sparkline); ok {
			values := make([]float64, len(k.Values))
			copy(values, k.Values)
			k.Values = values
			it.Kind = k
		}
		out.Items[i] = it
	}
	return out
}

// Node returns the node with the given ID, or nil
func (s *Scene) Node(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Item returns the item with the given ID, or nil
func (s *Scene) Item(id string) *Item {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}
