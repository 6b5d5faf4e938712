package canvas

import "netcanvas/internal/domain"

// idSet is an insertion-ordered set of IDs
type idSet struct {
	order []string
	set   map[string]struct{}
}

func newIDSet() idSet {
	return idSet{set: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if s.set == nil {
		s.set = make(map[string]struct{})
	}
	if _, ok := s.set[id]; ok {
		return
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) has(id string) bool {
	_, ok := s.set[id]
	return ok
}

func (s *idSet) len() int {
	return len(s.order)
}

func (s *idSet) clear() {
	s.order = nil
	s.set = make(map[string]struct{})
}

func (s *idSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

type selection struct {
	nodes idSet
	items idSet
}

func newSelection() selection {
	return selection{nodes: newIDSet(), items: newIDSet()}
}

func (s *selection) clear() {
	s.nodes.clear()
	s.items.clear()
}

func (s *selection) total() int {
	return s.nodes.len() + s.items.len()
}

func (s *selection) empty() bool {
	return s.total() == 0
}

func (s *selection) contains(h Hit) bool {
	switch h.Kind {
	case HitNode:
		return s.nodes.has(h.ID)
	case HitItem:
		return s.items.has(h.ID)
	}
	return false
}

func (s *selection) add(h Hit) {
	switch h.Kind {
	case HitNode:
		s.nodes.add(h.ID)
	case HitItem:
		s.items.add(h.ID)
	}
}

// SelectAt updates the selection for a press at p (scene units). Pressing an
// already selected entity keeps the whole selection so it can be dragged.
func (c *Canvas) SelectAt(p domain.Point, additive bool) {
	hit := c.HitTest(p)
	if c.sel.contains(hit) {
		return
	}

	if !additive {
		c.sel.clear()
	}
	c.sel.add(hit)
	c.dirty = true
}

// SelectRect replaces the selection with every node and item whose position
// lies strictly inside r. r may be given with its corners in any order.
func (c *Canvas) SelectRect(r domain.Rect) {
	r = r.Normalize()
	c.sel.clear()

	for i := range c.scene.Nodes {
		n := &c.scene.Nodes[i]
		if r.ContainsStrict(n.Position()) {
			c.sel.nodes.add(n.ID)
		}
	}
	for i := range c.scene.Items {
		it := &c.scene.Items[i]
		if r.ContainsStrict(it.Position()) {
			c.sel.items.add(it.ID)
		}
	}

	c.dirty = true
}

// ClearSelection empties both selection sets
func (c *Canvas) ClearSelection() {
	if !c.sel.empty() {
		c.dirty = true
	}
	c.sel.clear()
}

// SelectedNodes returns the selected node IDs in selection order
func (c *Canvas) SelectedNodes() []string {
	return c.sel.nodes.list()
}

// SelectedItems returns the selected item IDs in selection order
func (c *Canvas) SelectedItems() []string {
	return c.sel.items.list()
}

// restingState is the state a finished gesture settles in
func (c *Canvas) restingState() State {
	if c.sel.empty() {
		return StateIdle
	}
	return StateSelectedIdle
}
