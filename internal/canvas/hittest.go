package canvas

import "netcanvas/internal/domain"

// HitKind tells what a hit test found
type HitKind int

const (
	HitNone HitKind = iota
	HitNode
	HitItem
)

// Hit is the result of a hit test
type Hit struct {
	Kind HitKind
	ID   string
}

// HitTest returns the first node, then the first item, whose box contains p.
// p is in scene units. Collection order decides between overlapping entities.
func (c *Canvas) HitTest(p domain.Point) Hit {
	for i := range c.scene.Nodes {
		n := &c.scene.Nodes[i]
		if nodeBox(n).Contains(p) {
			return Hit{Kind: HitNode, ID: n.ID}
		}
	}

	for i := range c.scene.Items {
		it := &c.scene.Items[i]
		if itemHitBox(it).Contains(p) {
			return Hit{Kind: HitItem, ID: it.ID}
		}
	}

	return Hit{}
}

// nodeBox is the icon box centered on the node position
func nodeBox(n *domain.Node) domain.Rect {
	return domain.RectXYWH(n.X-NodeExtent, n.Y-NodeExtent, 2*NodeExtent, 2*NodeExtent)
}

// itemHitBox is the text bounds for text variants and the padded item box otherwise
func itemHitBox(it *domain.Item) domain.Rect {
	switch it.Kind.(type) {
	case domain.Text, domain.BoundText:
		return it.Bounds()
	}
	return it.Bounds().Inset(ItemMargin)
}
