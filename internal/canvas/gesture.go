package canvas

import (
	"math"

	"netcanvas/internal/domain"
)

// Button is a pointer button
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bit set of held modifier keys
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

const (
	// ModAdditive extends the selection instead of replacing it
	ModAdditive = ModShift
	// ModLink turns a press on a second node into an EditLine command
	ModLink = ModCtrl
)

// Pointer is a pointer event. X and Y are in canvas pixels (before zoom);
// ScreenX and ScreenY are the cursor position on the operator's screen.
type Pointer struct {
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	ScreenX float64   `json:"screen_x"`
	ScreenY float64   `json:"screen_y"`
	Button  Button    `json:"button"`
	Mods    Modifiers `json:"mods"`
}

// Key is a key name as reported by the host
type Key string

const (
	KeyDelete  Key = "Delete"
	KeyEnter   Key = "Enter"
	KeyZoomIn  Key = "+"
	KeyZoomEq  Key = "="
	KeyZoomOut Key = "-"
	KeyRefresh Key = "F5"
)

// dragSession tracks one press-move-release gesture. Points are in canvas pixels.
type dragSession struct {
	pressed bool
	moved   bool
	button  Button
	start   domain.Point
	last    domain.Point
	nodes   idSet
	items   idSet
}

func (p Pointer) point() domain.Point {
	return domain.Point{X: p.X, Y: p.Y}
}

func (c *Canvas) toScene(p domain.Point) domain.Point {
	return p.Scale(1 / c.zoom)
}

// PointerDown starts a gesture
func (c *Canvas) PointerDown(ev Pointer) {
	p := c.toScene(ev.point())
	c.dirty = true

	if c.linkGesture(p, ev.Mods) {
		return
	}

	c.SelectAt(p, ev.Mods&ModAdditive != 0)
	c.drag = dragSession{
		pressed: true,
		button:  ev.Button,
		start:   ev.point(),
		last:    ev.point(),
		nodes:   newIDSet(),
		items:   newIDSet(),
	}
}

// linkGesture handles a modified press on a second node while exactly one
// node is selected. It bypasses dragging entirely.
func (c *Canvas) linkGesture(p domain.Point, mods Modifiers) bool {
	if c.readOnly || mods&ModLink == 0 || c.sel.nodes.len() != 1 {
		return false
	}

	hit := c.HitTest(p)
	first := c.sel.nodes.order[0]
	if hit.Kind != HitNode || hit.ID == first {
		return false
	}

	c.emit(domain.EditLine{NodeID1: first, NodeID2: hit.ID})
	c.sel.clear()
	c.drag = dragSession{}
	c.state = StateIdle
	return true
}

// PointerMove advances a pressed gesture. Any movement turns the press into
// a drag: there is no distance or time threshold.
func (c *Canvas) PointerMove(ev Pointer) {
	if !c.drag.pressed {
		return
	}

	cur := ev.point()
	if !c.drag.moved {
		c.drag.moved = true
		switch {
		case c.sel.empty():
			c.state = StateMarqueeing
		case !c.readOnly:
			c.state = StateMoving
		}
	}

	switch c.state {
	case StateMoving:
		c.moveSelection(cur.Sub(c.drag.last).Scale(1 / c.zoom))
	case StateMarqueeing:
		c.SelectRect(domain.RectFromPoints(c.toScene(c.drag.start), c.toScene(cur)))
	}

	c.drag.last = cur
	c.dirty = true
}

// moveSelection displaces every selected entity by d (scene units), clamped to the canvas
func (c *Canvas) moveSelection(d domain.Point) {
	for _, id := range c.sel.nodes.order {
		n := c.nodeAt(id)
		if n == nil {
			continue
		}
		x := domain.Clamp(n.X+d.X, NodeExtent, c.width-NodeExtent)
		y := domain.Clamp(n.Y+d.Y, NodeExtent, c.height-NodeExtent)
		if x != n.X || y != n.Y {
			n.X, n.Y = x, y
			c.drag.nodes.add(id)
		}
	}

	for _, id := range c.sel.items.order {
		it := c.itemAt(id)
		if it == nil {
			continue
		}
		w, h := it.Size()
		x := domain.Clamp(it.X+d.X, NodeExtent, c.width-w)
		y := domain.Clamp(it.Y+d.Y, NodeExtent, c.height-h)
		if x != it.X || y != it.Y {
			it.X, it.Y = x, y
			c.drag.items.add(id)
		}
	}
}

// PointerUp finishes a gesture and emits its command, if any
func (c *Canvas) PointerUp(ev Pointer) {
	if !c.drag.pressed {
		return
	}
	d := c.drag
	c.drag = dragSession{}
	c.dirty = true

	if !d.moved {
		c.click(ev, d.button)
		return
	}

	switch c.state {
	case StateMoving:
		c.commitMove(d)
		c.state = StateSelectedIdle
	default:
		c.state = c.restingState()
	}
}

func (c *Canvas) click(ev Pointer, button Button) {
	if button == ButtonSecondary && !c.nativeMenu && c.sel.total() <= 1 {
		cmd := domain.ContextMenu{ScreenX: ev.ScreenX, ScreenY: ev.ScreenY}
		if c.sel.nodes.len() == 1 {
			cmd.NodeID = c.sel.nodes.order[0]
		} else if c.sel.items.len() == 1 {
			cmd.ItemID = c.sel.items.order[0]
		}
		c.emit(cmd)
	}
	c.state = c.restingState()
}

func (c *Canvas) commitMove(d dragSession) {
	if d.nodes.len() > 0 {
		positions := make([]domain.NodePosition, 0, d.nodes.len())
		for _, id := range d.nodes.order {
			if n := c.nodeAt(id); n != nil {
				positions = append(positions, domain.NodePosition{NodeID: id, X: n.X, Y: n.Y})
			}
		}
		c.emit(domain.UpdateNodesPos{Positions: positions})
	}

	if d.items.len() > 0 {
		positions := make([]domain.ItemPosition, 0, d.items.len())
		for _, id := range d.items.order {
			if it := c.itemAt(id); it != nil {
				positions = append(positions, domain.ItemPosition{ItemID: id, X: it.X, Y: it.Y})
			}
		}
		c.emit(domain.UpdateItemsPos{Positions: positions})
	}
}

// DoubleClick opens the single selected node or item
func (c *Canvas) DoubleClick(ev Pointer) {
	c.activate()
}

func (c *Canvas) activate() {
	switch {
	case c.sel.nodes.len() == 1:
		c.emit(domain.NodeDoubleClicked{NodeID: c.sel.nodes.order[0]})
	case c.sel.items.len() == 1:
		c.emit(domain.ItemDoubleClicked{ItemID: c.sel.items.order[0]})
	}
}

// KeyDown handles delete, open, zoom and refresh keys
func (c *Canvas) KeyDown(key Key) {
	switch key {
	case KeyDelete:
		if c.readOnly || c.sel.nodes.len() == 0 {
			return
		}
		c.emit(domain.DeleteNodes{NodeIDs: c.sel.nodes.list()})
		c.sel.clear()
		c.state = StateIdle
		c.dirty = true
	case KeyEnter:
		c.activate()
	case KeyZoomIn, KeyZoomEq:
		c.zoomBy(ZoomStep)
	case KeyZoomOut:
		c.zoomBy(-ZoomStep)
	case KeyRefresh:
		c.emit(domain.Refresh{})
	}
}

// zoomBy steps the scale factor, rounding to one decimal so repeated steps
// land exactly on the bounds
func (c *Canvas) zoomBy(step float64) {
	z := math.Round((c.zoom+step)*10) / 10
	z = domain.Clamp(z, MinZoom, MaxZoom)
	if z != c.zoom {
		c.zoom = z
		c.dirty = true
	}
}
