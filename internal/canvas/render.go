package canvas

import (
	"image/color"
	"math"

	"netcanvas/internal/domain"
)

var (
	backgroundColor = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
	labelColor      = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
	linkLabelColor  = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
	idleBacking     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xb0}
	selectedFill    = color.RGBA{R: 0x90, G: 0xca, B: 0xf9, A: 0x90}
	selectedStroke  = color.RGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0xff}
	marqueeFill     = color.RGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0x30}
	gaugeTrack      = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

const (
	glyphSize     = 28
	nameSize      = 11
	linkLabelSize = 10
	labelOffset   = 6
)

// Tick applies finished asset loads and repaints if anything changed.
// It reports whether a repaint happened.
func (c *Canvas) Tick(s Surface) bool {
	c.drainAssets()
	if !c.dirty {
		return false
	}
	c.Render(s)
	return true
}

// Render repaints the whole scene unconditionally and clears the dirty flag.
// Order: background, links, items, nodes, marquee.
func (c *Canvas) Render(s Surface) {
	s.SetScale(1)
	s.Clear(backgroundColor)
	s.SetScale(c.zoom)
	if c.background != nil {
		s.DrawImage(c.background, 0, 0, c.width, c.height)
	}

	for i := range c.scene.Links {
		c.drawLink(s, &c.scene.Links[i])
	}
	for i := range c.scene.Items {
		c.drawItem(s, &c.scene.Items[i])
	}
	for i := range c.scene.Nodes {
		c.drawNode(s, &c.scene.Nodes[i])
	}

	if c.state == StateMarqueeing && c.drag.pressed {
		r := domain.RectFromPoints(c.toScene(c.drag.start), c.toScene(c.drag.last))
		s.FillRect(r.Min.X, r.Min.Y, r.Width(), r.Height(), marqueeFill)
		s.StrokeRect(r.Min.X, r.Min.Y, r.Width(), r.Height(), 1, selectedStroke)
	}

	c.dirty = false
}

// drawLink draws two half-segments meeting at the midpoint, each tinted by
// its own endpoint. Links with a missing endpoint are skipped.
func (c *Canvas) drawLink(s Surface, l *domain.Link) {
	n1 := c.nodeAt(l.NodeID1)
	n2 := c.nodeAt(l.NodeID2)
	if n1 == nil || n2 == nil {
		return
	}

	p1, p2 := n1.Position(), n2.Position()
	mid := p1.Midpoint(p2)
	width := l.LineWidth()

	s.DrawLine(p1.X, p1.Y, mid.X, mid.Y, width, c.endpointColor(l.State1, n1))
	s.DrawLine(mid.X, mid.Y, p2.X, p2.Y, width, c.endpointColor(l.State2, n2))

	if l.Info == "" {
		return
	}
	// Steep lines get the label to the right, shallow ones below-left
	d := p2.Sub(p1)
	if math.Abs(d.Y) > math.Abs(d.X) {
		s.DrawText(l.Info, mid.X+labelOffset, mid.Y-linkLabelSize/2, linkLabelSize, linkLabelColor, AlignLeft)
	} else {
		s.DrawText(l.Info, mid.X-labelOffset, mid.Y+labelOffset, linkLabelSize, linkLabelColor, AlignRight)
	}
}

// endpointColor prefers the link's own endpoint state and falls back to the node state
func (c *Canvas) endpointColor(state string, n *domain.Node) color.RGBA {
	if state == "" {
		state = n.State
	}
	return c.palette.Color(state)
}

func (c *Canvas) drawItem(s Surface, it *domain.Item) {
	b := it.Bounds()
	x, y, w, h := b.Min.X, b.Min.Y, b.Width(), b.Height()

	if c.sel.items.has(it.ID) {
		hb := itemHitBox(it).Inset(1)
		s.FillRect(hb.Min.X, hb.Min.Y, hb.Width(), hb.Height(), selectedFill)
		s.StrokeRect(hb.Min.X, hb.Min.Y, hb.Width(), hb.Height(), 1, selectedStroke)
	}

	switch k := it.Kind.(type) {
	case domain.Rectangle:
		s.FillRect(x, y, w, h, c.palette.ItemColor(k.Color))
	case domain.Ellipse:
		s.FillEllipse(x+w/2, y+h/2, w/2, h/2, c.palette.ItemColor(k.Color))
	case domain.Text:
		s.DrawText(k.Text, x, y, domain.FontSizeOr(k.FontSize), c.textColor(k.Color), AlignLeft)
	case domain.BoundText:
		s.DrawText(k.Display(), x, y, domain.FontSizeOr(k.FontSize), c.textColor(k.Color), AlignLeft)
	case domain.Image:
		if img := c.images[k.Path]; img != nil {
			s.DrawImage(img, x, y, w, h)
		}
	case domain.LegacyGauge:
		fill := domain.Clamp(k.Value/100, 0, 1)
		s.FillRect(x, y, w, h, gaugeTrack)
		s.FillRect(x, y, w*fill, h, c.palette.ItemColor(k.Color))
		s.StrokeRect(x, y, w, h, 1, labelColor)
		if k.Title != "" {
			s.DrawText(k.Title, x+w/2, y+h+2, nameSize, labelColor, AlignCenter)
		}
	case domain.BitmapKind:
		if img := c.bitmaps[it.ID]; img != nil {
			s.DrawImage(img, x, y, w, h)
		}
	}
}

func (c *Canvas) textColor(value string) color.RGBA {
	if value == "" {
		return labelColor
	}
	return c.palette.ItemColor(value)
}

func (c *Canvas) drawNode(s Surface, n *domain.Node) {
	box := nodeBox(n)
	if c.sel.nodes.has(n.ID) {
		s.FillRect(box.Min.X, box.Min.Y, box.Width(), box.Height(), selectedFill)
		s.StrokeRect(box.Min.X, box.Min.Y, box.Width(), box.Height(), 1, selectedStroke)
	} else {
		s.FillRect(box.Min.X, box.Min.Y, box.Width(), box.Height(), idleBacking)
	}

	s.DrawGlyph(c.palette.Glyph(n.Icon), n.X, n.Y, glyphSize, c.palette.Color(n.State))
	if n.Name != "" {
		s.DrawText(n.Name, n.X, box.Max.Y+2, nameSize, labelColor, AlignCenter)
	}
}
