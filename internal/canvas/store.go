package canvas

import (
	"image"

	"netcanvas/internal/domain"
)

// Load replaces the scene wholesale. Selection and gesture state are reset,
// cached bitmaps for items are regenerated and image fetches are started.
func (c *Canvas) Load(scene *domain.Scene, assetBaseURL string, readOnly bool) {
	if scene == nil {
		scene = domain.NewScene()
	}

	prevBackground := c.scene.Background

	c.gen++
	c.pending = 0
	c.scene = scene.Clone()
	c.reindex()
	c.assetBaseURL = assetBaseURL
	c.readOnly = readOnly

	c.sel.clear()
	c.drag = dragSession{}
	c.state = StateIdle

	// Keep already decoded images that are still referenced so a reload
	// does not blank them until the new fetch lands
	if c.scene.Background != prevBackground {
		c.background = nil
	}
	c.images = c.retainImages()
	c.bitmaps = make(map[string]image.Image)

	c.dirty = true
	c.loadAssets()
}

func (c *Canvas) reindex() {
	c.nodeIndex = make(map[string]int, len(c.scene.Nodes))
	for i, n := range c.scene.Nodes {
		if _, dup := c.nodeIndex[n.ID]; !dup {
			c.nodeIndex[n.ID] = i
		}
	}

	c.itemIndex = make(map[string]int, len(c.scene.Items))
	for i, it := range c.scene.Items {
		if _, dup := c.itemIndex[it.ID]; !dup {
			c.itemIndex[it.ID] = i
		}
	}
}

func (c *Canvas) retainImages() map[string]image.Image {
	kept := make(map[string]image.Image)
	for _, it := range c.scene.Items {
		k, ok := it.Kind.(domain.Image)
		if !ok {
			continue
		}
		if img, ok := c.images[k.Path]; ok {
			kept[k.Path] = img
		}
	}
	return kept
}

func (c *Canvas) nodeAt(id string) *domain.Node {
	i, ok := c.nodeIndex[id]
	if !ok {
		return nil
	}
	return &c.scene.Nodes[i]
}

func (c *Canvas) itemAt(id string) *domain.Item {
	i, ok := c.itemIndex[id]
	if !ok {
		return nil
	}
	return &c.scene.Items[i]
}
