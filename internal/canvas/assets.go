package canvas

import (
	"context"
	"image"
	"image/color"
	"log"

	"netcanvas/internal/domain"
)

// Fetcher loads and decodes an image. path is resolved against baseURL by the implementation.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL, path string) (image.Image, error)
}

// SnapshotRenderer produces the bitmap of a gauge, bar or sparkline item
type SnapshotRenderer interface {
	Render(req domain.SnapshotRequest, fill color.RGBA) (image.Image, error)
}

type assetKind int

const (
	assetBackground assetKind = iota
	assetImage
)

type assetResult struct {
	gen  uint64
	kind assetKind
	path string
	img  image.Image
	err  error
}

// loadAssets starts image fetches and renders bitmap snapshots for the current scene
func (c *Canvas) loadAssets() {
	if c.scene.Background != "" {
		c.fetchAsync(assetBackground, c.scene.Background)
	}

	for i := range c.scene.Items {
		it := &c.scene.Items[i]
		switch k := it.Kind.(type) {
		case domain.Image:
			if k.Path != "" {
				c.fetchAsync(assetImage, k.Path)
			}
		case domain.BitmapKind:
			c.renderSnapshot(it.ID, k)
		}
	}
}

func (c *Canvas) renderSnapshot(id string, k domain.BitmapKind) {
	if c.snapshots == nil {
		return
	}
	req := k.Snapshot()
	img, err := c.snapshots.Render(req, c.palette.ItemColor(req.Color))
	if err != nil {
		log.Printf("canvas: snapshot for item %s failed: %v", id, err)
		return
	}
	c.bitmaps[id] = img
}

// fetchAsync starts one fetch. The result is delivered to the completions
// channel and applied on the owning goroutine.
func (c *Canvas) fetchAsync(kind assetKind, path string) {
	if c.fetcher == nil {
		return
	}

	gen, base, ctx := c.gen, c.assetBaseURL, c.ctx
	c.pending++
	go func() {
		img, err := c.fetcher.Fetch(ctx, base, path)
		select {
		case c.completions <- assetResult{gen: gen, kind: kind, path: path, img: img, err: err}:
		case <-ctx.Done():
		}
	}()
}

// drainAssets applies every completed fetch without blocking
func (c *Canvas) drainAssets() {
	for {
		select {
		case r := <-c.completions:
			c.applyAsset(r)
		default:
			return
		}
	}
}

// WaitAssets blocks until every fetch started by the last Load has been
// applied. Fetches from superseded loads are drained but not waited for.
func (c *Canvas) WaitAssets(ctx context.Context) error {
	for c.pending > 0 {
		select {
		case r := <-c.completions:
			c.applyAsset(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Canvas) applyAsset(r assetResult) {
	if r.gen != c.gen {
		// superseded by a newer Load
		return
	}
	c.pending--
	if r.err != nil {
		log.Printf("canvas: loading %s failed: %v", r.path, r.err)
		return
	}
	if r.img == nil {
		return
	}

	switch r.kind {
	case assetBackground:
		if r.path == c.scene.Background {
			c.background = r.img
		}
	case assetImage:
		c.images[r.path] = r.img
	}
	c.dirty = true
}

// HasBackground reports whether the background image has been loaded
func (c *Canvas) HasBackground() bool {
	return c.background != nil
}

// HasBitmap reports whether a snapshot bitmap is cached for the item
func (c *Canvas) HasBitmap(itemID string) bool {
	return c.bitmaps[itemID] != nil
}

// HasImage reports whether the image at path has been loaded
func (c *Canvas) HasImage(path string) bool {
	return c.images[path] != nil
}
