package canvas

import "netcanvas/internal/palette"

// Option is a functional option for configuring a Canvas
type Option func(*Canvas)

// WithPalette sets the glyph and color resolver
func WithPalette(p *palette.Resolver) Option {
	return func(c *Canvas) {
		if p != nil {
			c.palette = p
		}
	}
}

// WithFetcher sets the loader for background and item images
func WithFetcher(f Fetcher) Option {
	return func(c *Canvas) {
		c.fetcher = f
	}
}

// WithSnapshotRenderer sets the renderer for bitmap-backed items
func WithSnapshotRenderer(r SnapshotRenderer) Option {
	return func(c *Canvas) {
		c.snapshots = r
	}
}

// WithEmitter sets the host callback for commands
func WithEmitter(e Emitter) Option {
	return func(c *Canvas) {
		c.emitter = e
	}
}

// WithNativeContextMenu leaves the native secondary-click menu enabled, in
// which case the canvas does not emit ContextMenu commands
func WithNativeContextMenu(enabled bool) Option {
	return func(c *Canvas) {
		c.nativeMenu = enabled
	}
}
