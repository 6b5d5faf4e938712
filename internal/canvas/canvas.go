package canvas

import (
	"context"
	"image"

	"netcanvas/internal/domain"
	"netcanvas/internal/palette"
)

// Map is the inbound interface a host uses to drive a canvas
type Map interface {
	// Load replaces the scene wholesale, resets selection and gesture state
	// and starts asset loading
	Load(scene *domain.Scene, assetBaseURL string, readOnly bool)
	// SelectNode forces a single-node selection
	SelectNode(id string)
	SetGlyphTable(entries []palette.GlyphEntry)
	SetColorTable(entries []palette.ColorEntry)
	// SetContextMenuEnabled enables the native secondary-click menu. While it
	// is enabled the canvas does not emit ContextMenu commands.
	SetContextMenuEnabled(enabled bool)
}

// Emitter receives the commands produced by completed gestures
type Emitter interface {
	Emit(cmd domain.Command)
}

// EmitterFunc adapts a function to the Emitter interface
type EmitterFunc func(cmd domain.Command)

// Emit calls f(cmd)
func (f EmitterFunc) Emit(cmd domain.Command) {
	f(cmd)
}

// State is the gesture state
type State int

const (
	StateIdle State = iota
	StateMarqueeing
	StateMoving
	StateSelectedIdle
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMarqueeing:
		return "marqueeing"
	case StateMoving:
		return "moving"
	case StateSelectedIdle:
		return "selected"
	}
	return "unknown"
}

const (
	// NodeExtent is the half-size of a node's icon box
	NodeExtent = 16
	// ItemMargin pads the hit box of non-text items
	ItemMargin = 2

	MinZoom  = 0.1
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

// Canvas is one interactive topology map
type Canvas struct {
	width  float64
	height float64

	palette   *palette.Resolver
	fetcher   Fetcher
	snapshots SnapshotRenderer
	emitter   Emitter

	scene        *domain.Scene
	nodeIndex    map[string]int
	itemIndex    map[string]int
	assetBaseURL string
	readOnly     bool
	nativeMenu   bool

	background image.Image
	images     map[string]image.Image // by path
	bitmaps    map[string]image.Image // by item ID

	sel   selection
	drag  dragSession
	state State
	zoom  float64
	dirty bool

	gen         uint64
	ctx         context.Context
	cancel      context.CancelFunc
	completions chan assetResult
	pending     int // fetches of the current generation not yet applied
}

var _ Map = (*Canvas)(nil)

// New creates an empty canvas of the given logical size
func New(width, height float64, opts ...Option) *Canvas {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Canvas{
		width:       width,
		height:      height,
		palette:     palette.NewDefault(),
		scene:       domain.NewScene(),
		nodeIndex:   make(map[string]int),
		itemIndex:   make(map[string]int),
		images:      make(map[string]image.Image),
		bitmaps:     make(map[string]image.Image),
		sel:         newSelection(),
		zoom:        1,
		dirty:       true,
		ctx:         ctx,
		cancel:      cancel,
		completions: make(chan assetResult, 64),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close cancels in-flight asset fetches
func (c *Canvas) Close() {
	c.cancel()
}

// SetEmitter replaces the host callback
func (c *Canvas) SetEmitter(e Emitter) {
	c.emitter = e
}

// SelectNode forces a single-node selection. Unknown IDs clear the selection.
func (c *Canvas) SelectNode(id string) {
	c.sel.clear()
	if _, ok := c.nodeIndex[id]; ok {
		c.sel.nodes.add(id)
	}
	c.state = c.restingState()
	c.dirty = true
}

// SetGlyphTable replaces the icon glyph table
func (c *Canvas) SetGlyphTable(entries []palette.GlyphEntry) {
	c.palette.SetGlyphs(entries)
	c.dirty = true
}

// SetColorTable replaces the status color table
func (c *Canvas) SetColorTable(entries []palette.ColorEntry) {
	c.palette.SetColors(entries)
	c.dirty = true
}

// SetContextMenuEnabled enables or suppresses the native secondary-click menu
func (c *Canvas) SetContextMenuEnabled(enabled bool) {
	c.nativeMenu = enabled
}

// ContextMenuEnabled reports whether the native secondary-click menu is enabled
func (c *Canvas) ContextMenuEnabled() bool {
	return c.nativeMenu
}

// SetSize changes the logical canvas size used for clamping and background layout
func (c *Canvas) SetSize(width, height float64) {
	c.width, c.height = width, height
	c.dirty = true
}

// Size returns the logical canvas size
func (c *Canvas) Size() (float64, float64) {
	return c.width, c.height
}

// State returns the current gesture state
func (c *Canvas) State() State {
	return c.state
}

// Zoom returns the current scale factor
func (c *Canvas) Zoom() float64 {
	return c.zoom
}

// ReadOnly reports whether the loaded scene is read-only
func (c *Canvas) ReadOnly() bool {
	return c.readOnly
}

// Dirty reports whether the next Tick will repaint
func (c *Canvas) Dirty() bool {
	return c.dirty
}

// MarkDirty forces a repaint on the next Tick
func (c *Canvas) MarkDirty() {
	c.dirty = true
}

// Node returns a copy of the node with the given ID
func (c *Canvas) Node(id string) (domain.Node, bool) {
	i, ok := c.nodeIndex[id]
	if !ok {
		return domain.Node{}, false
	}
	return c.scene.Nodes[i], true
}

// Item returns a copy of the item with the given ID
func (c *Canvas) Item(id string) (domain.Item, bool) {
	i, ok := c.itemIndex[id]
	if !ok {
		return domain.Item{}, false
	}
	return c.scene.Items[i], true
}

// Scene returns a copy of the current scene, including positions changed by dragging
func (c *Canvas) Scene() *domain.Scene {
	return c.scene.Clone()
}

func (c *Canvas) emit(cmd domain.Command) {
	if c.emitter == nil {
		return
	}
	c.emitter.Emit(cmd)
}
