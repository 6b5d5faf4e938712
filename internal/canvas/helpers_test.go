package canvas

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"netcanvas/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

type drawCall struct {
	op    string
	args  []float64
	color color.Color
	text  string
}

// recordingSurface records every draw call in order
type recordingSurface struct {
	calls []drawCall
}

func (s *recordingSurface) record(op string, c color.Color, text string, args ...float64) {
	s.calls = append(s.calls, drawCall{op: op, args: args, color: c, text: text})
}

func (s *recordingSurface) Clear(c color.Color) { s.record("clear", c, "") }
func (s *recordingSurface) SetScale(z float64) { s.record("scale", nil, "", z) }
func (s *recordingSurface) DrawImage(img image.Image, x, y, w, h float64) {
	s.record("image", nil, "", x, y, w, h)
}
func (s *recordingSurface) DrawLine(x1, y1, x2, y2, width float64, c color.Color) {
	s.record("line", c, "", x1, y1, x2, y2, width)
}
func (s *recordingSurface) FillRect(x, y, w, h float64, c color.Color) {
	s.record("fillrect", c, "", x, y, w, h)
}
func (s *recordingSurface) StrokeRect(x, y, w, h, width float64, c color.Color) {
	s.record("strokerect", c, "", x, y, w, h, width)
}
func (s *recordingSurface) FillEllipse(cx, cy, rx, ry float64, c color.Color) {
	s.record("ellipse", c, "", cx, cy, rx, ry)
}
func (s *recordingSurface) DrawText(text string, x, y, size float64, c color.Color, align Align) {
	s.record("text", c, text, x, y, size)
}
func (s *recordingSurface) DrawGlyph(r rune, x, y, size float64, c color.Color) {
	s.record("glyph", c, string(r), x, y, size)
}

func (s *recordingSurface) ops(op string) []drawCall {
	var out []drawCall
	for _, c := range s.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// commandLog collects emitted commands
type commandLog struct {
	cmds []domain.Command
}

func (l *commandLog) Emit(cmd domain.Command) {
	l.cmds = append(l.cmds, cmd)
}

func (l *commandLog) ofType(t domain.CommandType) []domain.Command {
	var out []domain.Command
	for _, c := range l.cmds {
		if c.Type() == t {
			out = append(out, c)
		}
	}
	return out
}

// newTestCanvas creates a 800x600 canvas wired to a command log
func newTestCanvas(t *testing.T, opts ...Option) (*Canvas, *commandLog) {
	t.Helper()
	log := &commandLog{}
	opts = append([]Option{WithEmitter(log)}, opts...)
	c := New(800, 600, opts...)
	t.Cleanup(c.Close)
	return c, log
}

func node(id string, x, y float64) domain.Node {
	return domain.Node{ID: id, Name: id, X: x, Y: y, Icon: "server", State: domain.StateUp}
}

func sceneOf(nodes []domain.Node, links []domain.Link, items []domain.Item) *domain.Scene {
	s := domain.NewScene()
	s.Nodes = append(s.Nodes, nodes...)
	s.Links = append(s.Links, links...)
	s.Items = append(s.Items, items...)
	return s
}

func press(x, y float64) Pointer {
	return Pointer{X: x, Y: y, ScreenX: x + 1000, ScreenY: y + 1000}
}

func drag(c *Canvas, from, to domain.Point) {
	c.PointerDown(press(from.X, from.Y))
	c.PointerMove(press((from.X+to.X)/2, (from.Y+to.Y)/2))
	c.PointerMove(press(to.X, to.Y))
	c.PointerUp(press(to.X, to.Y))
}

func assertIDs(t *testing.T, expected, actual []string) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("expected %v, got %v", expected, actual)
		}
	}
}

// fakeFetcher returns a solid image per path, optionally gated by a channel
type fakeFetcher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	fail  map[string]bool
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{gates: make(map[string]chan struct{}), fail: make(map[string]bool)}
}

func (f *fakeFetcher) gate(path string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[path] = ch
	return ch
}

func (f *fakeFetcher) Fetch(ctx context.Context, baseURL, path string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, baseURL+path)
	gate := f.gates[path]
	fail := f.fail[path]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, fmt.Errorf("not found: %s", path)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Pix[0] = byte(len(path))
	return img, nil
}

// fakeSnapshots renders 1x1 images and counts requests
type fakeSnapshots struct {
	requests []domain.SnapshotRequest
}

func (f *fakeSnapshots) Render(req domain.SnapshotRequest, fill color.RGBA) (image.Image, error) {
	f.requests = append(f.requests, req)
	return image.NewRGBA(image.Rect(0, 0, req.Width, req.Height)), nil
}
