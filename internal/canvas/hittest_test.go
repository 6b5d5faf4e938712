package canvas

import (
	"testing"

	"netcanvas/internal/domain"
)

func TestHitTest(t *testing.T) {
	t.Run("empty scene hits nothing", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		if hit := c.HitTest(domain.Pt(10, 10)); hit.Kind != HitNone {
			t.Errorf("expected no hit, got %+v", hit)
		}
	})

	t.Run("overlapping nodes return the earlier one", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		c.Load(sceneOf([]domain.Node{node("A", 100, 100), node("B", 110, 110)}, nil, nil), "", false)

		hit := c.HitTest(domain.Pt(105, 105))
		if hit.Kind != HitNode || hit.ID != "A" {
			t.Errorf("expected node A, got %+v", hit)
		}
	})

	t.Run("node box is inclusive", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		c.Load(sceneOf([]domain.Node{node("A", 100, 100)}, nil, nil), "", false)

		if hit := c.HitTest(domain.Pt(116, 84)); hit.ID != "A" {
			t.Errorf("expected corner to hit A, got %+v", hit)
		}
		if hit := c.HitTest(domain.Pt(117, 100)); hit.Kind != HitNone {
			t.Errorf("expected miss outside box, got %+v", hit)
		}
	})

	t.Run("nodes win over items", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		items := []domain.Item{{ID: "r", X: 80, Y: 80, Kind: domain.Rectangle{W: 50, H: 50}}}
		c.Load(sceneOf([]domain.Node{node("A", 100, 100)}, nil, items), "", false)

		if hit := c.HitTest(domain.Pt(100, 100)); hit.Kind != HitNode {
			t.Errorf("expected node hit, got %+v", hit)
		}
		if hit := c.HitTest(domain.Pt(125, 125)); hit.Kind != HitItem || hit.ID != "r" {
			t.Errorf("expected item r, got %+v", hit)
		}
	})

	t.Run("shape items are padded", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		items := []domain.Item{{ID: "r", X: 200, Y: 200, Kind: domain.Rectangle{W: 50, H: 50}}}
		c.Load(sceneOf(nil, nil, items), "", false)

		if hit := c.HitTest(domain.Pt(198.5, 251.5)); hit.ID != "r" {
			t.Errorf("expected hit inside margin, got %+v", hit)
		}
		if hit := c.HitTest(domain.Pt(197, 200)); hit.Kind != HitNone {
			t.Errorf("expected miss outside margin, got %+v", hit)
		}
	})

	t.Run("text items use their text bounds", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		// 4 runes at 10pt is 24 wide and 10 high
		items := []domain.Item{{ID: "t", X: 300, Y: 300, Kind: domain.Text{Text: "core", FontSize: 10}}}
		c.Load(sceneOf(nil, nil, items), "", false)

		if hit := c.HitTest(domain.Pt(323, 309)); hit.ID != "t" {
			t.Errorf("expected text hit, got %+v", hit)
		}
		if hit := c.HitTest(domain.Pt(299, 305)); hit.Kind != HitNone {
			t.Errorf("expected miss left of text, got %+v", hit)
		}
		if hit := c.HitTest(domain.Pt(310, 311)); hit.Kind != HitNone {
			t.Errorf("expected miss below text, got %+v", hit)
		}
	})
}
