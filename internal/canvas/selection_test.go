package canvas

import (
	"testing"

	"netcanvas/internal/domain"
)

func threeNodes() *domain.Scene {
	return sceneOf([]domain.Node{node("A", 100, 100), node("B", 200, 200), node("C", 400, 400)}, nil, nil)
}

func TestSelectRect(t *testing.T) {
	t.Run("corner order does not matter", func(t *testing.T) {
		corners := [][2]domain.Point{
			{domain.Pt(50, 50), domain.Pt(250, 250)},
			{domain.Pt(250, 250), domain.Pt(50, 50)},
			{domain.Pt(250, 50), domain.Pt(50, 250)},
			{domain.Pt(50, 250), domain.Pt(250, 50)},
		}
		for _, cc := range corners {
			c, _ := newTestCanvas(t)
			c.Load(threeNodes(), "", false)
			c.SelectRect(domain.Rect{Min: cc[0], Max: cc[1]})
			assertIDs(t, []string{"A", "B"}, c.SelectedNodes())
		}
	})

	t.Run("boundary positions are excluded", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		c.Load(threeNodes(), "", false)
		c.SelectRect(domain.RectFromPoints(domain.Pt(100, 100), domain.Pt(300, 300)))
		assertIDs(t, []string{"B"}, c.SelectedNodes())
	})

	t.Run("replaces the previous selection and includes items", func(t *testing.T) {
		c, _ := newTestCanvas(t)
		s := threeNodes()
		s.AddItem(domain.Item{ID: "i1", X: 390, Y: 390, Kind: domain.Rectangle{}})
		c.Load(s, "", false)

		c.SelectNode("A")
		c.SelectRect(domain.RectFromPoints(domain.Pt(350, 350), domain.Pt(450, 450)))
		assertIDs(t, []string{"C"}, c.SelectedNodes())
		assertIDs(t, []string{"i1"}, c.SelectedItems())
	})
}

func TestSelectAt(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.Load(threeNodes(), "", false)

	c.SelectAt(domain.Pt(100, 100), false)
	assertIDs(t, []string{"A"}, c.SelectedNodes())

	c.SelectAt(domain.Pt(200, 200), true)
	assertIDs(t, []string{"A", "B"}, c.SelectedNodes())

	// pressing a selected node keeps the group
	c.SelectAt(domain.Pt(100, 100), false)
	assertIDs(t, []string{"A", "B"}, c.SelectedNodes())

	c.SelectAt(domain.Pt(400, 400), false)
	assertIDs(t, []string{"C"}, c.SelectedNodes())

	c.SelectAt(domain.Pt(700, 50), false)
	if len(c.SelectedNodes()) != 0 || len(c.SelectedItems()) != 0 {
		t.Errorf("expected empty selection after background press, got %v %v", c.SelectedNodes(), c.SelectedItems())
	}
}

func TestSelectNode(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.Load(threeNodes(), "", false)

	c.SelectNode("B")
	assertIDs(t, []string{"B"}, c.SelectedNodes())
	if c.State() != StateSelectedIdle {
		t.Errorf("expected %v, got %v", StateSelectedIdle, c.State())
	}

	c.SelectNode("missing")
	if len(c.SelectedNodes()) != 0 {
		t.Errorf("expected unknown id to clear selection, got %v", c.SelectedNodes())
	}
	if c.State() != StateIdle {
		t.Errorf("expected %v, got %v", StateIdle, c.State())
	}
}
