package domain

import (
	"encoding/json"
	"testing"
)

func TestItemSize(t *testing.T) {
	t.Run("unset dimensions default to 100", func(t *testing.T) {
		w, h := Rectangle{}.Size()
		if w != DefaultItemSize || h != DefaultItemSize {
			t.Errorf("expected %dx%d, got %fx%f", DefaultItemSize, DefaultItemSize, w, h)
		}
	})

	t.Run("text sizes from length and font size", func(t *testing.T) {
		w, h := Text{Text: "core-01", FontSize: 10}.Size()
		if w != 7*10*glyphAdvance {
			t.Errorf("expected width %f, got %f", 7*10*glyphAdvance, w)
		}
		if h != 10 {
			t.Errorf("expected height 10, got %f", h)
		}
	})

	t.Run("text without font size uses default", func(t *testing.T) {
		_, h := Text{Text: "x"}.Size()
		if h != DefaultFontSize {
			t.Errorf("expected height %d, got %f", DefaultFontSize, h)
		}
	})

	t.Run("bitmap variants use aspect of height", func(t *testing.T) {
		if w, h := (Gauge{H: 60}).Size(); w != 60 || h != 60 {
			t.Errorf("expected gauge 60x60, got %fx%f", w, h)
		}
		if w, h := (Bar{H: 40}).Size(); w != 80 || h != 40 {
			t.Errorf("expected bar 80x40, got %fx%f", w, h)
		}
		if w, h := (Sparkline{}).Size(); w != 300 || h != 100 {
			t.Errorf("expected sparkline 300x100, got %fx%f", w, h)
		}
	})

	t.Run("item without kind falls back to default box", func(t *testing.T) {
		it := Item{ID: "x", X: 10, Y: 10}
		b := it.Bounds()
		if b.Width() != DefaultItemSize || b.Height() != DefaultItemSize {
			t.Errorf("expected default box, got %v", b)
		}
	})
}

func TestBoundTextDisplay(t *testing.T) {
	t.Run("placeholder replaced", func(t *testing.T) {
		got := BoundText{Text: "load {value}%", Value: 42.5}.Display()
		if got != "load 42.5%" {
			t.Errorf("expected 'load 42.5%%', got %q", got)
		}
	})

	t.Run("value appended without placeholder", func(t *testing.T) {
		got := BoundText{Text: "rx", Value: 3}.Display()
		if got != "rx 3" {
			t.Errorf("expected 'rx 3', got %q", got)
		}
	})
}

func TestItemRecord(t *testing.T) {
	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := ItemRecord{ID: "x", Type: "hologram"}.ToItem()
		if err == nil {
			t.Error("expected error for unknown type")
		}
	})

	t.Run("variant keeps only its own fields", func(t *testing.T) {
		item, err := ItemRecord{ID: "g", Type: ItemTypeGauge, Width: 500, Height: 50, Value: 70, Title: "cpu"}.ToItem()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		g, ok := item.Kind.(Gauge)
		if !ok {
			t.Fatalf("expected Gauge kind, got %T", item.Kind)
		}
		if w, _ := g.Size(); w != 50 {
			t.Errorf("expected width derived from height (50), got %f", w)
		}
		if RecordOf(item).Width != 0 {
			t.Error("expected gauge record to carry no width")
		}
	})

	t.Run("json uses the flat record", func(t *testing.T) {
		item := Item{ID: "s", X: 1, Y: 2, Kind: Sparkline{H: 20, Values: []float64{1, 2, 3}}}
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw["type"] != string(ItemTypeSparkline) {
			t.Errorf("expected type %s, got %v", ItemTypeSparkline, raw["type"])
		}

		var decoded Item
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		k, ok := decoded.Kind.(Sparkline)
		if !ok || len(k.Values) != 3 {
			t.Errorf("expected sparkline with 3 values, got %#v", decoded.Kind)
		}
	})

	t.Run("item without kind is not encoded", func(t *testing.T) {
		if _, err := json.Marshal(Item{ID: "blank"}); err == nil {
			t.Error("expected error marshaling item without kind")
		}
	})
}

func TestSceneClone(t *testing.T) {
	s := NewScene()
	s.AddNode(*NewNode("a", "A", 10, 10, "server"))
	s.AddItem(Item{ID: "s", Kind: Sparkline{Values: []float64{1, 2}}})

	c := s.Clone()
	c.Nodes[0].X = 99
	c.Items[0].Kind.(Sparkline).Values[0] = 42

	if s.Nodes[0].X != 10 {
		t.Errorf("expected original node untouched, got X=%f", s.Nodes[0].X)
	}
	if s.Items[0].Kind.(Sparkline).Values[0] != 1 {
		t.Error("expected original sparkline values untouched")
	}
	if c.Node("a") == nil || c.Node("missing") != nil {
		t.Error("expected lookup by ID to work on clone")
	}
}
