package domain

import "testing"

func TestRectNormalize(t *testing.T) {
	t.Run("drag direction does not matter", func(t *testing.T) {
		a := RectFromPoints(Pt(10, 20), Pt(110, 220))
		b := RectFromPoints(Pt(110, 220), Pt(10, 20))
		c := RectFromPoints(Pt(110, 20), Pt(10, 220))

		if a != b || a != c {
			t.Errorf("expected identical rects, got %v %v %v", a, b, c)
		}
		if a.Min != Pt(10, 20) || a.Max != Pt(110, 220) {
			t.Errorf("expected min (10,20) max (110,220), got %v", a)
		}
	})

	t.Run("width and height", func(t *testing.T) {
		r := RectXYWH(5, 5, 30, 40)
		if r.Width() != 30 {
			t.Errorf("expected width 30, got %f", r.Width())
		}
		if r.Height() != 40 {
			t.Errorf("expected height 40, got %f", r.Height())
		}
	})
}

func TestRectContains(t *testing.T) {
	r := RectXYWH(0, 0, 10, 10)

	t.Run("edges count for Contains", func(t *testing.T) {
		if !r.Contains(Pt(0, 10)) {
			t.Error("expected edge point to be contained")
		}
	})

	t.Run("edges excluded for ContainsStrict", func(t *testing.T) {
		if r.ContainsStrict(Pt(0, 5)) {
			t.Error("expected edge point to be excluded")
		}
		if !r.ContainsStrict(Pt(5, 5)) {
			t.Error("expected interior point to be contained")
		}
	})

	t.Run("inset grows the box", func(t *testing.T) {
		if !r.Inset(2).Contains(Pt(-2, 12)) {
			t.Error("expected point within margin to be contained")
		}
	})
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 16, 100); got != 16 {
		t.Errorf("expected 16, got %f", got)
	}
	if got := Clamp(500, 16, 100); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
	if got := Clamp(50, 16, 100); got != 50 {
		t.Errorf("expected 50, got %f", got)
	}
	if got := Clamp(50, 16, 10); got != 16 {
		t.Errorf("expected lower bound to win on empty range, got %f", got)
	}
}

func TestMidpoint(t *testing.T) {
	if got := Pt(100, 100).Midpoint(Pt(300, 100)); got != Pt(200, 100) {
		t.Errorf("expected (200,100), got %v", got)
	}
}
