package bulkprocess

import (
	"testing"
)

func TestAutoWindowSpansRange(t *testing.T) {
	w := AutoWindow(100, 3000)
	if w.Center != 1550 || w.Width != 2900 {
		t.Fatalf("got %v, want 1550,2900", w)
	}

	tests := []struct {
		p    int
		want uint8
	}{
		{100, 0},
		{3000, 255},
		{1550, 127},
		{50, 0},
		{4000, 255},
	}
	for _, tt := range tests {
		if got := w.Apply(tt.p); got != tt.want {
			t.Errorf("Apply(%d) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestApplyIsMonotonic(t *testing.T) {
	for _, w := range []Window{{40, 400}, {1550, 2900}, {0, 1}, {7, 3}, {100, 0}} {
		prev := w.Apply(-1000)
		for p := -999; p <= 5000; p++ {
			cur := w.Apply(p)
			if cur < prev {
				t.Fatalf("window %v: Apply(%d)=%d is below Apply(%d)=%d", w, p, cur, p-1, prev)
			}
			prev = cur
		}
	}
}

func TestZeroWidthIsAThreshold(t *testing.T) {
	w := Window{Center: 500, Width: 0}

	if got := w.Apply(500); got != 0 {
		t.Errorf("Apply(center) = %d, want 0", got)
	}
	if got := w.Apply(501); got != 255 {
		t.Errorf("Apply(center+1) = %d, want 255", got)
	}
	if _, _, width := w.Bounds(); width != 1 {
		t.Errorf("width = %d, want 1", width)
	}
}

func TestExplicitWindow(t *testing.T) {
	w := Window{Center: 40, Width: 400}

	low, high, _ := w.Bounds()
	if low != -160 || high != 240 {
		t.Fatalf("bounds = %d..%d, want -160..240", low, high)
	}
	if got := w.Apply(40); got != 127 {
		t.Errorf("Apply(40) = %d, want 127", got)
	}
	if got := w.Apply(0); got != 102 {
		t.Errorf("Apply(0) = %d, want 102", got)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"", UnsetWindow, false},
		{"auto", UnsetWindow, false},
		{"40,400", Window{40, 400}, false},
		{" 1550 , 2900 ", Window{1550, 2900}, false},
		{"40", UnsetWindow, true},
		{"a,b", UnsetWindow, true},
		{"1,2,3", UnsetWindow, true},
	}

	for _, tt := range tests {
		got, err := ParseWindow(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWindow(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWindow(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWindowString(t *testing.T) {
	if got := UnsetWindow.String(); got != "auto" {
		t.Errorf("got %q, want auto", got)
	}
	if got := (Window{40, 400}).String(); got != "40,400" {
		t.Errorf("got %q, want 40,400", got)
	}
}
