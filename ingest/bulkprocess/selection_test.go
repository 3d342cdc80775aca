package bulkprocess

import (
	"image"
	"math"
	"testing"
)

func TestSelectionNormalized(t *testing.T) {
	got := Selection{X: 10, Y: 10, Width: -4, Height: -6}.Normalized()
	want := Selection{X: 6, Y: 4, Width: 4, Height: 6}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSelectionRect(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)

	tests := []struct {
		name string
		sel  Selection
		want image.Rectangle
	}{
		{"whole grid", Selection{}, bounds},
		{"zero height", Selection{X: 2, Y: 2, Width: 3}, bounds},
		{"fractional", Selection{X: 1.5, Y: 2.2, Width: 2, Height: 1}, image.Rect(1, 2, 4, 4)},
		{"dragged backwards", Selection{X: 5, Y: 5, Width: -2, Height: -2}, image.Rect(3, 3, 5, 5)},
		{"clipped", Selection{X: 8, Y: -3, Width: 10, Height: 5}, image.Rect(8, 0, 10, 2)},
	}

	for _, tt := range tests {
		if got := tt.sel.Rect(bounds); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSelectionStats(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	img.Pix[0] = 0
	img.Pix[1] = 200

	// Top row: 0, 200, 100, 100
	stats := SelectionStats(img, Selection{X: 0, Y: 0, Width: 4, Height: 1})
	if stats.Pixels != 4 || stats.Min != 0 || stats.Max != 200 {
		t.Fatalf("got %+v", stats)
	}
	if stats.Mean != 100 {
		t.Errorf("mean = %v, want 100", stats.Mean)
	}
	// Sample standard deviation of {0, 200, 100, 100}.
	if want := math.Sqrt(20000.0 / 3); math.Abs(stats.StdDev-want) > 1e-9 {
		t.Errorf("std = %v, want %v", stats.StdDev, want)
	}

	uniform := SelectionStats(img, Selection{X: 0, Y: 1, Width: 4, Height: 3})
	if uniform.Pixels != 12 || uniform.StdDev != 0 || uniform.Mean != 100 {
		t.Errorf("got %+v", uniform)
	}

	single := SelectionStats(img, Selection{X: 1, Y: 0, Width: 1, Height: 1})
	if single.Pixels != 1 || single.Mean != 200 || single.StdDev != 0 {
		t.Errorf("got %+v", single)
	}

	outside := SelectionStats(img, Selection{X: 10, Y: 10, Width: 2, Height: 2})
	if outside.Pixels != 0 {
		t.Errorf("got %+v", outside)
	}

	if whole := SelectionStats(img, Selection{}); whole.Pixels != 16 {
		t.Errorf("whole grid: got %d pixels", whole.Pixels)
	}
}

func TestSelectionString(t *testing.T) {
	got := Selection{X: 1.5, Y: 2, Width: 10, Height: 20}.String()
	if got != "ROI: x=1.5 y=2 w=10 h=20" {
		t.Errorf("got %q", got)
	}
}
