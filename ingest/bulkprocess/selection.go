package bulkprocess

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Selection is a rectangle drawn over a slice, in the same coordinate space as
// the decoded pixel grid. Width and height may be negative while the user is
// still dragging.
type Selection struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Normalized flips negative extents so that (X, Y) is the top-left corner.
func (s Selection) Normalized() Selection {
	if s.Width < 0 {
		s.X += s.Width
		s.Width = -s.Width
	}
	if s.Height < 0 {
		s.Y += s.Height
		s.Height = -s.Height
	}
	return s
}

// Subset is false for a zero-area selection, which stands for the whole grid.
func (s Selection) Subset() bool {
	return s.Width != 0 && s.Height != 0
}

// Rect returns the pixels covered by the selection, clipped to bounds.
func (s Selection) Rect(bounds image.Rectangle) image.Rectangle {
	if !s.Subset() {
		return bounds
	}
	n := s.Normalized()
	r := image.Rect(
		int(math.Floor(n.X)),
		int(math.Floor(n.Y)),
		int(math.Ceil(n.X+n.Width)),
		int(math.Ceil(n.Y+n.Height)),
	)
	return r.Intersect(bounds)
}

func (s Selection) String() string {
	return fmt.Sprintf("ROI: x=%g y=%g w=%g h=%g", s.X, s.Y, s.Width, s.Height)
}

// ROIStats summarizes the display values under a selection.
type ROIStats struct {
	Rect   image.Rectangle
	Pixels int
	Min    uint8
	Max    uint8
	Mean   float64
	StdDev float64
}

// SelectionStats computes intensity statistics for the part of img covered by
// sel. A selection entirely outside the grid yields zero Pixels.
func SelectionStats(img *image.Gray, sel Selection) ROIStats {
	if img == nil {
		return ROIStats{}
	}

	r := sel.Rect(img.Bounds())
	out := ROIStats{Rect: r}
	if r.Empty() {
		return out
	}

	values := make([]float64, 0, r.Dx()*r.Dy())
	out.Min = 255
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := img.GrayAt(x, y).Y
			if v < out.Min {
				out.Min = v
			}
			if v > out.Max {
				out.Max = v
			}
			values = append(values, float64(v))
		}
	}

	out.Pixels = len(values)
	if out.Pixels == 1 {
		out.Mean = values[0]
		return out
	}
	out.Mean, out.StdDev = stat.MeanStdDev(values, nil)

	return out
}
