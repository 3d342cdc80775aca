package bulkprocess

import (
	"fmt"
	"strconv"
	"strings"
)

// Window is a window/level pair. A negative component means "unset", in which
// case decoders fit the window to the frame's own intensity range.
type Window struct {
	Center int
	Width  int
}

// UnsetWindow asks the decoder to auto-fit.
var UnsetWindow = Window{Center: -1, Width: -1}

func (w Window) IsSet() bool {
	return w.Center >= 0 && w.Width >= 0
}

func (w Window) String() string {
	if !w.IsSet() {
		return "auto"
	}
	return fmt.Sprintf("%d,%d", w.Center, w.Width)
}

// AutoWindow spans the full [min, max] intensity range of a frame.
func AutoWindow(min, max int) Window {
	return Window{Center: (min + max) / 2, Width: max - min}
}

// Bounds returns the lowest value mapped to 0 and the highest value not mapped
// to 255, along with the width actually used. Width is clamped to at least 1.
func (w Window) Bounds() (low, high, width int) {
	width = w.Width
	if width < 1 {
		width = 1
	}
	low = w.Center - width/2
	high = w.Center + width/2
	return low, high, width
}

// Apply maps one intensity value to a display byte.
func (w Window) Apply(p int) uint8 {
	low, high, width := w.Bounds()
	switch {
	case p <= low:
		return 0
	case p > high:
		return 255
	}
	return uint8(float64(p-low) / float64(width) * 255.0)
}

// ParseWindow reads "center,width". An empty string yields UnsetWindow.
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "auto" {
		return UnsetWindow, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return UnsetWindow, fmt.Errorf("expected window as center,width but got %q", s)
	}

	center, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return UnsetWindow, fmt.Errorf("window center: %w", err)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return UnsetWindow, fmt.Errorf("window width: %w", err)
	}

	return Window{Center: center, Width: width}, nil
}
