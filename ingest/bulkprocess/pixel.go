package bulkprocess

import (
	"image"
)

// SentinelFill is written to every pixel of a frame whose encoding we cannot
// decode.
const SentinelFill uint8 = 0

// PixelBuffer is one frame as delivered by the parser: samples in row-major
// order, SamplesPerPixel values per pixel.
type PixelBuffer struct {
	Width           int
	Height          int
	BitsAllocated   int
	SamplesPerPixel int
	Samples         []int
}

// Supported reports whether DecodePixels can render b. Other buffers decode to
// a grid of SentinelFill.
func (b PixelBuffer) Supported() bool {
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	if b.BitsAllocated != 8 && b.BitsAllocated != 16 {
		return false
	}
	if b.SamplesPerPixel != 1 {
		return false
	}
	return len(b.Samples) >= b.Width*b.Height
}

// DecodePixels converts a raw frame into an 8-bit grayscale grid of the same
// size. 16-bit frames go through the window; when win is unset it is fitted to
// the frame's min/max. The window actually applied is returned so callers can
// reproduce the rendering. Unsupported encodings produce a grid filled with
// SentinelFill rather than an error.
//
// The returned grid is flipped vertically relative to the source rows.
func DecodePixels(buf PixelBuffer, win Window) (*image.Gray, Window) {
	w, h := buf.Width, buf.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	img := image.NewGray(image.Rect(0, 0, w, h))

	if !buf.Supported() {
		fill(img, SentinelFill)
		return img, UnsetWindow
	}

	used := UnsetWindow
	switch buf.BitsAllocated {
	case 8:
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w]
			src := buf.Samples[y*w : (y+1)*w]
			for x, v := range src {
				row[x] = uint8(v)
			}
		}

	case 16:
		minVal, maxVal := minMax16(buf.Samples[:w*h])
		used = win
		if !used.IsSet() {
			used = AutoWindow(minVal, maxVal)
		}

		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w]
			src := buf.Samples[y*w : (y+1)*w]
			for x, v := range src {
				row[x] = used.Apply(int(uint16(v)))
			}
		}
	}

	flipVertical(img)

	return img, used
}

// IsSentinel reports whether every pixel holds SentinelFill, which is how an
// unsupported encoding shows up.
func IsSentinel(img *image.Gray) bool {
	if img == nil {
		return true
	}
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for _, v := range img.Pix[y*img.Stride : y*img.Stride+b.Dx()] {
			if v != SentinelFill {
				return false
			}
		}
	}
	return true
}

// minMax16 scans the frame once. Samples are read as unsigned 16-bit values.
func minMax16(samples []int) (int, int) {
	minVal, maxVal := 0xFFFF, 0
	for _, s := range samples {
		v := int(uint16(s))
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func fill(img *image.Gray, v uint8) {
	for i := range img.Pix {
		img.Pix[i] = v
	}
}

func flipVertical(img *image.Gray) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]uint8, w)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*img.Stride : top*img.Stride+w]
		u := img.Pix[bottom*img.Stride : bottom*img.Stride+w]
		copy(tmp, t)
		copy(t, u)
		copy(u, tmp)
	}
}
