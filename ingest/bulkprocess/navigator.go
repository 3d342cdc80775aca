package bulkprocess

import (
	"errors"
	"fmt"
)

// ErrUnknownSeries is returned when selecting a series that is not loaded.
var ErrUnknownSeries = errors.New("unknown series")

// Navigator tracks the active series and the current slice within it. With no
// active series it is in the empty state and every move is a no-op.
type Navigator struct {
	series SeriesMap
	active string
	index  int
}

func NewNavigator(series SeriesMap) *Navigator {
	return &Navigator{series: series}
}

// Select makes id the active series and rewinds to its first slice. Unknown ids
// leave the state untouched.
func (n *Navigator) Select(id string) error {
	if len(n.series[id]) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSeries, id)
	}
	n.active = id
	n.index = 0
	return nil
}

func (n *Navigator) Empty() bool {
	return len(n.series[n.active]) == 0
}

func (n *Navigator) Active() string {
	if n.Empty() {
		return ""
	}
	return n.active
}

func (n *Navigator) Index() int {
	return n.index
}

// Count is the number of slices in the active series.
func (n *Navigator) Count() int {
	return len(n.series[n.active])
}

func (n *Navigator) Next() int {
	return n.GoTo(n.index + 1)
}

func (n *Navigator) Prev() int {
	return n.GoTo(n.index - 1)
}

// GoTo moves to index, clamped into [0, Count()-1].
func (n *Navigator) GoTo(index int) int {
	if n.Empty() {
		return n.index
	}
	if max := n.Count() - 1; index > max {
		index = max
	}
	if index < 0 {
		index = 0
	}
	n.index = index
	return n.index
}

// Current returns the slice at the current index.
func (n *Navigator) Current() (SliceRecord, bool) {
	if n.Empty() {
		return SliceRecord{}, false
	}
	return n.series[n.active][n.index], true
}

// Status is the one-line summary shown under the image.
func (n *Navigator) Status() string {
	cur, ok := n.Current()
	if !ok {
		return "Ready"
	}
	desc := cur.SeriesDescription
	if desc == "" {
		desc = "Unknown"
	}
	return fmt.Sprintf("Series: %s | Slice %d / %d", desc, n.index+1, n.Count())
}
