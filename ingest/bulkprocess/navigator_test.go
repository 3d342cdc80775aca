package bulkprocess

import (
	"errors"
	"testing"
)

func navSeries() SeriesMap {
	return SeriesMap{
		"1.2.3": {
			{SeriesID: "1.2.3", SeriesDescription: "Cine", InstanceNumber: 1},
			{SeriesID: "1.2.3", SeriesDescription: "Cine", InstanceNumber: 2},
			{SeriesID: "1.2.3", SeriesDescription: "Cine", InstanceNumber: 3},
		},
		"4.5.6": {
			{SeriesID: "4.5.6", InstanceNumber: 1},
		},
	}
}

func TestNavigatorEmptyState(t *testing.T) {
	n := NewNavigator(navSeries())

	if !n.Empty() {
		t.Fatal("new navigator should be empty")
	}
	if got := n.Status(); got != "Ready" {
		t.Errorf("got %q, want Ready", got)
	}
	if n.Next() != 0 || n.Prev() != 0 || n.GoTo(2) != 0 {
		t.Error("moves on an empty navigator must be no-ops")
	}
	if _, ok := n.Current(); ok {
		t.Error("empty navigator has no current slice")
	}
}

func TestNavigatorClamps(t *testing.T) {
	n := NewNavigator(navSeries())
	if err := n.Select("1.2.3"); err != nil {
		t.Fatal(err)
	}

	if got := n.Status(); got != "Series: Cine | Slice 1 / 3" {
		t.Errorf("got %q", got)
	}

	if got := n.Prev(); got != 0 {
		t.Errorf("Prev at start: got %d, want 0", got)
	}
	n.Next()
	n.Next()
	if got := n.Next(); got != 2 {
		t.Errorf("Next at end: got %d, want 2", got)
	}
	if got := n.Status(); got != "Series: Cine | Slice 3 / 3" {
		t.Errorf("got %q", got)
	}

	if got := n.GoTo(-5); got != 0 {
		t.Errorf("GoTo(-5): got %d", got)
	}
	if got := n.GoTo(99); got != 2 {
		t.Errorf("GoTo(99): got %d", got)
	}

	cur, ok := n.Current()
	if !ok || cur.InstanceNumber != 3 {
		t.Errorf("got %+v, %v", cur, ok)
	}
}

func TestNavigatorSelect(t *testing.T) {
	n := NewNavigator(navSeries())
	if err := n.Select("1.2.3"); err != nil {
		t.Fatal(err)
	}
	n.Next()

	err := n.Select("nope")
	if !errors.Is(err, ErrUnknownSeries) {
		t.Fatalf("got %v, want ErrUnknownSeries", err)
	}
	if n.Active() != "1.2.3" || n.Index() != 1 {
		t.Errorf("failed select changed state to %q/%d", n.Active(), n.Index())
	}

	if err := n.Select("4.5.6"); err != nil {
		t.Fatal(err)
	}
	if n.Index() != 0 || n.Count() != 1 {
		t.Errorf("got index %d count %d", n.Index(), n.Count())
	}
	if got := n.Status(); got != "Series: Unknown | Slice 1 / 1" {
		t.Errorf("got %q", got)
	}

	// Reselecting rewinds.
	n.Select("1.2.3")
	n.Next()
	n.Select("1.2.3")
	if n.Index() != 0 {
		t.Errorf("reselect left index at %d", n.Index())
	}
}
