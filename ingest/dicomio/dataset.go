package dicomio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

// Dataset is a text snapshot of a parsed file. Pixel data is not kept.
type Dataset struct {
	elements []bulkprocess.Element
	index    map[bulkprocess.Tag]int
}

var _ bulkprocess.Dataset = (*Dataset)(nil)

// NewDataset flattens the top-level elements of ds into text values.
func NewDataset(ds dicom.Dataset) *Dataset {
	out := &Dataset{
		elements: make([]bulkprocess.Element, 0, len(ds.Elements)),
		index:    make(map[bulkprocess.Tag]int, len(ds.Elements)),
	}

	for _, elem := range ds.Elements {
		if elem == nil || elem.Tag == tag.PixelData {
			continue
		}

		t := bulkprocess.Tag{Group: elem.Tag.Group, Element: elem.Tag.Element}
		out.index[t] = len(out.elements)
		out.elements = append(out.elements, bulkprocess.Element{
			Tag:   t,
			VR:    elem.RawValueRepresentation,
			Value: FormatValue(elem.Value),
		})
	}

	return out
}

func (d *Dataset) Lookup(t bulkprocess.Tag) (bulkprocess.Element, bool) {
	i, ok := d.index[t]
	if !ok {
		return bulkprocess.Element{}, false
	}
	return d.elements[i], true
}

func (d *Dataset) Elements() []bulkprocess.Element {
	out := make([]bulkprocess.Element, len(d.elements))
	copy(out, d.elements)
	return out
}

// FormatValue renders a value the way it is stored in the file: multiple
// values separated by a backslash.
func FormatValue(v dicom.Value) string {
	if v == nil {
		return ""
	}

	switch vals := v.GetValue().(type) {
	case []string:
		return strings.Join(vals, `\`)
	case []int:
		parts := make([]string, len(vals))
		for i, n := range vals {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, `\`)
	case []float64:
		parts := make([]string, len(vals))
		for i, f := range vals {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`)
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(vals))
	}

	return v.String()
}
