package bulkprocess

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Element is one dataset entry as text. Multi-valued fields keep the DICOM
// backslash separator in Value.
type Element struct {
	Tag   Tag
	VR    string
	Value string
}

// Dataset is the read-only view of a parsed file that the rest of the package
// needs.
type Dataset interface {
	Lookup(t Tag) (Element, bool)
	Elements() []Element
}

// DictEntry is what the public data dictionary knows about a tag.
type DictEntry struct {
	Keyword string
	VR      string
}

// Dictionary looks up tags in a public data dictionary.
type Dictionary interface {
	Lookup(t Tag) (DictEntry, bool)
}

// ReadNumber is ReadNumberAt with index 0.
func ReadNumber(ds Dataset, t Tag) float64 {
	return ReadNumberAt(ds, t, 0)
}

// ReadNumberAt returns the index'th backslash-separated sub-value of t as a
// number. Optional fields are common, so a missing tag, a missing sub-value or
// an unparsable one all yield 0.
func ReadNumberAt(ds Dataset, t Tag, index int) float64 {
	if ds == nil || index < 0 {
		return 0
	}
	elem, ok := ds.Lookup(t)
	if !ok {
		return 0
	}

	parts := strings.Split(elem.Value, `\`)
	if index >= len(parts) {
		return 0
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(parts[index]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ReadString returns the value of t without its space/NUL padding, or "" when
// the tag is absent.
func ReadString(ds Dataset, t Tag) string {
	if ds == nil {
		return ""
	}
	elem, ok := ds.Lookup(t)
	if !ok {
		return ""
	}
	return strings.Trim(elem.Value, " \x00")
}

// ReadDate parses a DA value such as StudyDate.
func ReadDate(ds Dataset, t Tag) (time.Time, bool) {
	raw := ReadString(ds, t)
	if raw == "" {
		return time.Time{}, false
	}
	return ParseDicomDate(raw)
}

// ParseDicomDate reads a DA value, falling back to the dotted form of older
// files.
func ParseDicomDate(raw string) (time.Time, bool) {
	res, err := dateparse.ParseAny(raw)
	if err == nil {
		return res, true
	}

	res, err = time.Parse("2006.01.02", raw)
	if err == nil {
		return res, true
	}

	return time.Time{}, false
}

// TagEntry is one row of a full dataset listing.
type TagEntry struct {
	Tag     Tag
	Value   string
	Keyword string
	VR      string
}

// Label renders the tag the way it is shown in metadata listings, e.g.
// "(0020,000e) SeriesInstanceUID".
func (e TagEntry) Label() string {
	if e.Keyword == "" {
		return e.Tag.String()
	}
	return e.Tag.String() + " " + e.Keyword
}

// Enumerate lists every element of ds in tag order. Keyword and VR come from
// dict; tags the dictionary does not know get empty strings.
func Enumerate(ds Dataset, dict Dictionary) []TagEntry {
	if ds == nil {
		return nil
	}

	elems := ds.Elements()
	out := make([]TagEntry, 0, len(elems))
	for _, elem := range elems {
		entry := TagEntry{Tag: elem.Tag, Value: elem.Value}
		if dict != nil {
			if de, ok := dict.Lookup(elem.Tag); ok {
				entry.Keyword = de.Keyword
				entry.VR = de.VR
			}
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Tag.Less(out[j].Tag) })

	return out
}

// FilterEntries keeps the entries whose label, value or VR contains text,
// ignoring case.
func FilterEntries(entries []TagEntry, text string) []TagEntry {
	needle := strings.ToLower(text)
	if needle == "" {
		return entries
	}

	out := make([]TagEntry, 0)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Label()), needle) ||
			strings.Contains(strings.ToLower(e.Value), needle) ||
			strings.Contains(strings.ToLower(e.VR), needle) {
			out = append(out, e)
		}
	}
	return out
}
