package bulkprocess

import (
	"errors"
	"fmt"
	"sync"
)

// fakeDataset is a Dataset backed by a map of tag to raw text value.
type fakeDataset map[Tag]string

func (f fakeDataset) Lookup(t Tag) (Element, bool) {
	v, ok := f[t]
	if !ok {
		return Element{}, false
	}
	return Element{Tag: t, Value: v}, true
}

func (f fakeDataset) Elements() []Element {
	out := make([]Element, 0, len(f))
	for t, v := range f {
		out = append(out, Element{Tag: t, Value: v})
	}
	return out
}

type fakeDictionary map[Tag]DictEntry

func (f fakeDictionary) Lookup(t Tag) (DictEntry, bool) {
	e, ok := f[t]
	return e, ok
}

type fakeFile struct {
	ds  fakeDataset
	buf PixelBuffer
	err error
}

// fakeParser serves files from memory and counts reads.
type fakeParser struct {
	mu    sync.Mutex
	files map[string]fakeFile
	reads int
}

var errNotDicom = errors.New("not a DICOM file")

func (p *fakeParser) Parse(path string) (Dataset, PixelBuffer, error) {
	p.mu.Lock()
	p.reads++
	p.mu.Unlock()

	f, ok := p.files[path]
	if !ok {
		return nil, PixelBuffer{}, fmt.Errorf("%s: %w", path, errNotDicom)
	}
	if f.err != nil {
		return nil, PixelBuffer{}, f.err
	}
	return f.ds, f.buf, nil
}

func (p *fakeParser) ReadDataset(path string) (Dataset, error) {
	ds, _, err := p.Parse(path)
	return ds, err
}

// sliceFile describes a one-pixel 8-bit slice.
func sliceFile(series string, instance int, z float64) fakeFile {
	ds := fakeDataset{
		ImagePositionPatient: fmt.Sprintf(`0\0\%g`, z),
	}
	if series != "" {
		ds[SeriesInstanceUID] = series
	}
	if instance != 0 {
		ds[InstanceNumber] = fmt.Sprint(instance)
	}
	return fakeFile{
		ds:  ds,
		buf: PixelBuffer{Width: 1, Height: 1, BitsAllocated: 8, SamplesPerPixel: 1, Samples: []int{instance}},
	}
}
