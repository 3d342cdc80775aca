package bulkprocess

import (
	"errors"
	"log"
	"sort"
	"sync"
)

// ErrNoUsableFiles is returned when a folder yields no slice that belongs to a
// series. Individual unreadable files are never reported.
var ErrNoUsableFiles = errors.New("no usable DICOM files found")

// Parser is the boundary with the DICOM byte-stream parser.
type Parser interface {
	// Parse reads the dataset and the first image frame of path.
	Parse(path string) (Dataset, PixelBuffer, error)

	// ReadDataset reads only the tags of path, for on-demand metadata display.
	ReadDataset(path string) (Dataset, error)
}

// SeriesMap buckets slices by SeriesID. After Organize each bucket is in
// display order.
type SeriesMap map[string][]SliceRecord

// SeriesLabel describes one entry of a series picker.
type SeriesLabel struct {
	ID    string
	Label string
	Count int
}

// Labels returns one label per series, ordered by SeriesID. The first slice of
// each bucket supplies the label.
func (m SeriesMap) Labels() []SeriesLabel {
	out := make([]SeriesLabel, 0, len(m))
	for id, stack := range m {
		if len(stack) == 0 {
			continue
		}
		out = append(out, SeriesLabel{ID: id, Label: stack[0].Label(), Count: len(stack)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Total counts the slices across all series.
func (m SeriesMap) Total() int {
	n := 0
	for _, stack := range m {
		n += len(stack)
	}
	return n
}

// SliceLess is the ordering used within a series: by instance number when both
// slices declare a positive one, otherwise by slice location. It is a plain
// binary predicate; mixed positive/unknown pairs fall to the location branch.
func SliceLess(a, b SliceRecord) bool {
	if a.InstanceNumber > 0 && b.InstanceNumber > 0 {
		return a.InstanceNumber < b.InstanceNumber
	}
	return a.SliceLocation < b.SliceLocation
}

// SortSlices orders one series in place with SliceLess. Equal slices keep their
// relative order so repeated sorts are stable.
func SortSlices(stack []SliceRecord) {
	sort.SliceStable(stack, func(i, j int) bool {
		return SliceLess(stack[i], stack[j])
	})
}

// Organizer turns a list of files into a SeriesMap.
type Organizer struct {
	Parser Parser

	// Window is applied to every 16-bit frame. Use UnsetWindow to auto-fit.
	Window Window

	// Concurrency bounds the number of files decoded at once. Values below 2
	// decode sequentially.
	Concurrency int

	// Verbose logs files that were skipped.
	Verbose bool
}

// Organize parses each path, drops files that fail to parse or carry no series
// identifier, groups the rest by SeriesID and sorts each group. Grouping and
// sorting only start after every decode has finished, and the input order of
// paths is preserved going into the sort.
func (o Organizer) Organize(paths []string) SeriesMap {
	records := make([]*SliceRecord, len(paths))

	concurrency := o.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		// Will block after `concurrency` simultaneous goroutines are running
		semaphore <- struct{}{}
		wg.Add(1)

		go func(i int, path string) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			rec, err := o.readOne(path)
			if err != nil {
				if o.Verbose {
					log.Println("Skipping", path, "due to error:", err.Error())
				}
				return
			}
			records[i] = rec
		}(i, path)
	}
	wg.Wait()

	out := make(SeriesMap)
	for _, rec := range records {
		if rec == nil || rec.SeriesID == "" {
			continue
		}
		out[rec.SeriesID] = append(out[rec.SeriesID], *rec)
	}

	for _, stack := range out {
		SortSlices(stack)
	}

	return out
}

func (o Organizer) readOne(path string) (*SliceRecord, error) {
	ds, buf, err := o.Parser.Parse(path)
	if err != nil {
		return nil, err
	}
	rec := NewSliceRecord(path, ds, buf, o.Window)
	return &rec, nil
}

// LoadSeries scans dir and organizes everything it finds. It only fails when
// the folder cannot be listed or nothing usable was found in it.
func LoadSeries(dir string, scan ScanOptions, org Organizer) (SeriesMap, error) {
	paths, err := ScanFolder(dir, scan)
	if err != nil {
		return nil, err
	}

	out := org.Organize(paths)
	if len(out) == 0 {
		return nil, ErrNoUsableFiles
	}

	if org.Verbose {
		log.Printf("Organized %d of %d files into %d series\n", out.Total(), len(paths), len(out))
	}

	return out, nil
}
