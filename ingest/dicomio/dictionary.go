package dicomio

import (
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

// Dictionary is the public data dictionary compiled into the parser.
type Dictionary struct{}

var _ bulkprocess.Dictionary = Dictionary{}

func (Dictionary) Lookup(t bulkprocess.Tag) (bulkprocess.DictEntry, bool) {
	info, err := tag.Find(tag.Tag{Group: t.Group, Element: t.Element})
	if err != nil {
		return bulkprocess.DictEntry{}, false
	}
	return bulkprocess.DictEntry{Keyword: info.Name, VR: info.VR}, true
}
