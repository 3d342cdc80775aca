package bulkprocess

import (
	"fmt"
	"sort"
)

// Tag identifies one field of a DICOM dataset by its group and element number.
type Tag struct {
	Group   uint16
	Element uint16
}

func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// Less orders tags by group, then element, which is the order they appear in a
// well-formed file.
func (t Tag) Less(other Tag) bool {
	if t.Group != other.Group {
		return t.Group < other.Group
	}
	return t.Element < other.Element
}

var (
	// Patient
	PatientName = Tag{Group: 0x0010, Element: 0x0010}
	PatientID   = Tag{Group: 0x0010, Element: 0x0020}

	// Study / series
	StudyDate         = Tag{Group: 0x0008, Element: 0x0020}
	Modality          = Tag{Group: 0x0008, Element: 0x0060}
	SeriesDescription = Tag{Group: 0x0008, Element: 0x103E}
	SeriesInstanceUID = Tag{Group: 0x0020, Element: 0x000E}

	// Geometry
	InstanceNumber          = Tag{Group: 0x0020, Element: 0x0013}
	ImagePositionPatient    = Tag{Group: 0x0020, Element: 0x0032}
	ImageOrientationPatient = Tag{Group: 0x0020, Element: 0x0037}
	SliceThickness          = Tag{Group: 0x0018, Element: 0x0050}
	PixelSpacing            = Tag{Group: 0x0028, Element: 0x0030}
	SliceLocation           = Tag{Group: 0x0020, Element: 0x1041}

	// Timing
	AcquisitionTime = Tag{Group: 0x0008, Element: 0x0032}
	TriggerTime     = Tag{Group: 0x0018, Element: 0x1060}

	// Image pixel module
	SamplesPerPixel = Tag{Group: 0x0028, Element: 0x0002}
	Rows            = Tag{Group: 0x0028, Element: 0x0010}
	Columns         = Tag{Group: 0x0028, Element: 0x0011}
	BitsAllocated   = Tag{Group: 0x0028, Element: 0x0100}
	PixelData       = Tag{Group: 0x7FE0, Element: 0x0010}
)

var tagNames = map[Tag]string{
	PatientName:             "Patient Name",
	PatientID:               "Patient ID",
	StudyDate:               "Study Date",
	Modality:                "Modality",
	SeriesDescription:       "Series Description",
	SeriesInstanceUID:       "Series Instance UID",
	InstanceNumber:          "Instance Number",
	ImagePositionPatient:    "Image Position (Patient)",
	ImageOrientationPatient: "Image Orientation (Patient)",
	SliceThickness:          "Slice Thickness",
	PixelSpacing:            "Pixel Spacing",
	SliceLocation:           "Slice Location",
	AcquisitionTime:         "Acquisition Time",
	TriggerTime:             "Trigger Time",
	SamplesPerPixel:         "Samples per Pixel",
	Rows:                    "Rows",
	Columns:                 "Columns",
	BitsAllocated:           "Bits Allocated",
	PixelData:               "Pixel Data",
}

// KnownTag pairs a catalog tag with its human readable name.
type KnownTag struct {
	Tag  Tag
	Name string
}

// KnownTags lists the catalog in tag order.
func KnownTags() []KnownTag {
	out := make([]KnownTag, 0, len(tagNames))
	for t, name := range tagNames {
		out = append(out, KnownTag{Tag: t, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag.Less(out[j].Tag) })
	return out
}

// TagName returns the catalog name of t, or "" if the tag is not one we track.
func TagName(t Tag) string {
	return tagNames[t]
}
