package models

// Header is the metadata-only descriptor derived from the first slice (by
// sort order) of a series. It is a value type deliberately distinct from
// SliceRecord: it has no pixel field at all, so no downstream stage can read
// stale pixel data off it.
type Header struct {
	PatientID         string
	StudyDescription  string
	SeriesDescription string
	Modality          string
	ImageType         string
	SeriesInstanceUID string
	SOPInstanceUID    string

	elements map[uint32]MetaElement
}

// pixelDataTag is the tag of the DICOM Pixel Data element (7FE0,0010).
const pixelDataTag = 0x7FE00010

// NewHeader builds a Header from a slice record. Image-carrying elements and
// file meta (group 0002) elements are stripped; they are never carried over.
func NewHeader(rec *SliceRecord) *Header {
	elements := make(map[uint32]MetaElement, len(rec.Elements))
	for tag, elem := range rec.Elements {
		if tag>>16 == 0x0002 || tag == pixelDataTag {
			continue
		}
		elements[tag] = elem
	}

	return &Header{
		PatientID:         rec.PatientID,
		StudyDescription:  rec.StudyDescription,
		SeriesDescription: rec.SeriesDescription,
		Modality:          rec.Modality,
		ImageType:         rec.ImageType,
		SeriesInstanceUID: rec.SeriesInstanceUID,
		SOPInstanceUID:    rec.SOPInstanceUID,
		elements:          elements,
	}
}

// Elements returns a copy of the carried-over metadata elements keyed by
// tag. Mutating the returned map does not affect the header.
func (h *Header) Elements() map[uint32]MetaElement {
	out := make(map[uint32]MetaElement, len(h.elements))
	for tag, elem := range h.elements {
		out[tag] = elem
	}
	return out
}
