package models

// SliceRecord represents a single 2D image plane read from a DICOM file
// together with the attributes needed to place it inside a series.
type SliceRecord struct {
	// InstanceNumber is the ordering attribute used to reconstruct the
	// anatomical slice order within the series
	InstanceNumber int

	// SeriesInstanceUID identifies the series this slice belongs to.
	// All slices stacked into one volume must share this value.
	SeriesInstanceUID string

	// SOPInstanceUID identifies this particular slice object
	SOPInstanceUID string

	// Descriptive metadata carried through to the report
	PatientID         string
	StudyDescription  string
	SeriesDescription string
	Modality          string
	ImageType         string

	// Rows and Cols are the in-plane dimensions of the pixel matrix
	Rows int
	Cols int

	// Pixels is the in-plane pixel matrix as a 1D array in row-major order
	Pixels []float64

	// Elements holds every non-pixel data element parsed from the source
	// file, keyed by tag. It is the raw material for the Header and is
	// passed through to the Secondary Capture object unless overridden.
	Elements map[uint32]MetaElement
}

// MetaElement is one carried-over metadata value in a representation
// independent of the DICOM parser that produced it. Exactly one of the
// fields is set; the value representation is recovered from the data
// dictionary when the element is re-encoded.
type MetaElement struct {
	// Strings holds the value for textual VRs (one entry per value)
	Strings []string

	// Shorts holds the value for 16-bit binary VRs
	Shorts []uint16
}
