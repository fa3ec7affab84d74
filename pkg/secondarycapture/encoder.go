// Package secondarycapture packages a rendered report into a DICOM
// Secondary Capture object and serializes it in the Explicit VR Little
// Endian transfer syntax.
package secondarycapture

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/GoogleCloudPlatform/go-dicom-parser/dicom"
	"github.com/google/uuid"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/report"
)

// SOPClassUID is the Secondary Capture Image Storage class. The encoded
// object always carries this class, independent of the source object's.
const SOPClassUID = "1.2.840.10008.5.1.4.1.1.7"

// NewUID derives a globally unique DICOM UID from a random UUID, in the
// standard 2.25 numeric form.
func NewUID() string {
	id := uuid.New()
	return "2.25." + new(big.Int).SetBytes(id[:]).String()
}

// Object is the final archival object: rewritten metadata plus the report's
// raw pixel bytes. It is constructed once by Encode and serialized once;
// after serialization begins it is never mutated.
type Object struct {
	ds         *dicom.DataSet
	serialized bool
}

// Encode builds a Secondary Capture object from the source header and the
// rendered report. Fresh series and instance identifiers are generated,
// pixel-encoding fields describe the report's RGB raster, date/time fields
// are stamped from now, and every other source header field passes through
// unchanged.
func Encode(hdr *models.Header, art *report.Artifact, now time.Time) (*Object, error) {
	if hdr == nil || art == nil {
		return nil, fmt.Errorf("header and report artifact are required")
	}

	seriesUID := NewUID()
	sopUID := NewUID()

	elements := map[dicom.DataElementTag]*dicom.DataElement{}

	// Carry over the source metadata; overrides below take precedence.
	for tag, me := range hdr.Elements() {
		var value interface{}
		if me.Strings != nil {
			value = me.Strings
		} else {
			value = me.Shorts
		}
		t := dicom.DataElementTag(tag)
		elements[t] = &dicom.DataElement{Tag: t, ValueField: value}
	}

	put := func(tag dicom.DataElementTag, value interface{}) {
		elements[tag] = &dicom.DataElement{Tag: tag, ValueField: value}
	}

	// File meta group: the report is always written as Explicit VR Little
	// Endian, whatever syntax the source was stored in.
	elements[dicom.FileMetaInformationVersionTag] = &dicom.DataElement{
		Tag:         dicom.FileMetaInformationVersionTag,
		VR:          dicom.OBVR,
		ValueField:  dicom.NewBulkDataBuffer([]byte{0x00, 0x01}),
		ValueLength: 2,
	}
	put(dicom.MediaStorageSOPClassUIDTag, []string{SOPClassUID})
	put(dicom.MediaStorageSOPInstanceUIDTag, []string{sopUID})
	put(dicom.TransferSyntaxUIDTag, []string{dicom.ExplicitVRLittleEndianUID})

	// The report is a new, derived, single-instance series.
	put(dicom.SOPClassUIDTag, []string{SOPClassUID})
	put(dicom.SOPInstanceUIDTag, []string{sopUID})
	put(dicom.SeriesInstanceUIDTag, []string{seriesUID})
	put(dicom.ModalityTag, []string{"OT"})
	put(dicom.SeriesDescriptionTag, []string{report.Title})
	put(dicom.ImageTypeTag, []string{"DERIVED", "PRIMARY", "AXIAL"})
	put(dicom.ImagesInAcquisitionTag, []string{"1"})

	// Pixel encoding of the RGB report raster. These fields are mutually
	// consistent and fixed.
	put(dicom.RowsTag, []uint16{uint16(art.Height())})
	put(dicom.ColumnsTag, []uint16{uint16(art.Width())})
	put(dicom.SamplesPerPixelTag, []uint16{3})
	put(dicom.PhotometricInterpretationTag, []string{"RGB"})
	put(dicom.PlanarConfigurationTag, []uint16{0})
	put(dicom.BitsAllocatedTag, []uint16{8})
	put(dicom.BitsStoredTag, []uint16{8})
	put(dicom.HighBitTag, []uint16{7})
	put(dicom.PixelRepresentationTag, []uint16{0})

	// Stamp encode time on study and series.
	put(dicom.StudyDateTag, []string{now.Format("20060102")})
	put(dicom.StudyTimeTag, []string{now.Format("150405")})
	put(dicom.SeriesDateTag, []string{now.Format("20060102")})
	put(dicom.SeriesTimeTag, []string{now.Format("150405")})

	// Cleared so viewers fall back to automatic display range.
	put(dicom.WindowCenterTag, []string{})
	put(dicom.WindowWidthTag, []string{})

	// The pixel raster contains rendered text.
	put(dicom.BurnedInAnnotationTag, []string{"YES"})

	pixels := art.RGBBytes()
	elements[dicom.PixelDataTag] = &dicom.DataElement{
		Tag:         dicom.PixelDataTag,
		VR:          dicom.OBVR,
		ValueField:  dicom.NewBulkDataBuffer(pixels),
		ValueLength: uint32(len(pixels)),
	}

	return &Object{ds: &dicom.DataSet{Elements: elements}}, nil
}

// SeriesInstanceUID returns the freshly generated series identifier.
func (o *Object) SeriesInstanceUID() string { return o.uid(dicom.SeriesInstanceUIDTag) }

// SOPInstanceUID returns the freshly generated instance identifier.
func (o *Object) SOPInstanceUID() string { return o.uid(dicom.SOPInstanceUIDTag) }

func (o *Object) uid(tag dicom.DataElementTag) string {
	if elem, ok := o.ds.Elements[tag]; ok {
		if strs, ok := elem.ValueField.([]string); ok && len(strs) > 0 {
			return strs[0]
		}
	}
	return ""
}

// Write serializes the object exactly once. The preamble, meta group length
// and ascending tag order of the binary format are the writer's concern.
func (o *Object) Write(w io.Writer) error {
	if o.serialized {
		return fmt.Errorf("secondary capture object already serialized")
	}
	o.serialized = true

	if err := dicom.Construct(w, o.ds); err != nil {
		return fmt.Errorf("failed to construct DICOM object: %v", err)
	}
	return nil
}

// WriteFile serializes the object to a file at path, creating parent
// directories as needed.
func (o *Object) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}
	defer f.Close()

	return o.Write(f)
}
