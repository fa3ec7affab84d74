// Package study locates the series eligible for hippocampal cropping inside
// a routed study directory and loads its DICOM slices as slice records.
package study

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/GoogleCloudPlatform/go-dicom-parser/dicom"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// SeriesMarker is the path fragment that marks a series directory as
// eligible for the cropping algorithm.
const SeriesMarker = "HCropVolume"

// SeriesAmbiguityError reports that the slices read from one directory carry
// more than one distinct series identifier. Mixing slices from different
// series would silently corrupt the reconstructed anatomy, so this is a hard
// stop for the run.
type SeriesAmbiguityError struct {
	// UIDs are the distinct series identifiers found, sorted
	UIDs []string
}

func (e *SeriesAmbiguityError) Error() string {
	return fmt.Sprintf("found %d distinct series identifiers where one was required: %s",
		len(e.UIDs), strings.Join(e.UIDs, ", "))
}

// FindLatestStudyDir returns the most recently modified subdirectory of the
// routing folder, or an empty string when the routing folder holds no
// subdirectories.
func FindLatestStudyDir(routingDir string) (string, error) {
	entries, err := os.ReadDir(routingDir)
	if err != nil {
		return "", fmt.Errorf("failed to read routing folder %s: %v", routingDir, err)
	}

	best := ""
	var bestMod int64
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %v", entry.Name(), err)
		}
		if best == "" || info.ModTime().UnixNano() > bestMod {
			best = filepath.Join(routingDir, entry.Name())
			bestMod = info.ModTime().UnixNano()
		}
	}

	return best, nil
}

// SelectSeriesDir walks the study directory for series directories whose
// path contains SeriesMarker and selects one of them. Zero candidates is not
// an error: the empty string signals that there is nothing to do.
//
// When more than one candidate exists, the most recently modified one wins;
// ties break lexicographically by path. The choice is deterministic per
// directory state.
func SelectSeriesDir(studyDir string) (string, error) {
	type candidate struct {
		path string
		mod  int64
	}

	var candidates []candidate
	err := filepath.WalkDir(studyDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !strings.Contains(path, SeriesMarker) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate{path, info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to scan study directory %s: %v", studyDir, err)
	}

	if len(candidates) == 0 {
		return "", nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].mod != candidates[j].mod {
			return candidates[i].mod > candidates[j].mod
		}
		return candidates[i].path < candidates[j].path
	})

	return candidates[0].path, nil
}

// LoadSeries reads every file in the series directory as a DICOM slice
// record. All records must share one series identifier; otherwise a
// *SeriesAmbiguityError is returned and no records are handed out.
func LoadSeries(dir string) ([]*models.SliceRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read series directory %s: %v", dir, err)
	}

	var records []*models.SliceRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec, err := parseSlice(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read slice %s: %v", entry.Name(), err)
		}
		records = append(records, rec)
	}

	uids := map[string]bool{}
	for _, rec := range records {
		uids[rec.SeriesInstanceUID] = true
	}
	if len(uids) > 1 {
		distinct := make([]string, 0, len(uids))
		for uid := range uids {
			distinct = append(distinct, uid)
		}
		sort.Strings(distinct)
		return nil, &SeriesAmbiguityError{UIDs: distinct}
	}

	return records, nil
}

// Load selects the eligible series under the study directory and loads its
// slices. A nil record set with nil error means no eligible series exists.
func Load(studyDir string) ([]*models.SliceRecord, error) {
	seriesDir, err := SelectSeriesDir(studyDir)
	if err != nil {
		return nil, err
	}
	if seriesDir == "" {
		return nil, nil
	}
	return LoadSeries(seriesDir)
}

// parseSlice reads a single DICOM file into a slice record.
func parseSlice(path string) (*models.SliceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := dicom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing DICOM: %v", err)
	}

	rec := &models.SliceRecord{
		SeriesInstanceUID: textValue(ds, dicom.SeriesInstanceUIDTag),
		SOPInstanceUID:    textValue(ds, dicom.SOPInstanceUIDTag),
		PatientID:         textValue(ds, dicom.PatientIDTag),
		StudyDescription:  textValue(ds, dicom.StudyDescriptionTag),
		SeriesDescription: textValue(ds, dicom.SeriesDescriptionTag),
		Modality:          textValue(ds, dicom.ModalityTag),
		ImageType:         textValue(ds, dicom.ImageTypeTag),
	}

	instance := strings.TrimSpace(textValue(ds, dicom.InstanceNumberTag))
	if instance != "" {
		n, err := strconv.Atoi(instance)
		if err != nil {
			return nil, fmt.Errorf("bad InstanceNumber %q: %v", instance, err)
		}
		rec.InstanceNumber = n
	}

	rec.Rows = int(ushortValue(ds, dicom.RowsTag))
	rec.Cols = int(ushortValue(ds, dicom.ColumnsTag))
	if rec.Rows == 0 || rec.Cols == 0 {
		return nil, fmt.Errorf("missing Rows/Columns")
	}

	bits := ushortValue(ds, dicom.BitsAllocatedTag)
	if bits == 0 {
		bits = 16
	}
	pixels, err := decodePixels(ds, rec.Rows, rec.Cols, int(bits))
	if err != nil {
		return nil, err
	}
	rec.Pixels = pixels
	rec.Elements = captureElements(ds)

	return rec, nil
}

// textValue returns the string value of a textual element, with DICOM
// multi-values joined by backslash and padding trimmed.
func textValue(ds *dicom.DataSet, tag dicom.DataElementTag) string {
	elem, ok := ds.Elements[tag]
	if !ok {
		return ""
	}
	strs, ok := elem.ValueField.([]string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.Join(strs, "\\"))
}

// ushortValue returns the first value of an unsigned 16-bit element or zero.
func ushortValue(ds *dicom.DataSet, tag dicom.DataElementTag) uint16 {
	elem, ok := ds.Elements[tag]
	if !ok {
		return 0
	}
	shorts, ok := elem.ValueField.([]uint16)
	if !ok || len(shorts) == 0 {
		return 0
	}
	return shorts[0]
}

// decodePixels converts the Pixel Data element into the in-plane matrix used
// by the assembler. Grayscale 8-bit and unsigned little-endian 16-bit
// encodings cover the series this pipeline receives.
func decodePixels(ds *dicom.DataSet, rows, cols, bits int) ([]float64, error) {
	elem, ok := ds.Elements[dicom.PixelDataTag]
	if !ok {
		return nil, fmt.Errorf("missing PixelData")
	}

	var raw []byte
	switch v := elem.ValueField.(type) {
	case dicom.BulkDataBuffer:
		for _, fragment := range v.Data() {
			raw = append(raw, fragment...)
		}
	case []uint16:
		pixels := make([]float64, len(v))
		for i, s := range v {
			pixels[i] = float64(s)
		}
		if len(pixels) < rows*cols {
			return nil, fmt.Errorf("pixel data too short: got %d values, want %d", len(pixels), rows*cols)
		}
		return pixels[:rows*cols], nil
	default:
		return nil, fmt.Errorf("unsupported PixelData type %T", elem.ValueField)
	}

	n := rows * cols
	pixels := make([]float64, n)
	switch bits {
	case 8:
		if len(raw) < n {
			return nil, fmt.Errorf("pixel data too short: got %d bytes, want %d", len(raw), n)
		}
		for i := 0; i < n; i++ {
			pixels[i] = float64(raw[i])
		}
	case 16:
		if len(raw) < 2*n {
			return nil, fmt.Errorf("pixel data too short: got %d bytes, want %d", len(raw), 2*n)
		}
		for i := 0; i < n; i++ {
			pixels[i] = float64(binary.LittleEndian.Uint16(raw[2*i:]))
		}
	default:
		return nil, fmt.Errorf("unsupported BitsAllocated %d", bits)
	}

	return pixels, nil
}

// captureElements snapshots the textual and short-valued metadata elements
// so they can be carried through to the Secondary Capture object. Pixel
// data, file meta elements and anything else (sequences, bulk data) are not
// carried; the encoder rewrites or regenerates those.
func captureElements(ds *dicom.DataSet) map[uint32]models.MetaElement {
	out := map[uint32]models.MetaElement{}
	for tag, elem := range ds.Elements {
		t := uint32(tag)
		if t>>16 == 0x0002 || t == uint32(dicom.PixelDataTag) {
			continue
		}
		switch v := elem.ValueField.(type) {
		case []string:
			out[t] = models.MetaElement{Strings: v}
		case []uint16:
			out[t] = models.MetaElement{Shorts: v}
		}
	}
	return out
}
