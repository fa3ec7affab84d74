// Package volume assembles a set of slice records from one series into a 3D
// anatomical volume plus its metadata header.
package volume

import (
	"fmt"
	"sort"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// ShapeMismatchError reports slice planes of inconsistent size. Slices of
// differing in-plane shape cannot be stacked and are never silently resized.
type ShapeMismatchError struct {
	// WantRows, WantCols is the plane shape established by the first slice
	WantRows, WantCols int

	// GotRows, GotCols is the offending slice's plane shape
	GotRows, GotCols int

	// Instance is the offending slice's instance number
	Instance int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("slice %d has plane shape %dx%d, want %dx%d",
		e.Instance, e.GotRows, e.GotCols, e.WantRows, e.WantCols)
}

// Assemble sorts the slice records into anatomical order and stacks them
// into a single volume. The sort is ascending by instance number and stable,
// so ties keep their input order and the result is deterministic per input.
//
// Each plane is geometrically normalized before stacking: flipped along both
// in-plane axes, then transposed. This reconciles the archive's stored pixel
// orientation with the anatomical viewing convention the downstream stages
// assume, and must stay bit-for-bit stable.
//
// The returned header is derived from the first record in sort order; it
// carries metadata only.
func Assemble(records []*models.SliceRecord) (*models.Volume, *models.Header, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no slice records to assemble")
	}

	ordered := make([]*models.SliceRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].InstanceNumber < ordered[j].InstanceNumber
	})

	// The flip+transpose swaps the in-plane extents
	first := ordered[0]
	vol := models.NewVolume(len(ordered), first.Cols, first.Rows)

	for i, rec := range ordered {
		if rec.Rows != first.Rows || rec.Cols != first.Cols {
			return nil, nil, &ShapeMismatchError{
				WantRows: first.Rows, WantCols: first.Cols,
				GotRows: rec.Rows, GotCols: rec.Cols,
				Instance: rec.InstanceNumber,
			}
		}
		normalizePlane(rec.Pixels, rec.Rows, rec.Cols, vol.AxialSlice(i))
	}

	return vol, models.NewHeader(first), nil
}

// normalizePlane writes the flipped-then-transposed plane into dst. For a
// source plane of shape rows x cols the result has shape cols x rows with
// dst[r][c] = src[rows-1-c][cols-1-r].
func normalizePlane(src []float64, rows, cols int, dst []float64) {
	for r := 0; r < cols; r++ {
		for c := 0; c < rows; c++ {
			dst[r*rows+c] = src[(rows-1-c)*cols+(cols-1-r)]
		}
	}
}
