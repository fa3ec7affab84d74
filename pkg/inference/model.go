// Package inference defines the boundary to the segmentation model. The
// pipeline only requires that inference preserves the spatial shape of its
// input and that label 0 denotes background; everything else is up to the
// implementation behind the interface.
package inference

import (
	"fmt"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// Model segments an anatomical volume into a label volume of the same
// spatial shape.
type Model interface {
	Infer(vol *models.Volume, patchSize int) (*models.LabelVolume, error)
}

// PatchedModel adapts a whole-volume segmentation function to the patch-grid
// contract: each in-plane extent is zero-padded up to the next multiple of
// the patch size before segmentation, and the padding is cropped off the
// result so the labels realign with the input coordinate space.
type PatchedModel struct {
	// Segment runs the underlying model over a (possibly padded) volume
	// and must return labels of identical shape.
	Segment func(vol *models.Volume) (*models.LabelVolume, error)
}

// Infer implements Model.
func (m *PatchedModel) Infer(vol *models.Volume, patchSize int) (*models.LabelVolume, error) {
	if patchSize <= 0 {
		return nil, fmt.Errorf("patch size must be positive, got %d", patchSize)
	}

	padRows := roundUp(vol.Rows, patchSize)
	padCols := roundUp(vol.Cols, patchSize)

	padded := vol
	if padRows != vol.Rows || padCols != vol.Cols {
		padded = models.NewVolume(vol.Slices, padRows, padCols)
		for s := 0; s < vol.Slices; s++ {
			src := vol.AxialSlice(s)
			dst := padded.AxialSlice(s)
			for r := 0; r < vol.Rows; r++ {
				copy(dst[r*padCols:r*padCols+vol.Cols], src[r*vol.Cols:(r+1)*vol.Cols])
			}
		}
	}

	label, err := m.Segment(padded)
	if err != nil {
		return nil, fmt.Errorf("failed to run segmentation: %v", err)
	}
	if !label.SameShape(padded) {
		return nil, fmt.Errorf("segmentation changed volume shape: got %dx%dx%d, want %dx%dx%d",
			label.Slices, label.Rows, label.Cols, padded.Slices, padded.Rows, padded.Cols)
	}

	if padded == vol {
		return label, nil
	}

	cropped := models.NewLabelVolume(vol.Slices, vol.Rows, vol.Cols)
	for s := 0; s < vol.Slices; s++ {
		src := label.AxialSlice(s)
		dst := cropped.AxialSlice(s)
		for r := 0; r < vol.Rows; r++ {
			copy(dst[r*vol.Cols:(r+1)*vol.Cols], src[r*padCols:r*padCols+vol.Cols])
		}
	}
	return cropped, nil
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}

// ThresholdModel is the built-in stand-in segmenter used when no external
// network is wired in. It classifies voxels by intensity relative to the
// volume maximum: above Posterior becomes label 2, above Anterior label 1,
// everything else background. Deterministic for a given volume.
type ThresholdModel struct {
	// Anterior and Posterior are fractions of the volume maximum in
	// (0, 1], with Anterior < Posterior.
	Anterior  float64
	Posterior float64
}

// Segment classifies every voxel of the volume.
func (m *ThresholdModel) Segment(vol *models.Volume) (*models.LabelVolume, error) {
	if m.Anterior <= 0 || m.Posterior <= m.Anterior {
		return nil, fmt.Errorf("thresholds must satisfy 0 < anterior < posterior, got %v and %v",
			m.Anterior, m.Posterior)
	}

	max := 0.0
	for _, v := range vol.Data {
		if v > max {
			max = v
		}
	}

	label := models.NewLabelVolume(vol.Slices, vol.Rows, vol.Cols)
	if max == 0 {
		return label, nil
	}

	for i, v := range vol.Data {
		switch f := v / max; {
		case f >= m.Posterior:
			label.Data[i] = 2
		case f >= m.Anterior:
			label.Data[i] = 1
		}
	}
	return label, nil
}
