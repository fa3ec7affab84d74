// Package volumetrics derives clinical volumetric measurements from a
// predicted label volume.
package volumetrics

import (
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// Labels assigned by the segmentation model. 0 is always background.
const (
	LabelBackground uint8 = 0
	LabelAnterior   uint8 = 1
	LabelPosterior  uint8 = 2
)

// Summary holds per-structure voxel counts for one inference run. It is
// created once by Measure and never mutated afterwards.
type Summary struct {
	// Anterior is the voxel count of the anterior hippocampus (label 1)
	Anterior int

	// Posterior is the voxel count of the posterior hippocampus (label 2)
	Posterior int

	// Total counts every non-background voxel. Labels outside the known
	// set contribute here but are not attributed to a named structure.
	Total int
}

// Measure computes exact voxel counts per structure in one pass over the
// label volume. It is pure and deterministic: measuring the same label
// volume twice yields identical summaries.
func Measure(label *models.LabelVolume) Summary {
	var s Summary
	for _, v := range label.Data {
		switch v {
		case LabelBackground:
		case LabelAnterior:
			s.Anterior++
			s.Total++
		case LabelPosterior:
			s.Posterior++
			s.Total++
		default:
			s.Total++
		}
	}
	return s
}
