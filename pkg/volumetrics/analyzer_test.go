package volumetrics

import (
	"testing"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// makeLabelVolume builds a 10x64x64 label volume with the requested number
// of anterior and posterior voxels, everything else background.
func makeLabelVolume(anterior, posterior int) *models.LabelVolume {
	label := models.NewLabelVolume(10, 64, 64)
	i := 0
	for ; i < anterior; i++ {
		label.Data[i] = LabelAnterior
	}
	for ; i < anterior+posterior; i++ {
		label.Data[i] = LabelPosterior
	}
	return label
}

func TestMeasure(t *testing.T) {
	label := makeLabelVolume(500, 300)

	sum := Measure(label)
	if sum.Anterior != 500 {
		t.Errorf("Wrong anterior count: got %d, want 500", sum.Anterior)
	}
	if sum.Posterior != 300 {
		t.Errorf("Wrong posterior count: got %d, want 300", sum.Posterior)
	}
	if sum.Total != 800 {
		t.Errorf("Wrong total: got %d, want 800", sum.Total)
	}
}

// TestMeasureIdempotent verifies that measuring does not mutate the mask.
func TestMeasureIdempotent(t *testing.T) {
	label := makeLabelVolume(500, 300)

	first := Measure(label)
	second := Measure(label)
	if first != second {
		t.Errorf("Repeated measurement changed: first %+v, second %+v", first, second)
	}
}

func TestMeasureAllBackground(t *testing.T) {
	sum := Measure(makeLabelVolume(0, 0))
	if sum != (Summary{}) {
		t.Errorf("Expected zero summary for background-only mask, got %+v", sum)
	}
}

// TestMeasureUnknownLabels checks that labels outside the known set count
// toward the total but neither subregion.
func TestMeasureUnknownLabels(t *testing.T) {
	label := makeLabelVolume(5, 3)
	label.Data[100] = 7
	label.Data[101] = 9

	sum := Measure(label)
	if sum.Anterior != 5 || sum.Posterior != 3 {
		t.Errorf("Unknown labels leaked into subregions: %+v", sum)
	}
	if sum.Total != 10 {
		t.Errorf("Wrong total with unknown labels: got %d, want 10", sum.Total)
	}
}
