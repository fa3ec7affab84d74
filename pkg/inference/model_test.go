package inference

import (
	"fmt"
	"testing"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// echoSegment labels every voxel whose intensity is nonzero and records the
// shape it was invoked with.
func echoSegment(gotShape *[3]int) func(vol *models.Volume) (*models.LabelVolume, error) {
	return func(vol *models.Volume) (*models.LabelVolume, error) {
		*gotShape = [3]int{vol.Slices, vol.Rows, vol.Cols}
		label := models.NewLabelVolume(vol.Slices, vol.Rows, vol.Cols)
		for i, v := range vol.Data {
			if v != 0 {
				label.Data[i] = 1
			}
		}
		return label, nil
	}
}

// TestPatchedModelPadding checks that awkward in-plane extents are padded up
// to the patch grid before segmentation and cropped back afterwards.
func TestPatchedModelPadding(t *testing.T) {
	vol := models.NewVolume(2, 35, 51)
	for i := range vol.Data {
		vol.Data[i] = 1.0
	}

	var gotShape [3]int
	model := &PatchedModel{Segment: echoSegment(&gotShape)}

	label, err := model.Infer(vol, 16)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}

	if gotShape != [3]int{2, 48, 64} {
		t.Errorf("Wrong padded shape handed to the model: got %v, want [2 48 64]", gotShape)
	}
	if !label.SameShape(vol) {
		t.Errorf("Output not cropped back: got %dx%dx%d, want %dx%dx%d",
			label.Slices, label.Rows, label.Cols, vol.Slices, vol.Rows, vol.Cols)
	}

	// Every original voxel was nonzero, so after cropping every label must
	// be set; padded voxels were zero and must not leak in.
	for i, l := range label.Data {
		if l != 1 {
			t.Fatalf("Voxel %d lost its label after crop: got %d", i, l)
		}
	}
}

// TestPatchedModelAlignedShape checks that an already-aligned volume is
// passed through without a padding copy.
func TestPatchedModelAlignedShape(t *testing.T) {
	vol := models.NewVolume(3, 64, 64)

	var gotShape [3]int
	model := &PatchedModel{Segment: echoSegment(&gotShape)}

	label, err := model.Infer(vol, 64)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if gotShape != [3]int{3, 64, 64} {
		t.Errorf("Aligned volume was reshaped: got %v", gotShape)
	}
	if !label.SameShape(vol) {
		t.Errorf("Wrong output shape: %dx%dx%d", label.Slices, label.Rows, label.Cols)
	}
}

func TestPatchedModelBadPatchSize(t *testing.T) {
	model := &PatchedModel{Segment: echoSegment(new([3]int))}
	if _, err := model.Infer(models.NewVolume(1, 8, 8), 0); err == nil {
		t.Fatal("Expected an error for patch size 0, got nil")
	}
}

func TestPatchedModelShapeViolation(t *testing.T) {
	model := &PatchedModel{Segment: func(vol *models.Volume) (*models.LabelVolume, error) {
		return models.NewLabelVolume(vol.Slices, vol.Rows+1, vol.Cols), nil
	}}
	if _, err := model.Infer(models.NewVolume(1, 8, 8), 4); err == nil {
		t.Fatal("Expected an error for a shape-changing model, got nil")
	}
}

func TestPatchedModelSegmentError(t *testing.T) {
	model := &PatchedModel{Segment: func(vol *models.Volume) (*models.LabelVolume, error) {
		return nil, fmt.Errorf("model unavailable")
	}}
	if _, err := model.Infer(models.NewVolume(1, 8, 8), 4); err == nil {
		t.Fatal("Expected the segmentation error to propagate, got nil")
	}
}

func TestThresholdModel(t *testing.T) {
	vol := models.NewVolume(1, 2, 2)
	vol.Data = []float64{100, 90, 70, 10}

	model := &ThresholdModel{Anterior: 0.6, Posterior: 0.85}
	label, err := model.Segment(vol)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	want := []uint8{2, 2, 1, 0}
	for i, l := range label.Data {
		if l != want[i] {
			t.Errorf("Voxel %d: got label %d, want %d", i, l, want[i])
		}
	}
}

func TestThresholdModelZeroVolume(t *testing.T) {
	model := &ThresholdModel{Anterior: 0.6, Posterior: 0.85}
	label, err := model.Segment(models.NewVolume(2, 4, 4))
	if err != nil {
		t.Fatalf("Segment failed on an all-zero volume: %v", err)
	}
	for i, l := range label.Data {
		if l != 0 {
			t.Fatalf("Voxel %d labeled %d in an all-zero volume", i, l)
		}
	}
}

func TestThresholdModelBadThresholds(t *testing.T) {
	for _, model := range []*ThresholdModel{
		{Anterior: 0, Posterior: 0.85},
		{Anterior: 0.9, Posterior: 0.6},
		{Anterior: 0.6, Posterior: 0.6},
	} {
		if _, err := model.Segment(models.NewVolume(1, 4, 4)); err == nil {
			t.Errorf("Expected an error for thresholds %v/%v, got nil", model.Anterior, model.Posterior)
		}
	}
}
