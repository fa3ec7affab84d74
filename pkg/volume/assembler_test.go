package volume

import (
	"errors"
	"reflect"
	"testing"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
)

// makeRecord creates an in-memory slice record with a deterministic pixel
// pattern derived from the instance number.
func makeRecord(instance, rows, cols int) *models.SliceRecord {
	pixels := make([]float64, rows*cols)
	for i := range pixels {
		pixels[i] = float64(instance*1000 + i)
	}
	return &models.SliceRecord{
		InstanceNumber:    instance,
		SeriesInstanceUID: "1.2.3.4",
		SOPInstanceUID:    "1.2.3.4.5",
		PatientID:         "PT0001",
		Rows:              rows,
		Cols:              cols,
		Pixels:            pixels,
	}
}

func TestAssembleEmpty(t *testing.T) {
	if _, _, err := Assemble(nil); err == nil {
		t.Fatal("Expected an error for an empty record set, got nil")
	}
}

// TestAssembleNormalization checks the in-plane reorientation on a small
// asymmetric slice: both axes flipped, then transposed.
func TestAssembleNormalization(t *testing.T) {
	// 2 rows x 3 cols:
	//   1 2 3
	//   4 5 6
	rec := makeRecord(1, 2, 3)
	rec.Pixels = []float64{1, 2, 3, 4, 5, 6}

	vol, _, err := Assemble([]*models.SliceRecord{rec})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if vol.Slices != 1 || vol.Rows != 3 || vol.Cols != 2 {
		t.Fatalf("Wrong volume shape: got %dx%dx%d, want 1x3x2", vol.Slices, vol.Rows, vol.Cols)
	}

	// Flipping both axes gives
	//   6 5 4
	//   3 2 1
	// and the transpose of that is
	//   6 3
	//   5 2
	//   4 1
	want := []float64{6, 3, 5, 2, 4, 1}
	if !reflect.DeepEqual(vol.Data, want) {
		t.Errorf("Wrong normalized plane: got %v, want %v", vol.Data, want)
	}
}

// TestAssembleOrderInvariance feeds the same records in several enumeration
// orders and requires bit-identical output volumes.
func TestAssembleOrderInvariance(t *testing.T) {
	build := func(order []int) []*models.SliceRecord {
		records := make([]*models.SliceRecord, 0, len(order))
		for _, instance := range order {
			records = append(records, makeRecord(instance, 4, 4))
		}
		return records
	}

	ref, _, err := Assemble(build([]int{1, 2, 3, 4, 5}))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	for _, order := range [][]int{
		{5, 4, 3, 2, 1},
		{3, 1, 5, 2, 4},
		{2, 5, 1, 4, 3},
	} {
		vol, _, err := Assemble(build(order))
		if err != nil {
			t.Fatalf("Assemble failed for order %v: %v", order, err)
		}
		if !reflect.DeepEqual(vol.Data, ref.Data) {
			t.Errorf("Volume differs for enumeration order %v", order)
		}
	}
}

// TestAssembleStacking checks that slices land at the depth given by their
// sorted instance order, not their enumeration order.
func TestAssembleStacking(t *testing.T) {
	records := []*models.SliceRecord{
		makeRecord(3, 4, 4),
		makeRecord(1, 4, 4),
		makeRecord(2, 4, 4),
	}

	vol, _, err := Assemble(records)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	for depth, instance := range []int{1, 2, 3} {
		// Source pixel (rows-1, cols-1) maps to normalized (0, 0).
		got := vol.At(depth, 0, 0)
		want := float64(instance*1000 + 4*4 - 1)
		if got != want {
			t.Errorf("Slice at depth %d: got corner %v, want %v (instance %d)", depth, got, want, instance)
		}
	}
}

func TestAssembleShapeMismatch(t *testing.T) {
	records := []*models.SliceRecord{
		makeRecord(1, 4, 4),
		makeRecord(2, 4, 6),
	}

	_, _, err := Assemble(records)
	if err == nil {
		t.Fatal("Expected a shape mismatch error, got nil")
	}

	var mismatch *ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected *ShapeMismatchError, got %T: %v", err, err)
	}
	if mismatch.WantRows != 4 || mismatch.WantCols != 4 || mismatch.GotRows != 4 || mismatch.GotCols != 6 {
		t.Errorf("Wrong mismatch dimensions: %+v", mismatch)
	}
	if mismatch.Instance != 2 {
		t.Errorf("Wrong offending instance: got %d, want 2", mismatch.Instance)
	}
}

// TestAssembleHeader checks that the header derives from the first slice by
// sort order and never carries pixel data.
func TestAssembleHeader(t *testing.T) {
	first := makeRecord(1, 4, 4)
	first.StudyDescription = "MR Brain wo contrast"
	first.SeriesDescription = "HippoCrop"
	records := []*models.SliceRecord{makeRecord(2, 4, 4), first}

	_, hdr, err := Assemble(records)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if hdr.StudyDescription != "MR Brain wo contrast" {
		t.Errorf("Wrong header study description: %q", hdr.StudyDescription)
	}
	if hdr.SeriesDescription != "HippoCrop" {
		t.Errorf("Wrong header series description: %q", hdr.SeriesDescription)
	}
}
