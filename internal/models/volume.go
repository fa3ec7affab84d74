package models

// Volume represents a 3D anatomical volume assembled from 2D slices.
// Voxels are stored as a 1D array in (axial, row, column) order, the same
// row-major convention used throughout the pipeline.
type Volume struct {
	// Data is the voxel data; index = axial*Rows*Cols + row*Cols + col
	Data []float64

	// Slices is the axial extent (equal to the number of input slices)
	Slices int

	// Rows and Cols are the in-plane extents shared by every slice
	Rows int
	Cols int
}

// NewVolume allocates a zeroed volume with the given extents.
func NewVolume(slices, rows, cols int) *Volume {
	return &Volume{
		Data:   make([]float64, slices*rows*cols),
		Slices: slices,
		Rows:   rows,
		Cols:   cols,
	}
}

// At returns the voxel at the given axial, row and column position.
func (v *Volume) At(s, r, c int) float64 {
	return v.Data[s*v.Rows*v.Cols+r*v.Cols+c]
}

// AxialSlice returns the in-plane pixel matrix of one axial plane as a
// row-major array of length Rows*Cols. The returned slice aliases Data.
func (v *Volume) AxialSlice(s int) []float64 {
	plane := v.Rows * v.Cols
	return v.Data[s*plane : (s+1)*plane]
}

// LabelVolume is the output of segmentation inference. It has the same
// spatial extents as the volume it was derived from. Voxel values are drawn
// from a small closed label set where 0 always denotes background.
type LabelVolume struct {
	// Data holds one label per voxel in (axial, row, column) order
	Data []uint8

	Slices int
	Rows   int
	Cols   int
}

// NewLabelVolume allocates a background-only label volume with the given
// extents.
func NewLabelVolume(slices, rows, cols int) *LabelVolume {
	return &LabelVolume{
		Data:   make([]uint8, slices*rows*cols),
		Slices: slices,
		Rows:   rows,
		Cols:   cols,
	}
}

// At returns the label at the given axial, row and column position.
func (v *LabelVolume) At(s, r, c int) uint8 {
	return v.Data[s*v.Rows*v.Cols+r*v.Cols+c]
}

// AxialSlice returns the labels of one axial plane. The returned slice
// aliases Data.
func (v *LabelVolume) AxialSlice(s int) []uint8 {
	plane := v.Rows * v.Cols
	return v.Data[s*plane : (s+1)*plane]
}

// SameShape reports whether the label volume has exactly the extents of the
// given volume.
func (v *LabelVolume) SameShape(vol *Volume) bool {
	return v.Slices == vol.Slices && v.Rows == vol.Rows && v.Cols == vol.Cols
}
