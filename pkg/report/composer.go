// Package report renders the human-readable summary image for one inference
// run. The layout is a hard external contract: downstream viewers and
// archive previews depend on the canvas size, text offsets and thumbnail
// placement staying exactly as they are.
package report

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	xdraw "golang.org/x/image/draw"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/models"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/volumetrics"
)

// Layout constants. Coordinates are the top-left corner of each block.
const (
	// CanvasSize is the edge length of the square report canvas in pixels
	CanvasSize = 1000

	// ThumbSize is the edge length of each embedded thumbnail
	ThumbSize = 400

	titleX, titleY = 50, 50
	bodyX, bodyY   = 50, 140

	origThumbX, origThumbY = 50, 500
	predThumbX, predThumbY = 550, 500

	titleFontSize = 40
	bodyFontSize  = 20
)

// Title is the report heading rendered at the top of the canvas.
const Title = "HippoVolume.AI"

// Artifact is the rendered report image, consumed only by the Secondary
// Capture encoder.
type Artifact struct {
	img *image.RGBA
}

// Image returns the rendered canvas.
func (a *Artifact) Image() image.Image { return a.img }

// Width returns the canvas width in pixels.
func (a *Artifact) Width() int { return a.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (a *Artifact) Height() int { return a.img.Bounds().Dy() }

// RGBBytes returns the canvas pixels as raw interleaved RGB bytes in
// row-major order, the encoding the Secondary Capture object stores.
func (a *Artifact) RGBBytes() []byte {
	bounds := a.img.Bounds()
	out := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := a.img.PixOffset(x, y)
			out = append(out, a.img.Pix[i], a.img.Pix[i+1], a.img.Pix[i+2])
		}
	}
	return out
}

// Compose renders the fixed-layout report: title, metadata and volumetrics
// block, and two thumbnails built from the first axial slice of the original
// volume and of the predicted labels.
//
// Each thumbnail is normalized to the full intensity range of its own slice,
// so brightness is not comparable across reports generated from different
// source ranges.
func Compose(sum volumetrics.Summary, hdr *models.Header, vol *models.Volume, label *models.LabelVolume) (*Artifact, error) {
	if !label.SameShape(vol) {
		return nil, fmt.Errorf("label volume shape %dx%dx%d does not match volume %dx%dx%d",
			label.Slices, label.Rows, label.Cols, vol.Slices, vol.Rows, vol.Cols)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report font: %v", err)
	}
	titleFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: titleFontSize, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create title face: %v", err)
	}
	defer titleFace.Close()
	bodyFace, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: bodyFontSize, DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create body face: %v", err)
	}
	defer bodyFace.Close()

	drawText(canvas, titleFace, titleX, titleY, Title)

	firstSlice := vol.AxialSlice(0)
	lines := []string{
		fmt.Sprintf("Patient ID: %s", hdr.PatientID),
		fmt.Sprintf("Study Description: %s", hdr.StudyDescription),
		fmt.Sprintf("Series Description: %s", hdr.SeriesDescription),
		fmt.Sprintf("Modality: %s", hdr.Modality),
		fmt.Sprintf("Image Type: %s", hdr.ImageType),
		fmt.Sprintf("Anterior Volume: %d", sum.Anterior),
		fmt.Sprintf("Posterior Volume: %d", sum.Posterior),
		fmt.Sprintf("Total Volume: %d", sum.Total),
		fmt.Sprintf("Mean Slice Intensity: %.1f", stat.Mean(firstSlice, nil)),
	}
	lineHeight := bodyFace.Metrics().Height.Ceil()
	for i, line := range lines {
		drawText(canvas, bodyFace, bodyX, bodyY+i*lineHeight, line)
	}

	orig := grayscale(firstSlice, vol.Rows, vol.Cols)
	placeThumb(canvas, orig, origThumbX, origThumbY)

	predSlice := label.AxialSlice(0)
	predFloat := make([]float64, len(predSlice))
	for i, v := range predSlice {
		predFloat[i] = float64(v)
	}
	pred := grayscale(predFloat, label.Rows, label.Cols)
	placeThumb(canvas, pred, predThumbX, predThumbY)

	return &Artifact{img: canvas}, nil
}

// drawText renders one line with the given face; x, y name the top-left
// corner of the text block.
func drawText(dst *image.RGBA, face font.Face, x, y int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// grayscale converts one in-plane slice to an 8-bit grayscale image
// normalized to the slice's own maximum. A zero-valued slice stays a defined
// blank image rather than tripping a division fault.
func grayscale(data []float64, rows, cols int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	max := floats.Max(data)
	if max == 0 {
		return img
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.Pix[r*img.Stride+c] = uint8(data[r*cols+c] / max * 0xff)
		}
	}
	return img
}

// placeThumb scales the slice image to the thumbnail size and places it at
// the fixed canvas position.
func placeThumb(canvas *image.RGBA, src *image.Gray, x, y int) {
	rect := image.Rect(x, y, x+ThumbSize, y+ThumbSize)
	xdraw.NearestNeighbor.Scale(canvas, rect, src, src.Bounds(), xdraw.Src, nil)
}
