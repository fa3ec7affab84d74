// Package pipeline orchestrates one end-to-end run: load the eligible
// series, assemble the volume, run inference, measure, compose the report,
// encode it as a Secondary Capture object and submit it to the archive.
// The pipeline is strictly sequential; each stage completes fully before
// the next begins, and artifacts have a single owner at any time.
package pipeline

import (
	"fmt"
	"time"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/logging"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/archive"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/inference"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/report"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/secondarycapture"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/study"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/volume"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/volumetrics"
)

// Params holds the configuration of one pipeline run.
type Params struct {
	// StudyDir is the routed study directory to process
	StudyDir string

	// OutputPath is where the Secondary Capture report is written
	OutputPath string

	// PatchSize is the in-plane patch grid handed to the model
	PatchSize int
}

// Runner drives the pipeline stages over one study.
type Runner struct {
	params    *Params
	model     inference.Model
	submitter archive.Submitter
	log       *logging.Logger

	// now stamps the encoded object; replaced in tests
	now func() time.Time
}

// NewRunner creates a pipeline runner.
func NewRunner(params *Params, model inference.Model, submitter archive.Submitter, log *logging.Logger) *Runner {
	return &Runner{
		params:    params,
		model:     model,
		submitter: submitter,
		log:       log,
		now:       time.Now,
	}
}

// Run processes the study end to end. A nil return with no output file
// means no eligible series was found. Loader and assembler failures abort
// the run before any output artifact exists; submission and cleanup
// failures are reported but never escalate.
func (r *Runner) Run() error {
	r.log.Info("Step 1: Loading eligible series", "study", r.params.StudyDir)
	records, err := study.Load(r.params.StudyDir)
	if err != nil {
		return fmt.Errorf("failed to load series: %v", err)
	}
	if len(records) == 0 {
		r.log.Info("no eligible series found, nothing to do")
		return nil
	}
	r.log.Info("found series", "slices", len(records), "series", records[0].SeriesInstanceUID)

	r.log.Info("Step 2: Assembling volume")
	vol, hdr, err := volume.Assemble(records)
	if err != nil {
		return fmt.Errorf("failed to assemble volume: %v", err)
	}
	r.log.Info("assembled volume", "slices", vol.Slices, "rows", vol.Rows, "cols", vol.Cols)

	r.log.Info("Step 3: Running inference", "patchSize", r.params.PatchSize)
	label, err := r.model.Infer(vol, r.params.PatchSize)
	if err != nil {
		return fmt.Errorf("failed to run inference: %v", err)
	}
	if !label.SameShape(vol) {
		return fmt.Errorf("inference broke the shape contract: got %dx%dx%d, want %dx%dx%d",
			label.Slices, label.Rows, label.Cols, vol.Slices, vol.Rows, vol.Cols)
	}

	r.log.Info("Step 4: Measuring volumetrics")
	sum := volumetrics.Measure(label)
	r.log.Info("volumetrics", "anterior", sum.Anterior, "posterior", sum.Posterior, "total", sum.Total)

	r.log.Info("Step 5: Composing report")
	art, err := report.Compose(sum, hdr, vol, label)
	if err != nil {
		return fmt.Errorf("failed to compose report: %v", err)
	}

	r.log.Info("Step 6: Encoding Secondary Capture object", "output", r.params.OutputPath)
	obj, err := secondarycapture.Encode(hdr, art, r.now())
	if err != nil {
		return fmt.Errorf("failed to encode report: %v", err)
	}
	if err := obj.WriteFile(r.params.OutputPath); err != nil {
		return fmt.Errorf("failed to write report: %v", err)
	}

	// Transmission is fire-and-forget: a failed invocation is reported on
	// the same channel as progress but does not fail the run, and remote
	// acceptance is never verified here.
	r.log.Info("Step 7: Submitting to archive")
	if err := r.submitter.Submit(r.params.OutputPath); err != nil {
		r.log.Warn("archive submission failed", "error", err)
	}
	if errs := r.submitter.Cleanup(r.params.StudyDir); len(errs) > 0 {
		r.log.Warn("cleanup finished with failures", "failed", len(errs))
	}

	r.log.Info("inference successful",
		"sourceInstance", hdr.SOPInstanceUID,
		"reportInstance", obj.SOPInstanceUID(),
		"anterior", sum.Anterior, "posterior", sum.Posterior, "total", sum.Total)
	return nil
}
