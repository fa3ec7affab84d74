// Package archive hands the finished Secondary Capture object to the
// clinical archive and cleans up the processed study afterwards. The
// transmission itself is an opaque external command; this package is the
// narrow collaborator interface around it so the pipeline can be exercised
// without spawning processes.
package archive

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/logging"
)

// Destination identifies the archive endpoint.
type Destination struct {
	// Host and Port locate the archive's DICOM listener
	Host string
	Port int

	// AETitle is the called application entity title
	AETitle string
}

// Submitter transmits a serialized object and cleans up its source study.
type Submitter interface {
	// Submit pushes the object file to the archive. Remote acceptance is
	// never verified; a non-nil error only reports that the local
	// invocation failed.
	Submit(path string) error

	// Cleanup waits out the grace interval and then deletes the study
	// directory. Per-entry failures are returned (and logged) but are
	// not fatal: partial cleanup is an acceptable terminal state.
	Cleanup(dir string) []error
}

// StoreSCU submits objects with the storescu command-line tool.
type StoreSCU struct {
	dest  Destination
	grace time.Duration
	log   *logging.Logger

	// run invokes the external command; replaced in tests
	run func(name string, args ...string) error

	// sleep waits out the grace interval; replaced in tests
	sleep func(time.Duration)
}

// NewStoreSCU creates a submitter for the given destination. The grace
// interval is the fixed wait between transmission and cleanup that gives
// the archive time to route the freshly received object.
func NewStoreSCU(dest Destination, grace time.Duration, log *logging.Logger) *StoreSCU {
	return &StoreSCU{
		dest:  dest,
		grace: grace,
		log:   log,
		run: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			return cmd.Run()
		},
		sleep: time.Sleep,
	}
}

// Submit invokes storescu with the fixed destination parameters and the
// object file path.
func (s *StoreSCU) Submit(path string) error {
	args := []string{
		s.dest.Host,
		strconv.Itoa(s.dest.Port),
		"-v",
		"-aec", s.dest.AETitle,
		path,
	}
	s.log.Info("submitting report to archive",
		"host", s.dest.Host, "port", s.dest.Port, "aet", s.dest.AETitle, "file", path)

	if err := s.run("storescu", args...); err != nil {
		return fmt.Errorf("storescu invocation failed: %v", err)
	}
	return nil
}

// Cleanup deletes the study directory after the grace interval. Every entry
// that cannot be removed is reported individually; the rest of the tree is
// still attempted.
func (s *StoreSCU) Cleanup(dir string) []error {
	s.sleep(s.grace)

	var errs []error
	var remove func(path string)
	remove = func(path string) {
		entries, err := os.ReadDir(path)
		if err == nil {
			for _, entry := range entries {
				remove(filepath.Join(path, entry.Name()))
			}
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to delete entry", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	remove(dir)

	return errs
}
