package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/internal/logging"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/archive"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/config"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/inference"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/pipeline"
	"github.com/usamnet000/Hippocampal-Volume-Quantification-in-Alzheimer-s-Progression/pkg/study"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <routing-folder>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Processes the most recently routed study under <routing-folder>.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Validate inputs
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	routingDir := flag.Arg(0)

	// Environment overrides may live in a local .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("HIPPOCAMPAL VOLUME QUANTIFICATION")
	fmt.Println("Automated hippocampus segmentation and volumetry from routed MRI studies")
	fmt.Println("================================")

	// The routing folder accumulates studies over time; only the most
	// recently received one is processed per invocation.
	studyDir, err := study.FindLatestStudyDir(routingDir)
	if err != nil {
		log.Fatalf("Failed to scan routing folder: %v", err)
	}
	if studyDir == "" {
		fmt.Printf("No study directories found under %s, nothing to do\n", routingDir)
		return
	}
	fmt.Printf("Processing study: %s\n", studyDir)

	logger := logging.NewLogger("hippovolume")

	model := &inference.PatchedModel{
		Segment: (&inference.ThresholdModel{
			Anterior:  cfg.Inference.AnteriorThreshold,
			Posterior: cfg.Inference.PosteriorThreshold,
		}).Segment,
	}

	submitter := archive.NewStoreSCU(archive.Destination{
		Host:    cfg.Archive.Host,
		Port:    cfg.Archive.Port,
		AETitle: cfg.Archive.AETitle,
	}, time.Duration(cfg.Archive.GraceSeconds*float64(time.Second)), logger)

	params := &pipeline.Params{
		StudyDir:   studyDir,
		OutputPath: cfg.Output.ReportPath,
		PatchSize:  cfg.Inference.PatchSize,
	}

	runner := pipeline.NewRunner(params, model, submitter, logger)

	startTime := time.Now()
	if err := runner.Run(); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	fmt.Printf("\nPipeline completed in %.2f seconds\n", time.Since(startTime).Seconds())
}
