package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrissnell/motionsync/internal/capture"
	"github.com/chrissnell/motionsync/internal/log"
	"github.com/chrissnell/motionsync/pkg/config"
	"github.com/dustin/go-humanize"
)

func main() {
	var (
		cfgFile    = flag.String("config", "", "Path to the motionsync YAML configuration file (optional)")
		inFile     = flag.String("in", "", "Path to the source capture file (required)")
		outFile    = flag.String("out", "", "Path to the converted capture file (required)")
		format     = flag.String("format", "", "Target container: 'msgpack' or 'sqlite' (default: from the -out extension)")
		rightLabel = flag.String("right-label", "", "Extra right-side marker used to check legacy captures")
		force      = flag.Bool("force", false, "Overwrite an existing output file")
		dryRun     = flag.Bool("dry-run", false, "Check the source and show what would be done without writing")
	)
	flag.Parse()

	if *inFile == "" || (*outFile == "" && !*dryRun) {
		fmt.Fprintf(os.Stderr, "Usage: %s -in <capture> -out <capture.db|capture.msgpack>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	capCfg, err := captureConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	kind, err := targetKind(*format, *outFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(*outFile); err == nil && !*force && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: output file already exists: %s\n", *outFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	ctx := context.Background()

	fmt.Printf("Converting sensor capture...\n")
	fmt.Printf("  Source: %s\n", *inFile)
	fmt.Printf("  Target: %s (%s)\n", *outFile, kind)

	// Open through the stream reader first so a capture that the shell
	// could not use is never converted.
	reader := capture.NewReader(capCfg.RightMarkers, log.GetSugaredLogger())
	session, err := reader.Open(ctx, *inFile, *rightLabel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading capture: %v\n", err)
		os.Exit(1)
	}
	printSummary(session)

	if *dryRun {
		fmt.Println("DRY RUN complete - nothing written")
		return
	}

	doc, srcKind, err := capture.ReadDocument(ctx, *inFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading capture: %v\n", err)
		os.Exit(1)
	}
	if srcKind == kind {
		fmt.Printf("  Source is already %s, rewriting\n", kind)
	}

	if dir := filepath.Dir(*outFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
	}
	if err := capture.WriteDocument(ctx, *outFile, kind, doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing capture: %v\n", err)
		os.Exit(1)
	}

	if fi, err := os.Stat(*outFile); err == nil {
		fmt.Printf("Conversion completed successfully! Wrote %s\n", humanize.Bytes(uint64(fi.Size())))
	} else {
		fmt.Printf("Conversion completed successfully!\n")
	}
}

// captureConfig returns the capture section of cfgFile, or the defaults
// when no file is given, so legacy captures are checked with the same
// markers the shell uses.
func captureConfig(cfgFile string) (*config.CaptureData, error) {
	if cfgFile == "" {
		return &config.DefaultConfig().Capture, nil
	}
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider = config.NewYAMLProvider(filename)
	defer provider.Close()
	return provider.GetCaptureConfig()
}

func targetKind(format, outFile string) (capture.ContainerKind, error) {
	if format != "" {
		return capture.ParseContainerKind(format)
	}
	switch strings.ToLower(filepath.Ext(outFile)) {
	case ".db", ".sqlite", ".sqlite3":
		return capture.ContainerSQLite, nil
	case ".msgpack", ".mpk", "":
		return capture.ContainerMsgpack, nil
	}
	return "", fmt.Errorf("cannot infer a container from %q, pass -format", outFile)
}

func printSummary(session *capture.Session) {
	sum := session.Summary()
	fmt.Printf("\nCapture Summary:\n")
	fmt.Printf("  Container:  %s\n", session.Container)
	fmt.Printf("  Convention: %s\n", session.Convention)
	fmt.Printf("  Labels:     %s\n", strings.Join(session.Labels(), ", "))
	fmt.Printf("  Samples:    %s per label\n", humanize.Comma(int64(sum.Samples)))
	fmt.Printf("  Duration:   %s at %s Hz\n", sum.Duration.Round(time.Millisecond), humanize.FtoaWithDigits(sum.SampleRate, 2))
	fmt.Printf("  Start:      %s UTC\n\n", sum.Start.Format("2006-01-02 15:04:05.000"))
}
