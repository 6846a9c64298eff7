// Command silhouette-verify checks a photograph against a reference render
// from the command line.
//
// Exit status is 0 on a match, 1 on a mismatch or unverified result, and 2 on
// error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/ironsheep/silhouette-mcp/internal/capture"
	"github.com/ironsheep/silhouette-mcp/internal/config"
	"github.com/ironsheep/silhouette-mcp/internal/container"
	"github.com/ironsheep/silhouette-mcp/internal/imaging"
	"github.com/ironsheep/silhouette-mcp/internal/logger"
	"github.com/ironsheep/silhouette-mcp/internal/verify"
)

const (
	exitMatch    = 0
	exitMismatch = 1
	exitError    = 2
)

type options struct {
	photo     string
	reference string
	overlay   string
	threshold float64
	json      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("silhouette-verify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.photo, "photo", "", "photograph of the part (required)")
	fs.StringVar(&opts.reference, "reference", "", "reference render; overrides SILHOUETTE_REFERENCE_IMAGE and the capture command")
	fs.StringVar(&opts.overlay, "overlay", "", "write the annotated photograph to this file")
	fs.Float64Var(&opts.threshold, "threshold", 0, "match threshold; defaults to SILHOUETTE_MATCH_THRESHOLD")
	fs.BoolVar(&opts.json, "json", false, "print the report as JSON (default when stdout is not a terminal)")

	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if opts.photo == "" {
		fmt.Fprintln(stderr, "silhouette-verify: -photo is required")
		fs.Usage()
		return exitError
	}
	if f, ok := stdout.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		opts.json = true
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitError
	}
	log, err := logger.New(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger error: %v\n", err)
		return exitError
	}

	c, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize")
		return exitError
	}

	svc := c.Service.WithThreshold(opts.threshold)
	if opts.reference != "" {
		svc = svc.WithCapturer(capture.NewFileCapture(opts.reference))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := svc.Verify(ctx, opts.photo)
	if err != nil {
		log.WithError(err).Error("verification failed")
		return exitError
	}

	if opts.overlay != "" && report.Overlay != nil {
		if err := imaging.Save(report.Overlay, opts.overlay); err != nil {
			log.WithError(err).Error("failed to write overlay")
			return exitError
		}
	}

	if err := printReport(stdout, report, opts.json); err != nil {
		log.WithError(err).Error("failed to print report")
		return exitError
	}

	if report.Match {
		return exitMatch
	}
	return exitMismatch
}

func printReport(w io.Writer, report *verify.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err := fmt.Fprintln(w, report.Summary())
	return err
}
