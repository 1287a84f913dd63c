// Command groupdoc is Stage 2 of the drawing-extraction pipeline: it
// consumes an OCR artifact and writes the deterministic grouping
// artifact. No network, no subprocesses, no environment variables.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/engdraw/groupdoc/config"
	"github.com/engdraw/groupdoc/internal/artifact"
	"github.com/engdraw/groupdoc/internal/grouperr"
	"github.com/engdraw/groupdoc/internal/grouplog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("groupdoc", flag.ContinueOnError)

	inPath := fs.String("in", "", "path to the OCR artifact (required)")
	outPath := fs.String("out", "", "path for the grouping artifact (required)")

	confidenceFloor := fs.Float64("confidence-floor", 0.0, "drop tokens with confidence strictly below this")
	keepWhitespace := fs.Bool("keep-whitespace-tokens", false, "do not drop whitespace-only tokens")
	noBBoxRepair := fs.Bool("no-bbox-repair", false, "disable deterministic bbox endpoint repair")
	lineYTolK := fs.Float64("line-y-tol-k", 0.7, "line y threshold as a multiple of median token height")
	minLineYTolPx := fs.Int("min-line-y-tol-px", 2, "minimum line y threshold in pixels")
	lineYOverlap := fs.Float64("line-y-overlap-threshold", 0.5, "minimum y overlap ratio for joining a line")
	blockGapK := fs.Float64("block-gap-k", 1.5, "block gap threshold as a multiple of median token height")
	minBlockGapPx := fs.Int("min-block-gap-px", 2, "minimum block gap threshold in pixels")
	blockXOverlap := fs.Float64("block-x-overlap-threshold", 0.1, "minimum x overlap ratio for joining a block")
	noRegions := fs.Bool("no-regions", false, "disable the region labeler")
	enableCells := fs.Bool("enable-cell-candidates", false, "emit reserved cell candidates")
	omitText := fs.Bool("omit-text-fields", false, "omit joined text fields from doc-mode projections")
	workers := fs.Int("workers", 0, "page workers (0 = one per CPU); never changes output")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")
	logFile := fs.String("log-file", "", "optional JSON log file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "groupdoc: --in and --out are required")
		fs.Usage()
		return 2
	}

	level, err := grouplog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "groupdoc: %v\n", err)
		return 2
	}
	logger, err := grouplog.New(level, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "groupdoc: %v\n", err)
		return 2
	}
	logger = logger.With("module", "groupdoc")

	cfg := config.Default().
		WithConfidenceFloor(*confidenceFloor).
		WithKeepWhitespaceTokens(*keepWhitespace).
		WithBBoxRepair(!*noBBoxRepair).
		WithLineYCenterK(*lineYTolK).
		WithMinLineYTolPx(*minLineYTolPx).
		WithLineYOverlapThreshold(*lineYOverlap).
		WithBlockYGapK(*blockGapK).
		WithMinBlockGapPx(*minBlockGapPx).
		WithBlockXOverlapThreshold(*blockXOverlap).
		WithRegionsEnabled(!*noRegions).
		WithCellCandidatesEnabled(*enableCells).
		WithOmitTextFields(*omitText)

	start := time.Now()
	ocr, err := artifact.ReadInput(*inPath)
	if err != nil {
		return fatal(logger, err)
	}

	doc, err := artifact.Run(context.Background(), ocr, cfg, *workers)
	if err != nil {
		return fatal(logger, err)
	}

	if err := artifact.WriteCanonical(*outPath, doc); err != nil {
		return fatal(logger, err)
	}

	logger.Info("grouping complete",
		slog.String("doc_id", doc.DocID),
		slog.Int("pages", len(doc.Pages)),
		slog.Int("n_tokens_in", doc.Meta.NTokensIn),
		slog.Int("n_tokens_retained", doc.Meta.NTokensRetained),
		slog.Int("n_lines", doc.Meta.NLines),
		slog.Int("n_blocks", doc.Meta.NBlocks),
		slog.Int("n_regions", doc.Meta.NRegions),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return 0
}

// fatal emits the structured error as a single JSON object on stderr and
// returns the exit code for its kind.
func fatal(logger *slog.Logger, err error) int {
	var ge *grouperr.Error
	if !errors.As(err, &ge) {
		ge = grouperr.Wrap(grouperr.InternalInvariantViolated, "groupdoc", err.Error(), err)
	}

	logger.Error(ge.Message, slog.String("kind", ge.Kind.String()), slog.String("stage", ge.Stage))

	payload := struct {
		Kind      string   `json:"kind"`
		Message   string   `json:"message"`
		Offenders []string `json:"offenders,omitempty"`
		Stage     string   `json:"stage"`
	}{
		Kind:      ge.Kind.String(),
		Message:   ge.Message,
		Offenders: ge.Offenders,
		Stage:     ge.Stage,
	}
	if data, merr := json.Marshal(payload); merr == nil {
		fmt.Fprintln(os.Stderr, string(data))
	}
	return ge.Kind.ExitCode()
}
