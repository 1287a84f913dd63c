// Command normalizedoc is the Stage 0 reference collaborator: it shells
// out to pdftoppm to rasterize a PDF into page images and writes the
// normalization manifest. Rasterization itself stays external; no pixel
// data is decoded here.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/engdraw/groupdoc/internal/grouplog"
	"github.com/engdraw/groupdoc/internal/manifest"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("normalizedoc", flag.ContinueOnError)

	pdfPath := fs.String("pdf", "", "source PDF path (required)")
	dataRoot := fs.String("data-root", "", "root directory the PDF path is relative to (required)")
	outRoot := fs.String("out-root", "", "output root directory (required)")
	dpi := fs.Int("dpi", 300, "rasterization DPI")
	docID := fs.String("doc-id", "", "document id; minted when empty")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *pdfPath == "" || *dataRoot == "" || *outRoot == "" {
		fmt.Fprintln(os.Stderr, "normalizedoc: --pdf, --data-root and --out-root are required")
		fs.Usage()
		return 2
	}
	if *dpi <= 0 {
		fmt.Fprintln(os.Stderr, "normalizedoc: --dpi must be positive")
		return 2
	}

	level, err := grouplog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "normalizedoc: %v\n", err)
		return 2
	}
	logger, err := grouplog.New(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "normalizedoc: %v\n", err)
		return 2
	}
	logger = logger.With("module", "normalizedoc")

	source := *pdfPath
	if !filepath.IsAbs(source) {
		source = filepath.Join(*dataRoot, source)
	}
	if _, err := os.Stat(source); err != nil {
		logger.Error("source pdf not found", slog.String("path", source))
		return 3
	}

	id := *docID
	if id == "" {
		id = uuid.NewString()
	}

	docDir := filepath.Join(*outRoot, id)
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		logger.Error("cannot create output directory", slog.String("path", docDir), slog.String("err", err.Error()))
		return 4
	}

	prefix := filepath.Join(docDir, "page")
	cmd := exec.Command("pdftoppm", "-png", "-r", fmt.Sprint(*dpi), source, prefix)
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Error("pdftoppm failed", slog.String("err", err.Error()), slog.String("output", strings.TrimSpace(string(out))))
		return 1
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(images) == 0 {
		logger.Error("pdftoppm produced no page images", slog.String("dir", docDir))
		return 1
	}
	sort.Strings(images)

	m := manifest.Manifest{
		DocID:     id,
		SourcePDF: *pdfPath,
		Rendering: manifest.Rendering{Engine: "pdftoppm", DPI: *dpi, ColorMode: "rgb"},
	}
	for i, img := range images {
		rel, err := filepath.Rel(*outRoot, img)
		if err != nil {
			rel = img
		}
		m.Pages = append(m.Pages, manifest.Page{PageNum: i + 1, ImageRef: rel})
	}

	manifestPath := filepath.Join(docDir, "manifest.json")
	if err := manifest.Write(manifestPath, m); err != nil {
		logger.Error("cannot write manifest", slog.String("err", err.Error()))
		return 4
	}

	logger.Info("normalization complete",
		slog.String("doc_id", id),
		slog.Int("pages", len(m.Pages)),
		slog.String("manifest", manifestPath))
	return 0
}
