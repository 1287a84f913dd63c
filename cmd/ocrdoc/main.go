// Command ocrdoc is the Stage 1 reference collaborator: it shells out to
// the tesseract CLI per page image, parses the TSV word rows into tokens,
// and writes the document-level OCR artifact. It performs no correction,
// no merging, and no semantic filtering.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/grouplog"
	"github.com/engdraw/groupdoc/internal/manifest"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ocrdoc", flag.ContinueOnError)

	manifestPath := fs.String("manifest", "", "normalization manifest path (required)")
	outPath := fs.String("out", "", "output OCR artifact path (required)")
	outRoot := fs.String("out-root", "", "root directory manifest image refs are relative to; defaults to the manifest's directory parent")
	lang := fs.String("lang", "eng", "tesseract language")
	psm := fs.Int("psm", 3, "tesseract page segmentation mode")
	logLevel := fs.String("log-level", "info", "debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *manifestPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "ocrdoc: --manifest and --out are required")
		fs.Usage()
		return 2
	}

	level, err := grouplog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ocrdoc: %v\n", err)
		return 2
	}
	logger, err := grouplog.New(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ocrdoc: %v\n", err)
		return 2
	}
	logger = logger.With("module", "ocrdoc")

	m, err := manifest.Read(*manifestPath)
	if err != nil {
		logger.Error("cannot read manifest", slog.String("err", err.Error()))
		return 3
	}

	root := *outRoot
	if root == "" {
		root = filepath.Dir(filepath.Dir(*manifestPath))
	}

	doc := ocrmodel.Document{DocID: m.DocID}
	for _, page := range m.Pages {
		imgPath := page.ImageRef
		if !filepath.IsAbs(imgPath) {
			imgPath = filepath.Join(root, imgPath)
		}

		result, err := ocrPage(page.PageNum, page.ImageRef, imgPath, *lang, *psm)
		if err != nil {
			logger.Error("ocr failed", slog.Int("page_num", page.PageNum), slog.String("err", err.Error()))
			return 1
		}
		logger.Info("page ocr complete",
			slog.Int("page_num", page.PageNum),
			slog.Int("tokens", len(result.Tokens)))
		doc.Pages = append(doc.Pages, result)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.Error("cannot encode ocr artifact", slog.String("err", err.Error()))
		return 1
	}
	if err := os.WriteFile(*outPath, append(data, '\n'), 0o644); err != nil {
		logger.Error("cannot write ocr artifact", slog.String("err", err.Error()))
		return 4
	}

	logger.Info("ocr complete", slog.String("doc_id", doc.DocID), slog.Int("pages", len(doc.Pages)))
	return 0
}

// ocrPage runs tesseract on one page image and parses the TSV output.
func ocrPage(pageNum int, imageRef, imagePath, lang string, psm int) (ocrmodel.Page, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return ocrmodel.Page{}, fmt.Errorf("page image %s: %w", imagePath, err)
	}

	cmd := exec.Command("tesseract", imagePath, "stdout", "-l", lang, "--psm", strconv.Itoa(psm), "tsv")
	out, err := cmd.Output()
	if err != nil {
		return ocrmodel.Page{}, fmt.Errorf("tesseract on %s: %w", imagePath, err)
	}

	page := ocrmodel.Page{PageNum: pageNum, ImageRef: imageRef}
	idx := 0
	for i, row := range strings.Split(string(out), "\n") {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}

		level, err := strconv.Atoi(cols[0])
		if err != nil {
			continue
		}
		left, err1 := strconv.Atoi(cols[6])
		top, err2 := strconv.Atoi(cols[7])
		width, err3 := strconv.Atoi(cols[8])
		height, err4 := strconv.Atoi(cols[9])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		// Level 1 is the whole page; it carries the image dimensions.
		if level == 1 {
			page.ImageWidth = width
			page.ImageHeight = height
			continue
		}
		// Word-level rows only; levels 2-4 are block/para/line containers.
		if level != 5 {
			continue
		}

		text := cols[11]
		if text == "" {
			continue
		}

		var rawConf *float64
		var conf *float64
		if v, err := strconv.ParseFloat(cols[10], 64); err == nil {
			rawConf = &v
			if v >= 0 {
				normalized := v / 100.0
				if normalized > 1 {
					normalized = 1
				}
				conf = &normalized
			}
		}

		page.Tokens = append(page.Tokens, ocrmodel.Token{
			TokenID:       fmt.Sprintf("p%03d_t%06d", pageNum, idx),
			PageNum:       pageNum,
			Text:          text,
			BBox:          geom.BBox{X0: left, Y0: top, X1: left + width, Y1: top + height},
			Confidence:    conf,
			RawConfidence: rawConf,
		})
		idx++
	}

	return page, nil
}
