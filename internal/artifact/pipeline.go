// Package artifact runs the full Stage 2 pipeline for a validated OCR
// document and assembles the grouping artifact: per-page sanitize, line
// and block building, optional region labeling and cell candidates, then
// meta construction, invariant checking, and canonical serialization.
package artifact

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/engdraw/groupdoc/config"
	"github.com/engdraw/groupdoc/internal/blocks"
	"github.com/engdraw/groupdoc/internal/cells"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/lines"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
	"github.com/engdraw/groupdoc/internal/regions"
	"github.com/engdraw/groupdoc/internal/tokenize"
)

// GroupingVersion is recorded in meta.grouping_version of every artifact.
const GroupingVersion = "grouping_v1"

// PageResult is one page's grouping output plus the audit bookkeeping the
// document assembler folds into meta.
type PageResult struct {
	Page            groupmodel.Page
	Dropped         []groupmodel.DroppedToken
	Warnings        []string
	NTokensIn       int
	NTokensRetained int
	Thresholds      groupmodel.PageThresholds
	HasTokens       bool
}

// BuildPage runs sanitize, line building, block building, and the
// optional region/cell stages for a single page. Pure function of the
// page and the config; pages never share state, which is what makes the
// parallel path in Run safe.
func BuildPage(page ocrmodel.Page, cfg config.GroupingConfig) PageResult {
	sanitized := tokenize.Sanitize(page.Tokens, cfg)

	lineDetector := lines.NewDetector(lines.Config{
		LineYOverlapThreshold: cfg.LineYOverlapThreshold,
		LineYCenterK:          cfg.LineYCenterK,
		MinLineYTolPx:         cfg.MinLineYTolPx,
	})
	lineRes := lineDetector.Detect(page.PageNum, sanitized.Retained)

	blockDetector := blocks.NewDetector(blocks.Config{
		BlockYGapK:             cfg.BlockYGapK,
		MinBlockGapPx:          cfg.MinBlockGapPx,
		BlockXOverlapThreshold: cfg.BlockXOverlapThreshold,
	})
	blockRes := blockDetector.Detect(page.PageNum, lineRes.Lines, lineRes.MedianTokenHeight)

	out := groupmodel.Page{
		PageNum: page.PageNum,
		Lines:   lineRes.Lines,
		Blocks:  blockRes.Blocks,
	}

	if cfg.RegionsEnabled {
		regionList := regions.NewDetector().Detect(page.PageNum, blockRes.Blocks, page.ImageWidth, page.ImageHeight)
		out.Regions = &regionList
	}

	if cfg.CellCandidatesEnabled {
		linesByID := make(map[string]groupmodel.Line, len(lineRes.Lines))
		for _, l := range lineRes.Lines {
			linesByID[l.LineID] = l
		}
		cellDetector := cells.NewDetector(cells.DefaultConfig())
		candidates := []groupmodel.CellCandidate{}
		for _, b := range blockRes.Blocks {
			blockLines := make([]groupmodel.Line, 0, len(b.LineIDs))
			for _, lid := range b.LineIDs {
				blockLines = append(blockLines, linesByID[lid])
			}
			candidates = append(candidates, cellDetector.Detect(page.PageNum, blockLines, sanitized.Retained)...)
		}
		candidates = cells.MintIDs(page.PageNum, candidates)
		out.CellCandidates = &candidates
	}

	return PageResult{
		Page:            out,
		Dropped:         sanitized.Dropped,
		Warnings:        sanitized.Warnings,
		NTokensIn:       len(page.Tokens),
		NTokensRetained: len(sanitized.Retained),
		HasTokens:       len(sanitized.Retained) > 0,
		Thresholds: groupmodel.PageThresholds{
			PageNum:              page.PageNum,
			MedianTokenHeight:    lineRes.MedianTokenHeight,
			LineYThresholdPx:     lineRes.LineYThresholdPx,
			BlockYGapThresholdPx: blockRes.BlockYGapThresholdPx,
		},
	}
}

// Run validates the OCR document, builds every page, and assembles the
// grouping artifact. Pages are processed by a bounded worker pool writing
// into a pre-sized results slice at their own index, so the merged output
// is identical whether workers is 1 or many. workers <= 0 means one
// worker per CPU.
func Run(ctx context.Context, ocr ocrmodel.Document, cfg config.GroupingConfig, workers int) (groupmodel.Document, error) {
	if err := cfg.Validate(); err != nil {
		return groupmodel.Document{}, err
	}
	if err := ValidateInput(ocr); err != nil {
		return groupmodel.Document{}, err
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]PageResult, len(ocr.Pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ocr.Pages {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = BuildPage(ocr.Pages[i], cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return groupmodel.Document{}, err
	}

	doc := assemble(ocr.DocID, results, cfg)
	if err := CheckInvariants(doc, ocr); err != nil {
		return groupmodel.Document{}, err
	}
	return doc, nil
}

// assemble folds per-page results, already in page order, into the final
// document with its meta section.
func assemble(docID string, results []PageResult, cfg config.GroupingConfig) groupmodel.Document {
	meta := groupmodel.Meta{
		GroupingVersion:     GroupingVersion,
		Config:              cfg.Snapshot(),
		DroppedTokens:       []groupmodel.DroppedToken{},
		Warnings:            []string{},
		EffectiveThresholds: []groupmodel.PageThresholds{},
	}

	pages := make([]groupmodel.Page, 0, len(results))
	for _, res := range results {
		pages = append(pages, res.Page)
		meta.NTokensIn += res.NTokensIn
		meta.NTokensRetained += res.NTokensRetained
		meta.NLines += len(res.Page.Lines)
		meta.NBlocks += len(res.Page.Blocks)
		if res.Page.Regions != nil {
			meta.NRegions += len(*res.Page.Regions)
		}
		meta.DroppedTokens = append(meta.DroppedTokens, res.Dropped...)
		meta.Warnings = append(meta.Warnings, res.Warnings...)
		if res.HasTokens {
			meta.EffectiveThresholds = append(meta.EffectiveThresholds, res.Thresholds)
		}
	}

	return groupmodel.Document{DocID: docID, Pages: pages, Meta: meta}
}
