// Package cells implements the reserved cell/box candidate feature:
// geometry-only grouping of a block's tokens into column-aligned
// candidates spanning at least two lines. Disabled by default; scoring
// never gates line/block/region emission.
package cells

import (
	"fmt"
	"sort"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
	"github.com/tidwall/rtree"
)

// Config holds the column-alignment tolerance, in pixels, and the minimum
// number of lines a column must span.
type Config struct {
	// ColumnAlignTolerancePx is the maximum x0 drift between tokens still
	// considered part of the same column.
	ColumnAlignTolerancePx int
	// MinLinesPerCandidate is the minimum number of distinct lines a
	// column must span to be emitted as a candidate.
	MinLinesPerCandidate int
}

// DefaultConfig returns conservative defaults for the reserved feature.
func DefaultConfig() Config {
	return Config{ColumnAlignTolerancePx: 4, MinLinesPerCandidate: 2}
}

// Detector finds column-aligned cell candidates within a block.
type Detector struct {
	config Config
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{config: cfg}
}

// tokenByID is the minimal lookup the detector needs to resolve a line's
// token_ids back to their bboxes.
type tokenByID map[string]ocrmodel.Token

// Detect finds candidate cells in one block. lines are the block's member
// lines in reading order; allTokens is the page's retained token set, used
// to resolve each line's token_ids back to bboxes. Candidates come back
// without cell_ids; the page assembler mints contiguous per-page indices
// after concatenating all blocks' candidates.
func (d *Detector) Detect(pageNum int, lines []groupmodel.Line, allTokens []ocrmodel.Token) []groupmodel.CellCandidate {
	if len(lines) < d.config.MinLinesPerCandidate {
		return nil
	}

	byID := make(tokenByID, len(allTokens))
	for _, t := range allTokens {
		byID[t.TokenID] = t
	}

	var index rtree.RTreeG[ocrmodel.Token]
	for _, line := range lines {
		for _, tid := range line.TokenIDs {
			tok, ok := byID[tid]
			if !ok {
				continue
			}
			min := [2]float64{float64(tok.BBox.X0), float64(tok.BBox.Y0)}
			max := [2]float64{float64(tok.BBox.X1), float64(tok.BBox.Y1)}
			index.Insert(min, max, tok)
		}
	}

	lineByTokenID := make(map[string]string)
	for _, l := range lines {
		for _, tid := range l.TokenIDs {
			lineByTokenID[tid] = l.LineID
		}
	}

	columns := groupIntoColumns(lines, byID, d.config.ColumnAlignTolerancePx)

	var candidates []groupmodel.CellCandidate
	for _, col := range columns {
		linesSeen := make(map[string]bool)
		members := make(map[string]bool, len(col))
		for _, tid := range col {
			linesSeen[lineByTokenID[tid]] = true
			members[tid] = true
		}
		if len(linesSeen) < d.config.MinLinesPerCandidate {
			continue
		}

		boxes := make([]geom.BBox, 0, len(col))
		for _, tid := range col {
			boxes = append(boxes, byID[tid].BBox)
		}
		union := geom.UnionAll(boxes)

		// A real column stripe is clear of foreign tokens: reject the
		// candidate if any non-member token intersects its bbox.
		isolated := true
		index.Search(
			[2]float64{float64(union.X0), float64(union.Y0)},
			[2]float64{float64(union.X1), float64(union.Y1)},
			func(_, _ [2]float64, tok ocrmodel.Token) bool {
				if !members[tok.TokenID] {
					isolated = false
					return false
				}
				return true
			},
		)
		if !isolated {
			continue
		}

		sort.Strings(col)
		candidates = append(candidates, groupmodel.CellCandidate{
			PageNum:  pageNum,
			TokenIDs: col,
			BBox:     union,
			Score:    columnAlignmentScore(col, byID),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		return a.TokenIDs[0] < b.TokenIDs[0]
	})

	return candidates
}

// MintIDs sorts a page's concatenated candidates into canonical
// (y0, x0, first token_id) order and assigns contiguous cell_id indices.
func MintIDs(pageNum int, candidates []groupmodel.CellCandidate) []groupmodel.CellCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		return a.TokenIDs[0] < b.TokenIDs[0]
	})
	for i := range candidates {
		candidates[i].CellID = fmt.Sprintf("p%03d_c%06d", pageNum, i)
	}
	return candidates
}

// groupIntoColumns clusters tokens across lines by x0 proximity, within
// the configured tolerance, using a simple sort-and-sweep over x0 (the
// same sweep shape as the line/block builders, applied to the x axis).
func groupIntoColumns(lines []groupmodel.Line, byID tokenByID, tolerancePx int) [][]string {
	type entry struct {
		tokenID string
		x0      int
	}
	var entries []entry
	for _, line := range lines {
		for _, tid := range line.TokenIDs {
			tok, ok := byID[tid]
			if !ok {
				continue
			}
			entries = append(entries, entry{tokenID: tid, x0: tok.BBox.X0})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].x0 < entries[j].x0 })

	var columns [][]string
	var current []string
	currentX0 := 0
	for _, e := range entries {
		if len(current) == 0 {
			current = append(current, e.tokenID)
			currentX0 = e.x0
			continue
		}
		if e.x0-currentX0 <= tolerancePx {
			current = append(current, e.tokenID)
			continue
		}
		columns = append(columns, current)
		current = []string{e.tokenID}
		currentX0 = e.x0
	}
	if len(current) > 0 {
		columns = append(columns, current)
	}
	return columns
}

// columnAlignmentScore is a conservative confidence signal: 1.0 minus the
// normalized spread of x0 values in the column, clamped to [0,1].
func columnAlignmentScore(tokenIDs []string, byID tokenByID) float64 {
	if len(tokenIDs) == 0 {
		return 0
	}
	minX0, maxX0 := byID[tokenIDs[0]].BBox.X0, byID[tokenIDs[0]].BBox.X0
	for _, tid := range tokenIDs[1:] {
		x0 := byID[tid].BBox.X0
		if x0 < minX0 {
			minX0 = x0
		}
		if x0 > maxX0 {
			maxX0 = x0
		}
	}
	spread := maxX0 - minX0
	if spread <= 0 {
		return 1.0
	}
	score := 1.0 - float64(spread)/32.0
	if score < 0 {
		return 0
	}
	return score
}
