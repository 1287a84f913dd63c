// Package lines implements the Stage 2 line builder: partitioning a
// page's retained tokens into horizontal lines by vertical alignment,
// using geometry alone.
package lines

import (
	"fmt"
	"sort"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

// Config holds the thresholds the line builder needs. It is a narrow
// projection of config.GroupingConfig so this package does not need to
// import the top-level config package.
type Config struct {
	LineYOverlapThreshold float64
	LineYCenterK          float64
	MinLineYTolPx         int
}

// Detector groups tokens into lines. Follows the Detector-with-Config
// constructor pattern used throughout this pipeline's geometry packages.
type Detector struct {
	config Config
}

// NewDetector creates a Detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{config: cfg}
}

// Result is the line builder's output for one page, plus the resolved
// threshold values recorded into meta.effective_thresholds.
type Result struct {
	Lines             []groupmodel.Line
	MedianTokenHeight float64
	LineYThresholdPx  int
}

// openLine is the sweep's mutable line-in-progress; never shared across
// goroutines, never stored outside this function's stack.
type openLine struct {
	tokens  []ocrmodel.Token
	yCenter float64 // running average, recalculated per assignment
	bbox    geom.BBox
	created int // sweep order; equals the line's index in the open list, whose iteration order gives the earliest-created tie-break
}

// Detect partitions tokens into lines and returns them in final
// (y0, x0, min-token-id) order with line_id indices already assigned.
func (d *Detector) Detect(pageNum int, tokens []ocrmodel.Token) Result {
	if len(tokens) == 0 {
		return Result{}
	}

	medianHeight := medianTokenHeight(tokens)
	threshold := d.config.MinLineYTolPx
	if scaled := int(roundHalfAwayFromZero(medianHeight * d.config.LineYCenterK)); scaled > threshold {
		threshold = scaled
	}

	sorted := make([]ocrmodel.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].BBox.YCenter(), sorted[j].BBox.YCenter()
		if ci != cj {
			return ci < cj
		}
		if sorted[i].BBox.X0 != sorted[j].BBox.X0 {
			return sorted[i].BBox.X0 < sorted[j].BBox.X0
		}
		return sorted[i].TokenID < sorted[j].TokenID
	})

	var open []*openLine
	for _, tok := range sorted {
		best := -1
		bestDelta := 0.0
		tokCenter := tok.BBox.YCenter()
		for i, ol := range open {
			delta := absFloat(ol.yCenter - tokCenter)
			if delta > float64(threshold) {
				continue
			}
			if geom.YOverlapRatio(ol.bbox, tok.BBox) < d.config.LineYOverlapThreshold {
				continue
			}
			if best == -1 || delta < bestDelta {
				best = i
				bestDelta = delta
			}
		}

		if best == -1 {
			open = append(open, &openLine{
				tokens:  []ocrmodel.Token{tok},
				yCenter: tokCenter,
				bbox:    tok.BBox,
				created: len(open),
			})
			continue
		}

		ol := open[best]
		ol.tokens = append(ol.tokens, tok)
		ol.bbox = ol.bbox.Union(tok.BBox)
		sum := 0.0
		for _, t := range ol.tokens {
			sum += t.BBox.YCenter()
		}
		ol.yCenter = sum / float64(len(ol.tokens))
	}

	lines := make([]groupmodel.Line, 0, len(open))
	for _, ol := range open {
		sort.SliceStable(ol.tokens, func(i, j int) bool {
			a, b := ol.tokens[i], ol.tokens[j]
			if a.BBox.X0 != b.BBox.X0 {
				return a.BBox.X0 < b.BBox.X0
			}
			if a.BBox.Y0 != b.BBox.Y0 {
				return a.BBox.Y0 < b.BBox.Y0
			}
			return a.TokenID < b.TokenID
		})

		boxes := make([]geom.BBox, len(ol.tokens))
		ids := make([]string, len(ol.tokens))
		for i, t := range ol.tokens {
			boxes[i] = t.BBox
			ids[i] = t.TokenID
		}

		lines = append(lines, groupmodel.Line{
			PageNum:  pageNum,
			TokenIDs: ids,
			BBox:     geom.UnionAll(boxes),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		return minTokenID(a.TokenIDs) < minTokenID(b.TokenIDs)
	})

	for i := range lines {
		lines[i].LineID = fmt.Sprintf("p%03d_l%06d", pageNum, i)
	}

	return Result{Lines: lines, MedianTokenHeight: medianHeight, LineYThresholdPx: threshold}
}

func minTokenID(ids []string) string {
	min := ids[0]
	for _, id := range ids[1:] {
		if id < min {
			min = id
		}
	}
	return min
}

func medianTokenHeight(tokens []ocrmodel.Token) float64 {
	heights := make([]int, len(tokens))
	for i, t := range tokens {
		heights[i] = t.BBox.Height()
	}
	sort.Ints(heights)
	n := len(heights)
	if n%2 == 1 {
		return float64(heights[n/2])
	}
	return float64(heights[n/2-1]+heights[n/2]) / 2
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	return float64(int(v + 0.5))
}
