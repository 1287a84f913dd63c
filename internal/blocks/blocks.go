// Package blocks implements the Stage 2 block builder: grouping a page's
// lines into blocks based on vertical spacing and horizontal projection
// overlap.
package blocks

import (
	"fmt"
	"sort"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
)

// Config holds the thresholds the block builder needs.
type Config struct {
	BlockYGapK             float64
	MinBlockGapPx          int
	BlockXOverlapThreshold float64
}

// Detector groups lines into blocks.
type Detector struct {
	config Config
}

// NewDetector creates a Detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{config: cfg}
}

// Result is the block builder's output for one page.
type Result struct {
	Blocks               []groupmodel.Block
	BlockYGapThresholdPx int
}

type openBlock struct {
	lines     []groupmodel.Line
	bbox      geom.BBox
	maxLineY1 int
}

// Detect groups the already-ordered lines of §4.2 into blocks and returns
// them in final (y0, x0, min-line-id) order with block_id indices
// assigned.
func (d *Detector) Detect(pageNum int, lines []groupmodel.Line, medianTokenHeight float64) Result {
	if len(lines) == 0 {
		return Result{}
	}

	threshold := d.config.MinBlockGapPx
	if scaled := int(roundHalfAwayFromZero(medianTokenHeight * d.config.BlockYGapK)); scaled > threshold {
		threshold = scaled
	}

	var open *openBlock
	var closed []*openBlock

	for _, line := range lines {
		if open == nil {
			open = &openBlock{lines: []groupmodel.Line{line}, bbox: line.BBox, maxLineY1: line.BBox.Y1}
			continue
		}

		gap := line.BBox.Y0 - open.maxLineY1
		xOverlap := geom.XOverlapRatio(open.bbox, line.BBox)

		if gap <= threshold && xOverlap >= d.config.BlockXOverlapThreshold {
			open.lines = append(open.lines, line)
			open.bbox = open.bbox.Union(line.BBox)
			if line.BBox.Y1 > open.maxLineY1 {
				open.maxLineY1 = line.BBox.Y1
			}
			continue
		}

		closed = append(closed, open)
		open = &openBlock{lines: []groupmodel.Line{line}, bbox: line.BBox, maxLineY1: line.BBox.Y1}
	}
	if open != nil {
		closed = append(closed, open)
	}

	blockResults := make([]groupmodel.Block, 0, len(closed))
	for _, ob := range closed {
		ids := make([]string, len(ob.lines))
		for i, l := range ob.lines {
			ids[i] = l.LineID
		}
		blockResults = append(blockResults, groupmodel.Block{
			PageNum: pageNum,
			LineIDs: ids,
			BBox:    ob.bbox,
		})
	}

	sort.SliceStable(blockResults, func(i, j int) bool {
		a, b := blockResults[i], blockResults[j]
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		return minLineID(a.LineIDs) < minLineID(b.LineIDs)
	})

	for i := range blockResults {
		blockResults[i].BlockID = fmt.Sprintf("p%03d_b%06d", pageNum, i)
	}

	return Result{Blocks: blockResults, BlockYGapThresholdPx: threshold}
}

func minLineID(ids []string) string {
	min := ids[0]
	for _, id := range ids[1:] {
		if id < min {
			min = id
		}
	}
	return min
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	return float64(int(v + 0.5))
}
