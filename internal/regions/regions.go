// Package regions implements the Stage 2 region labeler: a coarse,
// geometry-only grouping of blocks into TITLE_BLOCK/UNKNOWN candidates.
// Token text is never inspected.
package regions

import (
	"fmt"
	"sort"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
)

// titleBlockQuadrantRatio and the minimum-size gate below are resolved
// from the drawing corpus this pipeline was tuned on:
// a TITLE_BLOCK candidate's origin must lie at or past 0.6 of the page's
// width/height, and its extent must cover at least the minimum fraction
// of the page.
const (
	titleBlockQuadrantRatio  = 0.6
	titleBlockMinWidthRatio  = 0.2
	titleBlockMinHeightRatio = 0.08
)

// Detector labels blocks into regions.
type Detector struct{}

// NewDetector creates a region Detector. There is no configuration beyond
// the enable/disable flag, which callers check before invoking Detect.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect partitions blocks on a page into regions. pageWidth/pageHeight
// are the page image dimensions from the OCR artifact.
func (d *Detector) Detect(pageNum int, blocks []groupmodel.Block, pageWidth, pageHeight int) []groupmodel.Region {
	if len(blocks) == 0 {
		return []groupmodel.Region{}
	}

	var regions []groupmodel.Region
	var titleBlockIDs []string
	var titleBBoxes []geom.BBox
	usedInTitleBlock := make(map[string]bool)

	for _, b := range blocks {
		if isTitleBlockCandidate(b.BBox, pageWidth, pageHeight) {
			titleBlockIDs = append(titleBlockIDs, b.BlockID)
			titleBBoxes = append(titleBBoxes, b.BBox)
			usedInTitleBlock[b.BlockID] = true
		}
	}

	if len(titleBlockIDs) > 0 {
		sort.Strings(titleBlockIDs)
		regions = append(regions, groupmodel.Region{
			PageNum:  pageNum,
			Label:    groupmodel.RegionTitleBlock,
			BlockIDs: titleBlockIDs,
			BBox:     geom.UnionAll(titleBBoxes),
		})
	}

	var remainingIDs []string
	var remainingBBoxes []geom.BBox
	for _, b := range blocks {
		if usedInTitleBlock[b.BlockID] {
			continue
		}
		remainingIDs = append(remainingIDs, b.BlockID)
		remainingBBoxes = append(remainingBBoxes, b.BBox)
	}

	if len(remainingIDs) > 0 {
		sort.Strings(remainingIDs)
		regions = append(regions, groupmodel.Region{
			PageNum:  pageNum,
			Label:    groupmodel.RegionUnknown,
			BlockIDs: remainingIDs,
			BBox:     geom.UnionAll(remainingBBoxes),
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i], regions[j]
		if a.BBox.Y0 != b.BBox.Y0 {
			return a.BBox.Y0 < b.BBox.Y0
		}
		if a.BBox.X0 != b.BBox.X0 {
			return a.BBox.X0 < b.BBox.X0
		}
		return a.BlockIDs[0] < b.BlockIDs[0]
	})

	for i := range regions {
		regions[i].RegionID = fmt.Sprintf("p%03d_r%06d", pageNum, i)
	}

	return regions
}

func isTitleBlockCandidate(b geom.BBox, pageWidth, pageHeight int) bool {
	if pageWidth <= 0 || pageHeight <= 0 {
		return false
	}
	inBottomRightQuadrant := float64(b.X0) >= titleBlockQuadrantRatio*float64(pageWidth) &&
		float64(b.Y0) >= titleBlockQuadrantRatio*float64(pageHeight)
	if !inBottomRightQuadrant {
		return false
	}
	meetsMinSize := float64(b.Width()) >= titleBlockMinWidthRatio*float64(pageWidth) &&
		float64(b.Height()) >= titleBlockMinHeightRatio*float64(pageHeight)
	return meetsMinSize
}
