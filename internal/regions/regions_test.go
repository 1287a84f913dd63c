package regions

import (
	"testing"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
)

func block(id string, x0, y0, x1, y1 int) groupmodel.Block {
	return groupmodel.Block{BlockID: id, BBox: geom.BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func TestDetect_TitleBlockCandidateInBottomRightQuadrant(t *testing.T) {
	// Page 1000x1000. Block at (650,650)-(900,900): origin past 0.6 of both
	// dimensions and large enough to pass the minimum-size gate.
	b := block("p001_b000000", 650, 650, 900, 900)

	d := NewDetector()
	regions := d.Detect(1, []groupmodel.Block{b}, 1000, 1000)

	if len(regions) != 1 {
		t.Fatalf("expected 1 region (title block only, no remaining blocks), got %d", len(regions))
	}
	if regions[0].Label != groupmodel.RegionTitleBlock {
		t.Errorf("expected TITLE_BLOCK label, got %s", regions[0].Label.String())
	}
}

func TestDetect_UnknownFallbackWhenNoTitleBlockCandidate(t *testing.T) {
	b := block("p001_b000000", 10, 10, 30, 20) // top-left, not a candidate

	d := NewDetector()
	regions := d.Detect(1, []groupmodel.Block{b}, 1000, 1000)

	if len(regions) != 1 || regions[0].Label != groupmodel.RegionUnknown {
		t.Fatalf("expected single UNKNOWN region, got %+v", regions)
	}
	if len(regions[0].BlockIDs) != 1 || regions[0].BlockIDs[0] != "p001_b000000" {
		t.Errorf("expected UNKNOWN region to cover the block, got %v", regions[0].BlockIDs)
	}
}

func TestDetect_TitleBlockTooSmallFallsBackToUnknown(t *testing.T) {
	// In the quadrant, but below the minimum size gate.
	b := block("p001_b000000", 900, 900, 910, 905)

	d := NewDetector()
	regions := d.Detect(1, []groupmodel.Block{b}, 1000, 1000)

	if len(regions) != 1 || regions[0].Label != groupmodel.RegionUnknown {
		t.Fatalf("expected UNKNOWN fallback for undersized quadrant block, got %+v", regions)
	}
}

func TestDetect_EmptyBlocksReturnsEmptySlice(t *testing.T) {
	d := NewDetector()
	regions := d.Detect(1, nil, 1000, 1000)
	if regions == nil || len(regions) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", regions)
	}
}

func TestDetect_RegionsPartitionBlocks(t *testing.T) {
	title := block("p001_b000000", 650, 650, 900, 900)
	other := block("p001_b000001", 10, 10, 30, 20)

	d := NewDetector()
	regions := d.Detect(1, []groupmodel.Block{title, other}, 1000, 1000)

	seen := map[string]bool{}
	for _, r := range regions {
		for _, id := range r.BlockIDs {
			if seen[id] {
				t.Errorf("block %s appears in more than one region", id)
			}
			seen[id] = true
		}
	}
	if !seen["p001_b000000"] || !seen["p001_b000001"] {
		t.Errorf("expected every block covered by some region, got %v", seen)
	}
}
