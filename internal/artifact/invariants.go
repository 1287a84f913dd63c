package artifact

import (
	"fmt"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/grouperr"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

// CheckInvariants verifies the data-model invariants on a built document
// before it is serialized. A failure here is a bug in the builders, so
// every violation surfaces as InternalInvariantViolated with the
// invariant named in the message.
func CheckInvariants(doc groupmodel.Document, ocr ocrmodel.Document) error {
	droppedIDs := make(map[string]bool, len(doc.Meta.DroppedTokens))
	for _, d := range doc.Meta.DroppedTokens {
		droppedIDs[d.TokenID] = true
	}

	ocrTokens := make(map[string]ocrmodel.Token)
	for _, page := range ocr.Pages {
		for _, tok := range page.Tokens {
			ocrTokens[tok.TokenID] = tok
		}
	}

	tokensInLines := 0
	for _, page := range doc.Pages {
		n, err := checkPage(page, ocrTokens, droppedIDs)
		if err != nil {
			return err
		}
		tokensInLines += n
	}
	if tokensInLines != doc.Meta.NTokensRetained {
		return grouperr.New(grouperr.InternalInvariantViolated, "invariants",
			fmt.Sprintf("partition_law: %d tokens in lines, %d retained", tokensInLines, doc.Meta.NTokensRetained))
	}
	return nil
}

func checkPage(page groupmodel.Page, ocrTokens map[string]ocrmodel.Token, droppedIDs map[string]bool) (int, error) {
	fail := func(invariant, msg string, offenders ...string) error {
		return grouperr.New(grouperr.InternalInvariantViolated, "invariants",
			fmt.Sprintf("%s: %s (page %d)", invariant, msg, page.PageNum), offenders...)
	}

	// token_reference + drop_exclusion + partition law over tokens.
	tokenSeen := make(map[string]bool)
	linesByID := make(map[string]groupmodel.Line, len(page.Lines))
	for i, line := range page.Lines {
		wantID := fmt.Sprintf("p%03d_l%06d", page.PageNum, i)
		if line.LineID != wantID {
			return 0, fail("index_density", fmt.Sprintf("line id %s, want %s", line.LineID, wantID))
		}
		if len(line.TokenIDs) == 0 {
			return 0, fail("non_empty_line", "line has no tokens", line.LineID)
		}
		linesByID[line.LineID] = line

		var boxes []geom.BBox
		for _, tid := range line.TokenIDs {
			tok, ok := ocrTokens[tid]
			if !ok {
				return 0, fail("token_reference", "line references unknown token", line.LineID, tid)
			}
			if tok.PageNum != page.PageNum {
				return 0, fail("token_reference", "line references token from another page", line.LineID, tid)
			}
			if droppedIDs[tid] {
				return 0, fail("drop_exclusion", "dropped token appears in a line", line.LineID, tid)
			}
			if tokenSeen[tid] {
				return 0, fail("partition_law", "token appears in more than one line", tid)
			}
			tokenSeen[tid] = true
			boxes = append(boxes, geom.New(tok.BBox.X0, tok.BBox.Y0, tok.BBox.X1, tok.BBox.Y1))
		}
		if union := geom.UnionAll(boxes); union != line.BBox {
			return 0, fail("bbox_tightness", fmt.Sprintf("line bbox %+v, union %+v", line.BBox, union), line.LineID)
		}
	}

	// Lines partition into blocks; block bboxes tight.
	lineSeen := make(map[string]bool)
	blocksByID := make(map[string]groupmodel.Block, len(page.Blocks))
	for i, block := range page.Blocks {
		wantID := fmt.Sprintf("p%03d_b%06d", page.PageNum, i)
		if block.BlockID != wantID {
			return 0, fail("index_density", fmt.Sprintf("block id %s, want %s", block.BlockID, wantID))
		}
		if len(block.LineIDs) == 0 {
			return 0, fail("non_empty_block", "block has no lines", block.BlockID)
		}
		blocksByID[block.BlockID] = block

		var boxes []geom.BBox
		for _, lid := range block.LineIDs {
			line, ok := linesByID[lid]
			if !ok {
				return 0, fail("line_reference", "block references unknown line", block.BlockID, lid)
			}
			if lineSeen[lid] {
				return 0, fail("partition_law", "line appears in more than one block", lid)
			}
			lineSeen[lid] = true
			boxes = append(boxes, line.BBox)
		}
		if union := geom.UnionAll(boxes); union != block.BBox {
			return 0, fail("bbox_tightness", fmt.Sprintf("block bbox %+v, union %+v", block.BBox, union), block.BlockID)
		}
	}
	if len(lineSeen) != len(page.Lines) {
		return 0, fail("partition_law", fmt.Sprintf("%d of %d lines assigned to blocks", len(lineSeen), len(page.Lines)))
	}

	// Regions, when present, partition blocks; region bboxes tight.
	if page.Regions != nil {
		blockSeen := make(map[string]bool)
		for i, region := range *page.Regions {
			wantID := fmt.Sprintf("p%03d_r%06d", page.PageNum, i)
			if region.RegionID != wantID {
				return 0, fail("index_density", fmt.Sprintf("region id %s, want %s", region.RegionID, wantID))
			}
			var boxes []geom.BBox
			for _, bid := range region.BlockIDs {
				block, ok := blocksByID[bid]
				if !ok {
					return 0, fail("block_reference", "region references unknown block", region.RegionID, bid)
				}
				if blockSeen[bid] {
					return 0, fail("partition_law", "block appears in more than one region", bid)
				}
				blockSeen[bid] = true
				boxes = append(boxes, block.BBox)
			}
			if union := geom.UnionAll(boxes); union != region.BBox {
				return 0, fail("bbox_tightness", fmt.Sprintf("region bbox %+v, union %+v", region.BBox, union), region.RegionID)
			}
		}
		if len(blockSeen) != len(page.Blocks) {
			return 0, fail("partition_law", fmt.Sprintf("%d of %d blocks assigned to regions", len(blockSeen), len(page.Blocks)))
		}
	}

	return len(tokenSeen), nil
}
