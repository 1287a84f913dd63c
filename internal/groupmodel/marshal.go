package groupmodel

import (
	"encoding/json"

	"github.com/engdraw/groupdoc/internal/geom"
)

// Canonical JSON encoding: every wire struct below declares its fields in
// strict alphabetical order of their JSON tag, so encoding/json's
// declaration-order output is, field for field, the sort_keys=True output
// the artifact contract requires. See artifact.WriteCanonical for the
// indent/newline policy applied on top of this.

type bboxWire struct {
	X0 int `json:"x0"`
	X1 int `json:"x1"`
	Y0 int `json:"y0"`
	Y1 int `json:"y1"`
}

func toBBoxWire(b geom.BBox) bboxWire {
	return bboxWire{X0: b.X0, X1: b.X1, Y0: b.Y0, Y1: b.Y1}
}

type lineWire struct {
	LineBBox bboxWire `json:"line_bbox"`
	LineID   string   `json:"line_id"`
	PageNum  int      `json:"page_num"`
	TokenIDs []string `json:"token_ids"`
}

// MarshalJSON emits Line with alphabetically ordered keys.
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(lineWire{
		LineBBox: toBBoxWire(l.BBox),
		LineID:   l.LineID,
		PageNum:  l.PageNum,
		TokenIDs: nonNilStrings(l.TokenIDs),
	})
}

type blockWire struct {
	BlockBBox bboxWire `json:"block_bbox"`
	BlockID   string   `json:"block_id"`
	LineIDs   []string `json:"line_ids"`
	PageNum   int      `json:"page_num"`
}

// MarshalJSON emits Block with alphabetically ordered keys.
func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockWire{
		BlockBBox: toBBoxWire(b.BBox),
		BlockID:   b.BlockID,
		LineIDs:   nonNilStrings(b.LineIDs),
		PageNum:   b.PageNum,
	})
}

type regionWire struct {
	BlockIDs   []string `json:"block_ids"`
	PageNum    int      `json:"page_num"`
	RegionBBox bboxWire `json:"region_bbox"`
	RegionID   string   `json:"region_id"`
	RegionType string   `json:"region_type"`
}

// MarshalJSON emits Region with alphabetically ordered keys.
func (r Region) MarshalJSON() ([]byte, error) {
	return json.Marshal(regionWire{
		BlockIDs:   nonNilStrings(r.BlockIDs),
		PageNum:    r.PageNum,
		RegionBBox: toBBoxWire(r.BBox),
		RegionID:   r.RegionID,
		RegionType: r.Label.String(),
	})
}

type cellCandidateWire struct {
	BBox     bboxWire `json:"bbox"`
	CellID   string   `json:"cell_id"`
	PageNum  int      `json:"page_num"`
	Score    float64  `json:"score"`
	TokenIDs []string `json:"token_ids"`
}

// MarshalJSON emits CellCandidate with alphabetically ordered keys.
func (c CellCandidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(cellCandidateWire{
		BBox:     toBBoxWire(c.BBox),
		CellID:   c.CellID,
		PageNum:  c.PageNum,
		Score:    c.Score,
		TokenIDs: nonNilStrings(c.TokenIDs),
	})
}

type pageWire struct {
	Blocks         []Block          `json:"blocks"`
	CellCandidates *[]CellCandidate `json:"cell_candidates"`
	Lines          []Line           `json:"lines"`
	PageNum        int              `json:"page_num"`
	Regions        *[]Region        `json:"regions"`
}

// MarshalJSON emits Page with alphabetically ordered keys. Regions and
// cell_candidates round-trip as null when their feature is disabled and
// as a (possibly empty) list when enabled.
func (p Page) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageWire{
		Blocks:         nonNilBlocks(p.Blocks),
		CellCandidates: p.CellCandidates,
		Lines:          nonNilLines(p.Lines),
		PageNum:        p.PageNum,
		Regions:        p.Regions,
	})
}

type droppedTokenWire struct {
	Reason  string `json:"reason"`
	TokenID string `json:"token_id"`
}

type pageThresholdsWire struct {
	BlockYGapThresholdPx int     `json:"block_y_gap_threshold_px"`
	LineYThresholdPx     int     `json:"line_y_threshold_px"`
	MedianTokenHeight    float64 `json:"median_token_height"`
	PageNum              int     `json:"page_num"`
}

type configSnapshotWire struct {
	BBoxRepair             bool    `json:"bbox_repair"`
	BlockXOverlapThreshold float64 `json:"block_x_overlap_threshold"`
	BlockYGapK             float64 `json:"block_y_gap_k"`
	CellCandidatesEnabled  bool    `json:"cell_candidates_enabled"`
	ConfidenceFloor        float64 `json:"confidence_floor"`
	KeepWhitespaceTokens   bool    `json:"keep_whitespace_tokens"`
	LineYCenterK           float64 `json:"line_y_center_k"`
	LineYOverlapThreshold  float64 `json:"line_y_overlap_threshold"`
	MinBlockGapPx          int     `json:"min_block_gap_px"`
	MinLineYTolPx          int     `json:"min_line_y_tol_px"`
	OmitTextFields         bool    `json:"omit_text_fields"`
	RegionsEnabled         bool    `json:"regions_enabled"`
}

func toConfigSnapshotWire(c ConfigSnapshot) configSnapshotWire {
	return configSnapshotWire{
		BBoxRepair:             c.BBoxRepair,
		BlockXOverlapThreshold: c.BlockXOverlapThreshold,
		BlockYGapK:             c.BlockYGapK,
		CellCandidatesEnabled:  c.CellCandidatesEnabled,
		ConfidenceFloor:        c.ConfidenceFloor,
		KeepWhitespaceTokens:   c.KeepWhitespaceTokens,
		LineYCenterK:           c.LineYCenterK,
		LineYOverlapThreshold:  c.LineYOverlapThreshold,
		MinBlockGapPx:          c.MinBlockGapPx,
		MinLineYTolPx:          c.MinLineYTolPx,
		OmitTextFields:         c.OmitTextFields,
		RegionsEnabled:         c.RegionsEnabled,
	}
}

type metaWire struct {
	Config              configSnapshotWire   `json:"config"`
	DroppedTokens       []droppedTokenWire   `json:"dropped_tokens"`
	EffectiveThresholds []pageThresholdsWire `json:"effective_thresholds"`
	GroupingVersion     string               `json:"grouping_version"`
	NBlocks             int                  `json:"n_blocks"`
	NLines              int                  `json:"n_lines"`
	NRegions            int                  `json:"n_regions"`
	NTokensIn           int                  `json:"n_tokens_in"`
	NTokensRetained     int                  `json:"n_tokens_retained"`
	Warnings            []string             `json:"warnings"`
}

// MarshalJSON emits Meta with alphabetically ordered keys.
func (m Meta) MarshalJSON() ([]byte, error) {
	dropped := make([]droppedTokenWire, 0, len(m.DroppedTokens))
	for _, d := range m.DroppedTokens {
		dropped = append(dropped, droppedTokenWire{Reason: d.Reason, TokenID: d.TokenID})
	}
	thresholds := make([]pageThresholdsWire, 0, len(m.EffectiveThresholds))
	for _, t := range m.EffectiveThresholds {
		thresholds = append(thresholds, pageThresholdsWire{
			BlockYGapThresholdPx: t.BlockYGapThresholdPx,
			LineYThresholdPx:     t.LineYThresholdPx,
			MedianTokenHeight:    t.MedianTokenHeight,
			PageNum:              t.PageNum,
		})
	}
	return json.Marshal(metaWire{
		Config:              toConfigSnapshotWire(m.Config),
		DroppedTokens:       dropped,
		EffectiveThresholds: thresholds,
		GroupingVersion:     m.GroupingVersion,
		NBlocks:             m.NBlocks,
		NLines:              m.NLines,
		NRegions:            m.NRegions,
		NTokensIn:           m.NTokensIn,
		NTokensRetained:     m.NTokensRetained,
		Warnings:            nonNilStrings(m.Warnings),
	})
}

type documentWire struct {
	DocID string `json:"doc_id"`
	Meta  Meta   `json:"meta"`
	Pages []Page `json:"pages"`
}

// MarshalJSON emits Document with alphabetically ordered keys.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentWire{
		DocID: d.DocID,
		Meta:  d.Meta,
		Pages: nonNilPages(d.Pages),
	})
}

// nonNilStrings turns a nil slice into an empty one so it serializes as
// [] rather than null, since only regions/cell_candidates are allowed to
// round-trip as null.
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilBlocks(b []Block) []Block {
	if b == nil {
		return []Block{}
	}
	return b
}

func nonNilLines(l []Line) []Line {
	if l == nil {
		return []Line{}
	}
	return l
}

func nonNilPages(p []Page) []Page {
	if p == nil {
		return []Page{}
	}
	return p
}
