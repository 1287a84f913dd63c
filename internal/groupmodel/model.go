// Package groupmodel defines the Stage 2 grouping artifact shapes: lines,
// blocks, regions, reserved cell candidates, and the per-document meta
// record. Canonical JSON serialization lives in marshal.go.
package groupmodel

import "github.com/engdraw/groupdoc/internal/geom"

// RegionType is the coarse structural label a region can carry. Labels
// are derived only from block position and size; token text is never
// inspected.
type RegionType int

const (
	RegionUnknown RegionType = iota
	RegionTitleBlock
	RegionTableLike
	RegionNote
	RegionAnnotation
)

// String returns the wire name of the region type.
func (r RegionType) String() string {
	switch r {
	case RegionTitleBlock:
		return "TITLE_BLOCK"
	case RegionTableLike:
		return "TABLE_LIKE"
	case RegionNote:
		return "NOTE"
	case RegionAnnotation:
		return "ANNOTATION"
	default:
		return "UNKNOWN"
	}
}

// Line is a set of tokens sharing a horizontal band, in left-to-right
// reading order.
type Line struct {
	LineID   string
	PageNum  int
	TokenIDs []string
	BBox     geom.BBox
}

// Block is a vertically contiguous set of lines with compatible
// horizontal extent.
type Block struct {
	BlockID string
	PageNum int
	LineIDs []string
	BBox    geom.BBox
}

// Region is an optional, coarser, geometry-only grouping of blocks.
type Region struct {
	RegionID string
	PageNum  int
	Label    RegionType
	BlockIDs []string
	BBox     geom.BBox
}

// CellCandidate is a reserved, conservative geometry-only grouping of
// tokens that appear to share a table-like column/row structure. Scoring
// never gates emission of lines, blocks, or regions.
type CellCandidate struct {
	CellID   string
	PageNum  int
	TokenIDs []string
	BBox     geom.BBox
	Score    float64
}

// DroppedToken records a token excluded during sanitization, and why.
type DroppedToken struct {
	TokenID string
	Reason  string
}

// Page is one page's grouping result.
type Page struct {
	PageNum        int
	Lines          []Line
	Blocks         []Block
	Regions        *[]Region        // nil when regions are disabled
	CellCandidates *[]CellCandidate // nil when the feature is disabled
}

// PageThresholds records the concrete pixel values the configured
// multipliers resolved to for one page, so an auditor can read the
// numbers actually used without recomputing medians by hand.
type PageThresholds struct {
	PageNum              int
	MedianTokenHeight    float64
	LineYThresholdPx     int
	BlockYGapThresholdPx int
}

// Meta is the audit-oriented record emitted alongside every artifact.
type Meta struct {
	GroupingVersion     string
	Config              ConfigSnapshot
	NTokensIn           int
	NTokensRetained     int
	NLines              int
	NBlocks             int
	NRegions            int
	DroppedTokens       []DroppedToken
	Warnings            []string
	EffectiveThresholds []PageThresholds
}

// ConfigSnapshot is the subset of config.GroupingConfig recorded verbatim
// in meta so an artifact is self-describing without consulting the run's
// command line.
type ConfigSnapshot struct {
	ConfidenceFloor          float64
	KeepWhitespaceTokens     bool
	BBoxRepair               bool
	LineYOverlapThreshold    float64
	LineYCenterK             float64
	MinLineYTolPx            int
	BlockYGapK               float64
	MinBlockGapPx            int
	BlockXOverlapThreshold   float64
	RegionsEnabled           bool
	CellCandidatesEnabled    bool
	OmitTextFields           bool
}

// Document is the top-level grouping artifact: {doc_id, pages[], meta}.
type Document struct {
	DocID string
	Pages []Page
	Meta  Meta
}
