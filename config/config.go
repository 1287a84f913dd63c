// Package config defines the immutable grouping configuration threaded
// explicitly through every Stage 2 component. There is no package-level
// global configuration anywhere in this repository.
package config

import (
	"fmt"

	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/grouperr"
)

// GroupingConfig holds every tunable threshold for Stage 2. Values are
// set once via Default() and the WithX methods, each of which returns a
// modified clone rather than mutating the receiver.
type GroupingConfig struct {
	ConfidenceFloor        float64
	KeepWhitespaceTokens   bool
	BBoxRepair             bool
	LineYOverlapThreshold  float64
	LineYCenterK           float64
	MinLineYTolPx          int
	BlockYGapK             float64
	MinBlockGapPx          int
	BlockXOverlapThreshold float64
	RegionsEnabled         bool
	CellCandidatesEnabled  bool
	OmitTextFields         bool
}

// Default returns the documented default thresholds.
func Default() GroupingConfig {
	return GroupingConfig{
		ConfidenceFloor:        0.0,
		KeepWhitespaceTokens:   false,
		BBoxRepair:             true,
		LineYOverlapThreshold:  0.5,
		LineYCenterK:           0.7,
		MinLineYTolPx:          2,
		BlockYGapK:             1.5,
		MinBlockGapPx:          2,
		BlockXOverlapThreshold: 0.1,
		RegionsEnabled:         true,
		CellCandidatesEnabled:  false,
		OmitTextFields:         false,
	}
}

func (c GroupingConfig) clone() GroupingConfig { return c }

// WithConfidenceFloor returns a clone with ConfidenceFloor set.
func (c GroupingConfig) WithConfidenceFloor(v float64) GroupingConfig {
	cl := c.clone()
	cl.ConfidenceFloor = v
	return cl
}

// WithKeepWhitespaceTokens returns a clone with KeepWhitespaceTokens set.
func (c GroupingConfig) WithKeepWhitespaceTokens(v bool) GroupingConfig {
	cl := c.clone()
	cl.KeepWhitespaceTokens = v
	return cl
}

// WithBBoxRepair returns a clone with BBoxRepair set.
func (c GroupingConfig) WithBBoxRepair(v bool) GroupingConfig {
	cl := c.clone()
	cl.BBoxRepair = v
	return cl
}

// WithLineYOverlapThreshold returns a clone with LineYOverlapThreshold set.
func (c GroupingConfig) WithLineYOverlapThreshold(v float64) GroupingConfig {
	cl := c.clone()
	cl.LineYOverlapThreshold = v
	return cl
}

// WithLineYCenterK returns a clone with LineYCenterK set.
func (c GroupingConfig) WithLineYCenterK(v float64) GroupingConfig {
	cl := c.clone()
	cl.LineYCenterK = v
	return cl
}

// WithMinLineYTolPx returns a clone with MinLineYTolPx set.
func (c GroupingConfig) WithMinLineYTolPx(v int) GroupingConfig {
	cl := c.clone()
	cl.MinLineYTolPx = v
	return cl
}

// WithBlockYGapK returns a clone with BlockYGapK set.
func (c GroupingConfig) WithBlockYGapK(v float64) GroupingConfig {
	cl := c.clone()
	cl.BlockYGapK = v
	return cl
}

// WithMinBlockGapPx returns a clone with MinBlockGapPx set.
func (c GroupingConfig) WithMinBlockGapPx(v int) GroupingConfig {
	cl := c.clone()
	cl.MinBlockGapPx = v
	return cl
}

// WithBlockXOverlapThreshold returns a clone with BlockXOverlapThreshold set.
func (c GroupingConfig) WithBlockXOverlapThreshold(v float64) GroupingConfig {
	cl := c.clone()
	cl.BlockXOverlapThreshold = v
	return cl
}

// WithRegionsEnabled returns a clone with RegionsEnabled set.
func (c GroupingConfig) WithRegionsEnabled(v bool) GroupingConfig {
	cl := c.clone()
	cl.RegionsEnabled = v
	return cl
}

// WithCellCandidatesEnabled returns a clone with CellCandidatesEnabled set.
func (c GroupingConfig) WithCellCandidatesEnabled(v bool) GroupingConfig {
	cl := c.clone()
	cl.CellCandidatesEnabled = v
	return cl
}

// WithOmitTextFields returns a clone with OmitTextFields set.
func (c GroupingConfig) WithOmitTextFields(v bool) GroupingConfig {
	cl := c.clone()
	cl.OmitTextFields = v
	return cl
}

// Validate checks every threshold against its allowed range, returning a
// *grouperr.Error of kind ConfigInvalid on the first violation found.
// Fields are checked one at a time; no cross-field constraint is checked.
// Called once, before any page is processed.
func (c GroupingConfig) Validate() error {
	switch {
	case c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("confidence_floor must be in [0,1], got %v", c.ConfidenceFloor))
	case c.LineYOverlapThreshold < 0 || c.LineYOverlapThreshold > 1:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("line_y_overlap_threshold must be in [0,1], got %v", c.LineYOverlapThreshold))
	case c.LineYCenterK < 0:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("line_y_center_k must be >= 0, got %v", c.LineYCenterK))
	case c.MinLineYTolPx < 0:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("min_line_y_tol_px must be >= 0, got %v", c.MinLineYTolPx))
	case c.BlockYGapK < 0:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("block_y_gap_k must be >= 0, got %v", c.BlockYGapK))
	case c.MinBlockGapPx < 0:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("min_block_gap_px must be >= 0, got %v", c.MinBlockGapPx))
	case c.BlockXOverlapThreshold < 0 || c.BlockXOverlapThreshold > 1:
		return grouperr.New(grouperr.ConfigInvalid, "config", fmt.Sprintf("block_x_overlap_threshold must be in [0,1], got %v", c.BlockXOverlapThreshold))
	}
	return nil
}

// Snapshot converts GroupingConfig to the wire-facing shape recorded in
// an artifact's meta section.
func (c GroupingConfig) Snapshot() groupmodel.ConfigSnapshot {
	return groupmodel.ConfigSnapshot{
		ConfidenceFloor:        c.ConfidenceFloor,
		KeepWhitespaceTokens:   c.KeepWhitespaceTokens,
		BBoxRepair:             c.BBoxRepair,
		LineYOverlapThreshold:  c.LineYOverlapThreshold,
		LineYCenterK:           c.LineYCenterK,
		MinLineYTolPx:          c.MinLineYTolPx,
		BlockYGapK:             c.BlockYGapK,
		MinBlockGapPx:          c.MinBlockGapPx,
		BlockXOverlapThreshold: c.BlockXOverlapThreshold,
		RegionsEnabled:         c.RegionsEnabled,
		CellCandidatesEnabled:  c.CellCandidatesEnabled,
		OmitTextFields:         c.OmitTextFields,
	}
}
