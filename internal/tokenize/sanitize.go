// Package tokenize sanitizes a page's raw OCR tokens before they reach
// the line builder: bounding-box repair, whitespace filtering, and
// confidence-floor filtering, in that fixed order.
package tokenize

import (
	"sort"
	"strings"

	"github.com/engdraw/groupdoc/config"
	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

// Result is the outcome of sanitizing one page's tokens.
type Result struct {
	Retained []ocrmodel.Token
	Dropped  []groupmodel.DroppedToken
	Warnings []string
}

// Sanitize applies bbox repair, then the whitespace filter, then the
// confidence floor, to a single page's tokens. The result is independent
// of the input token order, since every decision is made per-token.
func Sanitize(tokens []ocrmodel.Token, cfg config.GroupingConfig) Result {
	var res Result

	afterRepair := make([]ocrmodel.Token, 0, len(tokens))
	for _, tok := range tokens {
		if cfg.BBoxRepair && geom.Swapped(tok.BBox.X0, tok.BBox.Y0, tok.BBox.X1, tok.BBox.Y1) {
			tok.BBox = geom.New(tok.BBox.X0, tok.BBox.Y0, tok.BBox.X1, tok.BBox.Y1)
			res.Warnings = append(res.Warnings, "repaired_swapped: "+tok.TokenID)
		}
		if tok.BBox.IsZeroArea() {
			res.Dropped = append(res.Dropped, groupmodel.DroppedToken{TokenID: tok.TokenID, Reason: "zero_area"})
			continue
		}
		afterRepair = append(afterRepair, tok)
	}

	afterWhitespace := make([]ocrmodel.Token, 0, len(afterRepair))
	for _, tok := range afterRepair {
		if !cfg.KeepWhitespaceTokens && isWhitespaceOnly(tok.Text) {
			res.Dropped = append(res.Dropped, groupmodel.DroppedToken{TokenID: tok.TokenID, Reason: "whitespace"})
			continue
		}
		afterWhitespace = append(afterWhitespace, tok)
	}

	for _, tok := range afterWhitespace {
		if tok.Confidence != nil && *tok.Confidence < cfg.ConfidenceFloor {
			res.Dropped = append(res.Dropped, groupmodel.DroppedToken{TokenID: tok.TokenID, Reason: "below_confidence_floor"})
			continue
		}
		res.Retained = append(res.Retained, tok)
	}

	// Retained tokens are emitted in token_id order, dropped entries in
	// (token_id, reason) order and warnings lexically, so the result is
	// independent of the Stage 1 input order, which is not assumed stable.
	sort.Slice(res.Retained, func(i, j int) bool {
		return res.Retained[i].TokenID < res.Retained[j].TokenID
	})
	sort.Slice(res.Dropped, func(i, j int) bool {
		a, b := res.Dropped[i], res.Dropped[j]
		if a.TokenID != b.TokenID {
			return a.TokenID < b.TokenID
		}
		return a.Reason < b.Reason
	})
	sort.Strings(res.Warnings)

	return res
}

func isWhitespaceOnly(text string) bool {
	return strings.TrimSpace(text) == ""
}
