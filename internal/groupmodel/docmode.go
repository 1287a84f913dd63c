package groupmodel

import (
	"strings"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

// Doc mode is the leaner per-document result shape used when a caller
// wants grouping results embedded in a larger document-level response
// rather than as a standalone artifact file. It is a pure projection of
// Document plus the source OCR tokens; no new grouping decisions are
// made here.

// DocModeTokenRef echoes one member token of a line, with its text and
// confidence, so a doc-mode consumer needs no second lookup into the OCR
// artifact.
type DocModeTokenRef struct {
	TokenID    string
	Text       string
	BBox       geom.BBox
	Confidence *float64
}

// DocModeLine is a line plus its joined text.
type DocModeLine struct {
	LineID  string
	PageNum int
	BBox    geom.BBox
	Tokens  []DocModeTokenRef
	Text    string // member token texts joined with single spaces
}

// DocModeBlock is a block plus its joined text.
type DocModeBlock struct {
	BlockID string
	PageNum int
	BBox    geom.BBox
	LineIDs []string
	Text    string // member line texts joined with newlines
}

// DocModePage is one page's doc-mode result.
type DocModePage struct {
	OK      bool
	PageNum int
	Lines   []DocModeLine
	Blocks  []DocModeBlock
	Errors  []string
}

// DocModeResult is the document-level doc-mode projection.
type DocModeResult struct {
	DocID string
	Pages []DocModePage
}

// ToDocMode projects a grouping document into the doc-mode shape. ocr is
// the same OCR artifact the grouping ran on; it supplies token text and
// confidence. When includeText is false the joined text fields are left
// empty while the structural fields are still emitted.
func ToDocMode(doc Document, ocr ocrmodel.Document, includeText bool) DocModeResult {
	tokensByID := make(map[string]ocrmodel.Token)
	for _, p := range ocr.Pages {
		for _, t := range p.Tokens {
			tokensByID[t.TokenID] = t
		}
	}

	out := DocModeResult{DocID: doc.DocID}
	for _, page := range doc.Pages {
		dp := DocModePage{OK: true, PageNum: page.PageNum, Errors: []string{}}

		lineTextByID := make(map[string]string, len(page.Lines))
		for _, line := range page.Lines {
			dl := DocModeLine{
				LineID:  line.LineID,
				PageNum: line.PageNum,
				BBox:    line.BBox,
			}
			var texts []string
			for _, tid := range line.TokenIDs {
				tok := tokensByID[tid]
				ref := DocModeTokenRef{TokenID: tid, BBox: tok.BBox, Confidence: tok.Confidence}
				if includeText {
					ref.Text = tok.Text
					texts = append(texts, tok.Text)
				}
				dl.Tokens = append(dl.Tokens, ref)
			}
			if includeText {
				dl.Text = strings.Join(texts, " ")
			}
			lineTextByID[line.LineID] = dl.Text
			dp.Lines = append(dp.Lines, dl)
		}

		for _, block := range page.Blocks {
			db := DocModeBlock{
				BlockID: block.BlockID,
				PageNum: block.PageNum,
				BBox:    block.BBox,
				LineIDs: block.LineIDs,
			}
			if includeText {
				var texts []string
				for _, lid := range block.LineIDs {
					texts = append(texts, lineTextByID[lid])
				}
				db.Text = strings.Join(texts, "\n")
			}
			dp.Blocks = append(dp.Blocks, db)
		}

		out.Pages = append(out.Pages, dp)
	}
	return out
}
