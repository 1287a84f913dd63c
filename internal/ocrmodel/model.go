// Package ocrmodel defines the Stage 1 OCR artifact contract: the
// document, page, and token shapes that Stage 2 consumes read-only.
// Nothing in this package mutates a Token once decoded.
package ocrmodel

import (
	"encoding/json"
	"fmt"

	"github.com/engdraw/groupdoc/internal/geom"
)

// Token is one OCR-detected text element with pixel geometry and an
// optional confidence. The atomic input unit of Stage 2.
type Token struct {
	TokenID       string
	PageNum       int
	Text          string
	BBox          geom.BBox
	Confidence    *float64
	RawConfidence *float64
}

// Page is one page's worth of tokens plus the image metadata Stage 0
// recorded for it.
type Page struct {
	PageNum     int
	ImageRef    string
	ImageWidth  int
	ImageHeight int
	Tokens      []Token
	Errors      []string
}

// Document is the full OCR artifact consumed by Stage 2.
type Document struct {
	DocID string
	Pages []Page
}

type tokenWire struct {
	TokenID       string   `json:"token_id"`
	PageNum       int      `json:"page_num"`
	Text          string   `json:"text"`
	BBox          bboxWire `json:"bbox"`
	Confidence    *float64 `json:"confidence"`
	RawConfidence *float64 `json:"raw_confidence,omitempty"`
}

type bboxWire struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// pageErrors accepts either a bare array of strings or an array of
// {code, message} objects, normalizing both to strings, matching the
// upstream engines' error shapes.
type pageErrors []string

func (p *pageErrors) UnmarshalJSON(data []byte) error {
	var asStrings []string
	if err := json.Unmarshal(data, &asStrings); err == nil {
		*p = asStrings
		return nil
	}

	var asObjects []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &asObjects); err != nil {
		return fmt.Errorf("page errors: neither []string nor []{code,message}: %w", err)
	}

	out := make([]string, 0, len(asObjects))
	for _, o := range asObjects {
		if o.Code != "" {
			out = append(out, fmt.Sprintf("%s: %s", o.Code, o.Message))
		} else {
			out = append(out, o.Message)
		}
	}
	*p = out
	return nil
}

type pageWire struct {
	PageNum     int         `json:"page_num"`
	ImageRef    string      `json:"image_ref"`
	ImageWidth  int         `json:"image_width"`
	ImageHeight int         `json:"image_height"`
	Tokens      []tokenWire `json:"tokens"`
	Errors      pageErrors  `json:"errors,omitempty"`
}

type documentWire struct {
	DocID string     `json:"doc_id"`
	Pages []pageWire `json:"pages"`
}

// UnmarshalJSON decodes the wire shape of the OCR artifact into Document.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode ocr document: %w", err)
	}

	d.DocID = w.DocID
	d.Pages = make([]Page, 0, len(w.Pages))
	for _, pw := range w.Pages {
		page := Page{
			PageNum:     pw.PageNum,
			ImageRef:    pw.ImageRef,
			ImageWidth:  pw.ImageWidth,
			ImageHeight: pw.ImageHeight,
			Errors:      []string(pw.Errors),
		}
		page.Tokens = make([]Token, 0, len(pw.Tokens))
		for _, tw := range pw.Tokens {
			page.Tokens = append(page.Tokens, Token{
				TokenID:       tw.TokenID,
				PageNum:       tw.PageNum,
				Text:          tw.Text,
				BBox:          geom.BBox{X0: tw.BBox.X0, Y0: tw.BBox.Y0, X1: tw.BBox.X1, Y1: tw.BBox.Y1},
				Confidence:    tw.Confidence,
				RawConfidence: tw.RawConfidence,
			})
		}
		d.Pages = append(d.Pages, page)
	}
	return nil
}

// MarshalJSON encodes Document back to the wire shape, used by the
// reference Stage 1 adapter when it writes an OCR artifact.
func (d Document) MarshalJSON() ([]byte, error) {
	w := documentWire{DocID: d.DocID}
	for _, p := range d.Pages {
		pw := pageWire{
			PageNum:     p.PageNum,
			ImageRef:    p.ImageRef,
			ImageWidth:  p.ImageWidth,
			ImageHeight: p.ImageHeight,
			Errors:      pageErrors(p.Errors),
		}
		for _, t := range p.Tokens {
			pw.Tokens = append(pw.Tokens, tokenWire{
				TokenID:       t.TokenID,
				PageNum:       t.PageNum,
				Text:          t.Text,
				BBox:          bboxWire{X0: t.BBox.X0, Y0: t.BBox.Y0, X1: t.BBox.X1, Y1: t.BBox.Y1},
				Confidence:    t.Confidence,
				RawConfidence: t.RawConfidence,
			})
		}
		w.Pages = append(w.Pages, pw)
	}
	return json.Marshal(w)
}
