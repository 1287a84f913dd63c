package cells

import (
	"testing"

	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/groupmodel"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

func tok(id string, x0, y0, x1, y1 int) ocrmodel.Token {
	return ocrmodel.Token{TokenID: id, BBox: geom.BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func line(id string, tokens ...ocrmodel.Token) groupmodel.Line {
	l := groupmodel.Line{LineID: id}
	boxes := make([]geom.BBox, 0, len(tokens))
	for _, t := range tokens {
		l.TokenIDs = append(l.TokenIDs, t.TokenID)
		boxes = append(boxes, t.BBox)
	}
	l.BBox = geom.UnionAll(boxes)
	return l
}

func TestDetect_AlignedColumnsAcrossTwoLines(t *testing.T) {
	// Two lines whose tokens start at the same two x positions: two
	// column candidates, each spanning both lines.
	a1, a2 := tok("t1", 10, 10, 40, 20), tok("t2", 100, 10, 140, 20)
	b1, b2 := tok("t3", 10, 30, 40, 40), tok("t4", 100, 30, 140, 40)
	lines := []groupmodel.Line{
		line("p001_l000000", a1, a2),
		line("p001_l000001", b1, b2),
	}
	all := []ocrmodel.Token{a1, a2, b1, b2}

	d := NewDetector(DefaultConfig())
	got := d.Detect(1, lines, all)

	if len(got) != 2 {
		t.Fatalf("expected 2 column candidates, got %d: %+v", len(got), got)
	}
	for _, c := range got {
		if len(c.TokenIDs) != 2 {
			t.Errorf("expected 2 tokens per column, got %v", c.TokenIDs)
		}
		if c.Score != 1.0 {
			t.Errorf("perfectly aligned column should score 1.0, got %v", c.Score)
		}
	}
}

func TestDetect_SingleLineYieldsNothing(t *testing.T) {
	a1 := tok("t1", 10, 10, 40, 20)
	d := NewDetector(DefaultConfig())
	if got := d.Detect(1, []groupmodel.Line{line("p001_l000000", a1)}, []ocrmodel.Token{a1}); len(got) != 0 {
		t.Errorf("a single line cannot form a column candidate, got %+v", got)
	}
}

func TestDetect_MisalignedTokensFormNoSharedColumn(t *testing.T) {
	// Second line's token is far to the right of the first line's; the
	// columns never span two lines so nothing is emitted.
	a1 := tok("t1", 10, 10, 40, 20)
	b1 := tok("t2", 300, 30, 340, 40)
	lines := []groupmodel.Line{
		line("p001_l000000", a1),
		line("p001_l000001", b1),
	}

	d := NewDetector(DefaultConfig())
	if got := d.Detect(1, lines, []ocrmodel.Token{a1, b1}); len(got) != 0 {
		t.Errorf("expected no candidates, got %+v", got)
	}
}

func TestMintIDs_ContiguousPerPage(t *testing.T) {
	cands := []groupmodel.CellCandidate{
		{TokenIDs: []string{"t3"}, BBox: geom.BBox{X0: 0, Y0: 50, X1: 10, Y1: 60}},
		{TokenIDs: []string{"t1"}, BBox: geom.BBox{X0: 0, Y0: 10, X1: 10, Y1: 20}},
	}
	minted := MintIDs(1, cands)
	if minted[0].CellID != "p001_c000000" || minted[1].CellID != "p001_c000001" {
		t.Errorf("expected contiguous ids in y order, got %s, %s", minted[0].CellID, minted[1].CellID)
	}
	if minted[0].BBox.Y0 != 10 {
		t.Errorf("expected y-sorted order after minting, got %+v", minted)
	}
}
