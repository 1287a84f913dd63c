package artifact

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/engdraw/groupdoc/config"
	"github.com/engdraw/groupdoc/internal/geom"
	"github.com/engdraw/groupdoc/internal/grouperr"
	"github.com/engdraw/groupdoc/internal/ocrmodel"
)

func conf(v float64) *float64 { return &v }

func tok(id string, pageNum int, text string, x0, y0, x1, y1 int, c *float64) ocrmodel.Token {
	return ocrmodel.Token{
		TokenID:    id,
		PageNum:    pageNum,
		Text:       text,
		BBox:       geom.BBox{X0: x0, Y0: y0, X1: x1, Y1: y1},
		Confidence: c,
	}
}

func onePageDoc(tokens ...ocrmodel.Token) ocrmodel.Document {
	return ocrmodel.Document{
		DocID: "doc1",
		Pages: []ocrmodel.Page{{PageNum: 1, ImageWidth: 1000, ImageHeight: 800, Tokens: tokens}},
	}
}

func TestRun_S1_EmptyDocument(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected the empty page to remain in pages[], got %d pages", len(doc.Pages))
	}
	page := doc.Pages[0]
	if len(page.Lines) != 0 || len(page.Blocks) != 0 {
		t.Errorf("expected empty lines/blocks, got %d/%d", len(page.Lines), len(page.Blocks))
	}
	if page.Regions == nil || len(*page.Regions) != 0 {
		t.Errorf("expected empty regions list when regions enabled, got %v", page.Regions)
	}
	if doc.Meta.NLines != 0 || doc.Meta.NBlocks != 0 {
		t.Errorf("expected zero counts, got n_lines=%d n_blocks=%d", doc.Meta.NLines, doc.Meta.NBlocks)
	}
}

func TestRun_S2_TwoAlignedTokens(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
		tok("p001_t000001", 1, "B", 40, 11, 60, 21, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}

	page := doc.Pages[0]
	if len(page.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(page.Lines))
	}
	line := page.Lines[0]
	if line.LineID != "p001_l000000" {
		t.Errorf("line id %s, want p001_l000000", line.LineID)
	}
	if len(line.TokenIDs) != 2 || line.TokenIDs[0] != "p001_t000000" || line.TokenIDs[1] != "p001_t000001" {
		t.Errorf("token order %v", line.TokenIDs)
	}
	want := geom.BBox{X0: 10, Y0: 10, X1: 60, Y1: 21}
	if line.BBox != want {
		t.Errorf("line bbox %+v, want %+v", line.BBox, want)
	}
	if len(page.Blocks) != 1 || page.Blocks[0].BlockID != "p001_b000000" {
		t.Errorf("expected single block p001_b000000, got %+v", page.Blocks)
	}
	if len(doc.Meta.EffectiveThresholds) != 1 || doc.Meta.EffectiveThresholds[0].LineYThresholdPx != 7 {
		t.Errorf("expected recorded line threshold 7 (median 10 * 0.7), got %+v", doc.Meta.EffectiveThresholds)
	}
}

func TestRun_S3_StackedTokensSplitIntoTwoBlocks(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
		tok("p001_t000001", 1, "B", 10, 40, 30, 50, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	page := doc.Pages[0]
	if len(page.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(page.Lines))
	}
	if len(page.Blocks) != 2 {
		t.Fatalf("expected 2 blocks (gap 20 > threshold 15), got %d", len(page.Blocks))
	}
}

func TestRun_BlockGapExactlyAtThresholdIsInclusive(t *testing.T) {
	// Median height 10, block_y_gap_k 1.5 -> threshold 15. A gap of
	// exactly 15 merges; 16 splits.
	merge, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
		tok("p001_t000001", 1, "B", 10, 35, 30, 45, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(merge.Pages[0].Blocks); n != 1 {
		t.Errorf("gap equal to threshold should merge, got %d blocks", n)
	}

	split, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
		tok("p001_t000001", 1, "B", 10, 36, 30, 46, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(split.Pages[0].Blocks); n != 2 {
		t.Errorf("gap above threshold should split, got %d blocks", n)
	}
}

func TestRun_S4_LowConfidenceTokenDropped(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, conf(0.9)),
		tok("p001_t000001", 1, "B", 40, 11, 60, 21, conf(0.2)),
	), config.Default().WithConfidenceFloor(0.5), 1)
	if err != nil {
		t.Fatal(err)
	}
	page := doc.Pages[0]
	if len(page.Lines) != 1 || len(page.Lines[0].TokenIDs) != 1 {
		t.Fatalf("expected single-token line for the surviving token, got %+v", page.Lines)
	}
	if len(doc.Meta.DroppedTokens) != 1 ||
		doc.Meta.DroppedTokens[0].TokenID != "p001_t000001" ||
		doc.Meta.DroppedTokens[0].Reason != "below_confidence_floor" {
		t.Errorf("dropped ledger %+v", doc.Meta.DroppedTokens)
	}
}

func TestRun_S5_SwappedBBoxRepairedAndWarned(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 30, 10, 10, 20, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	page := doc.Pages[0]
	if len(page.Lines) != 1 {
		t.Fatalf("expected repaired token retained in a line, got %+v", page.Lines)
	}
	if got := page.Lines[0].BBox; got != (geom.BBox{X0: 10, Y0: 10, X1: 30, Y1: 20}) {
		t.Errorf("line bbox %+v, want repaired box", got)
	}
	if len(doc.Meta.Warnings) != 1 {
		t.Errorf("expected one repaired_swapped warning, got %v", doc.Meta.Warnings)
	}
	if len(doc.Meta.DroppedTokens) != 0 {
		t.Errorf("repair is a warning, not a drop: %+v", doc.Meta.DroppedTokens)
	}
}

func TestRun_S6_WhitespaceTokenDropped(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "  ", 10, 10, 30, 20, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages[0].Lines) != 0 {
		t.Errorf("expected page empty after whitespace drop")
	}
	if len(doc.Meta.DroppedTokens) != 1 || doc.Meta.DroppedTokens[0].Reason != "whitespace" {
		t.Errorf("dropped ledger %+v", doc.Meta.DroppedTokens)
	}
}

func TestRun_DeterministicBytes(t *testing.T) {
	in := onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, conf(0.9)),
		tok("p001_t000001", 1, "B", 40, 11, 60, 21, conf(0.8)),
		tok("p001_t000002", 1, "C", 10, 40, 30, 50, nil),
	)

	first, err := Run(context.Background(), in, config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), in, config.Default(), 4)
	if err != nil {
		t.Fatal(err)
	}

	b1, err := Encode(first)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := Encode(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1, b2) {
		t.Errorf("serial and parallel runs differ:\n%s\n---\n%s", b1, b2)
	}
}

func TestRun_InputOrderInvariance(t *testing.T) {
	t1 := tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil)
	t2 := tok("p001_t000001", 1, "B", 40, 11, 60, 21, nil)
	t3 := tok("p001_t000002", 1, " ", 70, 11, 90, 21, nil)

	forward, err := Run(context.Background(), onePageDoc(t1, t2, t3), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	reversed, err := Run(context.Background(), onePageDoc(t3, t2, t1), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}

	b1, _ := Encode(forward)
	b2, _ := Encode(reversed)
	if !bytes.Equal(b1, b2) {
		t.Errorf("permuting input token order changed the artifact:\n%s\n---\n%s", b1, b2)
	}
}

func TestRun_DuplicateTokenIDIsFatal(t *testing.T) {
	_, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
		tok("p001_t000000", 1, "B", 40, 11, 60, 21, nil),
	), config.Default(), 1)
	if !grouperr.Is(err, grouperr.InputMalformed) {
		t.Fatalf("expected InputMalformed, got %v", err)
	}
}

func TestRun_PageNumMismatchIsFatal(t *testing.T) {
	_, err := Run(context.Background(), onePageDoc(
		tok("p002_t000000", 2, "A", 10, 10, 30, 20, nil),
	), config.Default(), 1)
	if !grouperr.Is(err, grouperr.InputMalformed) {
		t.Fatalf("expected InputMalformed, got %v", err)
	}
}

func TestRun_InvalidConfigIsFatal(t *testing.T) {
	_, err := Run(context.Background(), onePageDoc(), config.Default().WithConfidenceFloor(2.0), 1)
	if !grouperr.Is(err, grouperr.ConfigInvalid) {
		t.Fatalf("expected ConfigInvalid, got %v", err)
	}
}

func TestRun_RegionsDisabledOmitsRegions(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
	), config.Default().WithRegionsEnabled(false), 1)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Pages[0].Regions != nil {
		t.Errorf("expected regions nil when disabled, got %v", doc.Pages[0].Regions)
	}
	b, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte(`"regions": null`)) {
		t.Errorf("expected regions serialized as null, got:\n%s", b)
	}
}

func TestRun_TitleBlockRegionInBottomRightQuadrant(t *testing.T) {
	// Page 1000x800: a block at x>=600, y>=480 with width>=200 and
	// height>=64 qualifies as TITLE_BLOCK.
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "TITLE", 700, 600, 950, 680, nil),
		tok("p001_t000001", 1, "NOTE", 10, 10, 60, 30, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	regions := *doc.Pages[0].Regions
	if len(regions) != 2 {
		t.Fatalf("expected TITLE_BLOCK + UNKNOWN regions, got %+v", regions)
	}
	var sawTitle bool
	for _, r := range regions {
		if r.Label.String() == "TITLE_BLOCK" {
			sawTitle = true
		}
	}
	if !sawTitle {
		t.Errorf("expected a TITLE_BLOCK region, got %+v", regions)
	}
}

func TestWriteCanonical_AtomicAndTrailingNewline(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(
		tok("p001_t000000", 1, "A", 10, 10, 30, 20, nil),
	), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "grouping.json")
	if err := WriteCanonical(out, doc); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Errorf("expected trailing newline")
	}
	if err := ValidateOutputBytes(data); err != nil {
		t.Errorf("written artifact fails its own schema: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(out), "*.tmp-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestWriteCanonical_UnwritablePath(t *testing.T) {
	doc, err := Run(context.Background(), onePageDoc(), config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	err = WriteCanonical(filepath.Join(t.TempDir(), "no", "such", "dir", "out.json"), doc)
	if !grouperr.Is(err, grouperr.OutputUnwritable) {
		t.Fatalf("expected OutputUnwritable, got %v", err)
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	_, err := ReadInput(filepath.Join(t.TempDir(), "absent.json"))
	if !grouperr.Is(err, grouperr.InputMissing) {
		t.Fatalf("expected InputMissing, got %v", err)
	}
}
