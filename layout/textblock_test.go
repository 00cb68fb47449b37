package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawBlockAdvancesByLinePitch(t *testing.T) {
	font := Font{Family: "Helvetica", Size: 8}
	cases := []struct {
		name  string
		text  string
		lines int
	}{
		{"three lines", "line one\nline two\nline three", 3},
		{"empty is label only", "", 1},
		{"single", "one", 1},
		{"br markers", "a<br>b", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pc := newTestCollector()
			c := At(NewCursor(800, 42), 700)
			got := DrawBlock(pc, c, TextBlock{X: 50, Label: "Exporter:", Text: tc.text, Font: font, Pitch: 10, Baseline: true})
			assert.InDelta(t, float64(tc.lines)*10, c.Y-got.Y, 1e-9)
		})
	}
}

func TestDrawBlockBaselines(t *testing.T) {
	pc := newTestCollector()
	font := Font{Family: "Helvetica", Size: 8}
	c := At(NewCursor(800, 42), 700)
	DrawBlock(pc, c, TextBlock{Name: "exporter", X: 50, Text: "A\nB\nC", Font: font, Pitch: 10, Baseline: true})

	res := pc.Result(DocumentMeta{}, StrategyFixed)
	texts := res.Pages[0].Texts
	require.Len(t, texts, 3)
	for i, want := range []float64{700, 690, 680} {
		assert.Equal(t, want, texts[i].Y)
		assert.Equal(t, 50.0, texts[i].X)
	}
	require.Len(t, res.Pages[0].Blocks, 1)
	b := res.Pages[0].Blocks[0]
	assert.Equal(t, LayoutBlock{Kind: BlockText, Name: "exporter", Anchor: AnchorAbsolute, X: 50, Top: 700, Height: 30}, b)
}

func TestDrawBlockLabelSharesFirstRow(t *testing.T) {
	pc := newTestCollector()
	font := Font{Family: "Helvetica", Size: 10}
	c := NewCursor(800, 42)
	DrawBlock(pc, c, TextBlock{X: 36, Label: "Exporter:", LabelWidth: 70, Text: "ACME\nDubai", Font: font, Pitch: 12})

	texts := pc.Result(DocumentMeta{}, StrategyFlow).Pages[0].Texts
	require.Len(t, texts, 3)
	assert.Equal(t, "Exporter:", texts[0].Content)
	assert.True(t, texts[0].Font.Bold)
	assert.Equal(t, 792.0, texts[0].Y, "top minus ascent")
	assert.Equal(t, texts[0].Y, texts[1].Y)
	assert.Equal(t, 106.0, texts[1].X)
	assert.Equal(t, 780.0, texts[2].Y)
}

func TestDrawBlockAlignment(t *testing.T) {
	pc := newTestCollector()
	font := Font{Family: "Helvetica", Size: 10} // 5pt per rune
	c := At(NewCursor(800, 42), 500)
	DrawBlock(pc, c, TextBlock{X: 300, Text: "abcd", Font: font, Pitch: 10, Align: AlignCenter, Baseline: true})
	DrawBlock(pc, c, TextBlock{X: 300, Text: "abcd", Font: font, Pitch: 10, Align: AlignRight, Baseline: true})

	texts := pc.Result(DocumentMeta{}, StrategyFixed).Pages[0].Texts
	require.Len(t, texts, 2)
	assert.Equal(t, 290.0, texts[0].X)
	assert.Equal(t, 280.0, texts[1].X)
}

func TestDrawBlockPassesControlCharacters(t *testing.T) {
	pc := newTestCollector()
	c := NewCursor(800, 42)
	DrawBlock(pc, c, TextBlock{X: 10, Text: "a\tb\x01", Font: Font{Size: 8}, Pitch: 10})
	texts := pc.Result(DocumentMeta{}, StrategyFlow).Pages[0].Texts
	require.Len(t, texts, 1)
	assert.Equal(t, "a\tb\x01", texts[0].Content)
}

func TestMeasureBlockMatchesDraw(t *testing.T) {
	pc := newTestCollector()
	b := TextBlock{X: 36, Label: "Notes:", LabelWidth: 40, Text: "some words that will wrap across several lines", Font: Font{Size: 10}, Pitch: 12, WrapWidth: 120}
	c := NewCursor(800, 42)
	got := DrawBlock(pc, c, b)
	assert.InDelta(t, MeasureBlock(stubTypesetter{}, b), c.Y-got.Y, 1e-9)
	assert.Greater(t, c.Y-got.Y, 12.0)
}

func TestDrawBlockSplitContinuesOnNextPage(t *testing.T) {
	pc := NewCollector(stubTypesetter{}, A4Width, 242, testMargin)
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "row"
	}
	b := TextBlock{Name: "notes", X: 36, Label: "Notes:", Text: strings.Join(lines, "\n"), Font: Font{Size: 8}, Pitch: 10}
	got := DrawBlockSplit(pc, At(NewCursor(200, 42), 100), b)

	assert.Equal(t, 3, pc.PageCount())
	assert.Equal(t, 2, got.Page)
	assert.False(t, pc.Overflow().Any())

	res := pc.Result(DocumentMeta{}, StrategyFlow)
	segs := blocksNamed(res, "notes")
	require.Len(t, segs, 3)
	assert.Equal(t, []float64{50, 150, 100}, []float64{segs[0].Height, segs[1].Height, segs[2].Height})
	assert.Equal(t, 200.0, segs[1].Top)

	labels := 0
	for _, p := range res.Pages {
		for _, tb := range p.Texts {
			if tb.Content == "Notes:" {
				labels++
			}
		}
	}
	assert.Equal(t, 1, labels)
}

func TestDrawBlockSplitKeepsShortBlockWhole(t *testing.T) {
	b := TextBlock{Name: "notes", X: 36, Text: "a\nb\nc", Font: Font{Size: 8}, Pitch: 10}
	c := NewCursor(800, 42)

	whole := newTestCollector()
	split := newTestCollector()
	assert.Equal(t, DrawBlock(whole, c, b), DrawBlockSplit(split, c, b))
	assert.Equal(t, whole.Result(DocumentMeta{}, StrategyFlow), split.Result(DocumentMeta{}, StrategyFlow))
}
