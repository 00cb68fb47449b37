package layout

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodsTable(rows int) FlowTable {
	tpl := DefaultTemplate()
	ft := FlowTable{
		Name:        "goods",
		X:           36,
		Width:       A4Width - 72,
		Columns:     tpl.GoodsColumns,
		Header:      tpl.GoodsHeaders,
		Rules:       tpl.GoodsRules,
		Font:        Font{Family: "Helvetica", Size: 7.5},
		Padding:     tpl.TablePadding,
		Leading:     tpl.TableLeading,
		GridWidth:   tpl.GridWidth,
		BoxWidth:    tpl.BoxWidth,
		BorderColor: BorderGray,
	}
	for i := 0; i < rows; i++ {
		ft.Rows = append(ft.Rows, []string{strconv.Itoa(i + 1), "Bolt", "10", "1.00", "10.00"})
	}
	return ft
}

// singleRow 是 7.5pt 字号、1.25 倍行距、上下各 3pt 内边距的一行高度。
const singleRow = 7.5*1.25 + 6

func tableSegments(res *Result, name string) []LayoutBlock {
	return blocksNamed(res, name)
}

func TestFlowTableHeaderPlusRows(t *testing.T) {
	pc := newTestCollector()
	c := NewCursor(A4Height-36, 42)
	got, stats := DrawFlowTable(pc, c, goodsTable(5))

	assert.Equal(t, 5, stats.DataRows)
	assert.Equal(t, 1, stats.HeaderRows)
	assert.Equal(t, 1, stats.Pages)
	require.Len(t, stats.RowHeights, 5)
	assert.InDelta(t, 6*singleRow, stats.Total, 1e-9)
	assert.InDelta(t, stats.Total, c.Y-got.Y, 1e-9, "cursor advances by header plus sum of row heights")

	res := pc.Result(DocumentMeta{}, StrategyFlow)
	segs := tableSegments(res, "goods")
	require.Len(t, segs, 1)
	require.Len(t, segs[0].Rows, 6)
	assert.True(t, segs[0].Rows[0].IsHeader)
	assert.Equal(t, -1, segs[0].Rows[0].Index)
	for i, r := range segs[0].Rows[1:] {
		assert.Equal(t, i, r.Index)
	}
}

func TestFlowTableHeaderStyle(t *testing.T) {
	pc := newTestCollector()
	DrawFlowTable(pc, NewCursor(A4Height-36, 42), goodsTable(1))
	res := pc.Result(DocumentMeta{}, StrategyFlow)

	var header, data *TextBox
	for i := range res.Pages[0].Texts {
		tb := &res.Pages[0].Texts[i]
		switch tb.Content {
		case "Sr No.":
			header = tb
		case "Bolt":
			data = tb
		}
	}
	require.NotNil(t, header)
	require.NotNil(t, data)
	assert.True(t, header.Font.Bold)
	assert.False(t, data.Font.Bold)

	filled := 0
	for _, r := range res.Pages[0].Rects {
		if r.FillColor != nil {
			filled++
			assert.Equal(t, LightGray, *r.FillColor)
		}
	}
	assert.Equal(t, 5, filled, "one filled cell per header column")
}

func TestFlowTableMultiLineCellSetsRowHeight(t *testing.T) {
	pc := newTestCollector()
	ft := goodsTable(0)
	ft.Rows = [][]string{{"1", "Bolt\nM8 x 40\nzinc plated", "10", "1.00", "10.00"}}
	_, stats := DrawFlowTable(pc, NewCursor(A4Height-36, 42), ft)
	require.Len(t, stats.RowHeights, 1)
	assert.InDelta(t, 3*7.5*1.25+6, stats.RowHeights[0], 1e-9)
}

func TestFlowTableBreaksPagesWithoutSplittingRows(t *testing.T) {
	pc := newTestCollector()
	c := NewCursor(A4Height-36, 42)
	got, stats := DrawFlowTable(pc, c, goodsTable(60))

	assert.Equal(t, 60, stats.DataRows)
	assert.Equal(t, 1, stats.HeaderRows, "header is not repeated by default")
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 2, pc.PageCount())
	assert.False(t, pc.Overflow().Any())

	res := pc.Result(DocumentMeta{}, StrategyFlow)
	segs := tableSegments(res, "goods")
	require.Len(t, segs, 2)
	next := 0
	for _, seg := range segs {
		for _, r := range seg.Rows {
			assert.GreaterOrEqual(t, r.Top-r.Height, 42-1e-9, "row %d crosses the bottom margin", r.Index)
			if r.IsHeader {
				continue
			}
			assert.Equal(t, next, r.Index, "rows are emitted once, in order")
			next++
		}
	}
	assert.Equal(t, 60, next)
	assert.Equal(t, A4Height-36, segs[1].Top, "continuation starts at the page top")
}

func TestFlowTableRepeatHeader(t *testing.T) {
	pc := NewCollector(stubTypesetter{}, A4Width, 242, testMargin)
	ft := goodsTable(20)
	ft.RepeatHeader = true
	_, stats := DrawFlowTable(pc, NewCursor(200, 42), ft)

	assert.Greater(t, stats.Pages, 1)
	assert.Equal(t, stats.Pages, stats.HeaderRows)
	res := pc.Result(DocumentMeta{}, StrategyFlow)
	for _, seg := range tableSegments(res, "goods") {
		require.NotEmpty(t, seg.Rows)
		assert.True(t, seg.Rows[0].IsHeader)
	}
}

func TestFlowTableOversizedRowGetsItsOwnPage(t *testing.T) {
	pc := NewCollector(stubTypesetter{}, A4Width, 242, testMargin)
	ft := goodsTable(0)
	ft.Header = nil
	ft.Rows = [][]string{
		{"1", "short", "1", "1", "1"},
		{"2", strings.Repeat("line\n", 20), "1", "1", "1"},
	}
	got, stats := DrawFlowTable(pc, NewCursor(200, 42), ft)

	assert.Equal(t, 1, stats.Oversized)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 0.0, got.Remaining)
	assert.Positive(t, pc.Overflow().BelowMargin)

	res := pc.Result(DocumentMeta{}, StrategyFlow)
	segs := tableSegments(res, "goods")
	require.Len(t, segs, 2)
	require.Len(t, segs[1].Rows, 1)
	assert.Equal(t, 1, segs[1].Rows[0].Index)
}

func TestFlowTableHeaderStaysWithOversizedFirstRow(t *testing.T) {
	pc := NewCollector(stubTypesetter{}, A4Width, 242, testMargin)
	ft := goodsTable(0)
	ft.Rows = [][]string{{"1", strings.Repeat("line\n", 20), "1", "1", "1"}}
	_, stats := DrawFlowTable(pc, NewCursor(200, 42), ft)

	assert.Equal(t, 1, stats.Oversized)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 1, pc.PageCount())

	res := pc.Result(DocumentMeta{}, StrategyFlow)
	segs := tableSegments(res, "goods")
	require.Len(t, segs, 1)
	require.Len(t, segs[0].Rows, 2)
	assert.True(t, segs[0].Rows[0].IsHeader)
	assert.Equal(t, 0, segs[0].Rows[1].Index)
}

func TestFlowTableEmpty(t *testing.T) {
	pc := newTestCollector()
	c := NewCursor(800, 42)
	got, stats := DrawFlowTable(pc, c, FlowTable{Name: "x", Width: 100})
	assert.Equal(t, c, got)
	assert.Equal(t, TableStats{}, stats)

	got, stats = DrawFlowTable(pc, c, goodsTable(0))
	assert.Equal(t, 1, stats.HeaderRows)
	assert.Equal(t, 0, stats.DataRows)
	assert.InDelta(t, singleRow, c.Y-got.Y, 1e-9)
}
