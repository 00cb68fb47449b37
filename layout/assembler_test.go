package layout

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/packlist/invoice"
)

func build(t *testing.T, p invoice.Payload, strategy Strategy, mutate ...func(*Options)) *Result {
	t.Helper()
	opts := Options{Strategy: strategy, Typesetter: stubTypesetter{}}
	for _, m := range mutate {
		m(&opts)
	}
	res, err := Build(invoice.NewDocument(p), opts)
	require.NoError(t, err)
	return res
}

func findText(p Page, content string) (TextBox, bool) {
	for _, tb := range p.Texts {
		if tb.Content == content {
			return tb, true
		}
	}
	return TextBox{}, false
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "asset.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build(nil, Options{Typesetter: stubTypesetter{}})
	assert.ErrorIs(t, err, ErrNilDocument)

	doc := invoice.NewDocument(samplePayload(1))
	_, err = Build(doc, Options{})
	assert.ErrorIs(t, err, ErrNoTypesetter)

	_, err = Build(doc, Options{Strategy: "columns", Typesetter: stubTypesetter{}})
	assert.Error(t, err)
}

func TestStateOrder(t *testing.T) {
	for _, strategy := range []strategy{fixedLayout{}, flowLayout{}} {
		a := newAssembler(invoice.NewDocument(samplePayload(2)), Options{Typesetter: stubTypesetter{}})
		a.run(strategy)
		assert.Equal(t, []State{
			StateHeader, StatePartyBlocks, StateShipmentMeta, StateGoods,
			StateFooter, StateDeclaration, StateSignature, StateDone,
		}, a.trace)
	}
	assert.Equal(t, "ShipmentMeta", StateShipmentMeta.String())
	assert.Equal(t, StateDone, StateDone.next())
}

func TestFixedSinglePageLegacyCoordinates(t *testing.T) {
	res := build(t, samplePayload(3), StrategyFixed)
	require.Len(t, res.Pages, 1)
	assert.False(t, res.Overflow.Any())
	page := res.Pages[0]

	heading, ok := findText(page, "INVOICE CUM PACKING LIST")
	require.True(t, ok)
	assert.Equal(t, 810.0, heading.Y)
	assert.True(t, heading.Font.Bold)
	assert.Equal(t, 14.0, heading.Font.Size)
	assert.InDelta(t, A4Width/2, heading.X+heading.Width/2, 1e-9)

	for _, want := range []struct {
		content string
		x, y    float64
	}{
		{"INV-2024-001", 420, 725},
		{"2024-05-01", 420, 660},
		{"0512345678", 200, 550},
		{"CODEX EXPORTS PVT LTD", 50, 700},
		{"12 Harbour Road", 50, 690},
		{"Mumbai 400001", 50, 680},
		{"ACME IMPORTS LLC", 50, 600},
		{"Sr No.", 45, 465},
		{"Amount (USD)", 510, 465},
		{"DECLARATION", A4Width/2 - 11*8*0.6/2, 130},
	} {
		tb, ok := findText(page, want.content)
		require.True(t, ok, want.content)
		assert.InDelta(t, want.x, tb.X, 1e-9, want.content)
		assert.Equal(t, want.y, tb.Y, want.content)
	}

	label, ok := findText(page, "Pre-Carriage By:")
	require.True(t, ok)
	assert.Equal(t, 530.0, label.Y)
	assert.False(t, label.Font.Bold)
	value, ok := findText(page, "Road")
	require.True(t, ok)
	assert.Equal(t, 530.0, value.Y)

	var rows []float64
	for _, tb := range page.Texts {
		if tb.X == 45 && tb.Font.Size == 7.5 {
			rows = append(rows, tb.Y)
		}
	}
	assert.Equal(t, []float64{450, 435, 420}, rows)

	sig, ok := findText(page, "For CODEX AUTOMATION KEY")
	require.True(t, ok)
	assert.InDelta(t, A4Width-40, sig.X+sig.Width, 1e-9)
	assert.Equal(t, 70.0, sig.Y)
	_, ok = findText(page, "Authorised Signatory")
	assert.True(t, ok)
	require.Len(t, page.Lines, 1)
	assert.Equal(t, 60.0, page.Lines[0].Y1)

	brand, ok := findText(page, "CODEX AUTOMATION KEY • docwise.codexautomationkey.com")
	require.True(t, ok)
	assert.Equal(t, 25.0, brand.Y)
}

func TestFixedPartyBlockHeights(t *testing.T) {
	res := build(t, samplePayload(1), StrategyFixed)
	exporter := blocksNamed(res, "exporter")
	require.Len(t, exporter, 1)
	assert.Equal(t, 30.0, exporter[0].Height, "three lines advance three pitches")
	notify := blocksNamed(res, "notify_party")
	require.Len(t, notify, 1)
	assert.Equal(t, 10.0, notify[0].Height, "empty text advances one pitch")
}

func TestFixedOverflowIsCountedNotTruncated(t *testing.T) {
	res := build(t, samplePayload(40), StrategyFixed)
	require.Len(t, res.Pages, 1, "fixed strategy never breaks pages")
	assert.Positive(t, res.Overflow.OffCanvas)

	grid := blocksNamed(res, "goods")
	require.Len(t, grid, 1)
	assert.Len(t, grid[0].Rows, 41)
	_, ok := findText(res.Pages[0], "Stainless steel fastener M43")
	assert.True(t, ok, "last row is still emitted")
}

func TestFooterFieldsSkippedWhenEmpty(t *testing.T) {
	for _, strategy := range []Strategy{StrategyFixed, StrategyFlow} {
		t.Run(string(strategy), func(t *testing.T) {
			p := samplePayload(2)
			p.TotalAmount = "250.00"
			p.DrawbackSrNo = ""
			res := build(t, p, strategy)
			assert.Empty(t, blocksNamed(res, "drawback_sr_no"))
			total := blocksNamed(res, "total_amount")
			require.Len(t, total, 1)

			p.DrawbackSrNo = "DBK-42"
			res = build(t, p, strategy)
			dbk := blocksNamed(res, "drawback_sr_no")
			require.Len(t, dbk, 1)
			assert.Equal(t, 12.0, dbk[0].Height)
			assert.InDelta(t, total[0].Top-12, dbk[0].Top, 1e-9, "drawn directly after the previous footer row")
		})
	}
}

func TestFlowSinglePageOrdering(t *testing.T) {
	res := build(t, samplePayload(3), StrategyFlow)
	require.Len(t, res.Pages, 1)
	assert.False(t, res.Overflow.Any())

	var names []string
	for _, b := range res.Pages[0].Blocks {
		names = append(names, b.Name)
	}
	order := []string{"heading", "exporter", "consignee", "notify_party", "shipment", "goods", "declaration-title", "declaration", "signature", "signatory"}
	last := -1
	for _, n := range order {
		i := slices.Index(names, n)
		require.GreaterOrEqual(t, i, 0, n)
		assert.Greater(t, i, last, n)
		last = i
	}

	prevBottom := A4Height
	for _, b := range res.Pages[0].Blocks {
		if b.Kind == BlockSignature {
			continue
		}
		assert.LessOrEqual(t, b.Top, prevBottom+1e-9, "%s starts below the previous block", b.Name)
		prevBottom = b.Bottom()
	}

	_, ok := findText(res.Pages[0], "Page 1 of 1")
	assert.True(t, ok)
}

func TestZeroItemsSinglePage(t *testing.T) {
	p := samplePayload(0)
	p.Exporter = "CODEX EXPORTS PVT LTD"
	p.Consignee = "ACME IMPORTS LLC"
	order := []string{"heading", "exporter", "consignee", "notify_party", "goods", "declaration-title", "declaration", "signature"}

	for _, strategy := range []Strategy{StrategyFixed, StrategyFlow} {
		t.Run(string(strategy), func(t *testing.T) {
			res := build(t, p, strategy)
			require.Len(t, res.Pages, 1)
			assert.False(t, res.Overflow.Any())

			goods := blocksNamed(res, "goods")
			require.Len(t, goods, 1)
			require.Len(t, goods[0].Rows, 1, "header row only")
			assert.True(t, goods[0].Rows[0].IsHeader)

			var names []string
			for _, b := range res.Pages[0].Blocks {
				names = append(names, b.Name)
			}
			last, top := -1, A4Height
			for _, n := range order {
				i := slices.Index(names, n)
				require.GreaterOrEqual(t, i, 0, n)
				assert.Greater(t, i, last, n)
				b := res.Pages[0].Blocks[i]
				assert.Less(t, b.Top, top, "%s is drawn below the previous section", n)
				last, top = i, b.Top
			}
		})
	}
}

func numberedLines(prefix string, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return strings.Join(lines, "\n")
}

// collectLines 按页序收集以 prefix 开头的文本。
func collectLines(res *Result, prefix string) []string {
	var out []string
	for _, page := range res.Pages {
		for _, tb := range page.Texts {
			if strings.HasPrefix(tb.Content, prefix) {
				out = append(out, tb.Content)
			}
		}
	}
	return out
}

func TestFlowSplitsLongDeclarationAcrossPages(t *testing.T) {
	p := samplePayload(2)
	p.Declaration = numberedLines("Declaration line", 120)
	res := build(t, p, StrategyFlow)

	require.Greater(t, len(res.Pages), 1)
	assert.False(t, res.Overflow.Any(), "%+v", res.Overflow)
	assert.Empty(t, res.Warnings)

	want := strings.Split(p.Declaration, "\n")
	assert.Equal(t, want, collectLines(res, "Declaration line "), "every line once, in order")

	segs := blocksNamed(res, "declaration")
	require.Greater(t, len(segs), 1)
	for _, b := range segs {
		assert.GreaterOrEqual(t, b.Bottom(), testMargin.Bottom-1e-9)
	}

	titlePage, firstPage := -1, -1
	for i, page := range res.Pages {
		for _, b := range page.Blocks {
			if b.Name == "declaration-title" && titlePage < 0 {
				titlePage = i
			}
			if b.Name == "declaration" && firstPage < 0 {
				firstPage = i
			}
		}
	}
	assert.Equal(t, titlePage, firstPage, "title is not left alone on a page")
}

func TestFlowSplitsLongPartyBlockAcrossPages(t *testing.T) {
	p := samplePayload(0)
	p.Consignee = numberedLines("Consignee line", 100)
	res := build(t, p, StrategyFlow)

	require.Greater(t, len(res.Pages), 1)
	assert.False(t, res.Overflow.Any(), "%+v", res.Overflow)

	want := strings.Split(p.Consignee, "\n")
	assert.Equal(t, want, collectLines(res, "Consignee line "))
	labels := 0
	for _, page := range res.Pages {
		for _, tb := range page.Texts {
			if tb.Content == "Consignee:" {
				labels++
			}
		}
	}
	assert.Equal(t, 1, labels, "label only on the first segment")

	segs := blocksNamed(res, "consignee")
	require.Greater(t, len(segs), 1)
	assert.Equal(t, A4Height-testMargin.Top, segs[1].Top, "continuation starts at the page top")
}

func TestFlowBreaksPagesAndDecoratesEveryPage(t *testing.T) {
	res := build(t, samplePayload(80), StrategyFlow)
	require.Greater(t, len(res.Pages), 1)
	assert.False(t, res.Overflow.Any())

	seen := 0
	for i, page := range res.Pages {
		_, ok := findText(page, fmt.Sprintf("Page %d of %d", i+1, len(res.Pages)))
		assert.True(t, ok, "page number on page %d", i+1)
		_, ok = findText(page, "CODEX AUTOMATION KEY • docwise.codexautomationkey.com")
		assert.True(t, ok, "branding on page %d", i+1)
		for _, b := range page.Blocks {
			if b.Name != "goods" {
				continue
			}
			for _, r := range b.Rows {
				assert.GreaterOrEqual(t, r.Top-r.Height, testMargin.Bottom-1e-9)
				if !r.IsHeader {
					assert.Equal(t, seen, r.Index)
					seen++
				}
			}
		}
	}
	assert.Equal(t, 80, seen)
}

func TestBuildIsDeterministic(t *testing.T) {
	for _, strategy := range []Strategy{StrategyFixed, StrategyFlow} {
		a := build(t, samplePayload(30), strategy)
		b := build(t, samplePayload(30), strategy)
		assert.Equal(t, a, b)
	}
}

func TestMissingAssetsAreSkipped(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.jpg")
	res := build(t, samplePayload(1), StrategyFlow, func(o *Options) {
		o.Background = missing
		o.Logo = missing
	})
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "background")
	assert.Contains(t, res.Warnings[1], "logo")
	for _, p := range res.Pages {
		assert.Empty(t, p.Images)
	}

	_, _, err := loadAsset("background", missing)
	assert.ErrorIs(t, err, ErrAssetMissing)
	var ae *AssetError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "background", ae.Kind)
}

func TestUndecodableAssetIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	res := build(t, samplePayload(1), StrategyFixed, func(o *Options) { o.Background = path })
	require.Len(t, res.Warnings, 1)
	assert.True(t, strings.Contains(res.Warnings[0], "decode"))
	assert.Empty(t, res.Pages[0].Images)
}

func TestAssetsDrawnOnEveryFlowPage(t *testing.T) {
	bg := writePNG(t, 20, 30)
	logo := writePNG(t, 40, 20)
	res := build(t, samplePayload(80), StrategyFlow, func(o *Options) {
		o.Background = bg
		o.Logo = logo
	})
	require.Empty(t, res.Warnings)
	require.Greater(t, len(res.Pages), 1)
	for i, p := range res.Pages {
		require.NotEmpty(t, p.Images, "page %d", i+1)
		first := p.Images[0]
		assert.Equal(t, "background", first.Name, "background is drawn first")
		assert.Equal(t, A4Width, first.Width)
		assert.Equal(t, "png", first.Format)
	}
	require.Len(t, res.Pages[0].Images, 2)
	logoBox := res.Pages[0].Images[1]
	assert.Equal(t, 40.0, logoBox.Height)
	assert.Equal(t, 80.0, logoBox.Width)
}

func TestTemplateOverridesAndCompanyBinding(t *testing.T) {
	tpl := DefaultTemplate()
	tpl.Heading = "PACKING LIST ${invoice_no}"
	tpl.PageNumbers = ""
	p := samplePayload(1)
	p.Company = "ACME EXPORTS"
	res := build(t, p, StrategyFlow, func(o *Options) { o.Template = tpl })

	_, ok := findText(res.Pages[0], "PACKING LIST INV-2024-001")
	assert.True(t, ok)
	_, ok = findText(res.Pages[0], "For ACME EXPORTS")
	assert.True(t, ok)
	_, ok = findText(res.Pages[0], "Page 1 of 1")
	assert.False(t, ok)
	assert.Equal(t, "PACKING LIST ${invoice_no}", tpl.Heading, "template is not mutated")
}

func TestUnresolvedTemplateFieldIsReported(t *testing.T) {
	tpl := DefaultTemplate()
	tpl.Heading = "INVOICE ${po_number} ${po_number}"
	tpl.Signatory = "${signer|Authorised Signatory}"
	res := build(t, samplePayload(1), StrategyFlow, func(o *Options) { o.Template = tpl })

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"po_number"`)
	_, ok := findText(res.Pages[0], "INVOICE ${po_number} ${po_number}")
	assert.True(t, ok, "placeholder is kept verbatim")
	_, ok = findText(res.Pages[0], "Authorised Signatory")
	assert.True(t, ok)
}
