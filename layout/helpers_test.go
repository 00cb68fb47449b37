package layout

import (
	"strconv"
	"unicode/utf8"

	"github.com/ByLCY/packlist/invoice"
)

// stubTypesetter 用固定字宽做度量，使几何断言精确可算：
// 常规字每字符 0.5em，加粗 0.6em，ascent 为 0.8em。
type stubTypesetter struct{}

func (stubTypesetter) TextWidth(text string, f Font) float64 {
	w := 0.5
	if f.Bold {
		w = 0.6
	}
	return float64(utf8.RuneCountInString(text)) * f.Size * w
}

func (stubTypesetter) Ascent(f Font) float64 { return f.Size * 0.8 }

var testMargin = Margin{Top: 36, Right: 36, Bottom: 42, Left: 36}

func newTestCollector() *Collector {
	return NewCollector(stubTypesetter{}, A4Width, A4Height, testMargin)
}

func samplePayload(items int) invoice.Payload {
	p := invoice.Payload{
		Exporter:                  "CODEX EXPORTS PVT LTD\n12 Harbour Road\nMumbai 400001",
		Consignee:                 "ACME IMPORTS LLC\nDubai",
		NotifyParty:               "",
		InvoiceNo:                 "INV-2024-001",
		InvoiceDate:               "2024-05-01",
		IECode:                    "0512345678",
		BuyerOrder:                "PO-77",
		PortOfLoading:             "Nhava Sheva",
		FinalDestination:          "Jebel Ali",
		VesselNo:                  "MSC 123",
		TermsOfDelivery:           "FOB",
		ContainerNo:               "MSCU1234567",
		SealNo:                    "SL-9",
		Marks:                     "ACME/DXB",
		PreCarriageBy:             "Road",
		PlaceOfReceipt:            "Pune",
		CountryOfFinalDestination: "UAE",
		PortOfDischarge:           "Jebel Ali",
		TermsOfPayment:            "100% advance",
		Declaration:               "We declare that this invoice shows the actual price of the goods\nand that all particulars are true and correct.",
	}
	for i := 0; i < items; i++ {
		p.Goods = append(p.Goods, invoice.Item{
			SrNo:        strconv.Itoa(i + 1),
			Description: "Stainless steel fastener M" + strconv.Itoa(i+4),
			Units:       "100",
			Rate:        "1.25",
			Amount:      "125.00",
		})
	}
	return p
}

func blocksNamed(res *Result, name string) []LayoutBlock {
	var out []LayoutBlock
	for _, p := range res.Pages {
		for _, b := range p.Blocks {
			if b.Name == name {
				out = append(out, b)
			}
		}
	}
	return out
}

func textsOnPage(p Page) []string {
	out := make([]string, 0, len(p.Texts))
	for _, tb := range p.Texts {
		out = append(out, tb.Content)
	}
	return out
}
