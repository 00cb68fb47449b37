// Package invoice holds the immutable invoice cum packing list document
// consumed by the layout engine, and the JSON payload it is built from.
package invoice

import "strings"

// Role 标识当事方区块。
type Role string

const (
	RoleExporter  Role = "exporter"
	RoleConsignee Role = "consignee"
	RoleNotify    Role = "notify_party"
)

// Party 是一个多行当事方区块，Text 中的换行标记由布局层拆分。
type Party struct {
	Role  Role
	Label string
	Text  string
}

// LineItem 为货物表中的一行，顺序即展示顺序。
type LineItem struct {
	SrNo        string
	Description string
	Units       string
	Rate        string
	Amount      string
}

// Cells 按表格列顺序返回单元格文本。
func (li LineItem) Cells() []string {
	return []string{li.SrNo, li.Description, li.Units, li.Rate, li.Amount}
}

// FooterField 是一条可选页脚记录，Value 为空时不渲染。
type FooterField struct {
	Key   string
	Label string
	Value string
}

// Present 报告该字段是否需要渲染。
func (f FooterField) Present() bool { return strings.TrimSpace(f.Value) != "" }

// Field 是运输信息中的一个 label/value 对。
type Field struct {
	Key   string
	Label string
	Value string
}

// Header 汇总发票抬头与运输信息。
type Header struct {
	InvoiceNo                 string
	InvoiceDate               string
	IECode                    string
	BuyerOrder                string
	PreCarriageBy             string
	PlaceOfReceipt            string
	VesselNo                  string
	PortOfLoading             string
	PortOfDischarge           string
	FinalDestination          string
	CountryOfFinalDestination string
	TermsOfDelivery           string
	TermsOfPayment            string
	ContainerNo               string
	SealNo                    string
	Marks                     string
}

// Pairs 以固定顺序返回全部运输字段（包括空值）。
func (h Header) Pairs() []Field {
	return []Field{
		{"invoice_no", "Invoice No.", h.InvoiceNo},
		{"invoice_date", "Invoice Date", h.InvoiceDate},
		{"ie_code", "IE Code", h.IECode},
		{"buyer_order", "Buyer's Order No.", h.BuyerOrder},
		{"pre_carriage_by", "Pre-Carriage By", h.PreCarriageBy},
		{"place_of_receipt", "Place of Receipt", h.PlaceOfReceipt},
		{"vessel_no", "Vessel / Flight No.", h.VesselNo},
		{"port_of_loading", "Port of Loading", h.PortOfLoading},
		{"port_of_discharge", "Port of Discharge", h.PortOfDischarge},
		{"final_destination", "Final Destination", h.FinalDestination},
		{"country_of_final_destination", "Country of Final Destination", h.CountryOfFinalDestination},
		{"terms_of_delivery", "Terms of Delivery", h.TermsOfDelivery},
		{"terms_of_payment", "Terms of Payment", h.TermsOfPayment},
		{"container_no", "Container No.", h.ContainerNo},
		{"seal_no", "Seal No.", h.SealNo},
		{"marks", "Marks & Nos.", h.Marks},
	}
}

// Document 是渲染引擎的输入，构造后不可变。
type Document struct {
	parties     []Party
	header      Header
	items       []LineItem
	footer      []FooterField
	declaration string
	company     string
}

// NewDocument 从已校验的 payload 构造文档。
func NewDocument(p Payload) *Document {
	d := &Document{
		parties: []Party{
			{Role: RoleExporter, Label: "Exporter", Text: p.Exporter},
			{Role: RoleConsignee, Label: "Consignee", Text: p.Consignee},
			{Role: RoleNotify, Label: "Notify Party", Text: p.NotifyParty},
		},
		header: Header{
			InvoiceNo:                 p.InvoiceNo,
			InvoiceDate:               p.InvoiceDate,
			IECode:                    p.IECode,
			BuyerOrder:                p.BuyerOrder,
			PreCarriageBy:             p.PreCarriageBy,
			PlaceOfReceipt:            p.PlaceOfReceipt,
			VesselNo:                  p.VesselNo,
			PortOfLoading:             p.PortOfLoading,
			PortOfDischarge:           p.PortOfDischarge,
			FinalDestination:          p.FinalDestination,
			CountryOfFinalDestination: p.CountryOfFinalDestination,
			TermsOfDelivery:           p.TermsOfDelivery,
			TermsOfPayment:            p.TermsOfPayment,
			ContainerNo:               p.ContainerNo,
			SealNo:                    p.SealNo,
			Marks:                     p.Marks,
		},
		declaration: p.Declaration,
		company:     strings.TrimSpace(p.Company),
	}
	d.items = make([]LineItem, 0, len(p.Goods))
	for _, g := range p.Goods {
		d.items = append(d.items, LineItem(g))
	}
	d.footer = []FooterField{
		{Key: "total_amount", Label: "Total Amount", Value: p.TotalAmount},
		{Key: "amount_in_words", Label: "Amount in Words", Value: p.AmountInWords},
		{Key: "total_packages", Label: "Total Packages", Value: p.TotalPackages},
		{Key: "net_weight", Label: "Net Weight", Value: p.NetWeight},
		{Key: "gross_weight", Label: "Gross Weight", Value: p.GrossWeight},
		{Key: "drawback_sr_no", Label: "Drawback Sr. No.", Value: p.DrawbackSrNo},
		{Key: "rodtep_claim", Label: "RoDTEP Claim", Value: p.RodtepClaim},
	}
	for _, e := range p.ExtraFooter {
		d.footer = append(d.footer, FooterField{Key: "extra", Label: e.Label, Value: e.Value})
	}
	return d
}

func (d *Document) Parties() []Party { return append([]Party(nil), d.parties...) }
func (d *Document) Header() Header   { return d.header }
func (d *Document) Items() []LineItem {
	return append([]LineItem(nil), d.items...)
}
func (d *Document) Footer() []FooterField { return append([]FooterField(nil), d.footer...) }
func (d *Document) Declaration() string   { return d.declaration }

// Company 返回签名栏使用的公司名，未提供时为空，由模板决定默认值。
func (d *Document) Company() string { return d.company }

// Fields 把文档字段展开为 map，供 ${...} 插值使用。
func (d *Document) Fields() map[string]any {
	out := map[string]any{
		"declaration": d.declaration,
		"item_count":  len(d.items),
	}
	if d.company != "" {
		out["company"] = d.company
	}
	for _, p := range d.parties {
		out[string(p.Role)] = p.Text
	}
	for _, f := range d.header.Pairs() {
		out[f.Key] = f.Value
	}
	for _, f := range d.footer {
		if f.Key != "extra" {
			out[f.Key] = f.Value
		}
	}
	return out
}
