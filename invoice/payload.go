package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Payload 与既有接口的 JSON 字段一一对应，由边界层解码后交给 NewDocument。
type Payload struct {
	Exporter                  string `json:"exporter"`
	Consignee                 string `json:"consignee"`
	NotifyParty               string `json:"notify_party"`
	InvoiceNo                 string `json:"invoice_no"`
	InvoiceDate               string `json:"invoice_date"`
	IECode                    string `json:"ie_code"`
	BuyerOrder                string `json:"buyer_order"`
	PortOfLoading             string `json:"port_of_loading"`
	FinalDestination          string `json:"final_destination"`
	VesselNo                  string `json:"vessel_no"`
	TermsOfDelivery           string `json:"terms_of_delivery"`
	ContainerNo               string `json:"container_no"`
	SealNo                    string `json:"seal_no"`
	Marks                     string `json:"marks"`
	PreCarriageBy             string `json:"pre_carriage_by"`
	PlaceOfReceipt            string `json:"place_of_receipt"`
	CountryOfFinalDestination string `json:"country_of_final_destination"`
	PortOfDischarge           string `json:"port_of_discharge"`
	TermsOfPayment            string `json:"terms_of_payment"`
	Goods                     []Item `json:"goods"`
	Declaration               string `json:"declaration"`

	// 以下为可选页脚字段，空值时整行省略。
	TotalAmount   string        `json:"total_amount,omitempty"`
	AmountInWords string        `json:"amount_in_words,omitempty"`
	TotalPackages string        `json:"total_packages,omitempty"`
	NetWeight     string        `json:"net_weight,omitempty"`
	GrossWeight   string        `json:"gross_weight,omitempty"`
	DrawbackSrNo  string        `json:"drawback_sr_no,omitempty"`
	RodtepClaim   string        `json:"rodtep_claim,omitempty"`
	ExtraFooter   []FooterEntry `json:"extra_footer,omitempty"`

	Company string `json:"company,omitempty"`
}

// Item 是一条货物明细，所有数值均按字符串原样展示。
type Item struct {
	SrNo        string `json:"sr_no"`
	Description string `json:"description"`
	Units       string `json:"units"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

// FooterEntry 允许调用方追加任意 label/value 页脚行。
type FooterEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ValidationError 描述单个字段的校验失败。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invoice: field %s %s", e.Field, e.Reason)
}

// Decode 从 r 读取一个 JSON payload。
func Decode(r io.Reader) (Payload, error) {
	var p Payload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("invoice: 解析 JSON 失败: %w", err)
	}
	return p, nil
}

// Validate 只检查渲染必需的抬头字段，其余字段允许为空。
func (p Payload) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"invoice_no", p.InvoiceNo},
		{"invoice_date", p.InvoiceDate},
		{"exporter", p.Exporter},
		{"consignee", p.Consignee},
	}
	var errs []error
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, &ValidationError{Field: f.name, Reason: "is required"})
		}
	}
	for i, e := range p.ExtraFooter {
		if strings.TrimSpace(e.Label) == "" && strings.TrimSpace(e.Value) != "" {
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("extra_footer[%d].label", i), Reason: "is required when value is set"})
		}
	}
	return errors.Join(errs...)
}
