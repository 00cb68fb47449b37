package invoice

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "exporter": "CODEX EXPORTS\nMumbai",
  "consignee": "ACME IMPORTS\nDubai",
  "notify_party": "",
  "invoice_no": "INV-1",
  "invoice_date": "2024-05-01",
  "ie_code": "0512345678",
  "buyer_order": "PO-77",
  "port_of_loading": "Nhava Sheva",
  "final_destination": "Jebel Ali",
  "vessel_no": "MSC 123",
  "terms_of_delivery": "FOB",
  "container_no": "MSCU1234567",
  "seal_no": "SL-9",
  "marks": "ACME/DXB",
  "pre_carriage_by": "Road",
  "place_of_receipt": "Pune",
  "country_of_final_destination": "UAE",
  "port_of_discharge": "Jebel Ali",
  "terms_of_payment": "Advance",
  "goods": [
    {"sr_no": "1", "description": "Bolt", "units": "10", "rate": "1.00", "amount": "10.00"},
    {"sr_no": "2", "description": "Nut", "units": "20", "rate": "0.50", "amount": "10.00"}
  ],
  "declaration": "We declare...",
  "drawback_sr_no": "DBK-1",
  "extra_footer": [{"label": "HS Code", "value": "7318"}]
}`

func TestDecodeAndBuildDocument(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	doc := NewDocument(p)
	parties := doc.Parties()
	require.Len(t, parties, 3)
	assert.Equal(t, RoleExporter, parties[0].Role)
	assert.Equal(t, "CODEX EXPORTS\nMumbai", parties[0].Text)
	assert.Equal(t, RoleNotify, parties[2].Role)

	items := doc.Items()
	require.Len(t, items, 2)
	assert.Equal(t, []string{"2", "Nut", "20", "0.50", "10.00"}, items[1].Cells())

	var present []string
	for _, f := range doc.Footer() {
		if f.Present() {
			present = append(present, f.Label)
		}
	}
	assert.Equal(t, []string{"Drawback Sr. No.", "HS Code"}, present)
	assert.Equal(t, "INV-1", doc.Header().InvoiceNo)
}

func TestDocumentAccessorsReturnCopies(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	require.NoError(t, err)
	doc := NewDocument(p)

	items := doc.Items()
	items[0].Description = "changed"
	parties := doc.Parties()
	parties[0].Text = "changed"

	assert.Equal(t, "Bolt", doc.Items()[0].Description)
	assert.Equal(t, "CODEX EXPORTS\nMumbai", doc.Parties()[0].Text)
}

func TestDocumentFields(t *testing.T) {
	p, err := Decode(strings.NewReader(samplePayload))
	require.NoError(t, err)
	fields := NewDocument(p).Fields()

	assert.Equal(t, "INV-1", fields["invoice_no"])
	assert.Equal(t, "DBK-1", fields["drawback_sr_no"])
	assert.Equal(t, 2, fields["item_count"])
	_, hasCompany := fields["company"]
	assert.False(t, hasCompany, "company is left to the template default")

	p.Company = "  ACME  "
	assert.Equal(t, "ACME", NewDocument(p).Fields()["company"])
}

func TestHeaderPairsOrder(t *testing.T) {
	pairs := Header{InvoiceNo: "1"}.Pairs()
	require.Len(t, pairs, 16)
	assert.Equal(t, "invoice_no", pairs[0].Key)
	assert.Equal(t, "1", pairs[0].Value)
	assert.Equal(t, "marks", pairs[len(pairs)-1].Key)
}

func TestValidate(t *testing.T) {
	var p Payload
	err := p.Validate()
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "invoice_no", ve.Field)
	for _, field := range []string{"invoice_no", "invoice_date", "exporter", "consignee"} {
		assert.Contains(t, err.Error(), field)
	}

	p = Payload{InvoiceNo: "1", InvoiceDate: "d", Exporter: "e", Consignee: "c",
		ExtraFooter: []FooterEntry{{Value: "x"}}}
	err = p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra_footer[0].label")
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"invoice_no": 1`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice:")
}
