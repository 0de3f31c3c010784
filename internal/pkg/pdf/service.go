// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/invoice"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/tax"
)

// Service renders tax invoices as PDF documents. The layout is fixed and the
// output is deterministic for the same order input: all figures come from the
// stored order plus the re-derived ledger breakdown, never from live rates.
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// InvoiceData is the data passed to the invoice template.
type InvoiceData struct {
	InvoiceNumber string
	Degraded      bool
	InvoiceDate   string
	Order         *order.Order
	Breakdown     tax.OrderBreakdown
	AmountInWords string
	Company       CompanyInfo
	Currency      string
}

// CompanyInfo is the seller identity block.
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

// GenerateInvoice renders the invoice PDF for a settled order. The caller
// supplies the re-derived tax breakdown and invoice identity so this layer
// stays purely presentational.
func (s *Service) GenerateInvoice(ord *order.Order, breakdown tax.OrderBreakdown, identity invoice.Number) (*bytes.Buffer, error) {
	data := InvoiceData{
		InvoiceNumber: identity.Value,
		Degraded:      identity.Degraded,
		InvoiceDate:   ord.CreatedAt.Format("02 Jan 2006"),
		Order:         ord,
		Breakdown:     breakdown,
		AmountInWords: invoice.AmountInWords(int64(ord.GrandTotal)),
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
			GSTIN:   s.config.App.CompanyGSTIN,
		},
		Currency: s.config.Checkout.Currency,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

var invoiceTmpl = template.Must(template.New("invoice").
	Funcs(template.FuncMap{"round2": tax.Round2}).
	Parse(invoiceTemplate))

func (s *Service) generateHTML(data InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Invoice HTML template
const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Tax Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; font-size: 13px; }
        .header { display: flex; justify-content: space-between; margin-bottom: 25px; border-bottom: 2px solid #eee; padding-bottom: 15px; }
        .invoice-title { font-size: 24px; font-weight: bold; color: #1f2937; }
        .meta p { margin: 3px 0; }
        .addresses { display: flex; justify-content: space-between; margin-bottom: 25px; }
        .section-title { font-size: 14px; font-weight: bold; margin-bottom: 8px; color: #374151; }
        table.items { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        table.items th, table.items td { border: 1px solid #ddd; padding: 8px 6px; }
        table.items th { background-color: #f8f9fa; text-align: left; }
        table.items td.num { text-align: right; }
        .totals { float: right; width: 320px; }
        .totals table { width: 100%; border-collapse: collapse; }
        .totals td { padding: 6px; border-bottom: 1px solid #eee; }
        .totals .label { text-align: right; font-weight: bold; }
        .totals .amount { text-align: right; width: 110px; }
        .grand { font-size: 16px; font-weight: bold; border-top: 2px solid #333 !important; }
        .words { clear: both; padding-top: 15px; font-style: italic; }
        .audit { color: #92400e; font-size: 11px; }
        .footer { margin-top: 40px; padding-top: 15px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 11px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="meta">
            <h2>{{.Company.Name}}</h2>
            <p>{{.Company.Address}}</p>
            <p>Phone: {{.Company.Phone}} &middot; Email: {{.Company.Email}}</p>
            {{if .Company.GSTIN}}<p><strong>GSTIN:</strong> {{.Company.GSTIN}}</p>{{end}}
        </div>
        <div class="meta" style="text-align: right;">
            <div class="invoice-title">TAX INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
            <p><strong>Payment:</strong> {{.Order.PaymentMethod}} ({{.Order.PaymentStatus}})</p>
            {{if .Degraded}}<p class="audit">provisional numbering &mdash; pending reconciliation</p>{{end}}
        </div>
    </div>

    <div class="addresses">
        <div>
            <div class="section-title">Ship To:</div>
            <p><strong>{{.Order.ShippingAddress.Name}}</strong></p>
            <p>{{.Order.ShippingAddress.Line1}}</p>
            {{if .Order.ShippingAddress.Line2}}<p>{{.Order.ShippingAddress.Line2}}</p>{{end}}
            <p>{{.Order.ShippingAddress.City}}, {{.Order.ShippingAddress.State}} {{.Order.ShippingAddress.Pincode}}</p>
            {{if .Order.ShippingAddress.Phone}}<p>Phone: {{.Order.ShippingAddress.Phone}}</p>{{end}}
        </div>
    </div>

    <table class="items">
        <thead>
            <tr>
                <th>Item</th>
                <th>HSN</th>
                <th class="num">Qty</th>
                <th class="num">Taxable Value</th>
                <th class="num">Rate %</th>
                <th class="num">CGST</th>
                <th class="num">SGST</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Breakdown.Lines}}
            <tr>
                <td>{{.ProductName}}</td>
                <td>{{.HSNCode}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{printf "%.2f" (round2 .BasePrice)}}</td>
                <td class="num">{{printf "%.2f" (round2 .RatePercent)}}</td>
                <td class="num">{{printf "%.2f" (round2 .CGST)}}</td>
                <td class="num">{{printf "%.2f" (round2 .SGST)}}</td>
                <td class="num">{{printf "%.2f" (round2 .LineTotal)}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr>
                <td class="label">Subtotal:</td>
                <td class="amount">{{printf "%.2f" (round2 .Order.Subtotal)}}</td>
            </tr>
            {{if gt .Order.DiscountAmount 0.0}}
            <tr>
                <td class="label">Discount:</td>
                <td class="amount">-{{printf "%.2f" (round2 .Order.DiscountAmount)}}</td>
            </tr>
            {{end}}
            <tr>
                <td class="label">CGST:</td>
                <td class="amount">{{printf "%.2f" (round2 .Breakdown.CGST)}}</td>
            </tr>
            <tr>
                <td class="label">SGST:</td>
                <td class="amount">{{printf "%.2f" (round2 .Breakdown.SGST)}}</td>
            </tr>
            <tr>
                <td class="label">Shipping:</td>
                <td class="amount">{{printf "%.2f" (round2 .Order.ShippingFee)}}</td>
            </tr>
            <tr class="grand">
                <td class="label">Grand Total ({{.Currency}}):</td>
                <td class="amount">{{printf "%.2f" (round2 .Order.GrandTotal)}}</td>
            </tr>
        </table>
    </div>

    <div class="words">
        <strong>Amount in words:</strong> {{.AmountInWords}} Only
    </div>

    <div class="footer">
        <p>This is a computer generated invoice.</p>
        <p>Questions? Contact us at {{.Company.Email}} or {{.Company.Phone}}</p>
    </div>
</body>
</html>
`
