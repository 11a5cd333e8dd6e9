// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(receiptHTML))

// Service renders order receipts
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// RenderReceipt renders the PDF receipt of a handoff
func (s *Service) RenderReceipt(h *checkout.Handoff) ([]byte, error) {
	htmlContent, err := s.ReceiptHTML(h)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.Encoding.Set("utf-8")
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(8)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

// ReceiptHTML renders the HTML the PDF is printed from
func (s *Service) ReceiptHTML(h *checkout.Handoff) ([]byte, error) {
	data := ReceiptData{
		Shop: ShopInfo{
			Name:    s.config.Receipt.ShopName,
			Phone:   s.config.Receipt.ShopPhone,
			Address: s.config.Receipt.ShopAddress,
		},
		Currency:    s.config.Pricing.Currency,
		PrintedAt:   s.now().Format("2006-01-02 15:04"),
		Handoff:     h,
		Discount:    h.TotalDiscount(),
		FreeShip:    h.ShippingFee.IsZero(),
		HasCoupon:   h.CouponID != nil,
		HasDiscount: h.TotalDiscount().IsPositive(),
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Shop        ShopInfo
	Currency    string
	PrintedAt   string
	Handoff     *checkout.Handoff
	Discount    decimal.Decimal
	FreeShip    bool
	HasCoupon   bool
	HasDiscount bool
}

// ShopInfo represents the shop header of a receipt
type ShopInfo struct {
	Name    string
	Phone   string
	Address string
}

const receiptHTML = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Handoff.OrderNumber}}</title>
    <style>
        body { font-family: "Noto Sans CJK SC", Arial, sans-serif; margin: 0; padding: 16px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 12px; margin-bottom: 16px; }
        .shop-name { font-size: 22px; font-weight: bold; color: #1d4ed8; }
        .items { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
        .items th, .items td { border-bottom: 1px solid #ddd; padding: 6px 4px; text-align: left; }
        .items .num { text-align: right; }
        .totals { width: 60%; margin-left: 40%; border-collapse: collapse; }
        .totals td { padding: 4px; }
        .totals .amount { text-align: right; }
        .total-row { font-size: 16px; font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 24px; text-align: center; color: #666; font-size: 11px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="shop-name">{{.Shop.Name}}</div>
        {{if .Shop.Address}}<p>{{.Shop.Address}}</p>{{end}}
        {{if .Shop.Phone}}<p>{{.Shop.Phone}}</p>{{end}}
        <p><strong>订单号:</strong> {{.Handoff.OrderNumber}}</p>
        <p><strong>下单时间:</strong> {{.Handoff.CreatedAt.Format "2006-01-02 15:04"}}</p>
    </div>

    <p><strong>{{.Handoff.ReceiverName}}</strong> {{.Handoff.ReceiverPhone}}</p>
    <p>{{.Handoff.Address}}</p>
    {{if .Handoff.Remark}}<p>备注: {{.Handoff.Remark}}</p>{{end}}

    <table class="items">
        <thead>
            <tr>
                <th>商品</th>
                <th class="num">单价</th>
                <th class="num">数量</th>
                <th class="num">小计</th>
            </tr>
        </thead>
        <tbody>
            {{range .Handoff.Lines}}
            <tr>
                <td>{{.Name}}{{if .Specification}}<br><small>{{.Specification}}</small>{{end}}</td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .Subtotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>商品金额</td><td class="amount">{{money .Handoff.GoodsAmount}}</td></tr>
        <tr><td>运费</td><td class="amount">{{if .FreeShip}}免运费{{else}}{{money .Handoff.ShippingFee}}{{end}}</td></tr>
        {{if .HasDiscount}}
        <tr><td>会员优惠</td><td class="amount">-{{money .Handoff.MemberDiscount}}</td></tr>
        {{if .HasCoupon}}<tr><td>优惠券</td><td class="amount">-{{money .Handoff.CouponDiscount}}</td></tr>{{end}}
        {{end}}
        <tr class="total-row"><td>实付 ({{.Currency}})</td><td class="amount">{{money .Handoff.Total}}</td></tr>
    </table>

    <div class="footer">
        <p>打印时间 {{.PrintedAt}}</p>
    </div>
</body>
</html>
`
