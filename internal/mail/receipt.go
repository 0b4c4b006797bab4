package mail

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"storefront/internal/domain/order"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(`Hi {{.Name}},

Thank you for your order at {{.AppName}}.

Order ID: {{.Order.ID}}
Order date: {{.Order.CreatedAt.Format "Jan 2, 2006"}}
Price paid: ${{.Order.TotalPrice.StringFixed 2}}

{{range .Order.Items}}{{.Qty}} x {{.Name}}  ${{.Price.StringFixed 2}}
{{end}}
Items:    ${{.Order.ItemsPrice.StringFixed 2}}
Tax:      ${{.Order.TaxPrice.StringFixed 2}}
Shipping: ${{.Order.ShippingPrice.StringFixed 2}}
Total:    ${{.Order.TotalPrice.StringFixed 2}}

View your order: {{.OrderURL}}
`))

type ReceiptMailer struct {
	mailer  Mailer
	appName string
	baseURL string
}

func NewReceiptMailer(m Mailer, appName, baseURL string) *ReceiptMailer {
	return &ReceiptMailer{mailer: m, appName: appName, baseURL: strings.TrimRight(baseURL, "/")}
}

// SendPurchaseReceipt mails the order summary to the customer. The order must
// carry its items and customer.
func (r *ReceiptMailer) SendPurchaseReceipt(ctx context.Context, o order.Order) error {
	if o.User == nil || o.User.Email == "" {
		return fmt.Errorf("order %s has no customer email", o.ID)
	}

	var body strings.Builder
	err := receiptTmpl.Execute(&body, map[string]any{
		"Name":     o.User.Name,
		"AppName":  r.appName,
		"Order":    o,
		"OrderURL": fmt.Sprintf("%s/order/%s", r.baseURL, o.ID),
	})
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	subject := fmt.Sprintf("Order confirmation %s", o.ID)
	return r.mailer.Send(ctx, o.User.Email, subject, body.String())
}
