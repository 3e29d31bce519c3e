package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	WelcomeTmpl *template.Template
	OrderTmpl   *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	welcomeTmpl, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return nil, fmt.Errorf("email: parse welcome template: %w", err)
	}

	orderTmpl, err := template.New("orderConfirmation").Funcs(template.FuncMap{
		"money": FormatMoney,
	}).Parse(orderConfirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("email: parse order template: %w", err)
	}

	return &TemplateManager{
		WelcomeTmpl: welcomeTmpl,
		OrderTmpl:   orderTmpl,
	}, nil
}

// TemplateData holds the dynamic data for an email template.
type TemplateData struct {
	Name string
	Link string
}

// OrderLine is one row of the order confirmation table.
type OrderLine struct {
	Name     string
	Size     string
	Quantity int
	Amount   float64
}

type OrderTemplateData struct {
	Name          string
	OrderID       string
	Link          string
	Lines         []OrderLine
	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
	PaymentMethod string
}

// FormatMoney renders an amount in rupees.
func FormatMoney(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

func (tm *TemplateManager) GenerateWelcomeEmailHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.WelcomeTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

func (tm *TemplateManager) GenerateOrderConfirmationHTML(data OrderTemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.OrderTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const welcomeTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Welcome</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Welcome, {{.Name}}!</h2>
	<p>Thank you for joining us. Every piece in our collection is made by hand by artisans we know by name.</p>
	<p><a href="{{.Link}}">Start browsing</a></p>
</body>
</html>
`

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Order Confirmation</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Thank you for your order, {{.Name}}</h2>
	<p>Order <strong>{{.OrderID}}</strong> has been placed.</p>
	<table cellpadding="6" style="border-collapse: collapse;">
		<tr><th align="left">Item</th><th>Size</th><th>Qty</th><th align="right">Amount</th></tr>
		{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Size}}</td><td>{{.Quantity}}</td><td align="right">{{money .Amount}}</td></tr>
		{{end}}
	</table>
	<p>Items: {{money .ItemsPrice}}<br>Shipping: {{money .ShippingPrice}}<br>Tax: {{money .TaxPrice}}<br><strong>Total: {{money .TotalPrice}}</strong></p>
	<p>Payment method: {{.PaymentMethod}}</p>
	<p><a href="{{.Link}}">View your order</a></p>
</body>
</html>
`
