package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderConfirmationTemplate(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	html, err := tm.GenerateOrderConfirmationHTML(OrderTemplateData{
		Name:    "Meera",
		OrderID: "ord-42",
		Link:    "http://localhost:5173/orders/ord-42",
		Lines: []OrderLine{
			{Name: "Block Print Kurta", Size: "M", Quantity: 2, Amount: 1000},
		},
		ItemsPrice: 1000,
		TotalPrice: 1180,
	})
	require.NoError(t, err)
	assert.Contains(t, html, "ord-42")
	assert.Contains(t, html, "Block Print Kurta")
	assert.Contains(t, html, "₹1180.00")
}

func TestWelcomeTemplateEscapesName(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	html, err := tm.GenerateWelcomeEmailHTML(TemplateData{Name: "<b>x</b>", Link: "http://localhost"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>x</b>")
}

func TestLogSenderNeverFails(t *testing.T) {
	assert.NoError(t, LogSender{}.SendEmail(context.Background(), "a@example.com", "hi", "", ""))
}
