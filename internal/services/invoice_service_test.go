package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbook/shopbook-backend/internal/config"
	"github.com/shopbook/shopbook-backend/internal/ledger"
	"github.com/shopbook/shopbook-backend/internal/models"
)

func TestComputeInvoiceTotals(t *testing.T) {
	inv := &models.Invoice{
		Discount: 50,
		Items: []models.InvoiceItem{
			{Description: "Tea", Quantity: 2, UnitPrice: 150, Discount: 20},
			{Description: "Cup", Quantity: 1, UnitPrice: 90},
		},
	}

	require.NoError(t, ComputeInvoiceTotals(inv))

	assert.Equal(t, int64(280), inv.Items[0].LineTotal)
	assert.Equal(t, int64(90), inv.Items[1].LineTotal)
	assert.Equal(t, int64(370), inv.Subtotal)
	assert.Equal(t, int64(320), inv.Total)
}

func TestComputeInvoiceTotalsClampsAtZero(t *testing.T) {
	inv := &models.Invoice{
		Discount: 1000,
		Items: []models.InvoiceItem{
			{Description: "Sample", Quantity: 1, UnitPrice: 10, Discount: 50},
			{Description: "Bag", Quantity: 1, UnitPrice: 20},
		},
	}

	require.NoError(t, ComputeInvoiceTotals(inv))

	assert.Zero(t, inv.Items[0].LineTotal)
	assert.Equal(t, int64(20), inv.Subtotal)
	assert.Zero(t, inv.Total)
}

func TestComputeInvoiceTotalsRejectsOverflow(t *testing.T) {
	inv := &models.Invoice{
		Items: []models.InvoiceItem{
			{Description: "Bulk", Quantity: 4, UnitPrice: 3e18},
		},
	}
	assert.ErrorIs(t, ComputeInvoiceTotals(inv), ledger.ErrAmountOverflow)

	inv.Items = []models.InvoiceItem{
		{Description: "A", Quantity: 1, UnitPrice: 5e18},
		{Description: "B", Quantity: 1, UnitPrice: 5e18},
	}
	assert.ErrorIs(t, ComputeInvoiceTotals(inv), ledger.ErrAmountOverflow)
}

func TestRenderInvoiceHTML(t *testing.T) {
	inv := &models.Invoice{
		Number:       "INV-20240301-ABC123",
		CustomerName: "<Ali>",
		IssuedAt:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{Description: "Tea", Quantity: 2, UnitPrice: 1500, Discount: 250},
		},
	}
	require.NoError(t, ComputeInvoiceTotals(inv))

	var buf bytes.Buffer
	err := RenderInvoiceHTML(&buf, inv, config.BooksConfig{CurrencyCode: "USD", CurrencyScale: 2, BusinessName: "Corner Shop"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Corner Shop")
	assert.Contains(t, html, "INV-20240301-ABC123")
	assert.Contains(t, html, "2024-03-01")
	assert.Contains(t, html, "15.00")
	assert.Contains(t, html, "Total: 27.50 USD")
	assert.Contains(t, html, "&lt;Ali&gt;")
	assert.NotContains(t, html, "<Ali>")
}

func TestInvoiceKey(t *testing.T) {
	owner := uuid.MustParse("7b0f4c56-8d2a-4b8e-9a51-0d6f2f3e1c11")
	key := invoiceKey(owner, "INV-20240301-ABC123", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "invoices/7b0f4c56-8d2a-4b8e-9a51-0d6f2f3e1c11/2024-03/INV-20240301-ABC123.html", key)
}
