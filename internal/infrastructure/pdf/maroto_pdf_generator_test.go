package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinvoice "github.com/jhoicas/stock-ledger-api/internal/application/invoice"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestGenerateInvoicePDF(t *testing.T) {
	inv := &entity.Invoice{
		ID:          "6f1c2d3e-0000-4000-8000-000000000001",
		Type:        entity.InvoiceTypeIncoming,
		ComingPlace: "Proveedor Central",
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Lines: []entity.InvoiceLine{
			{ProductID: "p1", Quantity: 10, CostPrice: decimal.NewFromInt(9000), SalePrice: decimal.NewFromInt(12000), Unit: "pcs"},
		},
	}
	inv.RecalculateTotal()
	lines := []appinvoice.LineForPDF{{InvoiceLine: inv.Lines[0], ProductName: "Arroz 1kg"}}

	out, err := NewMarotoPDFGenerator().GenerateInvoicePDF(context.Background(), inv, lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMoneyUsesSpanishSeparators(t *testing.T) {
	g := NewMarotoPDFGenerator()
	assert.Equal(t, "$120.000,00", g.money(decimal.NewFromInt(120000)))
}

func TestInvoiceTitle(t *testing.T) {
	assert.Equal(t, "FACTURA DE SALIDA", invoiceTitle(entity.InvoiceTypeOutgoing))
	assert.Equal(t, "FACTURA DE ENTRADA", invoiceTitle(entity.InvoiceTypeIncoming))
}
