package invoice

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LineForPDF línea de factura enriquecida con el nombre del producto.
type LineForPDF struct {
	entity.InvoiceLine
	ProductName string
}

// PDFGenerator puerto de salida para la representación gráfica de una factura.
type PDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, lines []LineForPDF) ([]byte, error)
}
