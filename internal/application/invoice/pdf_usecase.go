package invoice

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// DownloadPDF genera el PDF de una factura.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - NotFoundError              si la factura no existe.
func (uc *UseCase) DownloadPDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("pdf: generador no configurado")
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.NewNotFoundError("factura", id)
	}

	lines := make([]LineForPDF, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		name := "Producto " + l.ProductID // fallback si el producto fue eliminado
		if p, pErr := uc.productRepo.GetByID(ctx, l.ProductID); pErr == nil && p != nil {
			name = p.Name
		}
		lines = append(lines, LineForPDF{InvoiceLine: l, ProductName: name})
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, lines)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	short := inv.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return pdfBytes, fmt.Sprintf("factura_%s_%s.pdf", inv.Type, short), nil
}
