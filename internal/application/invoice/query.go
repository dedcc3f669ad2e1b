package invoice

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Get obtiene una factura por ID.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.NewNotFoundError("factura", id)
	}
	return ToInvoiceResponse(inv), nil
}

// List lista facturas con filtros por tipo, autor, rango de fechas y texto.
func (uc *UseCase) List(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	if in.Type != "" && !entity.IsValidInvoiceType(in.Type) {
		return nil, domain.NewValidationError("type", "debe ser incoming u outgoing")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, domain.NewValidationError("from", "debe ser anterior a to")
	}
	in.DefaultPage()
	list, total, err := uc.invoiceRepo.List(ctx, repository.InvoiceFilter{
		Type:      in.Type,
		CreatedBy: in.CreatedBy,
		Search:    in.Search,
		From:      in.From,
		To:        in.To,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *ToInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.NewPageResponse(in.Limit, in.Offset, total),
	}, nil
}

// ToInvoiceResponse convierte la factura a DTO.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	lines := make([]dto.InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, dto.InvoiceLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			CostPrice: l.CostPrice,
			SalePrice: l.SalePrice,
			Unit:      l.Unit,
			Subtotal:  l.Subtotal(),
		})
	}
	return &dto.InvoiceResponse{
		ID:          inv.ID,
		Type:        inv.Type,
		Lines:       lines,
		ComingPlace: inv.ComingPlace,
		Note:        inv.Note,
		Total:       inv.Total,
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
	}
}
