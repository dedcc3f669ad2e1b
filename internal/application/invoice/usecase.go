package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// RevertNote nota de las entradas que deshacen una línea al editar o eliminar.
const RevertNote = "reversión factura"

// UseCase crea, edita y elimina facturas de entrada/salida. Cada operación es una sola
// transacción: si una línea falla no queda ningún efecto sobre el stock ni el ledger.
type UseCase struct {
	txRunner    inventory.TxRunner
	ledger      *inventory.LedgerWriter
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	generator   PDFGenerator
	now         func() time.Time
}

// NewUseCase construye el caso de uso. generator puede ser nil si no se sirve PDF.
func NewUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.LedgerWriter,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	generator PDFGenerator,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		generator:   generator,
		now:         time.Now,
	}
}

// normalizeLines aplica valores por defecto (unit "pcs", precios 0) y valida cantidades y precios.
func normalizeLines(in []dto.InvoiceLineRequest) ([]entity.InvoiceLine, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	lines := make([]entity.InvoiceLine, 0, len(in))
	for i, l := range in {
		field := fmt.Sprintf("lines[%d]", i)
		if l.ProductID == "" {
			return nil, domain.NewValidationError(field+".product_id", "requerido")
		}
		if l.Quantity <= 0 {
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		line := entity.InvoiceLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			CostPrice: decimal.Zero,
			SalePrice: decimal.Zero,
			Unit:      l.Unit,
		}
		if l.CostPrice != nil {
			line.CostPrice = *l.CostPrice
		}
		if l.SalePrice != nil {
			line.SalePrice = *l.SalePrice
		}
		if line.CostPrice.IsNegative() {
			return nil, domain.NewValidationError(field+".cost_price", "no puede ser negativo")
		}
		if line.SalePrice.IsNegative() {
			return nil, domain.NewValidationError(field+".sale_price", "no puede ser negativo")
		}
		if !entity.HasPriceScale(line.CostPrice) {
			return nil, domain.NewValidationError(field+".cost_price", "máximo 2 decimales")
		}
		if !entity.HasPriceScale(line.SalePrice) {
			return nil, domain.NewValidationError(field+".sale_price", "máximo 2 decimales")
		}
		if line.Unit == "" {
			line.Unit = entity.DefaultLineUnit
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// applyLines registra en el ledger el efecto de cada línea. Con revert=true escribe el
// movimiento opuesto, dejando el saldo como si la factura no hubiera existido.
func (uc *UseCase) applyLines(ctx context.Context, repos repository.TxRepositories, inv *entity.Invoice, revert bool, userID string) error {
	movType, note, source := inv.MovementType(), inv.Note, entity.MovementSourceInvoice
	if revert {
		movType, note, source = inv.RevertMovementType(), RevertNote, entity.MovementSourceInvoiceRevert
	}
	for i, l := range inv.Lines {
		cost, sale := l.CostPrice, l.SalePrice
		_, err := uc.ledger.RecordMovement(ctx, repos, inventory.MovementInput{
			ProductID:     l.ProductID,
			Type:          movType,
			Quantity:      l.Quantity,
			CostPrice:     &cost,
			SellingPrice:  &sale,
			Note:          note,
			Source:        source,
			ReferenceID:   inv.ID,
			ReferenceType: entity.ReferenceInvoice,
			CreatedBy:     userID,
		})
		if err != nil {
			return fmt.Errorf("línea %d: %w", i, err)
		}
	}
	return nil
}

// Create crea la factura y aplica el efecto de todas sus líneas.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if !entity.IsValidInvoiceType(in.Type) {
		return nil, domain.NewValidationError("type", "debe ser incoming u outgoing")
	}
	lines, err := normalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	inv := &entity.Invoice{
		ID:          uuid.New().String(),
		Type:        in.Type,
		Lines:       lines,
		ComingPlace: in.ComingPlace,
		Note:        in.Note,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	inv.RecalculateTotal()

	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if err := repos.Stock.LockProducts(ctx, inv.ProductIDs()); err != nil {
			return err
		}
		if err := uc.applyLines(ctx, repos, inv, false, userID); err != nil {
			return err
		}
		return repos.Invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, domain.AbortError("invoice.create", err)
	}
	return ToInvoiceResponse(inv), nil
}

// Update revierte todas las líneas actuales y luego aplica el nuevo tipo/líneas.
// Type y Lines omitidos conservan los valores actuales.
func (uc *UseCase) Update(ctx context.Context, userID, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	var newLines []entity.InvoiceLine
	if in.Lines != nil {
		var err error
		if newLines, err = normalizeLines(in.Lines); err != nil {
			return nil, err
		}
	}
	if in.Type != nil && !entity.IsValidInvoiceType(*in.Type) {
		return nil, domain.NewValidationError("type", "debe ser incoming u outgoing")
	}

	var updated *entity.Invoice
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		current, err := repos.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError("factura", id)
		}

		next := *current
		if in.Type != nil {
			next.Type = *in.Type
		}
		if newLines != nil {
			next.Lines = newLines
		}
		if in.ComingPlace != nil {
			next.ComingPlace = *in.ComingPlace
		}
		if in.Note != nil {
			next.Note = *in.Note
		}

		ids := append(current.ProductIDs(), next.ProductIDs()...)
		if err := repos.Stock.LockProducts(ctx, ids); err != nil {
			return err
		}
		if err := uc.applyLines(ctx, repos, current, true, userID); err != nil {
			return err
		}
		if err := uc.applyLines(ctx, repos, &next, false, userID); err != nil {
			return err
		}
		next.RecalculateTotal()
		next.UpdatedAt = uc.now()
		if err := repos.Invoices.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, domain.AbortError("invoice.update", err)
	}
	return ToInvoiceResponse(updated), nil
}

// Delete revierte todas las líneas y elimina la factura.
func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		current, err := repos.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError("factura", id)
		}
		if err := repos.Stock.LockProducts(ctx, current.ProductIDs()); err != nil {
			return err
		}
		if err := uc.applyLines(ctx, repos, current, true, userID); err != nil {
			return err
		}
		return repos.Invoices.Delete(ctx, id)
	})
	return domain.AbortError("invoice.delete", err)
}
