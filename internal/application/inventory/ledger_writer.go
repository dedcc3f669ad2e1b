package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// MovementInput datos de un movimiento a registrar en el ledger.
type MovementInput struct {
	ProductID     string
	Type          string
	Quantity      int64
	CostPrice     *decimal.Decimal
	SellingPrice  *decimal.Decimal
	Note          string
	Source        string
	ReferenceID   string
	ReferenceType string
	CreatedBy     string
}

// LedgerWriter es la única ruta de mutación del stock: aplica el delta con signo
// a través de StockRepository y luego agrega la entrada inmutable al ledger.
type LedgerWriter struct {
	now func() time.Time
}

// NewLedgerWriter construye el escritor del ledger.
func NewLedgerWriter() *LedgerWriter {
	return &LedgerWriter{now: time.Now}
}

// RecordMovement aplica el efecto del movimiento dentro de la transacción de repos.
// Si el saldo no alcanza devuelve InsufficientStockError y no se escribe ninguna entrada.
func (w *LedgerWriter) RecordMovement(ctx context.Context, repos repository.TxRepositories, in MovementInput) (*entity.StockMovement, error) {
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if !entity.IsValidMovementType(in.Type) {
		return nil, domain.NewValidationError("type", "tipo de movimiento inválido: "+in.Type)
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if in.CostPrice != nil && !entity.HasPriceScale(*in.CostPrice) {
		return nil, domain.NewValidationError("cost_price", "máximo 2 decimales")
	}
	if in.SellingPrice != nil && !entity.HasPriceScale(*in.SellingPrice) {
		return nil, domain.NewValidationError("selling_price", "máximo 2 decimales")
	}

	delta := entity.MovementSign(in.Type) * in.Quantity
	balance, err := repos.Stock.ApplyDelta(ctx, in.ProductID, delta)
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Type:          in.Type,
		CostPrice:     in.CostPrice,
		SellingPrice:  in.SellingPrice,
		Note:          in.Note,
		Source:        in.Source,
		ReferenceID:   in.ReferenceID,
		ReferenceType: in.ReferenceType,
		BalanceAfter:  balance,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     w.now(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
