package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DefaultManualNote nota por defecto de un movimiento manual.
const DefaultManualNote = "entrada manual de inventario"

// RegisterMovementUseCase registra movimientos manuales de inventario (entrada, salida, ajuste)
// para un producto, cada uno en su propia transacción.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	ledger   *LedgerWriter
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner, ledger *LedgerWriter) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, ledger: ledger}
}

// MovementInputDTO entrada para registrar un movimiento manual.
type MovementInputDTO struct {
	UserID       string
	ProductID    string
	Type         string
	Quantity     int64
	CostPrice    *decimal.Decimal
	SellingPrice *decimal.Decimal
	Note         string
}

// RegisterMovement valida, abre la transacción, bloquea el producto y escribe el movimiento.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*entity.StockMovement, error) {
	switch input.Type {
	case entity.MovementTypeIncoming, entity.MovementTypeOutgoing, entity.MovementTypeAdjustment:
	default:
		return nil, domain.NewValidationError("type", "debe ser incoming, outgoing o adjustment")
	}
	if input.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if input.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if input.CostPrice != nil && input.CostPrice.IsNegative() {
		return nil, domain.NewValidationError("cost_price", "no puede ser negativo")
	}
	note := input.Note
	if note == "" {
		note = DefaultManualNote
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if err := repos.Stock.LockProducts(ctx, []string{input.ProductID}); err != nil {
			return err
		}
		var err error
		mov, err = uc.ledger.RecordMovement(ctx, repos, MovementInput{
			ProductID:     input.ProductID,
			Type:          input.Type,
			Quantity:      input.Quantity,
			CostPrice:     input.CostPrice,
			SellingPrice:  input.SellingPrice,
			Note:          note,
			Source:        "manual",
			ReferenceID:   input.ProductID,
			ReferenceType: entity.ReferenceManual,
			CreatedBy:     input.UserID,
		})
		return err
	})
	if err != nil {
		return nil, domain.AbortError("inventory.register_movement", err)
	}
	return mov, nil
}
