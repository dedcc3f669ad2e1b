package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterMovement(ctx, MovementInputDTO{
		UserID:       userID,
		ProductID:    in.ProductID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Note:         in.Note,
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(mov)
	return &resp, nil
}

// AddStock entrada manual de unidades a un producto (POST /api/inventory/add-stock/:productId).
func (uc *RegisterMovementUseCase) AddStock(ctx context.Context, userID, productID string, in dto.AddStockRequest) (*dto.MovementResponse, error) {
	return uc.RegisterMovementFromRequest(ctx, userID, dto.RegisterMovementRequest{
		ProductID: productID,
		Type:      entity.MovementTypeIncoming,
		Quantity:  in.Quantity,
		Note:      in.Note,
	})
}

// ToMovementResponse convierte una entrada del ledger a DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		CostPrice:     m.CostPrice,
		SellingPrice:  m.SellingPrice,
		Note:          m.Note,
		Source:        m.Source,
		ReferenceID:   m.ReferenceID,
		ReferenceType: m.ReferenceType,
		BalanceAfter:  m.BalanceAfter,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
