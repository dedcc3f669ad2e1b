package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	ProductID     string
	Type          string
	ReferenceID   string
	ReferenceType string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// MovementTotals suma de cantidades por tipo de movimiento.
type MovementTotals map[string]int64

// StockMovementRepository puerto del ledger. Solo alta y lecturas: las entradas son inmutables.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	// SumByType agrega cantidades por tipo para un producto; from/to nil = sin límite.
	SumByType(ctx context.Context, productID string, from, to *time.Time) (MovementTotals, error)
	// SumSales suma las salidas del producto excluyendo las reversiones de facturas.
	SumSales(ctx context.Context, productID string, from, to *time.Time) (int64, error)
}
