package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ReceiptFilter filtros del listado de recibos.
type ReceiptFilter struct {
	Status     string
	ReceivedBy string
	Limit      int
	Offset     int
}

// StockReceiptRepository define el puerto de persistencia para StockReceipt.
type StockReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.StockReceipt) error
	Update(ctx context.Context, receipt *entity.StockReceipt) error
	Delete(ctx context.Context, id string) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockReceipt, error)
	// GetForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockReceipt, error)
	List(ctx context.Context, filter ReceiptFilter) ([]*entity.StockReceipt, int, error)
}
